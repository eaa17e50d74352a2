package http

import (
	"context"
	"net/http"

	"github.com/bharatTiffin/elitemeet-backend/internal/app"
)

// Reconciler runs the drift-repair pass.
type Reconciler interface {
	Reconcile(ctx context.Context) (app.ReconcileResult, error)
}

// Sweeper runs one expiry pass on demand.
type Sweeper interface {
	Sweep(ctx context.Context) (app.SweepResult, error)
}

// HandleReconcile forces every confirmed booking's slot into the booked
// state and reports what it found.
func HandleReconcile(svc Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Reconcile(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{
			"already_correct": result.AlreadyCorrect,
			"fixed":           result.Fixed,
			"errored":         result.Errored,
		})
	}
}

// HandleCleanup triggers a sweep outside the normal interval.
func HandleCleanup(svc Sweeper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Sweep(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{
			"slots_released":   result.SlotsReleased,
			"bookings_expired": result.BookingsExpired,
		})
	}
}
