package http

import (
	"net/http"

	"github.com/bharatTiffin/elitemeet-backend/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Slots       SlotAdminService
	Bookings    BookingReserver
	Webhooks    WebhookHandler
	Reconciler  Reconciler
	Sweeper     Sweeper
	Verifier    auth.Verifier
	Registry    *prometheus.Registry
	CORSOrigins []string
	Log         *logrus.Logger
}

// NewRouter builds the service router. The webhook route sits outside the
// auth middleware and must see the raw, unmodified request body.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(deps.Log))
	r.Use(CORS(deps.CORSOrigins))

	r.Get("/health", HealthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/slots", HandleListSlots(deps.Slots))
		r.Post("/webhooks/payment", HandlePaymentWebhook(deps.Webhooks))

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(deps.Verifier))

			r.Post("/bookings", HandleCreateBooking(deps.Bookings))
			r.Get("/bookings", HandleListBookings(deps.Bookings))
			r.Post("/bookings/cancel", HandleCancelBooking(deps.Bookings))
			r.Post("/bookings/verify", HandleVerifyPayment(deps.Webhooks))
			r.Post("/mentorship/enroll", HandleEnrollMentorship(deps.Bookings))

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)

				r.Get("/admin/slots", HandleAdminListSlots(deps.Slots))
				r.Post("/admin/slots", HandleAdminCreateSlots(deps.Slots))
				r.Put("/admin/slots/{id}", HandleAdminUpdateSlot(deps.Slots))
				r.Delete("/admin/slots/{id}", HandleAdminDeleteSlot(deps.Slots))
				r.Post("/admin/reconcile", HandleReconcile(deps.Reconciler))
				r.Post("/admin/cleanup", HandleCleanup(deps.Sweeper))
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})

	return r
}
