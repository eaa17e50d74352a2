package http

import (
	"context"
	"io"
	"time"

	"github.com/bharatTiffin/elitemeet-backend/internal/app"
	"github.com/bharatTiffin/elitemeet-backend/internal/auth"
	"github.com/bharatTiffin/elitemeet-backend/internal/domain"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeWebhookSvc struct {
	gotBody      []byte
	gotSignature string
	webhookErr   error

	verifyBooking domain.Booking
	verifyErr     error
}

func (f *fakeWebhookSvc) HandleWebhookEvent(_ context.Context, rawBody []byte, signature string) error {
	f.gotBody = append([]byte{}, rawBody...)
	f.gotSignature = signature
	return f.webhookErr
}

func (f *fakeWebhookSvc) VerifyPayment(_ context.Context, orderID, paymentID, signature string) (domain.Booking, error) {
	if f.verifyErr != nil {
		return domain.Booking{}, f.verifyErr
	}
	return f.verifyBooking, nil
}

type fakeBookingSvc struct {
	reserveResult app.ReserveResult
	reserveErr    error
	gotReserve    app.ReserveInput

	enrollResult app.ReserveResult
	enrollErr    error

	cancelErr      error
	cancelledOrder string

	bookings []domain.Booking
	listErr  error
}

func (f *fakeBookingSvc) Reserve(_ context.Context, in app.ReserveInput) (app.ReserveResult, error) {
	f.gotReserve = in
	if f.reserveErr != nil {
		return app.ReserveResult{}, f.reserveErr
	}
	return f.reserveResult, nil
}

func (f *fakeBookingSvc) ReserveMentorship(_ context.Context, in app.EnrollInput) (app.ReserveResult, error) {
	if f.enrollErr != nil {
		return app.ReserveResult{}, f.enrollErr
	}
	return f.enrollResult, nil
}

func (f *fakeBookingSvc) Cancel(_ context.Context, orderID string) error {
	f.cancelledOrder = orderID
	return f.cancelErr
}

func (f *fakeBookingSvc) ListUserBookings(_ context.Context, userID string) ([]domain.Booking, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.bookings, nil
}

type fakeSlotSvc struct {
	created   []domain.Slot
	createErr error

	available []domain.Slot
	listErr   error

	adminSlots []domain.Slot

	updated   domain.Slot
	updateErr error

	deleteErr error
}

func (f *fakeSlotSvc) CreateSlots(_ context.Context, adminID string, inputs []app.CreateSlotInput) ([]domain.Slot, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeSlotSvc) ListAvailable(_ context.Context, from, to *time.Time) ([]domain.Slot, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.available, nil
}

func (f *fakeSlotSvc) ListForAdmin(_ context.Context, adminID string) ([]domain.Slot, error) {
	return f.adminSlots, nil
}

func (f *fakeSlotSvc) UpdateSlot(_ context.Context, adminID, slotID string, in app.UpdateSlotInput) (domain.Slot, error) {
	if f.updateErr != nil {
		return domain.Slot{}, f.updateErr
	}
	return f.updated, nil
}

func (f *fakeSlotSvc) DeleteSlot(_ context.Context, adminID, slotID string) error {
	return f.deleteErr
}

type fakeOpsSvc struct {
	reconcileResult app.ReconcileResult
	reconcileErr    error
	sweepResult     app.SweepResult
	sweepErr        error
}

func (f *fakeOpsSvc) Reconcile(_ context.Context) (app.ReconcileResult, error) {
	if f.reconcileErr != nil {
		return app.ReconcileResult{}, f.reconcileErr
	}
	return f.reconcileResult, nil
}

func (f *fakeOpsSvc) Sweep(_ context.Context) (app.SweepResult, error) {
	if f.sweepErr != nil {
		return app.SweepResult{}, f.sweepErr
	}
	return f.sweepResult, nil
}

// staticVerifier maps literal tokens to identities.
type staticVerifier struct {
	identities map[string]auth.Identity
}

func (v *staticVerifier) Verify(_ context.Context, token string) (auth.Identity, error) {
	id, ok := v.identities[token]
	if !ok {
		return auth.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}
