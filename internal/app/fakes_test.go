package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/bharatTiffin/elitemeet-backend/internal/domain"
	"github.com/bharatTiffin/elitemeet-backend/internal/notify"
	"github.com/bharatTiffin/elitemeet-backend/internal/observability"
	"github.com/bharatTiffin/elitemeet-backend/internal/payment"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeSlotStore mirrors the conditional-update semantics of the Postgres slot
// repository in memory. It is safe for concurrent use so races can be
// exercised directly.
type fakeSlotStore struct {
	mu    sync.Mutex
	slots map[string]domain.Slot
}

func newFakeSlotStore(slots ...domain.Slot) *fakeSlotStore {
	m := make(map[string]domain.Slot, len(slots))
	for _, s := range slots {
		m[s.ID] = s
	}
	return &fakeSlotStore{slots: m}
}

func (f *fakeSlotStore) get(id string) (domain.Slot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[id]
	return s, ok
}

func (f *fakeSlotStore) ClaimAvailable(_ context.Context, slotID, userID string) (domain.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok || s.Status != domain.SlotStatusAvailable {
		return domain.Slot{}, domain.ErrSlotUnavailable
	}
	s.Status = domain.SlotStatusReserved
	s.ReservedBy = &userID
	f.slots[slotID] = s
	return s, nil
}

func (f *fakeSlotStore) Release(_ context.Context, slotID string, from domain.SlotStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = domain.SlotStatusAvailable
	s.ReservedBy = nil
	f.slots[slotID] = s
	return true, nil
}

func (f *fakeSlotStore) Finalize(_ context.Context, slotID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok {
		return domain.ErrSlotNotFound
	}
	s.Status = domain.SlotStatusBooked
	s.ReservedBy = &userID
	f.slots[slotID] = s
	return nil
}

func (f *fakeSlotStore) ReleaseStuckReserved(_ context.Context, cutoff time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	released := 0
	for id, s := range f.slots {
		if s.Status == domain.SlotStatusReserved && !s.UpdatedAt.After(cutoff) {
			s.Status = domain.SlotStatusAvailable
			s.ReservedBy = nil
			f.slots[id] = s
			released++
		}
	}
	return released, nil
}

func (f *fakeSlotStore) Get(_ context.Context, slotID string) (domain.Slot, error) {
	s, ok := f.get(slotID)
	if !ok {
		return domain.Slot{}, domain.ErrSlotNotFound
	}
	return s, nil
}

func (f *fakeSlotStore) Create(_ context.Context, slot domain.Slot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[slot.ID] = slot
	return nil
}

func (f *fakeSlotStore) ListAvailable(_ context.Context, from, to *time.Time) ([]domain.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Slot
	for _, s := range f.slots {
		if s.Status != domain.SlotStatusAvailable {
			continue
		}
		if from != nil && to != nil {
			if s.StartTime.Before(*from) || s.EndTime.After(*to) {
				continue
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeSlotStore) ListByAdmin(_ context.Context, adminID string) ([]domain.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Slot
	for _, s := range f.slots {
		if s.AdminID == adminID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeSlotStore) HasOverlap(_ context.Context, adminID string, start, end time.Time, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.slots {
		if s.AdminID != adminID || s.ID == excludeID {
			continue
		}
		if s.StartTime.Before(end) && s.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSlotStore) UpdateAvailable(_ context.Context, slot domain.Slot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.slots[slot.ID]
	if !ok || existing.AdminID != slot.AdminID || existing.Status != domain.SlotStatusAvailable {
		return domain.ErrSlotNotEditable
	}
	f.slots[slot.ID] = slot
	return nil
}

func (f *fakeSlotStore) DeleteAvailable(_ context.Context, slotID, adminID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok || s.AdminID != adminID || s.Status != domain.SlotStatusAvailable {
		return domain.ErrSlotNotEditable
	}
	delete(f.slots, slotID)
	return nil
}

// fakeBookingStore mirrors the booking repository: the order id is unique and
// state transitions are conditional on the current status.
type fakeBookingStore struct {
	mu        sync.Mutex
	bookings  map[string]domain.Booking
	byOrder   map[string]string
	createErr error
}

func newFakeBookingStore(bookings ...domain.Booking) *fakeBookingStore {
	f := &fakeBookingStore{
		bookings: make(map[string]domain.Booking),
		byOrder:  make(map[string]string),
	}
	for _, b := range bookings {
		f.bookings[b.ID] = b
		f.byOrder[b.OrderID] = b.ID
	}
	return f
}

func (f *fakeBookingStore) Create(_ context.Context, b domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byOrder[b.OrderID]; exists {
		return domain.ErrDuplicateOrder
	}
	f.bookings[b.ID] = b
	f.byOrder[b.OrderID] = b.ID
	return nil
}

func (f *fakeBookingStore) GetByOrderID(_ context.Context, orderID string) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byOrder[orderID]
	if !ok {
		return nil, nil
	}
	b := f.bookings[id]
	return &b, nil
}

func (f *fakeBookingStore) ConfirmByOrderID(_ context.Context, orderID, paymentID, signature string) (*domain.Booking, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byOrder[orderID]
	if !ok {
		return nil, false, nil
	}
	b := f.bookings[id]
	if b.Status != domain.BookingStatusPending && b.Status != domain.BookingStatusExpired {
		return &b, false, nil
	}
	b.Status = domain.BookingStatusConfirmed
	b.PaymentID = &paymentID
	b.PaymentSignature = &signature
	f.bookings[id] = b
	return &b, true, nil
}

func (f *fakeBookingStore) CancelByOrderID(_ context.Context, orderID string, to domain.BookingStatus) (*domain.Booking, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byOrder[orderID]
	if !ok {
		return nil, false, nil
	}
	b := f.bookings[id]
	if b.Status != domain.BookingStatusPending {
		return &b, false, nil
	}
	b.Status = to
	f.bookings[id] = b
	return &b, true, nil
}

func (f *fakeBookingStore) ListExpiredPending(_ context.Context, now time.Time) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.Status == domain.BookingStatusPending && !b.ExpiresAt.After(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) MarkExpired(_ context.Context, bookingID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok || b.Status != domain.BookingStatusPending {
		return false, nil
	}
	b.Status = domain.BookingStatusExpired
	f.bookings[bookingID] = b
	return true, nil
}

func (f *fakeBookingStore) ListConfirmedWithSlot(_ context.Context) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.Status == domain.BookingStatusConfirmed && b.SlotID != nil {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) HasActiveForUser(_ context.Context, userID string, kind domain.BookingKind, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.UserID != userID || b.Kind != kind {
			continue
		}
		if b.Status == domain.BookingStatusConfirmed {
			return true, nil
		}
		if b.Status == domain.BookingStatusPending && b.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookingStore) ListByUser(_ context.Context, userID string) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeBookingStore) byOrderID(orderID string) (domain.Booking, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byOrder[orderID]
	if !ok {
		return domain.Booking{}, false
	}
	return f.bookings[id], true
}

var errProviderDown = errors.New("provider unreachable")

type fakeProvider struct {
	mu        sync.Mutex
	next      int
	orders    map[string]payment.Order
	createErr error
	fetchErr  error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{orders: make(map[string]payment.Order)}
}

func (f *fakeProvider) CreateOrder(_ context.Context, in payment.CreateOrderInput) (payment.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return payment.Order{}, f.createErr
	}
	f.next++
	order := payment.Order{
		ID:       fmt.Sprintf("order_%d", f.next),
		Amount:   in.Amount,
		Currency: in.Currency,
		Notes:    in.Notes,
	}
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeProvider) FetchOrder(_ context.Context, orderID string) (payment.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return payment.Order{}, f.fetchErr
	}
	order, ok := f.orders[orderID]
	if !ok {
		return payment.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// seed registers an order as if a previous process had created it.
func (f *fakeProvider) seed(order payment.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[order.ID] = order
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (f *fakeNotifier) Enqueue(msg notify.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
}

func (f *fakeNotifier) sent() []notify.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Message{}, f.messages...)
}

func newTestMetrics() *observability.Metrics {
	return observability.New()
}
