package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bharatTiffin/elitemeet-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const bookingColumns = `id, user_id, user_name, user_email, purpose, kind, slot_id, amount, currency, status, order_id, payment_id, payment_signature, expires_at, created_at, updated_at`

func (r *BookingRepository) Create(ctx context.Context, b domain.Booking) error {
	const stmt = `
INSERT INTO bookings (id, user_id, user_name, user_email, purpose, kind, slot_id, amount, currency, status, order_id, payment_id, payment_signature, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)`

	_, err := r.exec(ctx, stmt,
		b.ID, b.UserID, b.UserName, b.UserEmail, b.Purpose, b.Kind, b.SlotID,
		b.Amount, b.Currency, b.Status, b.OrderID, b.PaymentID, b.PaymentSignature,
		b.ExpiresAt, b.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateOrder
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE order_id = $1`

	b, err := r.scanBooking(r.queryRow(ctx, query, orderID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by order id: %w", err)
	}
	return &b, nil
}

// ConfirmByOrderID transitions a booking to confirmed, recording the payment
// reference and signature. Expired bookings are eligible too: confirmation
// takes precedence over expiry once the payment has landed. Returns the
// confirmed booking and whether this call performed the transition; false
// with a non-nil booking means a previous delivery already handled it.
func (r *BookingRepository) ConfirmByOrderID(ctx context.Context, orderID, paymentID, signature string) (*domain.Booking, bool, error) {
	const stmt = `
UPDATE bookings
SET status = 'confirmed', payment_id = $2, payment_signature = $3, updated_at = NOW()
WHERE order_id = $1 AND status IN ('pending', 'expired')
RETURNING ` + bookingColumns

	b, err := r.scanBooking(r.queryRow(ctx, stmt, orderID, paymentID, signature))
	if err == nil {
		return &b, true, nil
	}
	if err != pgx.ErrNoRows {
		return nil, false, fmt.Errorf("confirm booking: %w", err)
	}

	existing, err := r.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// CancelByOrderID transitions a pending booking to the given terminal status.
// Terminal bookings are untouched; the returned bool reports whether this
// call changed anything.
func (r *BookingRepository) CancelByOrderID(ctx context.Context, orderID string, to domain.BookingStatus) (*domain.Booking, bool, error) {
	const stmt = `
UPDATE bookings
SET status = $2, updated_at = NOW()
WHERE order_id = $1 AND status = 'pending'
RETURNING ` + bookingColumns

	b, err := r.scanBooking(r.queryRow(ctx, stmt, orderID, string(to)))
	if err == nil {
		return &b, true, nil
	}
	if err != pgx.ErrNoRows {
		return nil, false, fmt.Errorf("cancel booking: %w", err)
	}

	existing, err := r.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// ListExpiredPending returns pending bookings whose deadline has passed.
func (r *BookingRepository) ListExpiredPending(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE status = 'pending' AND expires_at <= $1`

	rows, err := r.query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list expired pending: %w", err)
	}
	defer rows.Close()
	return r.collectBookings(rows)
}

// MarkExpired expires one pending booking; zero rows means a confirmation or
// cancellation got there first, which is fine.
func (r *BookingRepository) MarkExpired(ctx context.Context, bookingID string) (bool, error) {
	const stmt = `
UPDATE bookings
SET status = 'expired', updated_at = NOW()
WHERE id = $1 AND status = 'pending'`

	tag, err := r.exec(ctx, stmt, bookingID)
	if err != nil {
		return false, fmt.Errorf("mark booking expired: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListConfirmedWithSlot returns confirmed bookings that reference a slot,
// for the reconciliation pass.
func (r *BookingRepository) ListConfirmedWithSlot(ctx context.Context) ([]domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE status = 'confirmed' AND slot_id IS NOT NULL`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list confirmed bookings: %w", err)
	}
	defer rows.Close()
	return r.collectBookings(rows)
}

// HasActiveForUser reports whether the user already holds a pending or
// confirmed booking of the given kind.
func (r *BookingRepository) HasActiveForUser(ctx context.Context, userID string, kind domain.BookingKind, now time.Time) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1 FROM bookings
	WHERE user_id = $1 AND kind = $2
	AND (status = 'confirmed' OR (status = 'pending' AND expires_at > $3))
)`

	var exists bool
	if err := r.queryRow(ctx, query, userID, string(kind), now).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active booking: %w", err)
	}
	return exists, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by user: %w", err)
	}
	defer rows.Close()
	return r.collectBookings(rows)
}

func (r *BookingRepository) scanBooking(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	var status, kind string
	err := row.Scan(
		&b.ID, &b.UserID, &b.UserName, &b.UserEmail, &b.Purpose, &kind, &b.SlotID,
		&b.Amount, &b.Currency, &status, &b.OrderID, &b.PaymentID, &b.PaymentSignature,
		&b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	b.Kind = domain.BookingKind(kind)
	return b, nil
}

func (r *BookingRepository) collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	var out []domain.Booking
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return out, nil
}

func (r *BookingRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *BookingRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *BookingRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
