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

type SlotRepository struct {
	pool *pgxpool.Pool
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{pool: pool}
}

func (r *SlotRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const slotColumns = `id, admin_id, start_time, end_time, duration_minutes, price, status, reserved_by, created_at, updated_at`

// ClaimAvailable transitions a slot from available to reserved in one
// conditional update. Losing the race (zero rows) is ErrSlotUnavailable;
// this is the only defense against concurrent double-booking.
func (r *SlotRepository) ClaimAvailable(ctx context.Context, slotID, userID string) (domain.Slot, error) {
	const stmt = `
UPDATE slots
SET status = 'reserved', reserved_by = $2, updated_at = NOW()
WHERE id = $1 AND status = 'available'
RETURNING ` + slotColumns

	slot, err := r.scanSlot(r.queryRow(ctx, stmt, slotID, userID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Slot{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Slot{}, domain.ErrSlotUnavailable
		}
		return domain.Slot{}, fmt.Errorf("claim slot: %w", err)
	}
	return slot, nil
}

// Release reverts a slot to available only if its status still equals from.
// Zero rows affected is not an error: someone else legitimately advanced the
// slot and their transition wins.
func (r *SlotRepository) Release(ctx context.Context, slotID string, from domain.SlotStatus) (bool, error) {
	const stmt = `
UPDATE slots
SET status = 'available', reserved_by = NULL, updated_at = NOW()
WHERE id = $1 AND status = $2`

	tag, err := r.exec(ctx, stmt, slotID, string(from))
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("release slot: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Finalize marks a slot booked regardless of its current status. The
// confirmation path is the final authority; a sweeper may already have raced
// the slot back to available and must still lose.
func (r *SlotRepository) Finalize(ctx context.Context, slotID, userID string) error {
	const stmt = `
UPDATE slots
SET status = 'booked', reserved_by = $2, updated_at = NOW()
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, slotID, userID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("finalize slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSlotNotFound
	}
	return nil
}

// ReleaseStuckReserved frees every slot still reserved whose last update is
// at or before cutoff. Returns the number of slots released.
func (r *SlotRepository) ReleaseStuckReserved(ctx context.Context, cutoff time.Time) (int, error) {
	const stmt = `
UPDATE slots
SET status = 'available', reserved_by = NULL, updated_at = NOW()
WHERE status = 'reserved' AND updated_at <= $1`

	tag, err := r.exec(ctx, stmt, cutoff)
	if err != nil {
		return 0, fmt.Errorf("release stuck reserved: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *SlotRepository) Get(ctx context.Context, slotID string) (domain.Slot, error) {
	const query = `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

	slot, err := r.scanSlot(r.queryRow(ctx, query, slotID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Slot{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Slot{}, domain.ErrSlotNotFound
		}
		return domain.Slot{}, fmt.Errorf("get slot: %w", err)
	}
	return slot, nil
}

// ListAvailable returns available slots, optionally limited to a window.
func (r *SlotRepository) ListAvailable(ctx context.Context, from, to *time.Time) ([]domain.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE status = 'available'`
	args := []any{}
	if from != nil && to != nil {
		query += ` AND start_time >= $1 AND end_time <= $2`
		args = append(args, *from, *to)
	}
	query += ` ORDER BY start_time`

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	defer rows.Close()
	return r.collectSlots(rows)
}

func (r *SlotRepository) ListByAdmin(ctx context.Context, adminID string) ([]domain.Slot, error) {
	const query = `SELECT ` + slotColumns + ` FROM slots WHERE admin_id = $1 ORDER BY start_time`

	rows, err := r.query(ctx, query, adminID)
	if err != nil {
		return nil, fmt.Errorf("list slots by admin: %w", err)
	}
	defer rows.Close()
	return r.collectSlots(rows)
}

// HasOverlap reports whether the admin already has a slot intersecting
// [start, end). excludeID skips the slot being edited; pass "" on create.
func (r *SlotRepository) HasOverlap(ctx context.Context, adminID string, start, end time.Time, excludeID string) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1 FROM slots
	WHERE admin_id = $1 AND start_time < $3 AND end_time > $2
	AND ($4 = '' OR id::text <> $4)
)`

	var exists bool
	if err := r.queryRow(ctx, query, adminID, start, end, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slot overlap: %w", err)
	}
	return exists, nil
}

func (r *SlotRepository) Create(ctx context.Context, slot domain.Slot) error {
	const stmt = `
INSERT INTO slots (id, admin_id, start_time, end_time, duration_minutes, price, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`

	_, err := r.exec(ctx, stmt,
		slot.ID,
		slot.AdminID,
		slot.StartTime,
		slot.EndTime,
		slot.DurationMinutes,
		slot.Price,
		slot.Status,
		slot.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

// UpdateAvailable edits timing/price of a slot only while it is available.
func (r *SlotRepository) UpdateAvailable(ctx context.Context, slot domain.Slot) error {
	const stmt = `
UPDATE slots
SET start_time = $2, end_time = $3, duration_minutes = $4, price = $5, updated_at = NOW()
WHERE id = $1 AND admin_id = $6 AND status = 'available'`

	tag, err := r.exec(ctx, stmt,
		slot.ID, slot.StartTime, slot.EndTime, slot.DurationMinutes, slot.Price, slot.AdminID,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSlotNotEditable
	}
	return nil
}

// DeleteAvailable removes a slot only while it is available.
func (r *SlotRepository) DeleteAvailable(ctx context.Context, slotID, adminID string) error {
	const stmt = `DELETE FROM slots WHERE id = $1 AND admin_id = $2 AND status = 'available'`

	tag, err := r.exec(ctx, stmt, slotID, adminID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSlotNotEditable
	}
	return nil
}

func (r *SlotRepository) scanSlot(row pgx.Row) (domain.Slot, error) {
	var s domain.Slot
	var status string
	err := row.Scan(
		&s.ID, &s.AdminID, &s.StartTime, &s.EndTime, &s.DurationMinutes,
		&s.Price, &status, &s.ReservedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return domain.Slot{}, err
	}
	s.Status = domain.SlotStatus(status)
	return s, nil
}

func (r *SlotRepository) collectSlots(rows pgx.Rows) ([]domain.Slot, error) {
	var out []domain.Slot
	for rows.Next() {
		slot, err := r.scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		out = append(out, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return out, nil
}

func (r *SlotRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *SlotRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *SlotRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
