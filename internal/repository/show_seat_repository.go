package repository // repository for show seat persistence

import (
	"context"      // context for managing deadlines
	"database/sql" // sql provides DB interfaces
	"fmt"          // fmt wraps errors with context

	"github.com/iliyamo/movie-ticket-booking/internal/model" // domain types
)

// ShowSeatRepo encapsulates database operations for show_seats.  Methods
// join the caller's transaction when the context carries one.
type ShowSeatRepo struct {
	db *sql.DB
}

// NewShowSeatRepo constructs a ShowSeatRepo given a DB handle.
func NewShowSeatRepo(db *sql.DB) *ShowSeatRepo {
	return &ShowSeatRepo{db: db}
}

const showSeatColumns = `id, show_id, label, status, version, updated_at`

// GetByIDsForUpdate loads the requested seats and takes an exclusive row
// lock on each of them until the surrounding transaction ends.  Rows are
// locked in primary key order so that two transactions over overlapping
// seat sets queue up instead of deadlocking.  Ids that do not exist are
// simply absent from the result; the caller decides whether that is an
// error.
func (r *ShowSeatRepo) GetByIDsForUpdate(ctx context.Context, ids []uint64) ([]model.ShowSeat, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	q := `SELECT ` + showSeatColumns + ` FROM show_seats WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY id FOR UPDATE`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select show seats: %w", err)
	}
	return scanShowSeats(rows)
}

// ListByShow returns every seat of a show ordered by id.  It does not lock.
func (r *ShowSeatRepo) ListByShow(ctx context.Context, showID uint64) ([]model.ShowSeat, error) {
	q := `SELECT ` + showSeatColumns + ` FROM show_seats WHERE show_id = ? ORDER BY id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, showID)
	if err != nil {
		return nil, fmt.Errorf("list show seats: %w", err)
	}
	return scanShowSeats(rows)
}

// CompareAndSetStatus moves a seat from one status to another.  The update
// only applies when the row still has the status and version the caller
// read; otherwise ErrConflict is returned and nothing changes.  On success
// the in-memory seat reflects the new status and version.
func (r *ShowSeatRepo) CompareAndSetStatus(ctx context.Context, seat *model.ShowSeat, from, to model.SeatStatus) error {
	const q = `UPDATE show_seats SET status = ?, version = version + 1 WHERE id = ? AND status = ? AND version = ?`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, to, seat.ID, from, seat.Version)
	if err != nil {
		return fmt.Errorf("update show seat %d: %w", seat.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: seat %d changed concurrently", ErrConflict, seat.ID)
	}
	seat.Status = to
	seat.Version++
	return nil
}

func scanShowSeats(rows *sql.Rows) ([]model.ShowSeat, error) {
	defer rows.Close()
	var seats []model.ShowSeat
	for rows.Next() {
		var s model.ShowSeat
		if err := rows.Scan(&s.ID, &s.ShowID, &s.Label, &s.Status, &s.Version, &s.UpdatedAt); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}
