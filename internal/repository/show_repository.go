package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// ShowRepo reads the show catalog.  Movies, theatres and auditoriums are
// maintained elsewhere; this service only resolves a show to the names
// printed on a ticket.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// GetByID resolves a show together with its movie, auditorium and theatre
// names.  It returns ErrShowNotFound if there is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (model.Show, error) {
	const q = `SELECT s.id, m.name, t.name, a.name, s.start_time
	           FROM shows s
	           JOIN movies m ON m.id = s.movie_id
	           JOIN auditoriums a ON a.id = s.auditorium_id
	           JOIN theatres t ON t.id = a.theatre_id
	           WHERE s.id = ?`
	var s model.Show
	err := conn(ctx, r.db).QueryRowContext(ctx, q, id).Scan(&s.ID, &s.MovieName, &s.TheatreName, &s.AuditoriumName, &s.StartTime)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Show{}, ErrShowNotFound
	}
	if err != nil {
		return model.Show{}, err
	}
	s.StartTime = s.StartTime.UTC()
	return s, nil
}
