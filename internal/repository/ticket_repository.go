package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// TicketRepo provides persistence for tickets and their seats.  Seats
// booked under a ticket are stored in the ticket_seats table, in the
// order they were requested.  All timestamps are stored in UTC.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// ticketSelect joins a ticket with its owner and the show chain.  Callers
// append the WHERE / ORDER BY clause.
const ticketSelect = `SELECT t.id, t.status, t.created_at,
                             u.id, u.name, u.email, u.role,
                             s.id, m.name, th.name, a.name, s.start_time
                      FROM tickets t
                      JOIN users u ON u.id = t.user_id
                      JOIN shows s ON s.id = t.show_id
                      JOIN movies m ON m.id = s.movie_id
                      JOIN auditoriums a ON a.id = s.auditorium_id
                      JOIN theatres th ON th.id = a.theatre_id`

// Create inserts the ticket and one ticket_seats row per seat.  It
// populates the generated ID on t.  Inside a booking both inserts run on
// the booking transaction.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	db := conn(ctx, r.db)
	const q = `INSERT INTO tickets (user_id, show_id, status, created_at) VALUES (?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, q, t.User.ID, t.Show.ID, t.Status, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	if len(t.Seats) == 0 {
		return nil
	}
	query := `INSERT INTO ticket_seats (ticket_id, show_seat_id, position) VALUES `
	args := make([]any, 0, len(t.Seats)*3)
	for i, s := range t.Seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, t.ID, s.ID, i)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert ticket seats: %w", err)
	}
	return nil
}

// GetByID returns a single ticket with user, show and seats.  It returns
// ErrTicketNotFound when no ticket has the given id.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, ticketSelect+` WHERE t.id = ?`, id)
	if err != nil {
		return nil, err
	}
	tickets, err := r.scanTickets(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, ErrTicketNotFound
	}
	return &tickets[0], nil
}

// List returns every ticket, newest first.  When no tickets exist, an
// empty slice is returned.
func (r *TicketRepo) List(ctx context.Context) ([]model.Ticket, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, ticketSelect+` ORDER BY t.id DESC`)
	if err != nil {
		return nil, err
	}
	return r.scanTickets(ctx, rows)
}

// Delete removes a ticket; ticket_seats rows go with it through the
// foreign key cascade.  Seat statuses are left untouched.
func (r *TicketRepo) Delete(ctx context.Context, id uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// scanTickets reads ticket rows and then populates the seats of all of
// them with a single query.
func (r *TicketRepo) scanTickets(ctx context.Context, rows *sql.Rows) ([]model.Ticket, error) {
	tickets := make([]model.Ticket, 0)
	// Keep track of index by ticket ID for quick lookup
	index := make(map[uint64]int)
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(
			&t.ID, &t.Status, &t.CreatedAt,
			&t.User.ID, &t.User.Name, &t.User.Email, &t.User.Role,
			&t.Show.ID, &t.Show.MovieName, &t.Show.TheatreName, &t.Show.AuditoriumName, &t.Show.StartTime,
		); err != nil {
			rows.Close()
			return nil, err
		}
		t.CreatedAt = t.CreatedAt.UTC()
		t.Show.StartTime = t.Show.StartTime.UTC()
		t.Seats = []model.ShowSeat{}
		index[t.ID] = len(tickets)
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return tickets, nil
	}

	ids := make([]any, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID)
	}
	seatQuery := `SELECT ts.ticket_id, ss.id, ss.show_id, ss.label, ss.status, ss.version, ss.updated_at
	              FROM ticket_seats ts
	              JOIN show_seats ss ON ss.id = ts.show_seat_id
	              WHERE ts.ticket_id IN (` + placeholders(len(ids)) + `)
	              ORDER BY ts.ticket_id, ts.position`
	srows, err := conn(ctx, r.db).QueryContext(ctx, seatQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var ticketID uint64
		var s model.ShowSeat
		if err := srows.Scan(&ticketID, &s.ID, &s.ShowID, &s.Label, &s.Status, &s.Version, &s.UpdatedAt); err != nil {
			return nil, err
		}
		idx, ok := index[ticketID]
		if !ok {
			continue
		}
		tickets[idx].Seats = append(tickets[idx].Seats, s)
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}
