package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// TicketIssuer turns a locked seat set into a persisted ticket.
type TicketIssuer struct {
	users   UserFinder
	shows   ShowCatalog
	seats   SeatStore
	tickets TicketStore
	now     func() time.Time
}

// NewTicketIssuer wires an issuer.
func NewTicketIssuer(users UserFinder, shows ShowCatalog, seats SeatStore, tickets TicketStore) *TicketIssuer {
	return &TicketIssuer{
		users:   users,
		shows:   shows,
		seats:   seats,
		tickets: tickets,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// FinalizeBooking resolves the user and the show, marks every seat BOOKED
// and stores the ticket.  Seats must already be LOCKED and belong to a
// single show.
func (i *TicketIssuer) FinalizeBooking(ctx context.Context, userID uint64, locked []model.ShowSeat) (*model.Ticket, error) {
	if len(locked) == 0 {
		return nil, ErrNoSeats
	}
	user, err := i.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user %d: %w", userID, err)
	}
	show, err := i.shows.GetByID(ctx, locked[0].ShowID)
	if err != nil {
		return nil, fmt.Errorf("resolve show %d: %w", locked[0].ShowID, err)
	}

	// Payment would be captured here; it is not part of this service.

	for idx := range locked {
		if err := i.seats.CompareAndSetStatus(ctx, &locked[idx], model.SeatLocked, model.SeatBooked); err != nil {
			return nil, translate(err)
		}
	}

	user.PasswordHash = ""
	t := &model.Ticket{
		Status:    model.TicketBooked,
		User:      user,
		Show:      show,
		Seats:     locked,
		CreatedAt: i.now(),
	}
	if err := i.tickets.Create(ctx, t); err != nil {
		return nil, translate(err)
	}
	return t, nil
}
