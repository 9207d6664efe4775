package model

import "time"

// TicketStatus is the lifecycle state of a ticket.  Booking only ever
// produces TicketBooked.
type TicketStatus string

const TicketBooked TicketStatus = "BOOKED"

// Ticket records a completed booking.  It binds one user to a set of
// seats of a single show.  Seats are referenced through the
// ticket_seats table and keep living in show_seats independently of
// the ticket.
//
// Fields:
//  ID        – store assigned identifier.
//  Status    – always BOOKED for tickets produced by a booking.
//  User      – the owner of the ticket.
//  Show      – the show the seats belong to.
//  Seats     – the seats booked under this ticket.
//  CreatedAt – creation timestamp (UTC).
type Ticket struct {
	ID        uint64       `json:"id"`         // tickets.id
	Status    TicketStatus `json:"status"`     // tickets.status
	User      User         `json:"user"`       // tickets.user_id
	Show      Show         `json:"show"`       // tickets.show_id
	Seats     []ShowSeat   `json:"seats"`      // ticket_seats
	CreatedAt time.Time    `json:"created_at"` // tickets.created_at
}

// SeatIDs returns the ids of the ticket's seats in stored order.
func (t Ticket) SeatIDs() []uint64 {
	ids := make([]uint64, 0, len(t.Seats))
	for _, s := range t.Seats {
		ids = append(ids, s.ID)
	}
	return ids
}
