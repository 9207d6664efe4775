package model

import "time"

// SeatStatus is the booking state of a seat for one show.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatLocked    SeatStatus = "LOCKED"
	SeatBooked    SeatStatus = "BOOKED"
)

// ShowSeat is a single bookable seat for one show.  There is one
// show_seat record for every seat of the auditorium when a show is
// scheduled.  Status only moves forward within a booking attempt
// (AVAILABLE -> LOCKED -> BOOKED) and every write bumps Version so
// that concurrent writers can be detected with a compare-and-swap.
//
// Fields:
//  ID        – primary key identifier.
//  ShowID    – the show to which this seat belongs.
//  Label     – row and number as printed on the ticket (e.g. "A7").
//  Status    – AVAILABLE, LOCKED or BOOKED.
//  Version   – optimistic locking counter.
//  UpdatedAt – timestamp when the record was last updated.
type ShowSeat struct {
	ID        uint64     `json:"id"`         // show_seats.id
	ShowID    uint64     `json:"show_id"`    // show_seats.show_id
	Label     string     `json:"label"`      // show_seats.label
	Status    SeatStatus `json:"status"`     // show_seats.status
	Version   uint32     `json:"-"`          // show_seats.version
	UpdatedAt time.Time  `json:"updated_at"` // show_seats.updated_at
}

// IsAvailable reports whether the seat can be selected by a new booking.
func (s ShowSeat) IsAvailable() bool {
	return s.Status == SeatAvailable
}
