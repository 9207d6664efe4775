package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// ReservationEngine resolves the requested seats and moves them from
// AVAILABLE to LOCKED.  All of its methods expect to run inside the
// booking transaction.
type ReservationEngine struct {
	seats SeatStore
}

// NewReservationEngine returns an engine over the given seat store.
func NewReservationEngine(seats SeatStore) *ReservationEngine {
	return &ReservationEngine{seats: seats}
}

// FetchSeats loads and row-locks the seats with the given ids.  The result
// follows the order of ids.  ErrSeatNotFound is returned if any id does
// not exist.
func (e *ReservationEngine) FetchSeats(ctx context.Context, ids []uint64) ([]model.ShowSeat, error) {
	found, err := e.seats.GetByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, translate(err)
	}
	byID := make(map[uint64]model.ShowSeat, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}
	seats := make([]model.ShowSeat, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrSeatNotFound, id)
		}
		seats = append(seats, s)
	}
	return seats, nil
}

// ValidateAvailability rejects seat sets spanning more than one show and
// seat sets with any seat that is not AVAILABLE.
func (e *ReservationEngine) ValidateAvailability(seats []model.ShowSeat) error {
	if len(seats) == 0 {
		return ErrNoSeats
	}
	showID := seats[0].ShowID
	for _, s := range seats {
		if s.ShowID != showID {
			return fmt.Errorf("%w: seat %d is for show %d, not %d", ErrMixedShowRequest, s.ID, s.ShowID, showID)
		}
	}
	for _, s := range seats {
		if !s.IsAvailable() {
			return fmt.Errorf("%w: seat %s is %s", ErrSeatsUnavailable, s.Label, s.Status)
		}
	}
	return nil
}

// LockSeats marks every seat LOCKED.  The first failed write stops the
// loop; the caller must roll back so that earlier locks are undone.
func (e *ReservationEngine) LockSeats(ctx context.Context, seats []model.ShowSeat) error {
	for i := range seats {
		if err := e.seats.CompareAndSetStatus(ctx, &seats[i], model.SeatAvailable, model.SeatLocked); err != nil {
			return translate(err)
		}
	}
	return nil
}
