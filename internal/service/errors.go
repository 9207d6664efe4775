package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// Booking rejections.  None of them leaves any seat mutated.
var (
	ErrSeatNotFound     = errors.New("seat not found")
	ErrSeatsUnavailable = errors.New("one or more seats are not available")
	ErrMixedShowRequest = errors.New("seats belong to different shows")
	ErrDuplicateSeat    = errors.New("duplicate seat id in request")
	ErrNoSeats          = errors.New("no seats requested")
)

// ErrTransactionConflict means the booking lost a race with a concurrent
// transaction and was rolled back.  Retrying the whole booking is safe.
var ErrTransactionConflict = errors.New("transaction conflict")

// ErrNotificationEncoding means the booking summary could not be
// serialized.  The booking itself has already committed.
var ErrNotificationEncoding = errors.New("notification encoding failed")

// Lookup failures shared with the repository layer.
var (
	ErrUserNotFound   = repository.ErrUserNotFound
	ErrTicketNotFound = repository.ErrTicketNotFound
	ErrShowNotFound   = repository.ErrShowNotFound
)

// translate maps store level conflicts onto ErrTransactionConflict and
// leaves everything else untouched.
func translate(err error) error {
	if err == nil || errors.Is(err, ErrTransactionConflict) {
		return err
	}
	if errors.Is(err, repository.ErrConflict) {
		return fmt.Errorf("%w: %w", ErrTransactionConflict, err)
	}
	return err
}
