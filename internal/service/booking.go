// Package service implements the booking protocol.  A booking fetches and
// row-locks the requested seats, checks that they are all AVAILABLE, moves
// them to LOCKED, then to BOOKED while the ticket is written, all in one
// serializable transaction.  The notification is produced after commit.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-ticket-booking/internal/metrics"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// BookingRequest asks for the seats SeatIDs to be booked for UserID.
type BookingRequest struct {
	UserID  uint64   `json:"user_id"`
	SeatIDs []uint64 `json:"seat_ids"`
}

// Validate checks the request shape before any store access.
func (r BookingRequest) Validate() error {
	if len(r.SeatIDs) == 0 {
		return ErrNoSeats
	}
	seen := make(map[uint64]struct{}, len(r.SeatIDs))
	for _, id := range r.SeatIDs {
		if id == 0 {
			return ErrSeatNotFound
		}
		if _, dup := seen[id]; dup {
			return ErrDuplicateSeat
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Deps groups the collaborators of BookingService.  Cache may be nil.
type Deps struct {
	Tx       Transactor
	Seats    SeatStore
	Tickets  TicketStore
	Users    UserFinder
	Shows    ShowCatalog
	Cache    SeatCache
	Notifier *BookingNotifier
	Log      logrus.FieldLogger
}

// BookingService is the entry point for bookings and ticket reads.
type BookingService struct {
	tx       Transactor
	engine   *ReservationEngine
	issuer   *TicketIssuer
	notifier *BookingNotifier
	seats    SeatStore
	tickets  TicketStore
	shows    ShowCatalog
	cache    SeatCache
	log      logrus.FieldLogger
}

// NewBookingService wires the reservation engine and the ticket issuer
// over the given stores.
func NewBookingService(d Deps) *BookingService {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BookingService{
		tx:       d.Tx,
		engine:   NewReservationEngine(d.Seats),
		issuer:   NewTicketIssuer(d.Users, d.Shows, d.Seats, d.Tickets),
		notifier: d.Notifier,
		seats:    d.Seats,
		tickets:  d.Tickets,
		shows:    d.Shows,
		cache:    d.Cache,
		log:      log,
	}
}

// BookTicket books req.SeatIDs for req.UserID and returns the new ticket.
// Either every seat ends BOOKED under the returned ticket or nothing
// changes.  The notification is enqueued after commit and its failure does
// not fail the booking.
func (s *BookingService) BookTicket(ctx context.Context, req BookingRequest) (*model.Ticket, error) {
	start := time.Now()
	defer func() { metrics.BookingDuration.Observe(time.Since(start).Seconds()) }()

	entry := s.log.WithFields(logrus.Fields{"user_id": req.UserID, "seat_ids": req.SeatIDs})
	if err := req.Validate(); err != nil {
		metrics.BookingsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return nil, err
	}

	var ticket *model.Ticket
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		seats, err := s.engine.FetchSeats(ctx, req.SeatIDs)
		if err != nil {
			return err
		}
		if err := s.engine.ValidateAvailability(seats); err != nil {
			return err
		}
		if err := s.engine.LockSeats(ctx, seats); err != nil {
			return err
		}
		ticket, err = s.issuer.FinalizeBooking(ctx, req.UserID, seats)
		return err
	})
	if err != nil {
		err = translate(err)
		metrics.BookingsTotal.WithLabelValues(resultOf(err)).Inc()
		entry.WithError(err).Info("booking rejected")
		return nil, err
	}
	metrics.BookingsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	entry.WithField("ticket_id", ticket.ID).Info("ticket booked")

	s.invalidateSeatMap(ctx, ticket.Show.ID)
	if s.notifier != nil {
		_ = s.notifier.Notify(ctx, ticket)
	}
	return ticket, nil
}

// ListTickets returns all tickets.
func (s *BookingService) ListTickets(ctx context.Context) ([]model.Ticket, error) {
	return s.tickets.List(ctx)
}

// GetTicket returns one ticket or ErrTicketNotFound.
func (s *BookingService) GetTicket(ctx context.Context, id uint64) (*model.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// DeleteTicket removes a ticket record.  Its seats stay BOOKED.
func (s *BookingService) DeleteTicket(ctx context.Context, id uint64) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("ticket_id", id).Info("ticket deleted")
	return nil
}

// ListShowSeats returns the seat map of a show, served from the cache when
// possible.  Cache failures fall back to the store.
func (s *BookingService) ListShowSeats(ctx context.Context, showID uint64) ([]model.ShowSeat, error) {
	if s.cache != nil {
		seats, ok, err := s.cache.Get(ctx, showID)
		switch {
		case err != nil:
			metrics.SeatCacheTotal.WithLabelValues("error").Inc()
			s.log.WithError(err).WithField("show_id", showID).Warn("seat cache read failed")
		case ok:
			metrics.SeatCacheTotal.WithLabelValues("hit").Inc()
			return seats, nil
		default:
			metrics.SeatCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	if _, err := s.shows.GetByID(ctx, showID); err != nil {
		return nil, err
	}
	seats, err := s.seats.ListByShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	if seats == nil {
		seats = []model.ShowSeat{}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, showID, seats); err != nil {
			s.log.WithError(err).WithField("show_id", showID).Warn("seat cache write failed")
		}
	}
	return seats, nil
}

func (s *BookingService) invalidateSeatMap(ctx context.Context, showID uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, showID); err != nil {
		s.log.WithError(err).WithField("show_id", showID).Warn("seat cache invalidation failed")
	}
}

func resultOf(err error) string {
	switch {
	case errors.Is(err, ErrSeatsUnavailable):
		return metrics.ResultUnavailable
	case errors.Is(err, ErrSeatNotFound), errors.Is(err, ErrUserNotFound), errors.Is(err, ErrShowNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, ErrTransactionConflict):
		return metrics.ResultConflict
	case errors.Is(err, ErrMixedShowRequest), errors.Is(err, ErrDuplicateSeat), errors.Is(err, ErrNoSeats):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
