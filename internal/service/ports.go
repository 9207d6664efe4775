package service

import (
	"context"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// Transactor runs fn as one atomic unit of work.  Stores called with the
// context handed to fn take part in the same transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SeatStore is the seat inventory.
type SeatStore interface {
	GetByIDsForUpdate(ctx context.Context, ids []uint64) ([]model.ShowSeat, error)
	ListByShow(ctx context.Context, showID uint64) ([]model.ShowSeat, error)
	CompareAndSetStatus(ctx context.Context, seat *model.ShowSeat, from, to model.SeatStatus) error
}

// TicketStore persists issued tickets.
type TicketStore interface {
	Create(ctx context.Context, t *model.Ticket) error
	GetByID(ctx context.Context, id uint64) (*model.Ticket, error)
	List(ctx context.Context) ([]model.Ticket, error)
	Delete(ctx context.Context, id uint64) error
}

// UserFinder resolves ticket owners.
type UserFinder interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// ShowCatalog resolves a show to its movie, theatre and auditorium.
type ShowCatalog interface {
	GetByID(ctx context.Context, id uint64) (model.Show, error)
}

// SeatCache caches the seat map of a show.  A miss is reported with
// ok == false and a nil error.
type SeatCache interface {
	Get(ctx context.Context, showID uint64) (seats []model.ShowSeat, ok bool, err error)
	Set(ctx context.Context, showID uint64, seats []model.ShowSeat) error
	Invalidate(ctx context.Context, showID uint64) error
}

// Enqueuer accepts an encoded notification for asynchronous delivery.
// It must not block on the broker.
type Enqueuer interface {
	Enqueue(key string, body []byte) error
}
