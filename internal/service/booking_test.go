package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/metrics"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

var showTime = time.Date(2026, 5, 1, 19, 30, 0, 0, time.UTC)

type fixture struct {
	svc   *BookingService
	store *memStore
	queue *recordingQueue
	cache *mapCache
	hook  *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := newMemStore()
	st.addShow(1, "Interstellar", "Cineplex Downtown", "Audi 3", showTime)
	st.addShow(2, "Arrival", "Cineplex Downtown", "Audi 1", showTime.Add(3*time.Hour))
	st.addUser(7, "Ada Lovelace", "ada@example.com")
	st.addUser(8, "Alan Turing", "alan@example.com")
	st.addSeat(101, 1, "A1", model.SeatAvailable)
	st.addSeat(102, 1, "A2", model.SeatAvailable)
	st.addSeat(103, 1, "A3", model.SeatAvailable)
	st.addSeat(104, 1, "A4", model.SeatBooked)
	st.addSeat(105, 1, "A5", model.SeatLocked)
	st.addSeat(201, 2, "B1", model.SeatAvailable)

	logger, hook := test.NewNullLogger()
	q := &recordingQueue{}
	c := newMapCache()
	svc := NewBookingService(Deps{
		Tx:       st,
		Seats:    st,
		Tickets:  st,
		Users:    memUsers{st},
		Shows:    memShows{st},
		Cache:    c,
		Notifier: NewBookingNotifier(q, logger),
		Log:      logger,
	})
	return &fixture{svc: svc, store: st, queue: q, cache: c, hook: hook}
}

func TestBookTicket_AllAvailable(t *testing.T) {
	f := newFixture(t)
	before := testutil.ToFloat64(metrics.BookingsTotal.WithLabelValues(metrics.ResultSuccess))

	ticket, err := f.svc.BookTicket(context.Background(), BookingRequest{UserID: 7, SeatIDs: []uint64{101, 102}})
	require.NoError(t, err)

	assert.NotZero(t, ticket.ID)
	assert.Equal(t, model.TicketBooked, ticket.Status)
	assert.Equal(t, uint64(7), ticket.User.ID)
	assert.Empty(t, ticket.User.PasswordHash)
	assert.Equal(t, uint64(1), ticket.Show.ID)
	assert.Equal(t, []uint64{101, 102}, ticket.SeatIDs())
	for _, s := range ticket.Seats {
		assert.Equal(t, model.SeatBooked, s.Status)
	}
	assert.Equal(t, model.SeatBooked, f.store.status(101))
	assert.Equal(t, model.SeatBooked, f.store.status(102))
	assert.Equal(t, model.SeatAvailable, f.store.status(103))
	assert.Equal(t, 1, f.store.ticketCount())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.BookingsTotal.WithLabelValues(metrics.ResultSuccess)))

	require.Equal(t, 1, f.queue.count())
	var n model.BookingNotification
	require.NoError(t, json.Unmarshal(f.queue.bodies[0], &n))
	assert.Equal(t, 2, n.TotalTickets)
	assert.Equal(t, "BOOKED", n.TicketStatus)
	assert.Equal(t, "Ada Lovelace", n.UserName)
	assert.Equal(t, "ada@example.com", n.Email)
	assert.Equal(t, "Interstellar", n.MovieName)
	assert.Equal(t, "Cineplex Downtown", n.TheatreName)
	assert.Equal(t, "Audi 3", n.AuditoriumName)
	assert.Equal(t, "2026-05-01T19:30:00Z", n.ShowTime)
	assert.Equal(t, []uint64{1}, f.cache.invalidated)
}

func TestBookTicket_RepeatIsUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := BookingRequest{UserID: 7, SeatIDs: []uint64{101, 102}}

	_, err := f.svc.BookTicket(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.BookTicket(ctx, req)
	assert.ErrorIs(t, err, ErrSeatsUnavailable)
	assert.Equal(t, 1, f.store.ticketCount())
	assert.Equal(t, 1, f.queue.count())
}

func TestBookTicket_UnknownSeat(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BookTicket(context.Background(), BookingRequest{UserID: 7, SeatIDs: []uint64{999}})
	assert.ErrorIs(t, err, ErrSeatNotFound)

	_, err = f.svc.BookTicket(context.Background(), BookingRequest{UserID: 7, SeatIDs: []uint64{101, 999}})
	assert.ErrorIs(t, err, ErrSeatNotFound)
	assert.Equal(t, model.SeatAvailable, f.store.status(101))
	assert.Zero(t, f.store.ticketCount())
	assert.Zero(t, f.queue.count())
}

func TestBookTicket_UnavailableLeavesSeatsUntouched(t *testing.T) {
	for _, unavailable := range []uint64{104, 105} {
		f := newFixture(t)

		_, err := f.svc.BookTicket(context.Background(), BookingRequest{UserID: 7, SeatIDs: []uint64{101, unavailable, 102}})
		assert.ErrorIs(t, err, ErrSeatsUnavailable)
		assert.Equal(t, model.SeatAvailable, f.store.status(101))
		assert.Equal(t, model.SeatAvailable, f.store.status(102))
		assert.Equal(t, uint32(0), f.store.seats[101].Version)
		assert.Zero(t, f.store.ticketCount())
		assert.Empty(t, f.cache.invalidated)
	}
}

func TestBookTicket_RollbackAfterLock(t *testing.T) {
	cases := map[string]struct {
		req    BookingRequest
		setup  func(*memStore)
		target error
	}{
		"unknown user": {
			req:    BookingRequest{UserID: 99, SeatIDs: []uint64{101, 102}},
			target: ErrUserNotFound,
		},
		"booking write fails": {
			req:   BookingRequest{UserID: 7, SeatIDs: []uint64{101, 102}},
			setup: func(m *memStore) { m.failCASOn = model.SeatBooked },
		},
		"ticket insert fails": {
			req:   BookingRequest{UserID: 7, SeatIDs: []uint64{101, 102}},
			setup: func(m *memStore) { m.failCreate = errors.New("insert failed") },
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			if tc.setup != nil {
				tc.setup(f.store)
			}

			_, err := f.svc.BookTicket(context.Background(), tc.req)
			require.Error(t, err)
			if tc.target != nil {
				assert.ErrorIs(t, err, tc.target)
			}
			assert.Equal(t, model.SeatAvailable, f.store.status(101))
			assert.Equal(t, model.SeatAvailable, f.store.status(102))
			assert.Zero(t, f.store.ticketCount())
			assert.Zero(t, f.queue.count())
		})
	}
}

// conflictingSeats loses every compare-and-swap, as if another
// transaction had changed the row in between.
type conflictingSeats struct{ *memStore }

func (c conflictingSeats) CompareAndSetStatus(context.Context, *model.ShowSeat, model.SeatStatus, model.SeatStatus) error {
	return repository.ErrConflict
}

func TestBookTicket_ConflictIsRetryable(t *testing.T) {
	f := newFixture(t)
	svc := NewBookingService(Deps{
		Tx:       f.store,
		Seats:    conflictingSeats{f.store},
		Tickets:  f.store,
		Users:    memUsers{f.store},
		Shows:    memShows{f.store},
		Notifier: NewBookingNotifier(f.queue, logrus.New()),
	})

	_, err := svc.BookTicket(context.Background(), BookingRequest{UserID: 7, SeatIDs: []uint64{101}})
	assert.ErrorIs(t, err, ErrTransactionConflict)
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Equal(t, model.SeatAvailable, f.store.status(101))
}

func TestBookTicket_RequestShape(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.BookTicket(ctx, BookingRequest{UserID: 7})
	assert.ErrorIs(t, err, ErrNoSeats)

	_, err = f.svc.BookTicket(ctx, BookingRequest{UserID: 7, SeatIDs: []uint64{101, 102, 101}})
	assert.ErrorIs(t, err, ErrDuplicateSeat)

	_, err = f.svc.BookTicket(ctx, BookingRequest{UserID: 7, SeatIDs: []uint64{101, 201}})
	assert.ErrorIs(t, err, ErrMixedShowRequest)

	assert.Equal(t, model.SeatAvailable, f.store.status(101))
	assert.Equal(t, model.SeatAvailable, f.store.status(201))
	assert.Zero(t, f.store.commits)
}

func TestBookTicket_ConcurrentSameSeats(t *testing.T) {
	f := newFixture(t)
	const attempts = 50

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		others    []error
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			seats := []uint64{101, 102}
			if i%2 == 1 {
				seats = []uint64{103, 102}
			}
			_, err := f.svc.BookTicket(context.Background(), BookingRequest{UserID: 7 + uint64(i%2), SeatIDs: seats})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			others = append(others, err)
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	for _, err := range others {
		assert.True(t, errors.Is(err, ErrSeatsUnavailable) || errors.Is(err, ErrTransactionConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, f.store.ticketCount())
	assert.Equal(t, model.SeatBooked, f.store.status(102))
	assert.Equal(t, 1, f.queue.count())
}

func TestBookTicket_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked, err := f.svc.BookTicket(ctx, BookingRequest{UserID: 8, SeatIDs: []uint64{103, 101, 102}})
	require.NoError(t, err)

	got, err := f.svc.GetTicket(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), got.User.ID)
	assert.ElementsMatch(t, []uint64{101, 102, 103}, got.SeatIDs())
	assert.Equal(t, model.TicketBooked, got.Status)

	all, err := f.svc.ListTickets(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, booked.ID, all[0].ID)
}

func TestBookTicket_NotificationFailureKeepsBooking(t *testing.T) {
	f := newFixture(t)
	f.queue.err = errors.New("queue full")
	before := testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues(metrics.NotifyDropped))

	ticket, err := f.svc.BookTicket(context.Background(), BookingRequest{UserID: 7, SeatIDs: []uint64{101}})
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.Equal(t, model.SeatBooked, f.store.status(101))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues(metrics.NotifyDropped)))

	var warned bool
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "booking notification dropped" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestGetTicket_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetTicket(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestDeleteTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket, err := f.svc.BookTicket(ctx, BookingRequest{UserID: 7, SeatIDs: []uint64{101}})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTicket(ctx, ticket.ID))
	assert.ErrorIs(t, f.svc.DeleteTicket(ctx, ticket.ID), ErrTicketNotFound)
	assert.Equal(t, model.SeatBooked, f.store.status(101))
}

func TestListShowSeats_ReadThrough(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seats, err := f.svc.ListShowSeats(ctx, 1)
	require.NoError(t, err)
	require.Len(t, seats, 5)
	assert.Equal(t, "A1", seats[0].Label)

	f.cache.data[1] = []model.ShowSeat{{ID: 101, ShowID: 1, Label: "cached"}}
	seats, err = f.svc.ListShowSeats(ctx, 1)
	require.NoError(t, err)
	require.Len(t, seats, 1)
	assert.Equal(t, "cached", seats[0].Label)

	_, err = f.svc.BookTicket(ctx, BookingRequest{UserID: 7, SeatIDs: []uint64{101}})
	require.NoError(t, err)
	seats, err = f.svc.ListShowSeats(ctx, 1)
	require.NoError(t, err)
	require.Len(t, seats, 5)
	assert.Equal(t, model.SeatBooked, seats[0].Status)
}

func TestListShowSeats_CacheErrorFallsBack(t *testing.T) {
	f := newFixture(t)
	f.cache.getErr = errors.New("redis down")

	seats, err := f.svc.ListShowSeats(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, seats, 1)
	assert.Equal(t, "B1", seats[0].Label)
}

func TestListShowSeats_UnknownShow(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListShowSeats(context.Background(), 77)
	assert.ErrorIs(t, err, ErrShowNotFound)
}
