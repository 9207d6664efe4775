package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// memStore is an in-memory seat inventory with serializable transactions:
// one transaction runs at a time and a failed one is undone by restoring
// the snapshot taken when it started.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	seats   map[uint64]model.ShowSeat
	tickets map[uint64]model.Ticket
	users   map[uint64]model.User
	shows   map[uint64]model.Show
	nextID  uint64

	// failCASOn makes CompareAndSetStatus fail when moving a seat into
	// the given status.
	failCASOn model.SeatStatus
	// failCreate makes TicketStore.Create fail.
	failCreate error
	commits    int
}

func newMemStore() *memStore {
	return &memStore{
		seats:   map[uint64]model.ShowSeat{},
		tickets: map[uint64]model.Ticket{},
		users:   map[uint64]model.User{},
		shows:   map[uint64]model.Show{},
	}
}

func (m *memStore) addShow(id uint64, movie, theatre, audi string, at time.Time) {
	m.shows[id] = model.Show{ID: id, MovieName: movie, TheatreName: theatre, AuditoriumName: audi, StartTime: at}
}

func (m *memStore) addUser(id uint64, name, email string) {
	m.users[id] = model.User{ID: id, Name: name, Email: email, Role: model.RoleCustomer, PasswordHash: "hash"}
}

func (m *memStore) addSeat(id, showID uint64, label string, st model.SeatStatus) {
	m.seats[id] = model.ShowSeat{ID: id, ShowID: showID, Label: label, Status: st}
}

func (m *memStore) status(id uint64) model.SeatStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seats[id].Status
}

func (m *memStore) ticketCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickets)
}

type txMarker struct{}

func (m *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	seats := make(map[uint64]model.ShowSeat, len(m.seats))
	for k, v := range m.seats {
		seats[k] = v
	}
	tickets := make(map[uint64]model.Ticket, len(m.tickets))
	for k, v := range m.tickets {
		tickets[k] = v
	}
	next := m.nextID
	m.mu.Unlock()

	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		m.mu.Lock()
		m.seats, m.tickets, m.nextID = seats, tickets, next
		m.mu.Unlock()
		return err
	}
	m.mu.Lock()
	m.commits++
	m.mu.Unlock()
	return nil
}

func (m *memStore) GetByIDsForUpdate(ctx context.Context, ids []uint64) ([]model.ShowSeat, error) {
	if ctx.Value(txMarker{}) == nil {
		return nil, errors.New("FOR UPDATE outside transaction")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ShowSeat
	for _, id := range ids {
		if s, ok := m.seats[id]; ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListByShow(_ context.Context, showID uint64) ([]model.ShowSeat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ShowSeat
	for _, s := range m.seats {
		if s.ShowID == showID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CompareAndSetStatus(_ context.Context, seat *model.ShowSeat, from, to model.SeatStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCASOn == to {
		return errors.New("disk full")
	}
	cur, ok := m.seats[seat.ID]
	if !ok || cur.Status != from || cur.Version != seat.Version {
		return repository.ErrConflict
	}
	cur.Status = to
	cur.Version++
	m.seats[seat.ID] = cur
	seat.Status = to
	seat.Version = cur.Version
	return nil
}

func (m *memStore) Create(_ context.Context, t *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	m.nextID++
	t.ID = m.nextID
	cp := *t
	cp.Seats = append([]model.ShowSeat(nil), t.Seats...)
	m.tickets[t.ID] = cp
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uint64) (*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, repository.ErrTicketNotFound
	}
	return &t, nil
}

func (m *memStore) List(_ context.Context) ([]model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[id]; !ok {
		return repository.ErrTicketNotFound
	}
	delete(m.tickets, id)
	return nil
}

// memUsers and memShows adapt memStore to the lookup interfaces, whose
// GetByID signatures clash with TicketStore.
type memUsers struct{ m *memStore }

func (u memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	usr, ok := u.m.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return usr, nil
}

type memShows struct{ m *memStore }

func (s memShows) GetByID(_ context.Context, id uint64) (model.Show, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sh, ok := s.m.shows[id]
	if !ok {
		return model.Show{}, repository.ErrShowNotFound
	}
	return sh, nil
}

// recordingQueue captures enqueued notifications.
type recordingQueue struct {
	mu     sync.Mutex
	keys   []string
	bodies [][]byte
	err    error
}

func (q *recordingQueue) Enqueue(key string, body []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.keys = append(q.keys, key)
	q.bodies = append(q.bodies, body)
	return nil
}

func (q *recordingQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.bodies)
}

// mapCache is a SeatCache backed by a map.
type mapCache struct {
	mu          sync.Mutex
	data        map[uint64][]model.ShowSeat
	invalidated []uint64
	getErr      error
}

func newMapCache() *mapCache { return &mapCache{data: map[uint64][]model.ShowSeat{}} }

func (c *mapCache) Get(_ context.Context, showID uint64) ([]model.ShowSeat, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	s, ok := c.data[showID]
	return s, ok, nil
}

func (c *mapCache) Set(_ context.Context, showID uint64, seats []model.ShowSeat) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[showID] = seats
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, showID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, showID)
	c.invalidated = append(c.invalidated, showID)
	return nil
}
