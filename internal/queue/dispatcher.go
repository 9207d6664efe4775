// Package queue delivers booking notifications to the message broker.
// Bookings hand encoded payloads to a Dispatcher, which buffers them in
// memory and publishes them from worker goroutines, so a slow broker never
// holds up a booking transaction.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/metrics"
)

var (
	// ErrQueueFull is returned by Enqueue when the buffer is exhausted.
	ErrQueueFull = errors.New("notification queue full")
	// ErrDispatcherStopped is returned by Enqueue after Stop.
	ErrDispatcherStopped = errors.New("notification dispatcher stopped")
)

// Publisher writes one message to the broker.
type Publisher interface {
	Publish(ctx context.Context, key string, body []byte) error
	Close() error
}

type message struct {
	key  string
	body []byte
}

// Dispatcher is a bounded in-memory queue drained by a fixed number of
// workers.  Each message is retried with exponential backoff up to
// MaxAttempts times and then dropped with an error log.
type Dispatcher struct {
	pub         Publisher
	ch          chan message
	workers     int
	maxAttempts int
	backoff     time.Duration
	log         logrus.FieldLogger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher builds a dispatcher for pub from the queue settings.
func NewDispatcher(pub Publisher, cfg config.QueueConfig, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	d := &Dispatcher{
		pub:         pub,
		workers:     cfg.Workers,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		log:         log.WithField("component", "dispatcher"),
	}
	if d.workers < 1 {
		d.workers = 1
	}
	if d.maxAttempts < 1 {
		d.maxAttempts = 1
	}
	buffer := cfg.Buffer
	if buffer < 1 {
		buffer = 1
	}
	d.ch = make(chan message, buffer)
	return d
}

// Start launches the workers.  ctx bounds publishing; cancel it only after
// Stop has returned if queued messages should still go out.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for m := range d.ch {
				d.deliver(ctx, m)
			}
		}()
	}
}

// Enqueue queues a message without blocking.
func (d *Dispatcher) Enqueue(key string, body []byte) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrDispatcherStopped
	}
	select {
	case d.ch <- message{key: key, body: body}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new messages, waits for the workers to drain the buffer and
// closes the publisher.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.ch)
	d.mu.Unlock()

	d.wg.Wait()
	return d.pub.Close()
}

func (d *Dispatcher) deliver(ctx context.Context, m message) {
	wait := d.backoff
	var err error
retry:
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if err = d.pub.Publish(ctx, m.key, m.body); err == nil {
			metrics.NotificationsTotal.WithLabelValues(metrics.NotifyPublished).Inc()
			return
		}
		d.log.WithError(err).WithFields(logrus.Fields{"key": m.key, "attempt": attempt}).Warn("publish failed")
		if attempt == d.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			break retry
		case <-time.After(wait):
			wait *= 2
		}
	}
	metrics.NotificationsTotal.WithLabelValues(metrics.NotifyPublishFailed).Inc()
	d.log.WithError(err).WithField("key", m.key).Error("notification dropped after retries")
}
