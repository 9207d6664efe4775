package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-ticket-booking/internal/metrics"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// BookingNotifier derives the booking summary from a ticket and hands it
// to the notification queue.  It only runs after the booking committed.
type BookingNotifier struct {
	out     Enqueuer
	marshal func(v any) ([]byte, error)
	log     logrus.FieldLogger
}

// NewBookingNotifier returns a notifier that enqueues JSON payloads on out.
func NewBookingNotifier(out Enqueuer, log logrus.FieldLogger) *BookingNotifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BookingNotifier{out: out, marshal: json.Marshal, log: log}
}

// Build projects a ticket onto the notification payload.
func (n *BookingNotifier) Build(t *model.Ticket) model.BookingNotification {
	return model.BookingNotification{
		UserName:       t.User.Name,
		Email:          t.User.Email,
		TotalTickets:   len(t.Seats),
		TicketStatus:   string(t.Status),
		MovieName:      t.Show.MovieName,
		TheatreName:    t.Show.TheatreName,
		AuditoriumName: t.Show.AuditoriumName,
		ShowTime:       t.Show.StartTime.UTC().Format(time.RFC3339),
	}
}

// Encode serializes a notification as a flat JSON object.
func (n *BookingNotifier) Encode(b model.BookingNotification) ([]byte, error) {
	body, err := n.marshal(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotificationEncoding, err)
	}
	return body, nil
}

// Notify builds, encodes and enqueues the notification for t.  Errors are
// logged, counted and returned; they never say anything about the
// booking, which is already stored.
func (n *BookingNotifier) Notify(ctx context.Context, t *model.Ticket) error {
	entry := n.log.WithFields(logrus.Fields{"ticket_id": t.ID, "user_id": t.User.ID})
	body, err := n.Encode(n.Build(t))
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(metrics.NotifyEncodeFailed).Inc()
		entry.WithError(err).Error("booking notification not encoded")
		return err
	}
	if err := n.out.Enqueue(strconv.FormatUint(t.ID, 10), body); err != nil {
		metrics.NotificationsTotal.WithLabelValues(metrics.NotifyDropped).Inc()
		entry.WithError(err).Warn("booking notification dropped")
		return err
	}
	metrics.NotificationsTotal.WithLabelValues(metrics.NotifyEnqueued).Inc()
	return nil
}
