package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// BookingLog appends one human readable line per booking notification to
// <Dir>/booking.log.  It stands in for the e-mail a real deployment would
// send.
type BookingLog struct {
	Dir string
	now func() time.Time
}

// NewBookingLog returns a BookingLog writing under dir.
func NewBookingLog(dir string) *BookingLog {
	return &BookingLog{Dir: dir, now: time.Now}
}

// Handle decodes body and appends its line.
func (l *BookingLog) Handle(body []byte) error {
	var n model.BookingNotification
	if err := json.Unmarshal(body, &n); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	// Ensure logs directory exists
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(l.Dir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(l.format(n)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func (l *BookingLog) format(n model.BookingNotification) string {
	return fmt.Sprintf("[%s] Ticket %s | user=%q | email=%s | tickets=%d | movie=%q | theatre=%q | auditorium=%q | show_time=%s\n",
		l.now().UTC().Format(time.RFC3339), n.TicketStatus, n.UserName, n.Email, n.TotalTickets,
		n.MovieName, n.TheatreName, n.AuditoriumName, n.ShowTime)
}

// ConsumeAMQP consumes queueName at url and feeds every delivery to
// handle until ctx is cancelled.  Lost connections are re-dialed with
// exponential backoff.  Messages that fail are rejected without requeue to
// avoid tight redelivery loops.
func ConsumeAMQP(ctx context.Context, url, queueName string, handle func([]byte) error, log logrus.FieldLogger) {
	log = log.WithField("component", "booking-consumer")
	backoff := time.Second
	for ctx.Err() == nil {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.WithError(err).Warnf("failed to dial broker; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, queueName, handle, log)
		_ = conn.Close()
		if err != nil {
			log.WithError(err).Warn("consume loop ended; reconnecting")
			sleep(ctx, 2*time.Second)
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queueName string, handle func([]byte) error, log logrus.FieldLogger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.WithError(err).Warn("set QoS failed")
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handle(d.Body); err != nil {
				log.WithError(err).WithField("message_id", d.MessageId).Error("handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// ConsumeKafka reads topic as member of groupID and feeds every message to
// handle until ctx is cancelled.  Offsets are committed after handling,
// including for messages that failed, which are logged and skipped.
func ConsumeKafka(ctx context.Context, brokers []string, topic, groupID string, handle func([]byte) error, log logrus.FieldLogger) {
	log = log.WithField("component", "booking-consumer")
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
	defer r.Close()

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Warn("fetch failed")
			if !sleep(ctx, 2*time.Second) {
				return
			}
			continue
		}
		if err := handle(m.Value); err != nil {
			log.WithError(err).WithField("offset", m.Offset).Error("handle message failed")
		}
		if err := r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			log.WithError(err).Warn("commit failed")
		}
	}
}

// sleep waits for d or until ctx is done.  It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
