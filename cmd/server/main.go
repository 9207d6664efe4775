package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-ticket-booking/internal/cache"
	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/database"
	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/router"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DSN(), database.Pool{
		MaxOpen:     cfg.DBMaxOpenConns,
		MaxIdle:     cfg.DBMaxIdleConns,
		MaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.WithError(err).Fatal("database: open failed")
	}
	defer db.Close()

	if cfg.CreateSchema {
		if err := database.CreateSchema(ctx, db); err != nil {
			log.WithError(err).Fatal("database: create schema failed")
		}
	}

	// Redis is optional: without it bookings are neither cached nor rate limited.
	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}
	var seatCache service.SeatCache
	if rdb != nil {
		seatCache = cache.NewSeatCache(rdb, cfg.SeatCacheTTL)
	}

	pub, err := newPublisher(cfg.Queue)
	if err != nil {
		log.WithError(err).Fatal("queue")
	}
	// Publishing outlives the signal context so Stop can drain the buffer.
	pubCtx, cancelPub := context.WithCancel(context.Background())
	defer cancelPub()
	dispatcher := queue.NewDispatcher(pub, cfg.Queue, log)
	dispatcher.Start(pubCtx)

	if cfg.Queue.ConsumerEnabled {
		startConsumer(ctx, cfg.Queue, log)
	}

	users := repository.NewUserRepo(db)
	bookings := service.NewBookingService(service.Deps{
		Tx:       repository.NewTxManager(db, cfg.BookingTxTimeout),
		Seats:    repository.NewShowSeatRepo(db),
		Tickets:  repository.NewTicketRepo(db),
		Users:    users,
		Shows:    repository.NewShowRepo(db),
		Cache:    seatCache,
		Notifier: service.NewBookingNotifier(dispatcher, log),
		Log:      log,
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			}).Info("request")
			return nil
		},
	}))

	var bookLimit echo.MiddlewareFunc
	if rdb != nil {
		bookLimit = middleware.NewTokenBucket(cfg.RateLimit, rdb, log)
	}
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users))
	router.RegisterTickets(e, handler.NewTicketHandler(bookings), cfg.JWTSecret, bookLimit)

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	if err := dispatcher.Stop(); err != nil {
		log.WithError(err).Error("queue shutdown")
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if cfg.Env == "prod" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

func newPublisher(q config.QueueConfig) (queue.Publisher, error) {
	switch strings.ToLower(q.Driver) {
	case "rabbitmq", "amqp", "":
		return queue.NewAMQPPublisher(q.AMQPURL, q.Topic), nil
	case "kafka":
		return queue.NewKafkaPublisher(q.KafkaBrokers, q.Topic), nil
	default:
		return nil, errors.New("unknown QUEUE_DRIVER " + q.Driver)
	}
}

// startConsumer runs the booking log consumer until ctx is cancelled.
func startConsumer(ctx context.Context, q config.QueueConfig, log logrus.FieldLogger) {
	sink := queue.NewBookingLog(q.LogDir)
	switch strings.ToLower(q.Driver) {
	case "kafka":
		go queue.ConsumeKafka(ctx, q.KafkaBrokers, q.Topic, q.KafkaGroupID, sink.Handle, log)
	default:
		go queue.ConsumeAMQP(ctx, q.AMQPURL, q.Topic, sink.Handle, log)
	}
}
