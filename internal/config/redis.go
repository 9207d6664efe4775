package config

// Redis backs the seat map cache and the booking rate limiter.  Neither is
// required for correctness: when the server cannot be reached the
// constructor returns nil and callers run without them.

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisConfig lists the connection settings.  Addr is used unless both
// Host and Port are set.
type RedisConfig struct {
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT"`
	Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
	TLS      bool   `env:"REDIS_TLS" env-default:"false"`
}

// NewRedisClient instantiates a Redis client from the environment and pings
// it with a short timeout.  The returned client is nil if the server is not
// reachable.
func NewRedisClient() *redis.Client {
	var rc RedisConfig
	if err := cleanenv.ReadEnv(&rc); err != nil {
		logrus.WithError(err).Warn("redis: invalid configuration, running without redis")
		return nil
	}
	addr := rc.Addr
	if rc.Host != "" && rc.Port != "" {
		addr = rc.Host + ":" + rc.Port
	}
	var tlsConf *tls.Config
	if rc.TLS {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  rc.Password,
		DB:        rc.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).WithField("addr", addr).Warn("redis: ping failed, running without redis")
		_ = client.Close()
		return nil
	}
	return client
}
