package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the tables in dependency order.  Catalog tables (movies,
// theatres, auditoriums, shows) are owned by other services in production
// and only created here for local runs and integration environments.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'CUSTOMER',
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS movies (
		id   BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS theatres (
		id   BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS auditoriums (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		theatre_id BIGINT UNSIGNED NOT NULL,
		name       VARCHAR(255) NOT NULL,
		FOREIGN KEY (theatre_id) REFERENCES theatres(id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS shows (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		movie_id      BIGINT UNSIGNED NOT NULL,
		auditorium_id BIGINT UNSIGNED NOT NULL,
		start_time    DATETIME NOT NULL,
		FOREIGN KEY (movie_id) REFERENCES movies(id),
		FOREIGN KEY (auditorium_id) REFERENCES auditoriums(id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS show_seats (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		show_id    BIGINT UNSIGNED NOT NULL,
		label      VARCHAR(16)  NOT NULL,
		status     VARCHAR(16)  NOT NULL DEFAULT 'AVAILABLE',
		version    INT UNSIGNED NOT NULL DEFAULT 0,
		updated_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_show_seat (show_id, label),
		FOREIGN KEY (show_id) REFERENCES shows(id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		show_id    BIGINT UNSIGNED NOT NULL,
		status     VARCHAR(16) NOT NULL,
		created_at DATETIME    NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (show_id) REFERENCES shows(id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS ticket_seats (
		ticket_id    BIGINT UNSIGNED NOT NULL,
		show_seat_id BIGINT UNSIGNED NOT NULL,
		position     INT UNSIGNED    NOT NULL,
		PRIMARY KEY (ticket_id, show_seat_id),
		FOREIGN KEY (ticket_id) REFERENCES tickets(id) ON DELETE CASCADE,
		FOREIGN KEY (show_seat_id) REFERENCES show_seats(id)
	) ENGINE=InnoDB`,
}

// CreateSchema creates every table that does not exist yet.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
