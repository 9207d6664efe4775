package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

var seatCols = []string{"id", "show_id", "label", "status", "version", "updated_at"}

func TestShowSeatRepo_GetByIDsForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 1, 2, 18, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM show_seats WHERE id IN (?, ?, ?) ORDER BY id FOR UPDATE")).
		WithArgs(9, 3, 5).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(3, 7, "A3", "AVAILABLE", 0, now).
			AddRow(9, 7, "A9", "BOOKED", 2, now))

	seats, err := NewShowSeatRepo(db).GetByIDsForUpdate(context.Background(), []uint64{9, 3, 5})
	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.Equal(t, model.ShowSeat{ID: 3, ShowID: 7, Label: "A3", Status: model.SeatAvailable, UpdatedAt: now}, seats[0])
	assert.Equal(t, model.SeatBooked, seats[1].Status)
	assert.Equal(t, uint32(2), seats[1].Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShowSeatRepo_GetByIDsForUpdate_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	seats, err := NewShowSeatRepo(db).GetByIDsForUpdate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, seats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShowSeatRepo_ListByShow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM show_seats WHERE show_id = ? ORDER BY id")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(1, 7, "A1", "AVAILABLE", 0, now).
			AddRow(2, 7, "A2", "LOCKED", 1, now))

	seats, err := NewShowSeatRepo(db).ListByShow(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.Equal(t, "A2", seats[1].Label)
	assert.Equal(t, model.SeatLocked, seats[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShowSeatRepo_CompareAndSetStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE show_seats SET status = ?, version = version + 1 WHERE id = ? AND status = ? AND version = ?")).
		WithArgs("BOOKED", 4, "LOCKED", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	seat := model.ShowSeat{ID: 4, Status: model.SeatLocked, Version: 1}
	require.NoError(t, NewShowSeatRepo(db).CompareAndSetStatus(context.Background(), &seat, model.SeatLocked, model.SeatBooked))
	assert.Equal(t, model.SeatBooked, seat.Status)
	assert.Equal(t, uint32(2), seat.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShowSeatRepo_CompareAndSetStatus_Stale(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE show_seats").
		WithArgs("LOCKED", 4, "AVAILABLE", 0).
		WillReturnResult(sqlmock.NewResult(0, 0))

	seat := model.ShowSeat{ID: 4, Status: model.SeatAvailable}
	err = NewShowSeatRepo(db).CompareAndSetStatus(context.Background(), &seat, model.SeatAvailable, model.SeatLocked)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, model.SeatAvailable, seat.Status)
	assert.Equal(t, uint32(0), seat.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}
