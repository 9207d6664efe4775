package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// writeError maps service errors onto HTTP responses.  Unknown errors are
// logged and answered with 500 without leaking their text.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrSeatNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found", "detail": err.Error()})
	case errors.Is(err, service.ErrSeatsUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seats unavailable", "detail": err.Error()})
	case errors.Is(err, service.ErrTransactionConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking conflicted with a concurrent booking", "retryable": true})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, service.ErrShowNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
	case errors.Is(err, service.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	case errors.Is(err, service.ErrMixedShowRequest),
		errors.Is(err, service.ErrDuplicateSeat),
		errors.Is(err, service.ErrNoSeats):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "timed out, try again"})
	default:
		c.Logger().Errorf("unhandled error on %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
