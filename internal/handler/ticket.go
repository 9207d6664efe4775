package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// Bookings is the part of service.BookingService the HTTP layer uses.
type Bookings interface {
	BookTicket(ctx context.Context, req service.BookingRequest) (*model.Ticket, error)
	ListTickets(ctx context.Context) ([]model.Ticket, error)
	GetTicket(ctx context.Context, id uint64) (*model.Ticket, error)
	DeleteTicket(ctx context.Context, id uint64) error
	ListShowSeats(ctx context.Context, showID uint64) ([]model.ShowSeat, error)
}

// TicketHandler serves /v1/tickets.  Every route runs behind JWTAuth.
type TicketHandler struct {
	Bookings Bookings
}

func NewTicketHandler(b Bookings) *TicketHandler { return &TicketHandler{Bookings: b} }

type bookReq struct {
	UserID  uint64   `json:"user_id"`
	SeatIDs []uint64 `json:"seat_ids"`
}

// Book handles POST /v1/tickets.  Customers book for themselves; a missing
// user_id means the caller.  Admins may book for any user.
func (h *TicketHandler) Book(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	caller, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if req.UserID == 0 {
		req.UserID = caller
	}
	if req.UserID != caller && middleware.Role(c) != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot book for another user"})
	}

	ticket, err := h.Bookings.BookTicket(c.Request().Context(), service.BookingRequest{UserID: req.UserID, SeatIDs: req.SeatIDs})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, ticket)
}

// List handles GET /v1/tickets (admin only).
func (h *TicketHandler) List(c echo.Context) error {
	tickets, err := h.Bookings.ListTickets(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tickets)
}

// Get handles GET /v1/tickets/:id.  Customers only see their own tickets;
// someone else's ticket is reported as missing.
func (h *TicketHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	ticket, err := h.Bookings.GetTicket(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if caller, _ := middleware.UserID(c); ticket.User.ID != caller && middleware.Role(c) != model.RoleAdmin {
		return writeError(c, service.ErrTicketNotFound)
	}
	return c.JSON(http.StatusOK, ticket)
}

// Delete handles DELETE /v1/tickets/:id (admin only).
func (h *TicketHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	if err := h.Bookings.DeleteTicket(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ShowSeats handles GET /v1/shows/:id/seats.  It is public.
func (h *TicketHandler) ShowSeats(c echo.Context) error {
	showID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || showID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	seats, err := h.Bookings.ListShowSeats(c.Request().Context(), showID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"show_id": showID, "seats": seats})
}
