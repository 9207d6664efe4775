package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// RegisterTickets registers the booking API.  The seat map of a show is
// public so guests can look before signing in; every /v1/tickets route
// requires a valid JWT.  Listing and deleting tickets are ADMIN only,
// reading one ticket is checked against its owner in the handler.
// bookLimit guards POST /v1/tickets and may be nil.
func RegisterTickets(e *echo.Echo, h *handler.TicketHandler, jwtSecret string, bookLimit echo.MiddlewareFunc) {
	e.GET("/v1/shows/:id/seats", h.ShowSeats)

	g := e.Group(
		"/v1/tickets",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)
	if bookLimit != nil {
		g.POST("", h.Book, bookLimit)
	} else {
		g.POST("", h.Book)
	}
	g.GET("", h.List, middleware.RequireRole(model.RoleAdmin))
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete, middleware.RequireRole(model.RoleAdmin))
}
