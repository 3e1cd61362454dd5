package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/handler"
	"github.com/iliyamo/theatre-booking/internal/middleware"
)

// RegisterTickets registers the ticket endpoints.  Any authenticated user
// can book and view their own tickets; there is no delete route because
// bookings are permanent.
func RegisterTickets(e *echo.Echo, t *handler.TicketHandler, jwtSecret string) {
	g := e.Group("/v1/theatre/tickets")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("", t.Book)
	g.GET("", t.List)
	g.GET("/:id", t.Get)
}
