// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/handler"
)

// RegisterRoutes registers routes that carry no authentication at all: the
// liveness probe and the uploaded media files.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.Static("/media", "media")
}
