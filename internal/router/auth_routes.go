package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/handler"
	"github.com/iliyamo/theatre-booking/internal/middleware"
)

// RegisterAuth registers the user/session endpoints under /v1/users.
// Registration, token issuing, token refresh and logout are reachable
// without a session; /me requires a valid access token.  Logout stays
// outside the JWT middleware so a client holding only a refresh token can
// still terminate its session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/users")
	g.POST("/registration", a.Register)
	g.POST("/token", a.Token)
	g.POST("/token/refresh", a.TokenRefresh)
	g.POST("/logout", a.Logout)

	me := e.Group("/v1/users")
	me.Use(middleware.JWTAuth(jwtSecret))
	me.GET("/me", a.Me)
}
