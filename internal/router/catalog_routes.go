package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/handler"
	"github.com/iliyamo/theatre-booking/internal/middleware"
	"github.com/iliyamo/theatre-booking/internal/utils"
)

// RegisterCatalog registers the catalog endpoints under /v1/theatre.  Reads
// are public (optionally response-cached); writes require a staff access
// token.  cache may be nil when Redis is not configured.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	pub := e.Group("/v1/theatre")
	if cache != nil {
		pub.Use(cache)
	}
	pub.GET("/genres", h.ListGenres)
	pub.GET("/genres/:id", h.GetGenre)
	pub.GET("/actors", h.ListActors)
	pub.GET("/actors/:id", h.GetActor)
	pub.GET("/plays", h.ListPlays)
	pub.GET("/plays/:id", h.GetPlay)
	pub.GET("/theatre-halls", h.ListHalls)
	pub.GET("/theatre-halls/:id", h.GetHall)
	pub.GET("/performances", h.ListPerformances)
	pub.GET("/performances/:id", h.GetPerformance)

	staff := e.Group("/v1/theatre")
	staff.Use(middleware.JWTAuth(jwtSecret))
	staff.Use(middleware.RequireRole(utils.RoleStaff))

	staff.POST("/genres", h.CreateGenre)
	staff.PUT("/genres/:id", h.UpdateGenre)
	staff.PATCH("/genres/:id", h.PatchGenre)
	staff.DELETE("/genres/:id", h.DeleteGenre)

	staff.POST("/actors", h.CreateActor)
	staff.PUT("/actors/:id", h.UpdateActor)
	staff.PATCH("/actors/:id", h.PatchActor)
	staff.DELETE("/actors/:id", h.DeleteActor)

	staff.POST("/plays", h.CreatePlay)
	staff.PUT("/plays/:id", h.UpdatePlay)
	staff.PATCH("/plays/:id", h.PatchPlay)
	staff.DELETE("/plays/:id", h.DeletePlay)
	staff.POST("/plays/:id/upload-image", h.UploadPlayImage)

	staff.POST("/theatre-halls", h.CreateHall)
	staff.PUT("/theatre-halls/:id", h.UpdateHall)
	staff.PATCH("/theatre-halls/:id", h.PatchHall)
	staff.DELETE("/theatre-halls/:id", h.DeleteHall)

	staff.POST("/performances", h.CreatePerformance)
	staff.PUT("/performances/:id", h.UpdatePerformance)
	staff.PATCH("/performances/:id", h.PatchPerformance)
	staff.DELETE("/performances/:id", h.DeletePerformance)
}
