package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

type genreResp struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func toGenreResp(g model.Genre) genreResp {
	return genreResp{ID: g.ID, Name: g.Name}
}

// ListGenres handles GET /v1/theatre/genres (public).
func (h *CatalogHandler) ListGenres(c echo.Context) error {
	page, pageSize := pageParams(c)
	items, total, err := h.Genres.List(c.Request().Context(), page, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]genreResp, len(items))
	for i, g := range items {
		out[i] = toGenreResp(g)
	}
	return c.JSON(http.StatusOK, listResp{Items: out, Total: total, Page: page, PageSize: pageSize})
}

// GetGenre handles GET /v1/theatre/genres/:id (public).
func (h *CatalogHandler) GetGenre(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	g, err := h.Genres.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrGenreNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toGenreResp(*g))
}

// CreateGenre handles POST /v1/theatre/genres (staff).
func (h *CatalogHandler) CreateGenre(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	g := &model.Genre{Name: name}
	if err := h.Genres.Create(c.Request().Context(), g); err != nil {
		if err == repository.ErrGenreExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "genre name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create genre"})
	}
	return c.JSON(http.StatusCreated, toGenreResp(*g))
}

// UpdateGenre handles PUT /v1/theatre/genres/:id (staff, full update).
func (h *CatalogHandler) UpdateGenre(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	g := &model.Genre{ID: id, Name: name}
	return h.saveGenre(c, g)
}

// PatchGenre handles PATCH /v1/theatre/genres/:id (staff, partial update).
// Absent fields keep their current values.
func (h *CatalogHandler) PatchGenre(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name *string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	g, err := h.Genres.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrGenreNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		g.Name = name
	}
	return h.saveGenre(c, g)
}

func (h *CatalogHandler) saveGenre(c echo.Context, g *model.Genre) error {
	if err := h.Genres.Update(c.Request().Context(), g); err != nil {
		switch err {
		case repository.ErrGenreNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		case repository.ErrGenreExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "genre name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toGenreResp(*g))
}

// DeleteGenre handles DELETE /v1/theatre/genres/:id (staff).  Deleting a
// genre still linked to plays is refused.
func (h *CatalogHandler) DeleteGenre(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Genres.Delete(c.Request().Context(), id); err != nil {
		switch err {
		case repository.ErrGenreNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "genre is referenced by plays"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
