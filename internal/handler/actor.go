package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

type actorResp struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

func toActorResp(a model.Actor) actorResp {
	return actorResp{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName, FullName: a.FullName()}
}

// ListActors handles GET /v1/theatre/actors (public).
func (h *CatalogHandler) ListActors(c echo.Context) error {
	page, pageSize := pageParams(c)
	items, total, err := h.Actors.List(c.Request().Context(), page, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]actorResp, len(items))
	for i, a := range items {
		out[i] = toActorResp(a)
	}
	return c.JSON(http.StatusOK, listResp{Items: out, Total: total, Page: page, PageSize: pageSize})
}

// GetActor handles GET /v1/theatre/actors/:id (public).
func (h *CatalogHandler) GetActor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	a, err := h.Actors.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrActorNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toActorResp(*a))
}

// CreateActor handles POST /v1/theatre/actors (staff).
func (h *CatalogHandler) CreateActor(c echo.Context) error {
	var body struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	first := strings.TrimSpace(body.FirstName)
	last := strings.TrimSpace(body.LastName)
	if first == "" || last == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name and last_name are required"})
	}
	a := &model.Actor{FirstName: first, LastName: last}
	if err := h.Actors.Create(c.Request().Context(), a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create actor"})
	}
	return c.JSON(http.StatusCreated, toActorResp(*a))
}

// UpdateActor handles PUT /v1/theatre/actors/:id (staff, full update).
func (h *CatalogHandler) UpdateActor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	first := strings.TrimSpace(body.FirstName)
	last := strings.TrimSpace(body.LastName)
	if first == "" || last == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name and last_name are required"})
	}
	a := &model.Actor{ID: id, FirstName: first, LastName: last}
	return h.saveActor(c, a)
}

// PatchActor handles PATCH /v1/theatre/actors/:id (staff, partial update).
func (h *CatalogHandler) PatchActor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	a, err := h.Actors.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrActorNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if body.FirstName != nil {
		if v := strings.TrimSpace(*body.FirstName); v != "" {
			a.FirstName = v
		} else {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name is required"})
		}
	}
	if body.LastName != nil {
		if v := strings.TrimSpace(*body.LastName); v != "" {
			a.LastName = v
		} else {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "last_name is required"})
		}
	}
	return h.saveActor(c, a)
}

func (h *CatalogHandler) saveActor(c echo.Context, a *model.Actor) error {
	if err := h.Actors.Update(c.Request().Context(), a); err != nil {
		if err == repository.ErrActorNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toActorResp(*a))
}

// DeleteActor handles DELETE /v1/theatre/actors/:id (staff).
func (h *CatalogHandler) DeleteActor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Actors.Delete(c.Request().Context(), id); err != nil {
		switch err {
		case repository.ErrActorNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "actor is referenced by plays"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
