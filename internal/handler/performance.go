package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

type performanceReq struct {
	PlayID        uint64 `json:"play_id"`
	TheatreHallID uint64 `json:"theatre_hall_id"`
	ShowTime      string `json:"show_time"` // RFC3339
}

func performanceFromReq(id uint64, req performanceReq) (*model.Performance, string) {
	if req.PlayID == 0 || req.TheatreHallID == 0 {
		return nil, "play_id and theatre_hall_id are required"
	}
	showTime, err := time.Parse(time.RFC3339, req.ShowTime)
	if err != nil {
		return nil, "show_time must be RFC3339"
	}
	return &model.Performance{
		ID:            id,
		PlayID:        req.PlayID,
		TheatreHallID: req.TheatreHallID,
		ShowTime:      showTime.UTC(),
	}, ""
}

// ListPerformances handles GET /v1/theatre/performances (public).
func (h *CatalogHandler) ListPerformances(c echo.Context) error {
	page, pageSize := pageParams(c)
	items, total, err := h.Performances.List(c.Request().Context(), page, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, listResp{Items: items, Total: total, Page: page, PageSize: pageSize})
}

// GetPerformance handles GET /v1/theatre/performances/:id (public).
func (h *CatalogHandler) GetPerformance(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	d, err := h.Performances.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrPerformanceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performance not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, d)
}

// CreatePerformance handles POST /v1/theatre/performances (staff).  Unknown
// play or hall ids reject the payload.
func (h *CatalogHandler) CreatePerformance(c echo.Context) error {
	var req performanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	p, msg := performanceFromReq(0, req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := h.Performances.Create(c.Request().Context(), p); err != nil {
		switch err {
		case repository.ErrPlayNotFound:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown play id"})
		case repository.ErrHallNotFound:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown theatre hall id"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create performance"})
	}
	created, err := h.Performances.GetByID(c.Request().Context(), p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdatePerformance handles PUT /v1/theatre/performances/:id (staff, full).
func (h *CatalogHandler) UpdatePerformance(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req performanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	p, msg := performanceFromReq(id, req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	return h.savePerformance(c, p)
}

// PatchPerformance handles PATCH /v1/theatre/performances/:id (staff,
// partial).  Absent fields keep their current values.
func (h *CatalogHandler) PatchPerformance(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req struct {
		PlayID        *uint64 `json:"play_id"`
		TheatreHallID *uint64 `json:"theatre_hall_id"`
		ShowTime      *string `json:"show_time"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	current, err := h.Performances.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrPerformanceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performance not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	p := &model.Performance{
		ID:            id,
		PlayID:        current.PlayID,
		TheatreHallID: current.TheatreHallID,
		ShowTime:      current.ShowTime,
	}
	if req.PlayID != nil {
		p.PlayID = *req.PlayID
	}
	if req.TheatreHallID != nil {
		p.TheatreHallID = *req.TheatreHallID
	}
	if req.ShowTime != nil {
		showTime, err := time.Parse(time.RFC3339, *req.ShowTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_time must be RFC3339"})
		}
		p.ShowTime = showTime.UTC()
	}
	return h.savePerformance(c, p)
}

func (h *CatalogHandler) savePerformance(c echo.Context, p *model.Performance) error {
	if err := h.Performances.Update(c.Request().Context(), p); err != nil {
		switch err {
		case repository.ErrPerformanceNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performance not found"})
		case repository.ErrPlayNotFound:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown play id"})
		case repository.ErrHallNotFound:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown theatre hall id"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.Performances.GetByID(c.Request().Context(), p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, updated)
}

// DeletePerformance handles DELETE /v1/theatre/performances/:id (staff).
// Performances with booked tickets cannot be deleted.
func (h *CatalogHandler) DeletePerformance(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Performances.Delete(c.Request().Context(), id); err != nil {
		switch err {
		case repository.ErrPerformanceNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performance not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "performance has booked tickets"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
