package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

type hallResp struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Rows       uint32 `json:"rows"`
	SeatsInRow uint32 `json:"seats_in_row"`
	Capacity   uint32 `json:"capacity"`
}

func toHallResp(h model.TheatreHall) hallResp {
	return hallResp{ID: h.ID, Name: h.Name, Rows: h.Rows, SeatsInRow: h.SeatsInRow, Capacity: h.Capacity()}
}

// ListHalls handles GET /v1/theatre/theatre-halls (public).
func (h *CatalogHandler) ListHalls(c echo.Context) error {
	page, pageSize := pageParams(c)
	items, total, err := h.Halls.List(c.Request().Context(), page, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]hallResp, len(items))
	for i, hall := range items {
		out[i] = toHallResp(hall)
	}
	return c.JSON(http.StatusOK, listResp{Items: out, Total: total, Page: page, PageSize: pageSize})
}

// GetHall handles GET /v1/theatre/theatre-halls/:id (public).
func (h *CatalogHandler) GetHall(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	hall, err := h.Halls.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrHallNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "theatre hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toHallResp(*hall))
}

type hallReq struct {
	Name       string `json:"name"`
	Rows       uint32 `json:"rows"`
	SeatsInRow uint32 `json:"seats_in_row"`
}

// maxHallDimension bounds rows and seats_in_row so the uint32 capacity
// product cannot wrap.
const maxHallDimension = 1000

func validateHallReq(req hallReq) (model.TheatreHall, string) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.TheatreHall{}, "name is required"
	}
	if req.Rows < 1 || req.SeatsInRow < 1 {
		return model.TheatreHall{}, "rows and seats_in_row must be positive"
	}
	if req.Rows > maxHallDimension || req.SeatsInRow > maxHallDimension {
		return model.TheatreHall{}, "rows and seats_in_row must be at most 1000"
	}
	return model.TheatreHall{Name: name, Rows: req.Rows, SeatsInRow: req.SeatsInRow}, ""
}

// CreateHall handles POST /v1/theatre/theatre-halls (staff).
func (h *CatalogHandler) CreateHall(c echo.Context) error {
	var req hallReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	hall, msg := validateHallReq(req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := h.Halls.Create(c.Request().Context(), &hall); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create theatre hall"})
	}
	return c.JSON(http.StatusCreated, toHallResp(hall))
}

// UpdateHall handles PUT /v1/theatre/theatre-halls/:id (staff, full update).
func (h *CatalogHandler) UpdateHall(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req hallReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	hall, msg := validateHallReq(req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	hall.ID = id
	return h.saveHall(c, &hall)
}

// PatchHall handles PATCH /v1/theatre/theatre-halls/:id (staff, partial).
func (h *CatalogHandler) PatchHall(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req struct {
		Name       *string `json:"name"`
		Rows       *uint32 `json:"rows"`
		SeatsInRow *uint32 `json:"seats_in_row"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	hall, err := h.Halls.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrHallNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "theatre hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		hall.Name = name
	}
	if req.Rows != nil {
		if *req.Rows < 1 || *req.Rows > maxHallDimension {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "rows must be between 1 and 1000"})
		}
		hall.Rows = *req.Rows
	}
	if req.SeatsInRow != nil {
		if *req.SeatsInRow < 1 || *req.SeatsInRow > maxHallDimension {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats_in_row must be between 1 and 1000"})
		}
		hall.SeatsInRow = *req.SeatsInRow
	}
	return h.saveHall(c, hall)
}

func (h *CatalogHandler) saveHall(c echo.Context, hall *model.TheatreHall) error {
	if err := h.Halls.Update(c.Request().Context(), hall); err != nil {
		if err == repository.ErrHallNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "theatre hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toHallResp(*hall))
}

// DeleteHall handles DELETE /v1/theatre/theatre-halls/:id (staff).  Halls
// with scheduled performances cannot be deleted.
func (h *CatalogHandler) DeleteHall(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Halls.Delete(c.Request().Context(), id); err != nil {
		switch err {
		case repository.ErrHallNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "theatre hall not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "theatre hall has scheduled performances"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
