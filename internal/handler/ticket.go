package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/queue"
	"github.com/iliyamo/theatre-booking/internal/repository"
	queuepublisher "github.com/iliyamo/theatre-booking/internal/service"
)

// TicketHandler serves the authenticated ticket endpoints.
type TicketHandler struct {
	Tickets *repository.TicketRepo
}

func NewTicketHandler(t *repository.TicketRepo) *TicketHandler {
	if t == nil {
		panic("nil repository passed to NewTicketHandler")
	}
	return &TicketHandler{Tickets: t}
}

type bookReq struct {
	PerformanceID uint64 `json:"performance_id"`
	Row           uint32 `json:"row"`
	Seat          uint32 `json:"seat"`
}

// Book handles POST /v1/theatre/tickets.  The repository runs the existence
// check, bounds check and insert in one transaction; of two concurrent
// requests for the same seat exactly one succeeds.  A ticket.booked event is
// published best-effort after the commit.
func (h *TicketHandler) Book(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.PerformanceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "performance_id is required"})
	}

	ticket, err := h.Tickets.Book(c.Request().Context(), userID, req.PerformanceID, req.Row, req.Seat)
	if err != nil {
		switch err {
		case repository.ErrPerformanceNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performance not found"})
		case repository.ErrSeatOutOfRange:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "row or seat outside the hall bounds"})
		case repository.ErrSeatTaken:
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat already booked for this performance"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	ev := queue.TicketBookedEvent{
		TicketID:        ticket.ID,
		UserID:          userID,
		PerformanceID:   ticket.PerformanceID,
		PlayTitle:       ticket.PlayTitle,
		TheatreHallName: ticket.TheatreHallName,
		ShowTime:        ticket.ShowTime.UTC().Format(time.RFC3339),
		Row:             ticket.Row,
		Seat:            ticket.Seat,
		BookedAt:        ticket.CreatedAt.UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queuepublisher.PublishTicketBooked(ctx, ev) // best-effort
	}()

	return c.JSON(http.StatusCreated, ticket)
}

// List handles GET /v1/theatre/tickets: the caller's own tickets, newest
// first.
func (h *TicketHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, pageSize := pageParams(c)
	items, total, err := h.Tickets.ListByUser(c.Request().Context(), userID, page, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, listResp{Items: items, Total: total, Page: page, PageSize: pageSize})
}

// Get handles GET /v1/theatre/tickets/:id.  Another user's ticket is
// indistinguishable from a missing one.
func (h *TicketHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ticket, err := h.Tickets.GetByIDForUser(c.Request().Context(), id, userID)
	if err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, ticket)
}
