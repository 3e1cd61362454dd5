package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/repository"
)

func newTicketHandler(t *testing.T) (*TicketHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTicketHandler(repository.NewTicketRepo(db)), mock
}

func bookContext(e *echo.Echo, body string, userID any) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/v1/theatre/tickets", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set("user_id", userID)
	}
	return c, rec
}

func expectPerformanceLookup(mock sqlmock.Sqlmock, perfID uint64, rows, seats uint32) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT h.`rows`")).
		WithArgs(perfID).
		WillReturnRows(sqlmock.NewRows([]string{"rows", "seats_in_row", "title", "name", "show_time"}).
			AddRow(rows, seats, "Hamlet", "Main Hall", time.Date(2026, 9, 1, 19, 30, 0, 0, time.UTC)))
}

func TestTicketBook(t *testing.T) {
	e := echo.New()

	t.Run("created", func(t *testing.T) {
		h, mock := newTicketHandler(t)
		mock.ExpectBegin()
		expectPerformanceLookup(mock, 3, 10, 12)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tickets")).
			WithArgs(uint64(3), uint64(7), uint32(2), uint32(5)).
			WillReturnResult(sqlmock.NewResult(11, 1))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM tickets WHERE id = ?")).
			WithArgs(uint64(11)).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))
		mock.ExpectCommit()

		// user_id arrives as float64 from JWT claims
		c, rec := bookContext(e, `{"performance_id":3,"row":2,"seat":5}`, float64(7))
		if err := h.Book(c); err != nil {
			t.Fatalf("Book: %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}
		var got repository.TicketDetail
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if got.ID != 11 || got.PlayTitle != "Hamlet" {
			t.Errorf("unexpected body: %+v", got)
		}
	})

	t.Run("seat taken", func(t *testing.T) {
		h, mock := newTicketHandler(t)
		mock.ExpectBegin()
		expectPerformanceLookup(mock, 3, 10, 12)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tickets")).
			WithArgs(uint64(3), uint64(7), uint32(2), uint32(5)).
			WillReturnError(errTest1062)
		mock.ExpectRollback()

		c, rec := bookContext(e, `{"performance_id":3,"row":2,"seat":5}`, float64(7))
		if err := h.Book(c); err != nil {
			t.Fatalf("Book: %v", err)
		}
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("seat out of range", func(t *testing.T) {
		h, mock := newTicketHandler(t)
		mock.ExpectBegin()
		expectPerformanceLookup(mock, 3, 10, 12)
		mock.ExpectRollback()

		c, rec := bookContext(e, `{"performance_id":3,"row":11,"seat":5}`, float64(7))
		if err := h.Book(c); err != nil {
			t.Fatalf("Book: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown performance", func(t *testing.T) {
		h, mock := newTicketHandler(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT h.`rows`")).
			WithArgs(uint64(99)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		c, rec := bookContext(e, `{"performance_id":99,"row":1,"seat":1}`, float64(7))
		if err := h.Book(c); err != nil {
			t.Fatalf("Book: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("missing user in context", func(t *testing.T) {
		h, _ := newTicketHandler(t)
		c, rec := bookContext(e, `{"performance_id":3,"row":1,"seat":1}`, nil)
		if err := h.Book(c); err != nil {
			t.Fatalf("Book: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}

func TestTicketGetOwnership(t *testing.T) {
	e := echo.New()
	h, mock := newTicketHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.id = ? AND t.user_id = ?")).
		WithArgs(uint64(11), uint64(8)).
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/v1/theatre/tickets/11", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/theatre/tickets/:id")
	c.SetParamNames("id")
	c.SetParamValues("11")
	c.Set("user_id", float64(8))

	if err := h.Get(c); err != nil {
		t.Fatalf("Get: %v", err)
	}
	// A foreign ticket must be indistinguishable from a missing one.
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
