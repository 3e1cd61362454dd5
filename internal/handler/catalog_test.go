package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/repository"
)

func newCatalogHandler(t *testing.T) (*CatalogHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewCatalogHandler(
		repository.NewGenreRepo(db),
		repository.NewActorRepo(db),
		repository.NewPlayRepo(db),
		repository.NewHallRepo(db),
		repository.NewPerformanceRepo(db),
	), mock
}

func TestListPlaysFilterValidation(t *testing.T) {
	e := echo.New()
	h, _ := newCatalogHandler(t)

	tests := []struct {
		name  string
		query string
	}{
		{"junk genre ids", "genres=1,abc"},
		{"junk actor ids", "actors=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/theatre/plays?"+tt.query, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if err := h.ListPlays(c); err != nil {
				t.Fatalf("ListPlays: %v", err)
			}
			// Junk filter values are rejected, not silently ignored.
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestListGenres(t *testing.T) {
	e := echo.New()
	h, mock := newCatalogHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM genres")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM genres ORDER BY id LIMIT ? OFFSET ?")).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "Drama").
			AddRow(2, "Comedy"))

	req := httptest.NewRequest(http.MethodGet, "/v1/theatre/genres", nil)
	rec := httptest.NewRecorder()
	if err := h.ListGenres(e.NewContext(req, rec)); err != nil {
		t.Fatalf("ListGenres: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got struct {
		Items    []genreResp `json:"items"`
		Total    int64       `json:"total"`
		Page     int         `json:"page"`
		PageSize int         `json:"page_size"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Total != 2 || len(got.Items) != 2 || got.Page != 1 || got.PageSize != 20 {
		t.Errorf("unexpected envelope: %+v", got)
	}
	if got.Items[0].Name != "Drama" {
		t.Errorf("items[0] = %+v", got.Items[0])
	}
}

func TestCreateHallValidation(t *testing.T) {
	e := echo.New()
	h, _ := newCatalogHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"zero rows", `{"name":"Small","rows":0,"seats_in_row":10}`},
		{"zero seats", `{"name":"Small","rows":5,"seats_in_row":0}`},
		{"empty name", `{"name":"  ","rows":5,"seats_in_row":10}`},
		{"rows above cap", `{"name":"Huge","rows":100000,"seats_in_row":10}`},
		{"seats above cap", `{"name":"Huge","rows":10,"seats_in_row":100000}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/theatre/theatre-halls", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			if err := h.CreateHall(e.NewContext(req, rec)); err != nil {
				t.Fatalf("CreateHall: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCreatePerformanceValidation(t *testing.T) {
	e := echo.New()
	h, _ := newCatalogHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad show_time", `{"play_id":1,"theatre_hall_id":2,"show_time":"tomorrow evening"}`},
		{"missing refs", `{"show_time":"2026-09-01T19:30:00Z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/theatre/performances", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			if err := h.CreatePerformance(e.NewContext(req, rec)); err != nil {
				t.Fatalf("CreatePerformance: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

// expectPlayLookup queues the select plus both hydrate queries that one
// PlayRepo.GetByID call issues.
func expectPlayLookup(mock sqlmock.Sqlmock, id uint64, image string) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, image FROM plays WHERE id = ?")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "image"}).
			AddRow(id, "Hamlet", "A prince hesitates.", image))
	mock.ExpectQuery(regexp.QuoteMeta("FROM play_actors pa")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"play_id", "id", "first_name", "last_name"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM play_genres pg")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"play_id", "id", "name"}))
}

func multipartImage(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func uploadContext(t *testing.T, e *echo.Echo, body *bytes.Buffer, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/theatre/plays/1/upload-image", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/theatre/plays/:id/upload-image")
	c.SetParamNames("id")
	c.SetParamValues("1")
	return c, rec
}

func TestUploadPlayImage(t *testing.T) {
	e := echo.New()

	t.Run("stores and references the image", func(t *testing.T) {
		h, mock := newCatalogHandler(t)
		h.MediaRoot = t.TempDir()

		expectPlayLookup(mock, 1, "")
		mock.ExpectExec(regexp.QuoteMeta("UPDATE plays SET image = ? WHERE id = ?")).
			WithArgs(sqlmock.AnyArg(), uint64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectPlayLookup(mock, 1, "/media/plays/1_1.png")

		body, ct := multipartImage(t, "poster.png", pngBytes)
		c, rec := uploadContext(t, e, body, ct)
		if err := h.UploadPlayImage(c); err != nil {
			t.Fatalf("UploadPlayImage: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		var got playDetail
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if !strings.HasPrefix(got.Image, "/media/plays/") {
			t.Errorf("image = %q, want /media/plays/ reference", got.Image)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})

	t.Run("rejects a payload that is not an image", func(t *testing.T) {
		h, mock := newCatalogHandler(t)
		h.MediaRoot = t.TempDir()

		expectPlayLookup(mock, 1, "")
		body, ct := multipartImage(t, "poster.jpg", []byte("definitely not an image"))
		c, rec := uploadContext(t, e, body, ct)
		if err := h.UploadPlayImage(c); err != nil {
			t.Fatalf("UploadPlayImage: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects an unsupported extension", func(t *testing.T) {
		h, mock := newCatalogHandler(t)
		h.MediaRoot = t.TempDir()

		expectPlayLookup(mock, 1, "")
		body, ct := multipartImage(t, "poster.exe", pngBytes)
		c, rec := uploadContext(t, e, body, ct)
		if err := h.UploadPlayImage(c); err != nil {
			t.Fatalf("UploadPlayImage: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects a request without a file", func(t *testing.T) {
		h, mock := newCatalogHandler(t)

		expectPlayLookup(mock, 1, "")
		c, rec := uploadContext(t, e, bytes.NewBuffer(nil), echo.MIMEApplicationJSON)
		if err := h.UploadPlayImage(c); err != nil {
			t.Fatalf("UploadPlayImage: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown play", func(t *testing.T) {
		h, mock := newCatalogHandler(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, image FROM plays WHERE id = ?")).
			WithArgs(uint64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "image"}))

		body, ct := multipartImage(t, "poster.png", pngBytes)
		c, rec := uploadContext(t, e, body, ct)
		if err := h.UploadPlayImage(c); err != nil {
			t.Fatalf("UploadPlayImage: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestPatchGenreKeepsCurrentValues(t *testing.T) {
	e := echo.New()
	h, mock := newCatalogHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM genres WHERE id = ?")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Drama"))
	// Empty PATCH body: the update writes the unchanged name back.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE genres SET name = ? WHERE id = ?")).
		WithArgs("Drama", uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPatch, "/v1/theatre/genres/1", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/theatre/genres/:id")
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.PatchGenre(c); err != nil {
		t.Fatalf("PatchGenre: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got genreResp
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Name != "Drama" {
		t.Errorf("name = %q, want Drama", got.Name)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
