package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/repository"
)

// CatalogHandler bundles the repositories behind the catalog endpoints.
// MediaRoot is the directory uploaded play images are written to; its
// contents are served under /media.
type CatalogHandler struct {
	Genres       *repository.GenreRepo
	Actors       *repository.ActorRepo
	Plays        *repository.PlayRepo
	Halls        *repository.HallRepo
	Performances *repository.PerformanceRepo
	MediaRoot    string
}

func NewCatalogHandler(g *repository.GenreRepo, a *repository.ActorRepo, p *repository.PlayRepo,
	h *repository.HallRepo, pf *repository.PerformanceRepo) *CatalogHandler {
	if g == nil || a == nil || p == nil || h == nil || pf == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Genres: g, Actors: a, Plays: p, Halls: h, Performances: pf, MediaRoot: "media"}
}

// listResp is the shared pagination envelope of every list endpoint.
type listResp struct {
	Items    any   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageParams reads page/page_size query parameters, falling back to defaults
// and clamping page_size.
func pageParams(c echo.Context) (page, pageSize int) {
	page, pageSize = 1, defaultPageSize
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v > 0 {
		pageSize = v
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// getUserID extracts the user_id placed in context by the JWT middleware.
// JWT numeric claims decode as float64, so several representations are
// accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// parseIDList splits a comma-separated id list query parameter.  Empty input
// yields nil; any non-numeric element is an error so the handler can reject
// the request instead of silently ignoring the filter.
func parseIDList(raw string) ([]uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]uint64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
