package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

// playListItem is the compact list representation: actors and genres are
// flattened to display names.
type playListItem struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Actors      []string `json:"actors"`
	Genres      []string `json:"genres"`
}

// playDetail is the full representation with nested actor/genre objects.
type playDetail struct {
	ID          uint64      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Actors      []actorResp `json:"actors"`
	Genres      []genreResp `json:"genres"`
}

func toPlayListItem(p *model.Play) playListItem {
	item := playListItem{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Actors:      make([]string, len(p.Actors)),
		Genres:      make([]string, len(p.Genres)),
	}
	for i, a := range p.Actors {
		item.Actors[i] = a.FullName()
	}
	for i, g := range p.Genres {
		item.Genres[i] = g.Name
	}
	return item
}

func toPlayDetail(p *model.Play) playDetail {
	d := playDetail{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Actors:      make([]actorResp, len(p.Actors)),
		Genres:      make([]genreResp, len(p.Genres)),
	}
	for i, a := range p.Actors {
		d.Actors[i] = toActorResp(a)
	}
	for i, g := range p.Genres {
		d.Genres[i] = toGenreResp(g)
	}
	return d
}

type playReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ActorIDs    []uint64 `json:"actor_ids"`
	GenreIDs    []uint64 `json:"genre_ids"`
}

func playFromReq(id uint64, req playReq) *model.Play {
	p := &model.Play{ID: id, Title: strings.TrimSpace(req.Title), Description: req.Description}
	for _, aid := range req.ActorIDs {
		p.Actors = append(p.Actors, model.Actor{ID: aid})
	}
	for _, gid := range req.GenreIDs {
		p.Genres = append(p.Genres, model.Genre{ID: gid})
	}
	return p
}

// ListPlays handles GET /v1/theatre/plays (public).  Optional filters:
// genres and actors as comma-separated id lists, title as a case-insensitive
// substring.  Filters combine with AND; a play matches an id list when it
// has at least one of the listed links.
func (h *CatalogHandler) ListPlays(c echo.Context) error {
	genreIDs, err := parseIDList(c.QueryParam("genres"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "genres must be a comma-separated list of ids"})
	}
	actorIDs, err := parseIDList(c.QueryParam("actors"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "actors must be a comma-separated list of ids"})
	}
	filter := repository.PlayFilter{
		GenreIDs: genreIDs,
		ActorIDs: actorIDs,
		Title:    strings.TrimSpace(c.QueryParam("title")),
	}

	page, pageSize := pageParams(c)
	plays, total, err := h.Plays.List(c.Request().Context(), filter, page, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]playListItem, len(plays))
	for i, p := range plays {
		out[i] = toPlayListItem(p)
	}
	return c.JSON(http.StatusOK, listResp{Items: out, Total: total, Page: page, PageSize: pageSize})
}

// GetPlay handles GET /v1/theatre/plays/:id (public).
func (h *CatalogHandler) GetPlay(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	p, err := h.Plays.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrPlayNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "play not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toPlayDetail(p))
}

// CreatePlay handles POST /v1/theatre/plays (staff).  actor_ids/genre_ids
// referencing unknown rows reject the whole payload.
func (h *CatalogHandler) CreatePlay(c echo.Context) error {
	var req playReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	p := playFromReq(0, req)
	if p.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if err := h.Plays.Create(c.Request().Context(), p); err != nil {
		switch err {
		case repository.ErrActorNotFound:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown actor id"})
		case repository.ErrGenreNotFound:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown genre id"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create play"})
	}
	created, err := h.Plays.GetByID(c.Request().Context(), p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusCreated, toPlayDetail(created))
}

// UpdatePlay handles PUT /v1/theatre/plays/:id (staff, full update).  The
// play row and both link sets are replaced in one transaction.
func (h *CatalogHandler) UpdatePlay(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req playReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	p := playFromReq(id, req)
	if p.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	return h.savePlay(c, p)
}

// PatchPlay handles PATCH /v1/theatre/plays/:id (staff, partial update).
// Absent fields, including absent id lists, keep their current values.
func (h *CatalogHandler) PatchPlay(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req struct {
		Title       *string   `json:"title"`
		Description *string   `json:"description"`
		ActorIDs    *[]uint64 `json:"actor_ids"`
		GenreIDs    *[]uint64 `json:"genre_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	p, err := h.Plays.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrPlayNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "play not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
		}
		p.Title = title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.ActorIDs != nil {
		p.Actors = p.Actors[:0]
		for _, aid := range *req.ActorIDs {
			p.Actors = append(p.Actors, model.Actor{ID: aid})
		}
	}
	if req.GenreIDs != nil {
		p.Genres = p.Genres[:0]
		for _, gid := range *req.GenreIDs {
			p.Genres = append(p.Genres, model.Genre{ID: gid})
		}
	}
	return h.savePlay(c, p)
}

func (h *CatalogHandler) savePlay(c echo.Context, p *model.Play) error {
	if err := h.Plays.Update(c.Request().Context(), p); err != nil {
		switch err {
		case repository.ErrPlayNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "play not found"})
		case repository.ErrActorNotFound:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown actor id"})
		case repository.ErrGenreNotFound:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown genre id"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.Plays.GetByID(c.Request().Context(), p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toPlayDetail(updated))
}

const maxImageBytes = 5 << 20

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// UploadPlayImage handles POST /v1/theatre/plays/:id/upload-image (staff).
// The multipart "image" field is sniffed for an image content type, written
// under MediaRoot/plays and referenced from every play representation.
// Re-uploading replaces the reference; the old file stays on disk.
func (h *CatalogHandler) UploadPlayImage(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if _, err := h.Plays.GetByID(c.Request().Context(), id); err != nil {
		if err == repository.ErrPlayNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "play not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file is required"})
	}
	if fh.Size > maxImageBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image exceeds 5 MiB"})
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExts[ext] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported image extension"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read upload"})
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read upload"})
	}
	head = head[:n]
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is not an image"})
	}

	dir := filepath.Join(h.MediaRoot, "plays")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store image"})
	}
	name := fmt.Sprintf("%d_%d%s", id, time.Now().UnixNano(), ext)
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store image"})
	}
	defer dst.Close()
	if _, err := dst.Write(head); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store image"})
	}
	if _, err := io.Copy(dst, src); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store image"})
	}

	if err := h.Plays.UpdateImage(c.Request().Context(), id, "/media/plays/"+name); err != nil {
		if err == repository.ErrPlayNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "play not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.Plays.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toPlayDetail(updated))
}

// DeletePlay handles DELETE /v1/theatre/plays/:id (staff).  Plays with
// scheduled performances cannot be deleted.
func (h *CatalogHandler) DeletePlay(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Plays.Delete(c.Request().Context(), id); err != nil {
		switch err {
		case repository.ErrPlayNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "play not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "play has scheduled performances"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
