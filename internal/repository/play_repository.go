package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// ErrPlayNotFound indicates that a play lookup found no row.
var ErrPlayNotFound = errors.New("play not found")

// PlayFilter carries the optional query parameters of the play listing.
// Id slices filter to plays having at least one matching genre/actor; Title
// is a case-insensitive substring match.  Dimensions compose with AND.
type PlayFilter struct {
	GenreIDs []uint64
	ActorIDs []uint64
	Title    string
}

// PlayRepo manages persistence for plays and their actor/genre links.
type PlayRepo struct {
	db *sql.DB
}

func NewPlayRepo(db *sql.DB) *PlayRepo { return &PlayRepo{db: db} }

// DB exposes the underlying sql.DB for callers that need transactions
// spanning multiple repositories.
func (r *PlayRepo) DB() *sql.DB { return r.db }

// Create inserts a play and its actor/genre links in one transaction.
// Unknown actor or genre ids abort the transaction with ErrActorNotFound or
// ErrGenreNotFound so the handler can reject the payload.
func (r *PlayRepo) Create(ctx context.Context, p *model.Play) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO plays (title, description) VALUES (?, ?)",
		p.Title, p.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	if err := r.replaceLinksTx(ctx, tx, p); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update overwrites the play row and replaces both link tables atomically.
func (r *PlayRepo) Update(ctx context.Context, p *model.Play) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"UPDATE plays SET title = ?, description = ? WHERE id = ?",
		p.Title, p.Description, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM plays WHERE id = ?", p.ID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrPlayNotFound
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM play_actors WHERE play_id = ?", p.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM play_genres WHERE play_id = ?", p.ID); err != nil {
		return err
	}
	if err := r.replaceLinksTx(ctx, tx, p); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// replaceLinksTx bulk-inserts play_actors and play_genres rows for p after
// verifying every referenced id exists.
func (r *PlayRepo) replaceLinksTx(ctx context.Context, tx *sql.Tx, p *model.Play) error {
	if len(p.Actors) > 0 {
		ids := make([]uint64, len(p.Actors))
		for i, a := range p.Actors {
			ids[i] = a.ID
		}
		ok, err := allExistTx(ctx, tx, "actors", ids)
		if err != nil {
			return err
		}
		if !ok {
			return ErrActorNotFound
		}
		query := "INSERT INTO play_actors (play_id, actor_id) VALUES "
		args := make([]interface{}, 0, len(ids)*2)
		for i, id := range ids {
			if i > 0 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, p.ID, id)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	if len(p.Genres) > 0 {
		ids := make([]uint64, len(p.Genres))
		for i, g := range p.Genres {
			ids[i] = g.ID
		}
		ok, err := allExistTx(ctx, tx, "genres", ids)
		if err != nil {
			return err
		}
		if !ok {
			return ErrGenreNotFound
		}
		query := "INSERT INTO play_genres (play_id, genre_id) VALUES "
		args := make([]interface{}, 0, len(ids)*2)
		for i, id := range ids {
			if i > 0 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, p.ID, id)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

// allExistTx reports whether every id has a row in the named table.
func allExistTx(ctx context.Context, tx *sql.Tx, table string, ids []uint64) (bool, error) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := "SELECT COUNT(DISTINCT id) FROM " + table + " WHERE id IN (" + strings.Join(placeholders, ",") + ")"
	var n int
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return false, err
	}
	return n == len(dedupe(ids)), nil
}

func dedupe(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// GetByID returns a play with its actors and genres hydrated.
func (r *PlayRepo) GetByID(ctx context.Context, id uint64) (*model.Play, error) {
	var p model.Play
	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, description, image FROM plays WHERE id = ?", id).
		Scan(&p.ID, &p.Title, &p.Description, &p.Image)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayNotFound
		}
		return nil, err
	}
	plays := []*model.Play{&p}
	if err := r.hydrateLinks(ctx, plays); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns one page of plays matching the filter, ordered by title then
// id for stable output, together with the total match count.  Actors and
// genres are hydrated for every returned play.
func (r *PlayRepo) List(ctx context.Context, f PlayFilter, page, pageSize int) ([]*model.Play, int64, error) {
	where := []string{}
	args := []any{}

	if len(f.GenreIDs) > 0 {
		placeholders := make([]string, len(f.GenreIDs))
		for i, id := range f.GenreIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		where = append(where,
			"EXISTS (SELECT 1 FROM play_genres pg WHERE pg.play_id = p.id AND pg.genre_id IN ("+
				strings.Join(placeholders, ",")+"))")
	}
	if len(f.ActorIDs) > 0 {
		placeholders := make([]string, len(f.ActorIDs))
		for i, id := range f.ActorIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		where = append(where,
			"EXISTS (SELECT 1 FROM play_actors pa WHERE pa.play_id = p.id AND pa.actor_id IN ("+
				strings.Join(placeholders, ",")+"))")
	}
	if f.Title != "" {
		where = append(where, "LOWER(p.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.Title)+"%")
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := "SELECT COUNT(*) FROM plays p WHERE " + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := "SELECT p.id, p.title, p.description, p.image FROM plays p WHERE " + cond +
		" ORDER BY p.title, p.id LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*model.Play, 0, pageSize)
	for rows.Next() {
		p := new(model.Play)
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Image); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.hydrateLinks(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// hydrateLinks fills Actors and Genres for all given plays with one query
// per link table.
func (r *PlayRepo) hydrateLinks(ctx context.Context, plays []*model.Play) error {
	if len(plays) == 0 {
		return nil
	}
	index := make(map[uint64]*model.Play, len(plays))
	placeholders := make([]string, 0, len(plays))
	args := make([]interface{}, 0, len(plays))
	for _, p := range plays {
		p.Actors = []model.Actor{}
		p.Genres = []model.Genre{}
		index[p.ID] = p
		placeholders = append(placeholders, "?")
		args = append(args, p.ID)
	}
	in := strings.Join(placeholders, ",")

	actorQ := `SELECT pa.play_id, a.id, a.first_name, a.last_name
	           FROM play_actors pa
	           JOIN actors a ON a.id = pa.actor_id
	           WHERE pa.play_id IN (` + in + `)
	           ORDER BY pa.play_id, a.id`
	arows, err := r.db.QueryContext(ctx, actorQ, args...)
	if err != nil {
		return err
	}
	defer arows.Close()
	for arows.Next() {
		var playID uint64
		var a model.Actor
		if err := arows.Scan(&playID, &a.ID, &a.FirstName, &a.LastName); err != nil {
			return err
		}
		if p, ok := index[playID]; ok {
			p.Actors = append(p.Actors, a)
		}
	}
	if err := arows.Err(); err != nil {
		return err
	}

	genreQ := `SELECT pg.play_id, g.id, g.name
	           FROM play_genres pg
	           JOIN genres g ON g.id = pg.genre_id
	           WHERE pg.play_id IN (` + in + `)
	           ORDER BY pg.play_id, g.id`
	grows, err := r.db.QueryContext(ctx, genreQ, args...)
	if err != nil {
		return err
	}
	defer grows.Close()
	for grows.Next() {
		var playID uint64
		var g model.Genre
		if err := grows.Scan(&playID, &g.ID, &g.Name); err != nil {
			return err
		}
		if p, ok := index[playID]; ok {
			p.Genres = append(p.Genres, g)
		}
	}
	return grows.Err()
}

// UpdateImage points a play at an uploaded image.  The regular Create and
// Update paths never touch this column; only the upload endpoint does.
func (r *PlayRepo) UpdateImage(ctx context.Context, id uint64, image string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE plays SET image = ? WHERE id = ?", image, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM plays WHERE id = ?", id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrPlayNotFound
		}
	}
	return nil
}

// Delete removes a play and its links unless performances still reference it.
func (r *PlayRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM performances WHERE play_id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	// Link rows go away via ON DELETE CASCADE.
	res, err := r.db.ExecContext(ctx, "DELETE FROM plays WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrPlayNotFound
	}
	return nil
}
