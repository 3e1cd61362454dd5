package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// ErrGenreNotFound indicates that a genre lookup found no row.
var ErrGenreNotFound = errors.New("genre not found")

// ErrGenreExists indicates a violation of the unique genre name constraint.
var ErrGenreExists = errors.New("genre name already exists")

// GenreRepo manages persistence for genres.
type GenreRepo struct {
	db *sql.DB
}

func NewGenreRepo(db *sql.DB) *GenreRepo { return &GenreRepo{db: db} }

// Create inserts a genre and populates its generated ID.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	g.Name = strings.TrimSpace(g.Name)
	res, err := r.db.ExecContext(ctx, "INSERT INTO genres (name) VALUES (?)", g.Name)
	if err != nil {
		if isDuplicate(err) {
			return ErrGenreExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// GetByID returns a genre or ErrGenreNotFound.
func (r *GenreRepo) GetByID(ctx context.Context, id uint64) (*model.Genre, error) {
	var g model.Genre
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM genres WHERE id = ?", id).
		Scan(&g.ID, &g.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}
	return &g, nil
}

// List returns one page of genres ordered by id together with the total count.
func (r *GenreRepo) List(ctx context.Context, page, pageSize int) ([]model.Genre, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM genres").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name FROM genres ORDER BY id LIMIT ? OFFSET ?",
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Genre, 0, pageSize)
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, 0, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update renames a genre.  Returns ErrGenreNotFound when the id is unknown
// and ErrGenreExists when the new name is already taken.
func (r *GenreRepo) Update(ctx context.Context, g *model.Genre) error {
	g.Name = strings.TrimSpace(g.Name)
	res, err := r.db.ExecContext(ctx, "UPDATE genres SET name = ? WHERE id = ?", g.Name, g.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrGenreExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is also zero for a no-op rename, so verify existence.
		if _, err := r.GetByID(ctx, g.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a genre unless plays still reference it.
func (r *GenreRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM play_genres WHERE genre_id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM genres WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrGenreNotFound
	}
	return nil
}
