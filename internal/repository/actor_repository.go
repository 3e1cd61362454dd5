package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// ErrActorNotFound indicates that an actor lookup found no row.
var ErrActorNotFound = errors.New("actor not found")

// ActorRepo manages persistence for actors.
type ActorRepo struct {
	db *sql.DB
}

func NewActorRepo(db *sql.DB) *ActorRepo { return &ActorRepo{db: db} }

// Create inserts an actor and populates its generated ID.
func (r *ActorRepo) Create(ctx context.Context, a *model.Actor) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO actors (first_name, last_name) VALUES (?, ?)",
		a.FirstName, a.LastName)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID returns an actor or ErrActorNotFound.
func (r *ActorRepo) GetByID(ctx context.Context, id uint64) (*model.Actor, error) {
	var a model.Actor
	err := r.db.QueryRowContext(ctx,
		"SELECT id, first_name, last_name FROM actors WHERE id = ?", id).
		Scan(&a.ID, &a.FirstName, &a.LastName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActorNotFound
		}
		return nil, err
	}
	return &a, nil
}

// List returns one page of actors ordered by id together with the total count.
func (r *ActorRepo) List(ctx context.Context, page, pageSize int) ([]model.Actor, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM actors").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, first_name, last_name FROM actors ORDER BY id LIMIT ? OFFSET ?",
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Actor, 0, pageSize)
	for rows.Next() {
		var a model.Actor
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update overwrites both name fields.
func (r *ActorRepo) Update(ctx context.Context, a *model.Actor) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE actors SET first_name = ?, last_name = ? WHERE id = ?",
		a.FirstName, a.LastName, a.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, a.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an actor unless plays still reference it.
func (r *ActorRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM play_actors WHERE actor_id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM actors WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrActorNotFound
	}
	return nil
}
