package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// ErrHallNotFound indicates that a theatre hall lookup found no row.
var ErrHallNotFound = errors.New("theatre hall not found")

// HallRepo manages persistence for theatre halls.  `rows` is a reserved word
// in MySQL, hence the backticks in every statement.
type HallRepo struct {
	db *sql.DB
}

func NewHallRepo(db *sql.DB) *HallRepo { return &HallRepo{db: db} }

// Create inserts a hall and populates its generated ID.  Positive row and
// seat counts are enforced by the handler before this call.
func (r *HallRepo) Create(ctx context.Context, h *model.TheatreHall) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO theatre_halls (name, `rows`, seats_in_row) VALUES (?, ?, ?)",
		h.Name, h.Rows, h.SeatsInRow)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// GetByID returns a hall or ErrHallNotFound.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.TheatreHall, error) {
	var h model.TheatreHall
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, `rows`, seats_in_row FROM theatre_halls WHERE id = ?", id).
		Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsInRow)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	return &h, nil
}

// List returns one page of halls ordered by id together with the total count.
func (r *HallRepo) List(ctx context.Context, page, pageSize int) ([]model.TheatreHall, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM theatre_halls").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, `rows`, seats_in_row FROM theatre_halls ORDER BY id LIMIT ? OFFSET ?",
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.TheatreHall, 0, pageSize)
	for rows.Next() {
		var h model.TheatreHall
		if err := rows.Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsInRow); err != nil {
			return nil, 0, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update overwrites name and grid dimensions.
func (r *HallRepo) Update(ctx context.Context, h *model.TheatreHall) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE theatre_halls SET name = ?, `rows` = ?, seats_in_row = ? WHERE id = ?",
		h.Name, h.Rows, h.SeatsInRow, h.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, h.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a hall unless performances are still scheduled in it.
func (r *HallRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM performances WHERE theatre_hall_id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM theatre_halls WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrHallNotFound
	}
	return nil
}
