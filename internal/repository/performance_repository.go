package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// ErrPerformanceNotFound indicates that a performance lookup found no row.
var ErrPerformanceNotFound = errors.New("performance not found")

// PerformanceDetail is a performance joined with its play and hall context,
// as returned by the list and retrieve endpoints.
type PerformanceDetail struct {
	ID               uint64    `json:"id"`
	PlayID           uint64    `json:"play_id"`
	PlayTitle        string    `json:"play_title"`
	PlayImage        string    `json:"play_image"`
	TheatreHallID    uint64    `json:"theatre_hall_id"`
	TheatreHallName  string    `json:"theatre_hall_name"`
	ShowTime         time.Time `json:"show_time"`
	HallRows         uint32    `json:"hall_rows"`
	HallSeatsInRow   uint32    `json:"hall_seats_in_row"`
	TicketsAvailable uint32    `json:"tickets_available"`
}

// PerformanceRepo manages persistence for performances.
type PerformanceRepo struct {
	db *sql.DB
}

func NewPerformanceRepo(db *sql.DB) *PerformanceRepo { return &PerformanceRepo{db: db} }

// DB exposes the underlying sql.DB so handlers can begin transactions
// spanning performances and tickets.
func (r *PerformanceRepo) DB() *sql.DB { return r.db }

// Create inserts a performance after verifying the referenced play and hall
// exist.  Unknown references surface as ErrPlayNotFound / ErrHallNotFound.
func (r *PerformanceRepo) Create(ctx context.Context, p *model.Performance) error {
	var exists int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM plays WHERE id = ?", p.PlayID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrPlayNotFound
	}
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM theatre_halls WHERE id = ?", p.TheatreHallID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrHallNotFound
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO performances (play_id, theatre_hall_id, show_time) VALUES (?, ?, ?)",
		p.PlayID, p.TheatreHallID, p.ShowTime.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

const performanceSelect = `SELECT pf.id, pf.play_id, pl.title, pl.image, pf.theatre_hall_id, h.name,
       pf.show_time, h.` + "`rows`" + `, h.seats_in_row,
       (SELECT COUNT(*) FROM tickets t WHERE t.performance_id = pf.id)
FROM performances pf
JOIN plays pl ON pl.id = pf.play_id
JOIN theatre_halls h ON h.id = pf.theatre_hall_id`

func scanPerformanceDetail(row interface{ Scan(...any) error }) (*PerformanceDetail, error) {
	var d PerformanceDetail
	var sold uint32
	if err := row.Scan(&d.ID, &d.PlayID, &d.PlayTitle, &d.PlayImage, &d.TheatreHallID, &d.TheatreHallName,
		&d.ShowTime, &d.HallRows, &d.HallSeatsInRow, &sold); err != nil {
		return nil, err
	}
	capacity := d.HallRows * d.HallSeatsInRow
	if sold < capacity {
		d.TicketsAvailable = capacity - sold
	}
	return &d, nil
}

// GetByID returns a performance with play/hall context and remaining
// capacity, or ErrPerformanceNotFound.
func (r *PerformanceRepo) GetByID(ctx context.Context, id uint64) (*PerformanceDetail, error) {
	d, err := scanPerformanceDetail(r.db.QueryRowContext(ctx, performanceSelect+" WHERE pf.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPerformanceNotFound
		}
		return nil, err
	}
	return d, nil
}

// List returns one page of performances ordered by show time then id.
func (r *PerformanceRepo) List(ctx context.Context, page, pageSize int) ([]*PerformanceDetail, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM performances").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		performanceSelect+" ORDER BY pf.show_time, pf.id LIMIT ? OFFSET ?",
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*PerformanceDetail, 0, pageSize)
	for rows.Next() {
		d, err := scanPerformanceDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update overwrites play, hall and show time after the same reference checks
// as Create.
func (r *PerformanceRepo) Update(ctx context.Context, p *model.Performance) error {
	var exists int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM plays WHERE id = ?", p.PlayID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrPlayNotFound
	}
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM theatre_halls WHERE id = ?", p.TheatreHallID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrHallNotFound
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE performances SET play_id = ?, theatre_hall_id = ?, show_time = ? WHERE id = ?",
		p.PlayID, p.TheatreHallID, p.ShowTime.UTC(), p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if err := r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM performances WHERE id = ?", p.ID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrPerformanceNotFound
		}
	}
	return nil
}

// Delete removes a performance unless tickets were already booked for it.
// Bookings are permanent, so deletion is restricted rather than cascaded.
func (r *PerformanceRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tickets WHERE performance_id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM performances WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrPerformanceNotFound
	}
	return nil
}
