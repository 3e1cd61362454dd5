package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrTicketNotFound indicates that a ticket lookup found no row.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrSeatTaken is returned when the (performance, row, seat) triple is
// already booked.  Handlers translate this into 409.
var ErrSeatTaken = errors.New("seat already booked for this performance")

// ErrSeatOutOfRange is returned when row or seat falls outside the hall
// grid.  Handlers translate this into 400.
var ErrSeatOutOfRange = errors.New("row or seat outside the hall bounds")

// TicketDetail is a ticket joined with its performance, play and hall
// context, as returned to the booking user.
type TicketDetail struct {
	ID              uint64    `json:"id"`
	PerformanceID   uint64    `json:"performance_id"`
	Row             uint32    `json:"row"`
	Seat            uint32    `json:"seat"`
	PlayTitle       string    `json:"play_title"`
	TheatreHallName string    `json:"theatre_hall_name"`
	ShowTime        time.Time `json:"show_time"`
	CreatedAt       time.Time `json:"created_at"`
}

// TicketRepo manages ticket persistence.
type TicketRepo struct {
	db *sql.DB
}

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// Book creates a ticket for one seat of one performance inside a single
// transaction.  The flow is: load the performance with its hall grid,
// validate the requested coordinates against the grid, insert the ticket.
// The composite unique index on (performance_id, row, seat) is the atomic
// arbiter: when two concurrent requests race for the same seat, exactly one
// insert succeeds and the other receives ErrSeatTaken.
func (r *TicketRepo) Book(ctx context.Context, userID, performanceID uint64, row, seat uint32) (*TicketDetail, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const perfQ = `SELECT h.` + "`rows`" + `, h.seats_in_row, pl.title, h.name, pf.show_time
	               FROM performances pf
	               JOIN plays pl ON pl.id = pf.play_id
	               JOIN theatre_halls h ON h.id = pf.theatre_hall_id
	               WHERE pf.id = ?`
	var (
		hallRows   uint32
		seatsInRow uint32
		playTitle  string
		hallName   string
		showTime   time.Time
	)
	err = tx.QueryRowContext(ctx, perfQ, performanceID).
		Scan(&hallRows, &seatsInRow, &playTitle, &hallName, &showTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPerformanceNotFound
		}
		return nil, err
	}
	if row < 1 || row > hallRows || seat < 1 || seat > seatsInRow {
		return nil, ErrSeatOutOfRange
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO tickets (performance_id, user_id, `row`, seat) VALUES (?, ?, ?, ?)",
		performanceID, userID, row, seat)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrSeatTaken
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	det := &TicketDetail{
		ID:              uint64(id),
		PerformanceID:   performanceID,
		Row:             row,
		Seat:            seat,
		PlayTitle:       playTitle,
		TheatreHallName: hallName,
		ShowTime:        showTime,
	}
	// Read the row back for the DB-assigned creation timestamp.
	if err := tx.QueryRowContext(ctx,
		"SELECT created_at FROM tickets WHERE id = ?", det.ID).Scan(&det.CreatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return det, nil
}

const ticketSelect = `SELECT t.id, t.performance_id, t.` + "`row`" + `, t.seat,
       pl.title, h.name, pf.show_time, t.created_at
FROM tickets t
JOIN performances pf ON pf.id = t.performance_id
JOIN plays pl ON pl.id = pf.play_id
JOIN theatre_halls h ON h.id = pf.theatre_hall_id`

// GetByIDForUser returns a single ticket for the given user.  Ownership is
// enforced in the query, so another user's ticket behaves like a missing one.
func (r *TicketRepo) GetByIDForUser(ctx context.Context, ticketID, userID uint64) (*TicketDetail, error) {
	var d TicketDetail
	err := r.db.QueryRowContext(ctx, ticketSelect+" WHERE t.id = ? AND t.user_id = ?", ticketID, userID).
		Scan(&d.ID, &d.PerformanceID, &d.Row, &d.Seat,
			&d.PlayTitle, &d.TheatreHallName, &d.ShowTime, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListByUser returns one page of the user's tickets, newest first.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64, page, pageSize int) ([]*TicketDetail, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tickets WHERE user_id = ?", userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		ticketSelect+" WHERE t.user_id = ? ORDER BY t.created_at DESC, t.id DESC LIMIT ? OFFSET ?",
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*TicketDetail, 0, pageSize)
	for rows.Next() {
		var d TicketDetail
		if err := rows.Scan(&d.ID, &d.PerformanceID, &d.Row, &d.Seat,
			&d.PlayTitle, &d.TheatreHallName, &d.ShowTime, &d.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
