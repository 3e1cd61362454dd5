package model

import "time"

// Genre is a theatrical genre.  Names are unique.
type Genre struct {
	ID   uint64 // genres.id
	Name string // genres.name
}

// Actor is a performer that can be attached to any number of plays.
type Actor struct {
	ID        uint64 // actors.id
	FirstName string // actors.first_name
	LastName  string // actors.last_name
}

// FullName joins first and last name for list representations.
func (a Actor) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Play is a theatrical work.  Actors and genres are linked through the
// play_actors and play_genres tables and hydrated by the repository when a
// nested representation is needed.
type Play struct {
	ID          uint64  // plays.id
	Title       string  // plays.title
	Description string  // plays.description
	Image       string  // plays.image, URL path under /media; empty when none
	Actors      []Actor // via play_actors
	Genres      []Genre // via play_genres
}

// TheatreHall is a venue with a fixed seating grid of Rows x SeatsInRow.
type TheatreHall struct {
	ID         uint64 // theatre_halls.id
	Name       string // theatre_halls.name
	Rows       uint32 // theatre_halls.rows
	SeatsInRow uint32 // theatre_halls.seats_in_row
}

// Capacity returns the number of seats in the hall.
func (h TheatreHall) Capacity() uint32 {
	return h.Rows * h.SeatsInRow
}

// Performance is a scheduled showing of a play in a specific hall.
type Performance struct {
	ID            uint64    // performances.id
	PlayID        uint64    // performances.play_id
	TheatreHallID uint64    // performances.theatre_hall_id
	ShowTime      time.Time // performances.show_time (UTC)
}

// Ticket books one seat of one performance for one user.  The combination of
// (PerformanceID, Row, Seat) is unique.
type Ticket struct {
	ID            uint64    // tickets.id
	PerformanceID uint64    // tickets.performance_id
	UserID        uint64    // tickets.user_id
	Row           uint32    // tickets.row, 1-based
	Seat          uint32    // tickets.seat, 1-based
	CreatedAt     time.Time // tickets.created_at
}
