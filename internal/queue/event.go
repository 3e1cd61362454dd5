// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketBookedEvent is published after a seat booking commits.  It carries
// enough context for downstream consumers to log or notify without querying
// the primary database.
type TicketBookedEvent struct {
	TicketID        uint64 `json:"ticket_id"`
	UserID          uint64 `json:"user_id"`
	PerformanceID   uint64 `json:"performance_id"`
	PlayTitle       string `json:"play_title"`
	TheatreHallName string `json:"theatre_hall_name"`
	ShowTime        string `json:"show_time"`
	Row             uint32 `json:"row"`
	Seat            uint32 `json:"seat"`
	BookedAt        string `json:"booked_at"`
}
