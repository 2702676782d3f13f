package domain

import "time"

// Rating bounds for feedback.
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is a customer's one-time rating of a finished repair. At
// most one feedback exists per ticket, enforced by the storage layer.
type Feedback struct {
	ID        string
	TicketID  string
	AuthorID  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}
