package domain

import "time"

// RepairNote is a free-text progress note on a ticket. Notes are
// append-only; they are never edited or deleted once written.
type RepairNote struct {
	ID        string
	TicketID  string
	AuthorID  string
	Text      string
	CreatedAt time.Time
}
