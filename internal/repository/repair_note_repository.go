package repository

import (
	"context"

	"github.com/spec-kit/warranty-service/internal/domain"
)

// RepairNoteRepository persists repair notes. Notes are append only
// and are never updated or deleted.
type RepairNoteRepository interface {
	Create(ctx context.Context, note *domain.RepairNote) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.RepairNote, error)
}

type repairNoteRepository struct {
	q Querier
}

func (r *repairNoteRepository) Create(ctx context.Context, note *domain.RepairNote) error {
	const query = `
        INSERT INTO repair_notes (ticket_id, author_account_id, note_text)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		note.TicketID,
		note.AuthorID,
		note.Text,
	).Scan(&note.ID, &note.CreatedAt)
}

// ListByTicket returns notes newest first.
func (r *repairNoteRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.RepairNote, error) {
	const query = `
        SELECT id, ticket_id, author_account_id, note_text, created_at
        FROM repair_notes WHERE ticket_id=$1 ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RepairNote
	for rows.Next() {
		var note domain.RepairNote
		if err := rows.Scan(&note.ID, &note.TicketID, &note.AuthorID, &note.Text, &note.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	return result, rows.Err()
}
