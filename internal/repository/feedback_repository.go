package repository

import (
	"context"

	"github.com/spec-kit/warranty-service/internal/domain"
)

// FeedbackRepository persists one-time feedback. A unique constraint on
// ticket_id closes the race between check and insert; Create surfaces
// the violation for the caller to map to ALREADY_EXISTS.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	GetByTicket(ctx context.Context, ticketID string) (*domain.Feedback, error)
}

type feedbackRepository struct {
	q Querier
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO feedback (ticket_id, author_account_id, rating, comment)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		feedback.TicketID,
		feedback.AuthorID,
		feedback.Rating,
		feedback.Comment,
	).Scan(&feedback.ID, &feedback.CreatedAt)
}

func (r *feedbackRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.Feedback, error) {
	const query = `
        SELECT id, ticket_id, author_account_id, rating, comment, created_at
        FROM feedback WHERE ticket_id=$1`
	var feedback domain.Feedback
	if err := r.q.QueryRow(ctx, query, ticketID).Scan(
		&feedback.ID,
		&feedback.TicketID,
		&feedback.AuthorID,
		&feedback.Rating,
		&feedback.Comment,
		&feedback.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &feedback, nil
}
