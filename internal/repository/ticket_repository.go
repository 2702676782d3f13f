package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/warranty-service/internal/domain"
)

// TicketFilter captures ticket listing parameters.
type TicketFilter struct {
	CustomerID   *string
	TechnicianID *string
	ProductID    *string
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	Limit        int
	Offset       int
}

// priorityRank orders priorities in SQL; keep in sync with
// domain.TicketPriority.Rank.
const priorityRank = `CASE priority
                 WHEN 'urgent' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END`

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// GetByIDForUpdate locks the ticket row for the enclosing
	// transaction, serializing concurrent lifecycle operations on the
	// same ticket.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	q Querier
}

const ticketColumns = `id, ticket_number, product_id, customer_account_id, technician_account_id,
               issue_description, repair_type, status, priority, repair_cost, is_warranty_covered,
               is_paid, is_deleted, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_number, product_id, customer_account_id, technician_account_id,
            issue_description, repair_type, status, priority, repair_cost, is_warranty_covered,
            is_paid, is_deleted)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	return r.q.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.ProductID,
		ticket.CustomerID,
		ticket.TechnicianID,
		ticket.IssueDescription,
		ticket.RepairType,
		ticket.Status,
		ticket.Priority,
		ticket.RepairCost,
		ticket.WarrantyCovered,
		ticket.Paid,
		ticket.Deleted,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET technician_account_id=$1, issue_description=$2, status=$3, priority=$4,
            repair_cost=$5, is_paid=$6, is_deleted=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.q.Exec(ctx, query,
		ticket.TechnicianID,
		ticket.IssueDescription,
		ticket.Status,
		ticket.Priority,
		ticket.RepairCost,
		ticket.Paid,
		ticket.Deleted,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1 FOR UPDATE`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE ticket_number=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.q.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.ProductID,
		&ticket.CustomerID,
		&ticket.TechnicianID,
		&ticket.IssueDescription,
		&ticket.RepairType,
		&ticket.Status,
		&ticket.Priority,
		&ticket.RepairCost,
		&ticket.WarrantyCovered,
		&ticket.Paid,
		&ticket.Deleted,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListWithFilter lists non-deleted tickets in triage order: priority
// descending, then oldest first within a priority band.
func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"NOT is_deleted"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_account_id=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_account_id=$%d", len(args)))
	}
	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		clauses = append(clauses, fmt.Sprintf("product_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s
             ORDER BY %s DESC, created_at ASC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), priorityRank, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketNumber,
			&ticket.ProductID,
			&ticket.CustomerID,
			&ticket.TechnicianID,
			&ticket.IssueDescription,
			&ticket.RepairType,
			&ticket.Status,
			&ticket.Priority,
			&ticket.RepairCost,
			&ticket.WarrantyCovered,
			&ticket.Paid,
			&ticket.Deleted,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
