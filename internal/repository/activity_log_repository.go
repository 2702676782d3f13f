package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/warranty-service/internal/domain"
)

// ActivityLogFilter captures audit listing parameters.
type ActivityLogFilter struct {
	AccountID *string
	Action    *string
	Limit     int
	Offset    int
}

// ActivityLogRepository persists the append-only audit trail. Entries
// are never updated or deleted.
type ActivityLogRepository interface {
	Record(ctx context.Context, entry *domain.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]domain.ActivityLog, error)
}

type activityLogRepository struct {
	q Querier
}

func (r *activityLogRepository) Record(ctx context.Context, entry *domain.ActivityLog) error {
	const query = `
        INSERT INTO activity_logs (account_id, action, resource_type, resource_id, description)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		entry.AccountID,
		entry.Action,
		entry.ResourceType,
		entry.ResourceID,
		entry.Description,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]domain.ActivityLog, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		clauses = append(clauses, fmt.Sprintf("account_id=$%d", len(args)))
	}
	if filter.Action != nil {
		args = append(args, *filter.Action)
		clauses = append(clauses, fmt.Sprintf("action=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
        SELECT id, account_id, action, resource_type, resource_id, description, created_at
        FROM activity_logs WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActivityLog
	for rows.Next() {
		var entry domain.ActivityLog
		if err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.Action,
			&entry.ResourceType,
			&entry.ResourceID,
			&entry.Description,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
