package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/warranty-service/internal/domain"
)

// AccountFilter captures account listing parameters.
type AccountFilter struct {
	Role   *domain.Role
	Active *bool
	Limit  int
	Offset int
}

// AccountRepository encapsulates account persistence. Soft-deleted
// accounts are excluded from every query except GetByID, which callers
// use to inspect the deleted flag themselves.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
}

type accountRepository struct {
	q Querier
}

const accountColumns = `id, name, email, password_hash, phone, role, is_active, is_deleted, created_at, updated_at, last_login_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (name, email, password_hash, phone, role, is_active, is_deleted)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.q.QueryRow(ctx, query,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Phone,
		account.Role,
		account.Active,
		account.Deleted,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts SET name=$1, email=$2, password_hash=$3, phone=$4, role=$5,
            is_active=$6, is_deleted=$7, last_login_at=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.q.Exec(ctx, query,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Phone,
		account.Role,
		account.Active,
		account.Deleted,
		account.LastLoginAt,
		account.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id=$1`, accountColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE email=$1 AND NOT is_deleted`, accountColumns)
	return r.fetchSingle(ctx, query, email)
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	if err := r.q.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.Phone,
		&account.Role,
		&account.Active,
		&account.Deleted,
		&account.CreatedAt,
		&account.UpdatedAt,
		&account.LastLoginAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) List(ctx context.Context, filter AccountFilter) ([]domain.Account, error) {
	clauses := []string{"NOT is_deleted"}
	args := []any{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		accountColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID,
			&account.Name,
			&account.Email,
			&account.PasswordHash,
			&account.Phone,
			&account.Role,
			&account.Active,
			&account.Deleted,
			&account.CreatedAt,
			&account.UpdatedAt,
			&account.LastLoginAt,
		); err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, rows.Err()
}
