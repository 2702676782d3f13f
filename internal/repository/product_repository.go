package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/warranty-service/internal/domain"
)

// ProductRepository encapsulates product persistence. Serial number
// uniqueness among non-deleted products is enforced by a partial unique
// index; Create and Update surface the violation as-is for the caller
// to map.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Product, error)
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Product, error)
}

type productRepository struct {
	q Querier
}

const productColumns = `id, owner_account_id, name, brand, category, serial_number,
               purchase_date, warranty_months, warranty_expiry, description, is_deleted, created_at, updated_at`

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (owner_account_id, name, brand, category, serial_number,
            purchase_date, warranty_months, warranty_expiry, description, is_deleted)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.q.QueryRow(ctx, query,
		product.OwnerID,
		product.Name,
		product.Brand,
		product.Category,
		product.SerialNumber,
		product.PurchaseDate,
		product.WarrantyMonths,
		product.WarrantyExpiry,
		product.Description,
		product.Deleted,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	const query = `
        UPDATE products SET name=$1, brand=$2, category=$3, serial_number=$4, purchase_date=$5,
            warranty_months=$6, warranty_expiry=$7, description=$8, is_deleted=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.q.Exec(ctx, query,
		product.Name,
		product.Brand,
		product.Category,
		product.SerialNumber,
		product.PurchaseDate,
		product.WarrantyMonths,
		product.WarrantyExpiry,
		product.Description,
		product.Deleted,
		product.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id=$1`, productColumns)
	var product domain.Product
	if err := r.q.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.OwnerID,
		&product.Name,
		&product.Brand,
		&product.Category,
		&product.SerialNumber,
		&product.PurchaseDate,
		&product.WarrantyMonths,
		&product.WarrantyExpiry,
		&product.Description,
		&product.Deleted,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT %s FROM products
             WHERE owner_account_id=$1 AND NOT is_deleted
             ORDER BY created_at DESC LIMIT %d OFFSET %d`, productColumns, limit, offset)
	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

// ListExpiringBetween returns non-deleted products whose warranty
// expiry falls in [from, to). Used by the expiry notifier.
func (r *productRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products
             WHERE NOT is_deleted AND warranty_expiry >= $1 AND warranty_expiry < $2
             ORDER BY warranty_expiry ASC`, productColumns)
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	var result []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID,
			&product.OwnerID,
			&product.Name,
			&product.Brand,
			&product.Category,
			&product.SerialNumber,
			&product.PurchaseDate,
			&product.WarrantyMonths,
			&product.WarrantyExpiry,
			&product.Description,
			&product.Deleted,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, product)
	}
	return result, rows.Err()
}
