package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx satisfied by both pgxpool.Pool and
// pgx.Tx, so repositories run unchanged inside or outside a
// transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IsDuplicate reports whether err is a unique-constraint violation.
func IsDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Store bundles all repositories behind one transactional boundary.
// WithinTx rebinds every repository to a single transaction so a state
// mutation and its audit entry commit together or not at all.
type Store interface {
	Accounts() AccountRepository
	Products() ProductRepository
	Tickets() TicketRepository
	RepairNotes() RepairNoteRepository
	Feedback() FeedbackRepository
	ActivityLogs() ActivityLogRepository
	WithinTx(ctx context.Context, fn func(Store) error) error
}

type sqlStore struct {
	pool *pgxpool.Pool
	q    Querier
}

// NewStore builds a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) Store {
	return &sqlStore{pool: pool, q: pool}
}

func (s *sqlStore) Accounts() AccountRepository         { return &accountRepository{q: s.q} }
func (s *sqlStore) Products() ProductRepository         { return &productRepository{q: s.q} }
func (s *sqlStore) Tickets() TicketRepository           { return &ticketRepository{q: s.q} }
func (s *sqlStore) RepairNotes() RepairNoteRepository   { return &repairNoteRepository{q: s.q} }
func (s *sqlStore) Feedback() FeedbackRepository        { return &feedbackRepository{q: s.q} }
func (s *sqlStore) ActivityLogs() ActivityLogRepository { return &activityLogRepository{q: s.q} }

// WithinTx runs fn against a store bound to one transaction. A nested
// call joins the enclosing transaction instead of opening another.
func (s *sqlStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txStore := &sqlStore{q: tx}
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
