package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type txKey struct{}

// Store implements ports.Repository on Postgres. Every update is a
// conditional write on the row's version column.
type Store struct {
	db  *sql.DB
	tx  *sql.Tx
	now func() time.Time
}

var _ ports.Repository = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) conn(ctx context.Context) DBTX {
	if s.tx != nil {
		return s.tx
	}
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx ports.Repository) error) error {
	if s.tx != nil {
		return fn(context.WithValue(ctx, txKey{}, s.tx), s)
	}
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx, &Store{db: s.db, tx: tx, now: s.now})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx), &Store{db: s.db, tx: tx, now: s.now}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// execVersioned runs a conditional UPDATE and reports a conflict when the
// version predicate matched no row.
func (s *Store) execVersioned(ctx context.Context, aggregate string, id uuid.UUID, expected int, query string, args ...any) error {
	result, err := s.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", aggregate, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return &domain.ConflictError{Aggregate: aggregate, ID: id, ExpectedVersion: expected}
	}
	return nil
}

func notFound(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFound(entity, id)
	}
	return fmt.Errorf("get %s %s: %w", entity, id, err)
}

func statusArray[T ~string](statuses []T) any {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return pq.Array(out)
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

type scanner interface {
	Scan(dest ...any) error
}
