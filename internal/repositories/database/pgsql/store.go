package pgsql

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/subledger/internal/apperrors"
	portsrepo "github.com/SscSPs/subledger/internal/core/ports/repositories"
	"github.com/SscSPs/subledger/internal/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store runs units of work inside Postgres transactions.
type Store struct {
	pool     *pgxpool.Pool
	sequence portsrepo.SequenceAllocator
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSequenceAllocator replaces the table-backed journal number sequence.
func WithSequenceAllocator(a portsrepo.SequenceAllocator) StoreOption {
	return func(s *Store) {
		s.sequence = a
	}
}

// NewStore creates a Store on top of a connection pool.
func NewStore(pool *pgxpool.Pool, opts ...StoreOption) *Store {
	s := &Store{pool: pool}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portsrepo.TransactionManager = (*Store)(nil)

// WithinTx begins a READ COMMITTED transaction, hands fn repositories bound to it,
// and commits when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			middleware.GetLoggerFromCtx(ctx).Warn("Rollback failed", slog.String("error", rbErr.Error()))
		}
	}()

	if err := fn(ctx, NewRepositoryProvider(tx, s.sequence)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return translateError(err, "transaction")
	}
	return nil
}
