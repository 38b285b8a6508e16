package repositories

import "context"

// TxFunc is the body of a unit of work. The repositories it receives are bound to the
// same underlying transaction.
type TxFunc func(ctx context.Context, repos RepositoryProvider) error

// TransactionManager runs units of work atomically.
type TransactionManager interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn TxFunc) error
}
