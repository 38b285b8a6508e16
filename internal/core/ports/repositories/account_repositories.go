package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/subledger/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account, deleted or not.
	FindAccountByID(ctx context.Context, companyID, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its company-unique code.
	FindAccountByCode(ctx context.Context, companyID, accountCode string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts; missing ids are simply absent from the map.
	FindAccountsByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves every account of a company, optionally including soft-deleted ones.
	ListAccounts(ctx context.Context, companyID string, includeDeleted bool) ([]domain.Account, error)

	// ListChildAccounts retrieves the direct children of a parent account.
	ListChildAccounts(ctx context.Context, companyID, parentAccountID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. A taken account code yields ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount writes account if the stored version still equals expectedVersion,
	// otherwise it returns ErrStateConflict.
	UpdateAccount(ctx context.Context, account domain.Account, expectedVersion int64) error

	// UpdateAccountLevels rewrites the derived level of several accounts.
	UpdateAccountLevels(ctx context.Context, companyID string, levels map[string]int, userID string, now time.Time) error
}

// HierarchyLocker serializes structural changes to one company's chart of accounts.
type HierarchyLocker interface {
	// LockHierarchy blocks until the caller holds the company's hierarchy lock for the
	// rest of the current unit of work.
	LockHierarchy(ctx context.Context, companyID string) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	HierarchyLocker
}
