package services

import (
	"context"

	"github.com/SscSPs/subledger/internal/core/domain"
	"github.com/SscSPs/subledger/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, companyID string, accountID string) (*domain.Account, error)

	// ListAccounts returns the filtered chart flattened in pre-order.
	ListAccounts(ctx context.Context, companyID string, params dto.AccountTreeParams) ([]domain.Account, error)

	// GetAccountTree returns the filtered chart as a forest.
	GetAccountTree(ctx context.Context, companyID string, params dto.AccountTreeParams) (*domain.AccountTree, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, actor domain.Actor) (*domain.Account, error)

	// UpdateAccount applies a patch, re-parenting and re-levelling the subtree when needed.
	UpdateAccount(ctx context.Context, companyID string, accountID string, req dto.UpdateAccountRequest, actor domain.Actor) (*domain.Account, error)

	// DeleteAccount soft-deletes an account without live children.
	DeleteAccount(ctx context.Context, companyID string, accountID string, actor domain.Actor) (*domain.Account, error)

	// RestoreAccount undeletes an account whose parent is live.
	RestoreAccount(ctx context.Context, companyID string, accountID string, actor domain.Actor) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
