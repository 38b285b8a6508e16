package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/subledger/internal/apperrors"
	"github.com/SscSPs/subledger/internal/core/domain"
	portsrepo "github.com/SscSPs/subledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/subledger/internal/core/ports/services"
	"github.com/SscSPs/subledger/internal/dto"
)

// AccountService manages the chart-of-accounts hierarchy.
type AccountService struct {
	BaseService
}

// AccountServiceOption is a function that configures an AccountService
type AccountServiceOption func(*AccountService)

// WithAccountClock overrides the time source.
func WithAccountClock(now func() time.Time) AccountServiceOption {
	return func(s *AccountService) {
		s.Now = now
	}
}

// NewAccountService creates a new AccountService with the given dependencies
func NewAccountService(store portsrepo.TransactionManager, authorizer portssvc.Authorizer, options ...AccountServiceOption) *AccountService {
	s := &AccountService{BaseService: newBaseService(store, authorizer)}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.AccountSvcFacade = (*AccountService)(nil)

// CreateAccount validates and persists a new account, deriving its normal balance and level.
func (s *AccountService) CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, actor domain.Actor) (*domain.Account, error) {
	if err := s.Authorize(ctx, actor, domain.Capability{Module: domain.ModuleAccount, Action: domain.CanCreate}); err != nil {
		return nil, err
	}

	now := s.Now()
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	account := domain.Account{
		AccountID:       s.NewID(),
		CompanyID:       companyID,
		BranchID:        nonEmpty(req.BranchID),
		AccountCode:     req.AccountCode,
		AccountName:     req.AccountName,
		AccountType:     req.AccountType,
		AccountSubtype:  nonEmpty(req.AccountSubtype),
		ParentAccountID: nonEmpty(req.ParentAccountID),
		IsHeader:        req.IsHeader,
		IsPostable:      req.IsPostable,
		NormalBalance:   req.AccountType.NormalBalance(),
		CurrencyCode:    req.CurrencyCode,
		SortOrder:       req.SortOrder,
		IsActive:        isActive,
		Description:     req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
			Version:       1,
		},
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}

	err := s.Store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		if err := repos.AccountRepo.LockHierarchy(ctx, companyID); err != nil {
			return err
		}
		if err := ensureCodeFree(ctx, repos.AccountRepo, companyID, account.AccountCode); err != nil {
			return err
		}
		if account.ParentAccountID != nil {
			parent, err := findOptionalAccount(ctx, repos.AccountRepo, companyID, *account.ParentAccountID)
			if err != nil {
				return err
			}
			if err := domain.ValidateParent(account, *account.ParentAccountID, parent); err != nil {
				return err
			}
			account.Level = domain.LevelUnder(parent)
		}
		return repos.AccountRepo.SaveAccount(ctx, account)
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to create account", slog.String("account_code", account.AccountCode))
		return nil, err
	}

	s.LogInfo(ctx, "Account created", slog.String("account_id", account.AccountID), slog.String("account_code", account.AccountCode))
	return &account, nil
}

// UpdateAccount applies a patch. Moving an account re-levels its whole subtree in the same unit of work.
func (s *AccountService) UpdateAccount(ctx context.Context, companyID string, accountID string, req dto.UpdateAccountRequest, actor domain.Actor) (*domain.Account, error) {
	if err := s.Authorize(ctx, actor, domain.Capability{Module: domain.ModuleAccount, Action: domain.CanUpdate}); err != nil {
		return nil, err
	}
	patch := req.ToPatch()
	if err := patch.CheckImmutable(); err != nil {
		return nil, err
	}

	var updated domain.Account
	err := s.Store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		if err := repos.AccountRepo.LockHierarchy(ctx, companyID); err != nil {
			return err
		}
		current, err := repos.AccountRepo.FindAccountByID(ctx, companyID, accountID)
		if err != nil {
			return err
		}
		if current.IsDeleted() {
			return apperrors.NewStateConflictError("account %s is deleted", current.AccountCode)
		}
		if patch.ExpectedVersion != nil && *patch.ExpectedVersion != current.Version {
			return staleVersion("account", current.Version, *patch.ExpectedVersion)
		}

		updated = patch.Apply(*current)
		if err := updated.Validate(); err != nil {
			return err
		}

		if current.IsHeader && !updated.IsHeader {
			children, err := repos.AccountRepo.ListChildAccounts(ctx, companyID, accountID)
			if err != nil {
				return err
			}
			if n := countLive(children); n > 0 {
				return apperrors.NewStateConflictError("account %s still has %d child accounts and must stay a header", current.AccountCode, n)
			}
		}

		now := s.Now()
		if patch.ChangesParent(*current) {
			if err := s.reparent(ctx, repos.AccountRepo, &updated, actor, now); err != nil {
				return err
			}
		}

		updated.Touch(actor.UserID, now)
		return repos.AccountRepo.UpdateAccount(ctx, updated, current.Version)
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated", slog.String("account_id", accountID), slog.Int64("version", updated.Version))
	return &updated, nil
}

// reparent validates the new parent of account, sets its level and re-levels every descendant.
func (s *AccountService) reparent(ctx context.Context, repo portsrepo.AccountRepositoryFacade, account *domain.Account, actor domain.Actor, now time.Time) error {
	all, err := repo.ListAccounts(ctx, account.CompanyID, true)
	if err != nil {
		return err
	}
	ix := domain.NewAccountIndex(all)

	var parent *domain.Account
	if newParentID := account.ParentID(); newParentID != "" {
		if newParentID == account.AccountID || ix.IsDescendant(newParentID, account.AccountID) {
			return apperrors.NewReferentialError("moving account %s under %s would create a cycle", account.AccountCode, newParentID)
		}
		if p, ok := ix.Get(newParentID); ok {
			parent = &p
		}
		if err := domain.ValidateParent(*account, newParentID, parent); err != nil {
			return err
		}
	}

	account.Level = domain.LevelUnder(parent)
	levels := ix.RelevelSubtree(account.AccountID, account.Level)
	delete(levels, account.AccountID)
	if len(levels) == 0 {
		return nil
	}
	s.LogDebug(ctx, "Re-levelling descendants", slog.String("account_id", account.AccountID), slog.Int("count", len(levels)))
	return repo.UpdateAccountLevels(ctx, account.CompanyID, levels, actor.UserID, now)
}

// DeleteAccount soft-deletes an account. Accounts with live children cannot be deleted.
func (s *AccountService) DeleteAccount(ctx context.Context, companyID string, accountID string, actor domain.Actor) (*domain.Account, error) {
	if err := s.Authorize(ctx, actor, domain.Capability{Module: domain.ModuleAccount, Action: domain.CanDelete}); err != nil {
		return nil, err
	}

	var account domain.Account
	err := s.Store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		if err := repos.AccountRepo.LockHierarchy(ctx, companyID); err != nil {
			return err
		}
		current, err := repos.AccountRepo.FindAccountByID(ctx, companyID, accountID)
		if err != nil {
			return err
		}
		if current.IsDeleted() {
			return apperrors.NewStateConflictError("account %s is already deleted", current.AccountCode)
		}
		children, err := repos.AccountRepo.ListChildAccounts(ctx, companyID, accountID)
		if err != nil {
			return err
		}
		if n := countLive(children); n > 0 {
			return apperrors.NewStateConflictError("account %s has %d child accounts; delete or move them first", current.AccountCode, n)
		}

		account = *current
		now := s.Now()
		account.DeletedAt = &now
		account.Touch(actor.UserID, now)
		return repos.AccountRepo.UpdateAccount(ctx, account, current.Version)
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID))
	return &account, nil
}

// RestoreAccount undeletes an account. Its parent, if any, must not be deleted.
func (s *AccountService) RestoreAccount(ctx context.Context, companyID string, accountID string, actor domain.Actor) (*domain.Account, error) {
	if err := s.Authorize(ctx, actor, domain.Capability{Module: domain.ModuleAccount, Action: domain.CanDelete}); err != nil {
		return nil, err
	}

	var account domain.Account
	err := s.Store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		if err := repos.AccountRepo.LockHierarchy(ctx, companyID); err != nil {
			return err
		}
		current, err := repos.AccountRepo.FindAccountByID(ctx, companyID, accountID)
		if err != nil {
			return err
		}
		if !current.IsDeleted() {
			return apperrors.NewStateConflictError("account %s is not deleted", current.AccountCode)
		}
		if current.ParentAccountID != nil {
			parent, err := findOptionalAccount(ctx, repos.AccountRepo, companyID, *current.ParentAccountID)
			if err != nil {
				return err
			}
			if parent == nil || parent.IsDeleted() {
				return apperrors.NewReferentialError("parent account of %s is deleted; restore it first", current.AccountCode)
			}
		}

		account = *current
		account.DeletedAt = nil
		account.Touch(actor.UserID, s.Now())
		return repos.AccountRepo.UpdateAccount(ctx, account, current.Version)
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to restore account", slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account restored", slog.String("account_id", accountID))
	return &account, nil
}

// GetAccountByID retrieves a specific account by its unique identifier.
func (s *AccountService) GetAccountByID(ctx context.Context, companyID string, accountID string) (*domain.Account, error) {
	var account *domain.Account
	err := s.Store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		var err error
		account, err = repos.AccountRepo.FindAccountByID(ctx, companyID, accountID)
		return err
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to get account", slog.String("account_id", accountID))
		return nil, err
	}
	return account, nil
}

// ListAccounts returns the filtered chart flattened in pre-order.
func (s *AccountService) ListAccounts(ctx context.Context, companyID string, params dto.AccountTreeParams) ([]domain.Account, error) {
	tree, err := s.GetAccountTree(ctx, companyID, params)
	if err != nil {
		return nil, err
	}
	return domain.Flatten(tree.Roots), nil
}

// GetAccountTree builds the filtered forest and reports sibling name collisions.
func (s *AccountService) GetAccountTree(ctx context.Context, companyID string, params dto.AccountTreeParams) (*domain.AccountTree, error) {
	filter := params.ToFilter()

	var accounts []domain.Account
	err := s.Store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		var err error
		accounts, err = repos.AccountRepo.ListAccounts(ctx, companyID, filter.IncludeDeleted)
		return err
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to list accounts", slog.String("company_id", companyID))
		return nil, err
	}

	matched := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if filter.Match(a) {
			matched = append(matched, a)
		}
	}
	roots := domain.BuildTree(matched)
	if filter.MaxDepth != nil {
		roots = domain.PruneDepth(roots, *filter.MaxDepth)
	}
	return &domain.AccountTree{
		Roots:          roots,
		DuplicateNames: domain.DuplicateNames(domain.Flatten(roots)),
	}, nil
}

func ensureCodeFree(ctx context.Context, repo portsrepo.AccountReader, companyID, code string) error {
	existing, err := repo.FindAccountByCode(ctx, companyID, code)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing != nil:
		return fmt.Errorf("%w: account_code %s is already used", apperrors.ErrDuplicate, code)
	}
	return nil
}

// findOptionalAccount maps ErrNotFound to a nil account.
func findOptionalAccount(ctx context.Context, repo portsrepo.AccountReader, companyID, accountID string) (*domain.Account, error) {
	a, err := repo.FindAccountByID(ctx, companyID, accountID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return a, err
}

func countLive(accounts []domain.Account) int {
	n := 0
	for _, a := range accounts {
		if !a.IsDeleted() {
			n++
		}
	}
	return n
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func staleVersion(what string, current, expected int64) error {
	return apperrors.NewStateConflictError("%s was modified concurrently (version %d, expected %d)", what, current, expected)
}
