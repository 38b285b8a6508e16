package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/subledger/internal/apperrors"
	"github.com/SscSPs/subledger/internal/core/domain"
	portsrepo "github.com/SscSPs/subledger/internal/core/ports/repositories"
)

type accountRepository struct {
	st *state
}

var _ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)

func (r *accountRepository) FindAccountByID(_ context.Context, companyID, accountID string) (*domain.Account, error) {
	a, ok := r.st.accounts[accountID]
	if !ok || a.CompanyID != companyID {
		return nil, apperrors.NewNotFoundError("account " + accountID)
	}
	return &a, nil
}

func (r *accountRepository) FindAccountByCode(_ context.Context, companyID, accountCode string) (*domain.Account, error) {
	for _, a := range r.st.accounts {
		if a.CompanyID == companyID && a.AccountCode == accountCode {
			return &a, nil
		}
	}
	return nil, apperrors.NewNotFoundError("account " + accountCode)
}

func (r *accountRepository) FindAccountsByIDs(_ context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if a, ok := r.st.accounts[id]; ok && a.CompanyID == companyID {
			out[id] = a
		}
	}
	return out, nil
}

func (r *accountRepository) ListAccounts(_ context.Context, companyID string, includeDeleted bool) ([]domain.Account, error) {
	return r.filter(func(a domain.Account) bool {
		return a.CompanyID == companyID && (includeDeleted || !a.IsDeleted())
	}), nil
}

func (r *accountRepository) ListChildAccounts(_ context.Context, companyID, parentAccountID string) ([]domain.Account, error) {
	return r.filter(func(a domain.Account) bool {
		return a.CompanyID == companyID && a.ParentID() == parentAccountID
	}), nil
}

func (r *accountRepository) filter(keep func(domain.Account) bool) []domain.Account {
	out := []domain.Account{}
	for _, a := range r.st.accounts {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].AccountCode < out[j].AccountCode
	})
	return out
}

func (r *accountRepository) SaveAccount(_ context.Context, account domain.Account) error {
	if _, ok := r.st.accounts[account.AccountID]; ok {
		return apperrors.NewAppError(409, "account id already exists", apperrors.ErrDuplicate)
	}
	for _, a := range r.st.accounts {
		if a.CompanyID == account.CompanyID && a.AccountCode == account.AccountCode {
			return apperrors.NewAppError(409, "account_code "+account.AccountCode+" is already used", apperrors.ErrDuplicate)
		}
	}
	r.st.accounts[account.AccountID] = account
	return nil
}

func (r *accountRepository) UpdateAccount(_ context.Context, account domain.Account, expectedVersion int64) error {
	current, ok := r.st.accounts[account.AccountID]
	if !ok || current.CompanyID != account.CompanyID {
		return apperrors.NewNotFoundError("account " + account.AccountID)
	}
	if current.Version != expectedVersion {
		return apperrors.NewStateConflictError("account was modified concurrently")
	}
	r.st.accounts[account.AccountID] = account
	return nil
}

func (r *accountRepository) UpdateAccountLevels(_ context.Context, companyID string, levels map[string]int, userID string, now time.Time) error {
	for id, level := range levels {
		a, ok := r.st.accounts[id]
		if !ok || a.CompanyID != companyID {
			return apperrors.NewNotFoundError("account " + id)
		}
		a.Level = level
		a.Touch(userID, now)
		r.st.accounts[id] = a
	}
	return nil
}

// LockHierarchy is a no-op: units of work are already serialized.
func (r *accountRepository) LockHierarchy(_ context.Context, _ string) error {
	return nil
}
