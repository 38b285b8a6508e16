package mapping

import (
	"github.com/SscSPs/subledger/internal/core/domain"
	"github.com/SscSPs/subledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		CompanyID:       d.CompanyID,
		BranchID:        d.BranchID,
		AccountCode:     d.AccountCode,
		AccountName:     d.AccountName,
		AccountType:     models.AccountType(d.AccountType),
		AccountSubtype:  d.AccountSubtype,
		ParentAccountID: d.ParentAccountID,
		IsHeader:        d.IsHeader,
		IsPostable:      d.IsPostable,
		NormalBalance:   string(d.NormalBalance),
		CurrencyCode:    d.CurrencyCode,
		SortOrder:       d.SortOrder,
		Level:           d.Level,
		IsActive:        d.IsActive,
		Description:     d.Description,
		DeletedAt:       d.DeletedAt,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		CompanyID:       m.CompanyID,
		BranchID:        m.BranchID,
		AccountCode:     m.AccountCode,
		AccountName:     m.AccountName,
		AccountType:     domain.AccountType(m.AccountType),
		AccountSubtype:  m.AccountSubtype,
		ParentAccountID: m.ParentAccountID,
		IsHeader:        m.IsHeader,
		IsPostable:      m.IsPostable,
		NormalBalance:   domain.NormalBalance(m.NormalBalance),
		CurrencyCode:    m.CurrencyCode,
		SortOrder:       m.SortOrder,
		Level:           m.Level,
		IsActive:        m.IsActive,
		Description:     m.Description,
		DeletedAt:       m.DeletedAt,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
