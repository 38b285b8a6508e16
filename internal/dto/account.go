package dto

import (
	"time"

	"github.com/SscSPs/subledger/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	AccountCode     string             `json:"accountCode" binding:"required,account_code"`
	AccountName     string             `json:"accountName" binding:"required,max=200"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	AccountSubtype  *string            `json:"accountSubtype"`
	BranchID        *string            `json:"branchID"`
	ParentAccountID *string            `json:"parentAccountID"` // Optional, use pointer for nullability
	IsHeader        bool               `json:"isHeader"`
	IsPostable      bool               `json:"isPostable"`
	CurrencyCode    string             `json:"currencyCode" binding:"required,currency_code"`
	SortOrder       int                `json:"sortOrder" binding:"min=0,max=9999"`
	IsActive        *bool              `json:"isActive"` // defaults to true
	Description     string             `json:"description"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
// AccountCode, AccountType and CompanyID are accepted only so they can be refused with a clear message.
type UpdateAccountRequest struct {
	AccountCode     *string             `json:"accountCode"`
	AccountType     *domain.AccountType `json:"accountType"`
	CompanyID       *string             `json:"companyID"`
	AccountName     *string             `json:"accountName" binding:"omitempty,min=1,max=200"`
	AccountSubtype  *string             `json:"accountSubtype"`
	BranchID        *string             `json:"branchID"`
	ParentAccountID *string             `json:"parentAccountID"` // "" moves the account to the root
	IsHeader        *bool               `json:"isHeader"`
	IsPostable      *bool               `json:"isPostable"`
	CurrencyCode    *string             `json:"currencyCode" binding:"omitempty,currency_code"`
	SortOrder       *int                `json:"sortOrder" binding:"omitempty,min=0,max=9999"`
	IsActive        *bool               `json:"isActive"`
	Description     *string             `json:"description"`
	Version         *int64              `json:"version"` // optimistic concurrency token
}

// ToPatch converts the request into a domain patch.
func (r UpdateAccountRequest) ToPatch() domain.AccountPatch {
	return domain.AccountPatch{
		AccountCode:     r.AccountCode,
		AccountType:     r.AccountType,
		CompanyID:       r.CompanyID,
		AccountName:     r.AccountName,
		AccountSubtype:  r.AccountSubtype,
		BranchID:        r.BranchID,
		ParentAccountID: r.ParentAccountID,
		IsHeader:        r.IsHeader,
		IsPostable:      r.IsPostable,
		CurrencyCode:    r.CurrencyCode,
		SortOrder:       r.SortOrder,
		IsActive:        r.IsActive,
		Description:     r.Description,
		ExpectedVersion: r.Version,
	}
}

// AccountTreeParams defines query parameters for tree and flat chart reads.
type AccountTreeParams struct {
	MaxDepth        *int   `form:"maxDepth" binding:"omitempty,min=0"`
	AccountType     string `form:"accountType" binding:"omitempty,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	IncludeInactive bool   `form:"includeInactive"`
	IncludeDeleted  bool   `form:"includeDeleted"`
}

// ToFilter converts the query parameters into a domain filter.
func (p AccountTreeParams) ToFilter() domain.TreeFilter {
	f := domain.TreeFilter{
		MaxDepth:        p.MaxDepth,
		IncludeInactive: p.IncludeInactive,
		IncludeDeleted:  p.IncludeDeleted,
	}
	if p.AccountType != "" {
		t := domain.AccountType(p.AccountType)
		f.AccountType = &t
	}
	return f
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID       string               `json:"accountID"`
	CompanyID       string               `json:"companyID"`
	BranchID        *string              `json:"branchID,omitempty"`
	AccountCode     string               `json:"accountCode"`
	AccountName     string               `json:"accountName"`
	AccountType     domain.AccountType   `json:"accountType"`
	AccountSubtype  *string              `json:"accountSubtype,omitempty"`
	ParentAccountID *string              `json:"parentAccountID,omitempty"`
	IsHeader        bool                 `json:"isHeader"`
	IsPostable      bool                 `json:"isPostable"`
	NormalBalance   domain.NormalBalance `json:"normalBalance"`
	CurrencyCode    string               `json:"currencyCode"`
	SortOrder       int                  `json:"sortOrder"`
	Level           int                  `json:"level"`
	IsActive        bool                 `json:"isActive"`
	Description     string               `json:"description"`
	DeletedAt       *time.Time           `json:"deletedAt,omitempty"`
	Version         int64                `json:"version"`
	CreatedAt       time.Time            `json:"createdAt"`
	CreatedBy       string               `json:"createdBy"`
	LastUpdatedAt   time.Time            `json:"lastUpdatedAt"`
	LastUpdatedBy   string               `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		CompanyID:       acc.CompanyID,
		BranchID:        acc.BranchID,
		AccountCode:     acc.AccountCode,
		AccountName:     acc.AccountName,
		AccountType:     acc.AccountType,
		AccountSubtype:  acc.AccountSubtype,
		ParentAccountID: acc.ParentAccountID,
		IsHeader:        acc.IsHeader,
		IsPostable:      acc.IsPostable,
		NormalBalance:   acc.NormalBalance,
		CurrencyCode:    acc.CurrencyCode,
		SortOrder:       acc.SortOrder,
		Level:           acc.Level,
		IsActive:        acc.IsActive,
		Description:     acc.Description,
		DeletedAt:       acc.DeletedAt,
		Version:         acc.Version,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// AccountNodeResponse is one node of a rendered chart of accounts.
type AccountNodeResponse struct {
	AccountResponse
	Children []AccountNodeResponse `json:"children"`
}

// AccountTreeResponse is the payload of the tree endpoint.
type AccountTreeResponse struct {
	Roots          []AccountNodeResponse  `json:"roots"`
	DuplicateNames []domain.DuplicateName `json:"duplicateNames"`
}

// ToAccountTreeResponse converts a domain tree.
func ToAccountTreeResponse(tree *domain.AccountTree) AccountTreeResponse {
	var convert func([]*domain.AccountNode) []AccountNodeResponse
	convert = func(nodes []*domain.AccountNode) []AccountNodeResponse {
		out := make([]AccountNodeResponse, 0, len(nodes))
		for _, n := range nodes {
			out = append(out, AccountNodeResponse{
				AccountResponse: ToAccountResponse(&n.Account),
				Children:        convert(n.Children),
			})
		}
		return out
	}
	dups := tree.DuplicateNames
	if dups == nil {
		dups = []domain.DuplicateName{}
	}
	return AccountTreeResponse{Roots: convert(tree.Roots), DuplicateNames: dups}
}
