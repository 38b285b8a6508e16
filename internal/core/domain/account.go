package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/SscSPs/subledger/internal/apperrors"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// NormalBalance is the side on which an account's balance increases.
type NormalBalance string

const (
	Debit  NormalBalance = "DEBIT"
	Credit NormalBalance = "CREDIT"
)

// NormalBalance derives the normal balance side from the account type.
func (t AccountType) NormalBalance() NormalBalance {
	switch t {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

const (
	MaxAccountCodeLength = 30
	MaxSortOrder         = 9999
)

var (
	accountCodePattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,30}$`)
	currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// IsValidAccountCode reports whether code is 1-30 letters, digits, hyphens or underscores.
func IsValidAccountCode(code string) bool {
	return accountCodePattern.MatchString(code)
}

// IsValidCurrencyCode reports whether code is three uppercase letters.
func IsValidCurrencyCode(code string) bool {
	return currencyCodePattern.MatchString(code)
}

// Account is a node in a company's chart of accounts.
type Account struct {
	AccountID       string        `json:"accountID"`
	CompanyID       string        `json:"companyID"`
	BranchID        *string       `json:"branchID,omitempty"`
	AccountCode     string        `json:"accountCode"`
	AccountName     string        `json:"accountName"`
	AccountType     AccountType   `json:"accountType"`
	AccountSubtype  *string       `json:"accountSubtype,omitempty"`
	ParentAccountID *string       `json:"parentAccountID,omitempty"`
	IsHeader        bool          `json:"isHeader"`
	IsPostable      bool          `json:"isPostable"`
	NormalBalance   NormalBalance `json:"normalBalance"`
	CurrencyCode    string        `json:"currencyCode"`
	SortOrder       int           `json:"sortOrder"`
	Level           int           `json:"level"`
	IsActive        bool          `json:"isActive"`
	Description     string        `json:"description"`
	DeletedAt       *time.Time    `json:"deletedAt,omitempty"`
	AuditFields
}

// IsDeleted reports whether the account has been soft-deleted.
func (a Account) IsDeleted() bool {
	return a.DeletedAt != nil
}

// ParentID returns the parent id or "" for a root account.
func (a Account) ParentID() string {
	if a.ParentAccountID == nil {
		return ""
	}
	return *a.ParentAccountID
}

// Validate checks the field-level and structural invariants that do not need other accounts.
func (a Account) Validate() error {
	if a.CompanyID == "" {
		return apperrors.NewFieldError("company_id", "is required")
	}
	if !IsValidAccountCode(a.AccountCode) {
		return apperrors.NewFieldError("account_code", "must be 1-30 characters of letters, digits, hyphen or underscore")
	}
	if strings.TrimSpace(a.AccountName) == "" {
		return apperrors.NewFieldError("account_name", "is required")
	}
	if !a.AccountType.IsValid() {
		return apperrors.NewFieldError("account_type", "must be one of ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE")
	}
	if !IsValidCurrencyCode(a.CurrencyCode) {
		return apperrors.NewFieldError("currency_code", "must be 3 uppercase letters")
	}
	if a.SortOrder < 0 || a.SortOrder > MaxSortOrder {
		return apperrors.NewFieldError("sort_order", "must be between 0 and 9999")
	}
	if a.IsHeader && a.IsPostable {
		return apperrors.NewValidationError("is_header and is_postable are mutually exclusive")
	}
	if !a.IsHeader && !a.IsPostable {
		return apperrors.NewValidationError("account must be either a header or postable")
	}
	if a.ParentAccountID != nil && *a.ParentAccountID == a.AccountID {
		return apperrors.NewReferentialError("account cannot be its own parent")
	}
	return nil
}

// ValidateParent checks that parent may hold child. A nil parent means the id did not resolve.
func ValidateParent(child Account, parentID string, parent *Account) error {
	if parent == nil || parent.CompanyID != child.CompanyID {
		return apperrors.NewReferentialError("parent account %s not found", parentID)
	}
	if parent.IsDeleted() {
		return apperrors.NewReferentialError("parent account %s is deleted", parent.AccountCode)
	}
	if !parent.IsActive {
		return apperrors.NewReferentialError("parent account %s is inactive", parent.AccountCode)
	}
	if !parent.IsHeader {
		return apperrors.NewReferentialError("parent account %s is not a header account", parent.AccountCode)
	}
	if parent.AccountType != child.AccountType {
		return apperrors.NewReferentialError("parent account %s has type %s, expected %s",
			parent.AccountCode, parent.AccountType, child.AccountType)
	}
	return nil
}

// LevelUnder returns the level an account takes when placed under parent.
func LevelUnder(parent *Account) int {
	if parent == nil {
		return 0
	}
	return parent.Level + 1
}

// AccountPatch lists the fields a caller asked to change. Nil means untouched.
// AccountCode, AccountType and CompanyID are carried only so they can be rejected.
type AccountPatch struct {
	AccountCode     *string
	AccountType     *AccountType
	CompanyID       *string
	AccountName     *string
	AccountSubtype  *string
	BranchID        *string
	ParentAccountID *string // pointer to "" detaches to the root
	IsHeader        *bool
	IsPostable      *bool
	CurrencyCode    *string
	SortOrder       *int
	IsActive        *bool
	Description     *string
	ExpectedVersion *int64
}

// CheckImmutable rejects patches that name immutable fields.
func (p AccountPatch) CheckImmutable() error {
	switch {
	case p.AccountCode != nil:
		return apperrors.NewFieldError("account_code", "is immutable")
	case p.AccountType != nil:
		return apperrors.NewFieldError("account_type", "is immutable")
	case p.CompanyID != nil:
		return apperrors.NewFieldError("company_id", "is immutable")
	}
	return nil
}

// ChangesParent reports whether applying the patch to a moves it in the hierarchy.
func (p AccountPatch) ChangesParent(a Account) bool {
	return p.ParentAccountID != nil && *p.ParentAccountID != a.ParentID()
}

// Apply returns a copy of a with the patch applied. Derived fields are left to the caller.
func (p AccountPatch) Apply(a Account) Account {
	if p.AccountName != nil {
		a.AccountName = *p.AccountName
	}
	if p.AccountSubtype != nil {
		a.AccountSubtype = optional(*p.AccountSubtype)
	}
	if p.BranchID != nil {
		a.BranchID = optional(*p.BranchID)
	}
	if p.ParentAccountID != nil {
		a.ParentAccountID = optional(*p.ParentAccountID)
	}
	if p.IsHeader != nil {
		a.IsHeader = *p.IsHeader
	}
	if p.IsPostable != nil {
		a.IsPostable = *p.IsPostable
	}
	if p.CurrencyCode != nil {
		a.CurrencyCode = *p.CurrencyCode
	}
	if p.SortOrder != nil {
		a.SortOrder = *p.SortOrder
	}
	if p.IsActive != nil {
		a.IsActive = *p.IsActive
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	return a
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return strPtr(s)
}
