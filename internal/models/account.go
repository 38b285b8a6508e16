package models

import "time"

// AccountType defines the fundamental accounting type of an account.
type AccountType string

// Account is a row of the accounts table.
// Nullable columns are pointers so pgx can scan NULL into them.
type Account struct {
	AccountID       string      `db:"account_id"`
	CompanyID       string      `db:"company_id"`
	BranchID        *string     `db:"branch_id"`
	AccountCode     string      `db:"account_code"`
	AccountName     string      `db:"account_name"`
	AccountType     AccountType `db:"account_type"`
	AccountSubtype  *string     `db:"account_subtype"`
	ParentAccountID *string     `db:"parent_account_id"`
	IsHeader        bool        `db:"is_header"`
	IsPostable      bool        `db:"is_postable"`
	NormalBalance   string      `db:"normal_balance"`
	CurrencyCode    string      `db:"currency_code"`
	SortOrder       int         `db:"sort_order"`
	Level           int         `db:"level"`
	IsActive        bool        `db:"is_active"`
	Description     string      `db:"description"`
	DeletedAt       *time.Time  `db:"deleted_at"`
	AuditFields
}
