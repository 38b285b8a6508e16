package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

// JournalHeader is a row of the journal_headers table.
type JournalHeader struct {
	JournalID     string          `db:"journal_id"`
	CompanyID     string          `db:"company_id"`
	BranchID      *string         `db:"branch_id"`
	JournalNumber string          `db:"journal_number"`
	JournalDate   time.Time       `db:"journal_date"`
	Period        string          `db:"period"`
	JournalType   string          `db:"journal_type"`
	Description   string          `db:"description"`
	CurrencyCode  string          `db:"currency_code"`
	ExchangeRate  decimal.Decimal `db:"exchange_rate"`
	Status        JournalStatus   `db:"status"`
	TotalDebit    decimal.Decimal `db:"total_debit"`
	TotalCredit   decimal.Decimal `db:"total_credit"`

	IsReversed     bool       `db:"is_reversed"`
	ReversedBy     *string    `db:"reversed_by"`
	ReversalDate   *time.Time `db:"reversal_date"`
	ReversalReason *string    `db:"reversal_reason"`
	ReversalOf     *string    `db:"reversal_of"`

	SubmittedBy     *string    `db:"submitted_by"`
	SubmittedAt     *time.Time `db:"submitted_at"`
	ApprovedBy      *string    `db:"approved_by"`
	ApprovedAt      *time.Time `db:"approved_at"`
	RejectedBy      *string    `db:"rejected_by"`
	RejectedAt      *time.Time `db:"rejected_at"`
	RejectionReason *string    `db:"rejection_reason"`
	PostedBy        *string    `db:"posted_by"`
	PostedAt        *time.Time `db:"posted_at"`

	DeletedAt *time.Time `db:"deleted_at"`
	AuditFields
}

// JournalLine is a row of the journal_lines table.
type JournalLine struct {
	LineID          string          `db:"line_id"`
	JournalHeaderID string          `db:"journal_header_id"`
	LineNumber      int             `db:"line_number"`
	AccountID       string          `db:"account_id"`
	Description     *string         `db:"description"`
	DebitAmount     decimal.Decimal `db:"debit_amount"`
	CreditAmount    decimal.Decimal `db:"credit_amount"`
}

// JournalStatusChange is a row of the journal_status_changes table.
type JournalStatusChange struct {
	ChangeID   string        `db:"change_id"`
	JournalID  string        `db:"journal_id"`
	CompanyID  string        `db:"company_id"`
	Action     string        `db:"action"`
	FromStatus JournalStatus `db:"from_status"`
	ToStatus   JournalStatus `db:"to_status"`
	ActorID    string        `db:"actor_id"`
	Reason     *string       `db:"reason"`
	At         time.Time     `db:"at"`
}
