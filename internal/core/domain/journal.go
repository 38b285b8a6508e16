package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/subledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Draft     JournalStatus = "DRAFT"
	Submitted JournalStatus = "SUBMITTED"
	Approved  JournalStatus = "APPROVED"
	Rejected  JournalStatus = "REJECTED"
	Posted    JournalStatus = "POSTED"
	Reversed  JournalStatus = "REVERSED"
)

// IsValid reports whether s is a known status.
func (s JournalStatus) IsValid() bool {
	switch s {
	case Draft, Submitted, Approved, Rejected, Posted, Reversed:
		return true
	}
	return false
}

// IsEditable reports whether header and lines may still change.
func (s JournalStatus) IsEditable() bool {
	return s == Draft || s == Rejected
}

// JournalType classifies a journal.
type JournalType string

const (
	General    JournalType = "GENERAL"
	Adjustment JournalType = "ADJUSTMENT"
	Opening    JournalType = "OPENING"
	Closing    JournalType = "CLOSING"
	// ReversalJournal is reserved for compensating journals.
	ReversalJournal JournalType = "REVERSAL"
)

// IsValid reports whether t is a known journal type.
func (t JournalType) IsValid() bool {
	switch t {
	case General, Adjustment, Opening, Closing, ReversalJournal:
		return true
	}
	return false
}

// JournalAction is a request to move a journal through its lifecycle.
type JournalAction string

const (
	ActionSubmit  JournalAction = "SUBMIT"
	ActionApprove JournalAction = "APPROVE"
	ActionReject  JournalAction = "REJECT"
	ActionPost    JournalAction = "POST"
	ActionReverse JournalAction = "REVERSE"
	ActionReopen  JournalAction = "REOPEN"
)

// IsValid reports whether a is a known action.
func (a JournalAction) IsValid() bool {
	switch a {
	case ActionSubmit, ActionApprove, ActionReject, ActionPost, ActionReverse, ActionReopen:
		return true
	}
	return false
}

var journalTransitions = map[JournalStatus]map[JournalAction]JournalStatus{
	Draft:     {ActionSubmit: Submitted},
	Submitted: {ActionApprove: Approved, ActionReject: Rejected},
	Approved:  {ActionPost: Posted, ActionReject: Rejected},
	Rejected:  {ActionReopen: Draft},
	Posted:    {ActionReverse: Reversed},
	Reversed:  {},
}

// NextStatus resolves the status that action leads to from the given status.
func NextStatus(from JournalStatus, action JournalAction) (JournalStatus, error) {
	to, ok := journalTransitions[from][action]
	if !ok {
		return "", apperrors.NewStateConflictError("cannot %s a journal in status %s", strings.ToLower(string(action)), from)
	}
	return to, nil
}

// AllowedActions lists the actions valid from a status.
func AllowedActions(from JournalStatus) []JournalAction {
	out := []JournalAction{}
	for _, a := range []JournalAction{ActionSubmit, ActionApprove, ActionReject, ActionPost, ActionReopen, ActionReverse} {
		if _, ok := journalTransitions[from][a]; ok {
			out = append(out, a)
		}
	}
	return out
}

// JournalLine is one debit or credit of a journal.
type JournalLine struct {
	LineID          string          `json:"lineID"`
	JournalHeaderID string          `json:"journalHeaderID"`
	LineNumber      int             `json:"lineNumber"`
	AccountID       string          `json:"accountID"`
	Description     *string         `json:"description,omitempty"`
	DebitAmount     decimal.Decimal `json:"debitAmount"`
	CreditAmount    decimal.Decimal `json:"creditAmount"`
}

// JournalHeader is the journal record without its lines.
type JournalHeader struct {
	JournalID     string          `json:"journalID"`
	CompanyID     string          `json:"companyID"`
	BranchID      *string         `json:"branchID,omitempty"`
	JournalNumber string          `json:"journalNumber"`
	JournalDate   time.Time       `json:"journalDate"`
	Period        string          `json:"period"`
	JournalType   JournalType     `json:"journalType"`
	Description   string          `json:"description"`
	CurrencyCode  string          `json:"currencyCode"`
	ExchangeRate  decimal.Decimal `json:"exchangeRate"`
	Status        JournalStatus   `json:"status"`
	TotalDebit    decimal.Decimal `json:"totalDebit"`
	TotalCredit   decimal.Decimal `json:"totalCredit"`

	IsReversed     bool       `json:"isReversed"`
	ReversedBy     *string    `json:"reversedBy,omitempty"` // id of the compensating journal
	ReversalDate   *time.Time `json:"reversalDate,omitempty"`
	ReversalReason *string    `json:"reversalReason,omitempty"`
	ReversalOf     *string    `json:"reversalOf,omitempty"` // set on the compensating journal

	SubmittedBy     *string    `json:"submittedBy,omitempty"`
	SubmittedAt     *time.Time `json:"submittedAt,omitempty"`
	ApprovedBy      *string    `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectedBy      *string    `json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	PostedBy        *string    `json:"postedBy,omitempty"`
	PostedAt        *time.Time `json:"postedAt,omitempty"`

	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	AuditFields
}

// IsDeleted reports whether the journal has been soft-deleted.
func (h JournalHeader) IsDeleted() bool {
	return h.DeletedAt != nil
}

// Journal is a header together with its lines.
type Journal struct {
	JournalHeader
	Lines []JournalLine `json:"lines"`
}

// Clone returns a deep copy of the line slice so callers can mutate freely.
func (j Journal) Clone() Journal {
	out := j
	out.Lines = append([]JournalLine(nil), j.Lines...)
	return out
}

// PeriodOf returns the "YYYY-MM" accounting period of a date.
func PeriodOf(t time.Time) string {
	return t.Format("2006-01")
}

// FormatJournalNumber renders a sequence value as JV-YYYYMM-NNNNN, or
// JV-{branch}-YYYYMM-NNNNN for branch journals so every counter scope yields distinct numbers.
func FormatJournalNumber(branchID *string, period string, seq int64) string {
	compact := strings.ReplaceAll(period, "-", "")
	if branchID != nil && *branchID != "" {
		return fmt.Sprintf("JV-%s-%s-%05d", *branchID, compact, seq)
	}
	return fmt.Sprintf("JV-%s-%05d", compact, seq)
}

// DefaultBalanceTolerance is the absolute difference under which debits and credits balance.
var DefaultBalanceTolerance = decimal.RequireFromString("0.01")

// ComputeTotals sums the debit and credit side of lines.
func ComputeTotals(lines []JournalLine) (totalDebit, totalCredit decimal.Decimal) {
	totalDebit, totalCredit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		totalDebit = totalDebit.Add(l.DebitAmount)
		totalCredit = totalCredit.Add(l.CreditAmount)
	}
	return totalDebit, totalCredit
}

// CheckBalance returns a BalanceError unless |debit - credit| < tolerance.
func CheckBalance(totalDebit, totalCredit, tolerance decimal.Decimal) error {
	if totalDebit.Sub(totalCredit).Abs().LessThan(tolerance) {
		return nil
	}
	return apperrors.NewBalanceError(totalDebit, totalCredit)
}

// RenumberLines assigns line numbers 1..n in slice order.
func RenumberLines(lines []JournalLine) {
	for i := range lines {
		lines[i].LineNumber = i + 1
	}
}

// ValidateLines enforces the minimum line count and the per-line debit/credit rules.
func ValidateLines(lines []JournalLine) error {
	if len(lines) < 2 {
		return apperrors.NewFieldError("lines", "min 2 lines")
	}
	for _, l := range lines {
		if strings.TrimSpace(l.AccountID) == "" {
			return apperrors.NewLineError(l.LineNumber, "account_id is required")
		}
		if l.DebitAmount.IsNegative() {
			return apperrors.NewLineError(l.LineNumber, "debit_amount cannot be negative")
		}
		if l.CreditAmount.IsNegative() {
			return apperrors.NewLineError(l.LineNumber, "credit_amount cannot be negative")
		}
		debit, credit := l.DebitAmount.IsPositive(), l.CreditAmount.IsPositive()
		if debit && credit {
			return apperrors.NewLineError(l.LineNumber, "debit_amount and credit_amount cannot both be set")
		}
		if !debit && !credit {
			return apperrors.NewLineError(l.LineNumber, "either debit_amount or credit_amount must be greater than zero")
		}
	}
	return nil
}

// ValidateLineAccounts checks that every line references a live, active, postable account of the company.
func ValidateLineAccounts(companyID string, lines []JournalLine, accounts map[string]Account) error {
	for _, l := range lines {
		acc, ok := accounts[l.AccountID]
		if !ok || acc.CompanyID != companyID {
			return apperrors.NewReferentialError("line %d: account %s not found", l.LineNumber, l.AccountID)
		}
		if acc.IsDeleted() {
			return apperrors.NewReferentialError("line %d: account %s is deleted", l.LineNumber, acc.AccountCode)
		}
		if !acc.IsActive {
			return apperrors.NewReferentialError("line %d: account %s is inactive", l.LineNumber, acc.AccountCode)
		}
		if !acc.IsPostable {
			return apperrors.NewReferentialError("line %d: account %s is not postable", l.LineNumber, acc.AccountCode)
		}
	}
	return nil
}

// ValidateHeader checks the header fields a caller controls.
func (h JournalHeader) ValidateHeader() error {
	if h.CompanyID == "" {
		return apperrors.NewFieldError("company_id", "is required")
	}
	if h.JournalDate.IsZero() {
		return apperrors.NewFieldError("journal_date", "is required")
	}
	if !h.JournalType.IsValid() {
		return apperrors.NewFieldError("journal_type", "must be one of GENERAL, ADJUSTMENT, OPENING, CLOSING")
	}
	if strings.TrimSpace(h.Description) == "" {
		return apperrors.NewFieldError("description", "is required")
	}
	if !IsValidCurrencyCode(h.CurrencyCode) {
		return apperrors.NewFieldError("currency_code", "must be 3 uppercase letters")
	}
	if !h.ExchangeRate.IsPositive() {
		return apperrors.NewFieldError("exchange_rate", "must be greater than zero")
	}
	return nil
}

// ReverseLines copies lines with debit and credit swapped. Debit lines come first,
// each side keeping the original line order, and the result is renumbered 1..n.
func ReverseLines(lines []JournalLine, newJournalID string, newID func() string) []JournalLine {
	debits := make([]JournalLine, 0, len(lines))
	credits := make([]JournalLine, 0, len(lines))
	ordered := append([]JournalLine(nil), lines...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].LineNumber < ordered[j].LineNumber })
	for _, l := range ordered {
		r := JournalLine{
			LineID:          newID(),
			JournalHeaderID: newJournalID,
			AccountID:       l.AccountID,
			Description:     l.Description,
			DebitAmount:     l.CreditAmount,
			CreditAmount:    l.DebitAmount,
		}
		if r.DebitAmount.IsPositive() {
			debits = append(debits, r)
		} else {
			credits = append(credits, r)
		}
	}
	out := append(debits, credits...)
	RenumberLines(out)
	return out
}
