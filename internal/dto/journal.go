package dto

import (
	"time"

	"github.com/SscSPs/subledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of journal and reversal dates.
const DateLayout = "2006-01-02"

// JournalLineRequest is one line of a create or update request.
type JournalLineRequest struct {
	AccountID    string          `json:"accountID"`
	Description  *string         `json:"description"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
}

// CreateJournalRequest defines the data needed to create a new journal.
// Line-level rules are checked by the service so messages can cite line numbers.
type CreateJournalRequest struct {
	BranchID     *string              `json:"branchID"`
	JournalDate  string               `json:"journalDate" binding:"required,datetime=2006-01-02"`
	JournalType  domain.JournalType   `json:"journalType" binding:"omitempty,oneof=GENERAL ADJUSTMENT OPENING CLOSING"`
	Description  string               `json:"description" binding:"required,max=500"`
	CurrencyCode string               `json:"currencyCode" binding:"required,currency_code"`
	ExchangeRate *decimal.Decimal     `json:"exchangeRate"` // defaults to 1
	Lines        []JournalLineRequest `json:"lines"`
}

// UpdateJournalRequest replaces a journal's editable header fields and its whole line set.
type UpdateJournalRequest struct {
	CreateJournalRequest
	Version *int64 `json:"version"` // optimistic concurrency token
}

// TransitionRequest carries the optional reason and concurrency token of a lifecycle action.
type TransitionRequest struct {
	Reason       *string `json:"reason"`
	Version      *int64  `json:"version"`
	ReversalDate *string `json:"reversalDate" binding:"omitempty,datetime=2006-01-02"` // REVERSE only
}

// ReverseJournalRequest defines the data needed to reverse a posted journal.
type ReverseJournalRequest struct {
	Reason       string  `json:"reason"`
	ReversalDate *string `json:"reversalDate" binding:"omitempty,datetime=2006-01-02"` // defaults to today
	Version      *int64  `json:"version"`
}

// ListJournalsParams defines query parameters for listing journals.
type ListJournalsParams struct {
	Limit          int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken      *string `form:"nextToken"`
	Status         string  `form:"status" binding:"omitempty,oneof=DRAFT SUBMITTED APPROVED REJECTED POSTED REVERSED"`
	Period         string  `form:"period" binding:"omitempty,datetime=2006-01"`
	BranchID       *string `form:"branchID"`
	IncludeDeleted bool    `form:"includeDeleted"`
}

// BulkTransitionRequest applies one lifecycle action to many journals.
type BulkTransitionRequest struct {
	JournalIDs []string             `json:"journalIDs" binding:"required,min=1,max=200,dive,required"`
	Action     domain.JournalAction `json:"action" binding:"required,oneof=SUBMIT APPROVE REJECT POST REOPEN REVERSE"`
	Reason     *string              `json:"reason"`
}

// BulkJournalIDsRequest names the journals of a bulk delete or restore.
type BulkJournalIDsRequest struct {
	JournalIDs []string `json:"journalIDs" binding:"required,min=1,max=200,dive,required"`
}

// BulkResult is the outcome for one id of a bulk operation.
type BulkResult struct {
	JournalID string               `json:"journalID"`
	Success   bool                 `json:"success"`
	Status    domain.JournalStatus `json:"status,omitempty"`
	Code      int                  `json:"code,omitempty"` // HTTP status the failure would map to on its own
	Error     string               `json:"error,omitempty"`
}

// BulkResponse is the payload of every bulk endpoint.
type BulkResponse struct {
	Results   []BulkResult `json:"results"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// NewBulkResponse tallies per-id results.
func NewBulkResponse(results []BulkResult) BulkResponse {
	resp := BulkResponse{Results: results}
	for _, r := range results {
		if r.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	return resp
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID       string          `json:"lineID"`
	LineNumber   int             `json:"lineNumber"`
	AccountID    string          `json:"accountID"`
	Description  *string         `json:"description,omitempty"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	domain.JournalHeader
	AllowedActions []domain.JournalAction `json:"allowedActions"`
	Lines          []JournalLineResponse  `json:"lines,omitempty"`
}

// ToJournalHeaderResponse converts a header without lines. Deleted journals allow no actions.
func ToJournalHeaderResponse(h domain.JournalHeader) JournalResponse {
	resp := JournalResponse{JournalHeader: h, AllowedActions: []domain.JournalAction{}}
	if !h.IsDeleted() {
		resp.AllowedActions = domain.AllowedActions(h.Status)
	}
	return resp
}

// ToJournalLineResponses converts domain lines.
func ToJournalLineResponses(lines []domain.JournalLine) []JournalLineResponse {
	out := make([]JournalLineResponse, len(lines))
	for i, l := range lines {
		out[i] = JournalLineResponse{
			LineID:       l.LineID,
			LineNumber:   l.LineNumber,
			AccountID:    l.AccountID,
			Description:  l.Description,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
		}
	}
	return out
}

// ToJournalResponse converts a domain.Journal to JournalResponse DTO.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	resp := ToJournalHeaderResponse(j.JournalHeader)
	resp.Lines = ToJournalLineResponses(j.Lines)
	return resp
}

// ListJournalsResponse is a page of journal headers.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ReversalResponse returns both sides of a reversal.
type ReversalResponse struct {
	Original JournalResponse `json:"original"`
	Reversal JournalResponse `json:"reversal"`
}

// StatusChangeResponse is one approval-trail entry.
type StatusChangeResponse struct {
	Action     domain.JournalAction `json:"action"`
	FromStatus domain.JournalStatus `json:"fromStatus"`
	ToStatus   domain.JournalStatus `json:"toStatus"`
	ActorID    string               `json:"actorID"`
	Reason     *string              `json:"reason,omitempty"`
	At         time.Time            `json:"at"`
}

// ToStatusChangeResponses converts an approval trail.
func ToStatusChangeResponses(changes []domain.JournalStatusChange) []StatusChangeResponse {
	out := make([]StatusChangeResponse, len(changes))
	for i, c := range changes {
		out[i] = StatusChangeResponse{
			Action:     c.Action,
			FromStatus: c.FromStatus,
			ToStatus:   c.ToStatus,
			ActorID:    c.ActorID,
			Reason:     c.Reason,
			At:         c.At,
		}
	}
	return out
}
