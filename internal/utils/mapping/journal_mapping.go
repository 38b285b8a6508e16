package mapping

import (
	"github.com/SscSPs/subledger/internal/core/domain"
	"github.com/SscSPs/subledger/internal/models"
)

// ToModelJournalHeader converts a domain JournalHeader to a model JournalHeader
func ToModelJournalHeader(d domain.JournalHeader) models.JournalHeader {
	return models.JournalHeader{
		JournalID:       d.JournalID,
		CompanyID:       d.CompanyID,
		BranchID:        d.BranchID,
		JournalNumber:   d.JournalNumber,
		JournalDate:     d.JournalDate,
		Period:          d.Period,
		JournalType:     string(d.JournalType),
		Description:     d.Description,
		CurrencyCode:    d.CurrencyCode,
		ExchangeRate:    d.ExchangeRate,
		Status:          models.JournalStatus(d.Status),
		TotalDebit:      d.TotalDebit,
		TotalCredit:     d.TotalCredit,
		IsReversed:      d.IsReversed,
		ReversedBy:      d.ReversedBy,
		ReversalDate:    d.ReversalDate,
		ReversalReason:  d.ReversalReason,
		ReversalOf:      d.ReversalOf,
		SubmittedBy:     d.SubmittedBy,
		SubmittedAt:     d.SubmittedAt,
		ApprovedBy:      d.ApprovedBy,
		ApprovedAt:      d.ApprovedAt,
		RejectedBy:      d.RejectedBy,
		RejectedAt:      d.RejectedAt,
		RejectionReason: d.RejectionReason,
		PostedBy:        d.PostedBy,
		PostedAt:        d.PostedAt,
		DeletedAt:       d.DeletedAt,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalHeader converts a model JournalHeader to a domain JournalHeader
func ToDomainJournalHeader(m models.JournalHeader) domain.JournalHeader {
	return domain.JournalHeader{
		JournalID:       m.JournalID,
		CompanyID:       m.CompanyID,
		BranchID:        m.BranchID,
		JournalNumber:   m.JournalNumber,
		JournalDate:     m.JournalDate,
		Period:          m.Period,
		JournalType:     domain.JournalType(m.JournalType),
		Description:     m.Description,
		CurrencyCode:    m.CurrencyCode,
		ExchangeRate:    m.ExchangeRate,
		Status:          domain.JournalStatus(m.Status),
		TotalDebit:      m.TotalDebit,
		TotalCredit:     m.TotalCredit,
		IsReversed:      m.IsReversed,
		ReversedBy:      m.ReversedBy,
		ReversalDate:    m.ReversalDate,
		ReversalReason:  m.ReversalReason,
		ReversalOf:      m.ReversalOf,
		SubmittedBy:     m.SubmittedBy,
		SubmittedAt:     m.SubmittedAt,
		ApprovedBy:      m.ApprovedBy,
		ApprovedAt:      m.ApprovedAt,
		RejectedBy:      m.RejectedBy,
		RejectedAt:      m.RejectedAt,
		RejectionReason: m.RejectionReason,
		PostedBy:        m.PostedBy,
		PostedAt:        m.PostedAt,
		DeletedAt:       m.DeletedAt,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:          d.LineID,
		JournalHeaderID: d.JournalHeaderID,
		LineNumber:      d.LineNumber,
		AccountID:       d.AccountID,
		Description:     d.Description,
		DebitAmount:     d.DebitAmount,
		CreditAmount:    d.CreditAmount,
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:          m.LineID,
		JournalHeaderID: m.JournalHeaderID,
		LineNumber:      m.LineNumber,
		AccountID:       m.AccountID,
		Description:     m.Description,
		DebitAmount:     m.DebitAmount,
		CreditAmount:    m.CreditAmount,
	}
}

// ToModelStatusChange converts a domain JournalStatusChange to a model JournalStatusChange
func ToModelStatusChange(d domain.JournalStatusChange) models.JournalStatusChange {
	return models.JournalStatusChange{
		ChangeID:   d.ChangeID,
		JournalID:  d.JournalID,
		CompanyID:  d.CompanyID,
		Action:     string(d.Action),
		FromStatus: models.JournalStatus(d.FromStatus),
		ToStatus:   models.JournalStatus(d.ToStatus),
		ActorID:    d.ActorID,
		Reason:     d.Reason,
		At:         d.At,
	}
}

// ToDomainStatusChange converts a model JournalStatusChange to a domain JournalStatusChange
func ToDomainStatusChange(m models.JournalStatusChange) domain.JournalStatusChange {
	return domain.JournalStatusChange{
		ChangeID:   m.ChangeID,
		JournalID:  m.JournalID,
		CompanyID:  m.CompanyID,
		Action:     domain.JournalAction(m.Action),
		FromStatus: domain.JournalStatus(m.FromStatus),
		ToStatus:   domain.JournalStatus(m.ToStatus),
		ActorID:    m.ActorID,
		Reason:     m.Reason,
		At:         m.At,
	}
}
