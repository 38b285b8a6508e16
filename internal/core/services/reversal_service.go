package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/subledger/internal/apperrors"
	"github.com/SscSPs/subledger/internal/core/domain"
	portsrepo "github.com/SscSPs/subledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/subledger/internal/core/ports/services"
	"github.com/SscSPs/subledger/internal/dto"
)

// ReversalService creates compensating journals for POSTED ones.
type ReversalService struct {
	BaseService
}

// ReversalServiceOption is a function that configures a ReversalService
type ReversalServiceOption func(*ReversalService)

// WithReversalClock overrides the time source.
func WithReversalClock(now func() time.Time) ReversalServiceOption {
	return func(s *ReversalService) {
		s.Now = now
	}
}

// NewReversalService creates a new ReversalService with the given dependencies
func NewReversalService(store portsrepo.TransactionManager, authorizer portssvc.Authorizer, options ...ReversalServiceOption) *ReversalService {
	s := &ReversalService{BaseService: newBaseService(store, authorizer)}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.ReversalSvc = (*ReversalService)(nil)

// ReverseJournal marks a POSTED journal REVERSED and creates its mirror image as a POSTED
// REVERSAL journal, both in one unit of work.
func (s *ReversalService) ReverseJournal(ctx context.Context, companyID string, journalID string, req dto.ReverseJournalRequest, actor domain.Actor) (*domain.Journal, *domain.Journal, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, nil, apperrors.ErrReasonRequired
	}
	if err := s.Authorize(ctx, actor, domain.CapabilityFor(domain.ActionReverse)); err != nil {
		return nil, nil, err
	}

	now := s.Now()
	var requestedDate *time.Time
	if req.ReversalDate != nil && *req.ReversalDate != "" {
		d, err := time.Parse(dto.DateLayout, *req.ReversalDate)
		if err != nil {
			return nil, nil, apperrors.NewFieldError("reversal_date", "must be a date in YYYY-MM-DD format")
		}
		requestedDate = &d
	}

	var original, reversal domain.Journal
	err := retryNumberAllocation(ctx, &s.BaseService, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		current, err := repos.JournalRepo.FindJournalByIDForUpdate(ctx, companyID, journalID)
		if err != nil {
			return err
		}
		if current.IsDeleted() {
			return apperrors.NewStateConflictError("journal %s is deleted", current.JournalNumber)
		}
		if current.IsReversed || current.Status == domain.Reversed {
			return apperrors.ErrAlreadyReversed
		}
		if current.Status != domain.Posted {
			return apperrors.ErrNotPosted
		}
		if req.Version != nil && *req.Version != current.Version {
			return staleVersion("journal", current.Version, *req.Version)
		}
		reversalDate := defaultReversalDate(now, current.JournalDate)
		if requestedDate != nil {
			if requestedDate.Before(current.JournalDate) {
				return apperrors.NewFieldError("reversal_date", "cannot precede the original journal date")
			}
			reversalDate = *requestedDate
		}

		reversal = s.buildReversal(*current, reversalDate, reason, actor.UserID, now)
		number, err := repos.SequenceRepo.NextJournalNumber(ctx, companyID, reversal.BranchID, reversal.Period)
		if err != nil {
			return err
		}
		reversal.JournalNumber = number
		if err := repos.JournalRepo.SaveJournal(ctx, reversal); err != nil {
			return err
		}

		original = current.Clone()
		original.Status = domain.Reversed
		original.IsReversed = true
		original.ReversedBy = &reversal.JournalID
		original.ReversalDate = &reversalDate
		original.ReversalReason = &reason
		original.Touch(actor.UserID, now)
		if err := repos.JournalRepo.UpdateJournalHeader(ctx, original.JournalHeader, current.Version); err != nil {
			return err
		}

		return repos.JournalRepo.SaveStatusChange(ctx, domain.JournalStatusChange{
			ChangeID:   s.NewID(),
			JournalID:  original.JournalID,
			CompanyID:  companyID,
			Action:     domain.ActionReverse,
			FromStatus: domain.Posted,
			ToStatus:   domain.Reversed,
			ActorID:    actor.UserID,
			Reason:     &reason,
			At:         now,
		})
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to reverse journal", slog.String("journal_id", journalID))
		return nil, nil, err
	}

	s.LogInfo(ctx, "Journal reversed",
		slog.String("journal_id", original.JournalID),
		slog.String("reversal_id", reversal.JournalID),
		slog.String("reversal_number", reversal.JournalNumber))
	return &original, &reversal, nil
}

// defaultReversalDate is today, or the original journal date when that lies in the future.
func defaultReversalDate(now, journalDate time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if today.Before(journalDate) {
		return journalDate
	}
	return today
}

func (s *ReversalService) buildReversal(original domain.Journal, date time.Time, reason, userID string, now time.Time) domain.Journal {
	id := s.NewID()
	by, at := &userID, &now
	originalID := original.JournalID
	r := domain.Journal{
		JournalHeader: domain.JournalHeader{
			JournalID:    id,
			CompanyID:    original.CompanyID,
			BranchID:     original.BranchID,
			JournalDate:  date,
			Period:       domain.PeriodOf(date),
			JournalType:  domain.ReversalJournal,
			Description:  "Reversal of " + original.JournalNumber + ": " + reason,
			CurrencyCode: original.CurrencyCode,
			ExchangeRate: original.ExchangeRate,
			Status:       domain.Posted,
			ReversalOf:   &originalID,
			SubmittedBy:  by,
			SubmittedAt:  at,
			ApprovedBy:   by,
			ApprovedAt:   at,
			PostedBy:     by,
			PostedAt:     at,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
				Version:       1,
			},
		},
		Lines: domain.ReverseLines(original.Lines, id, s.NewID),
	}
	r.TotalDebit, r.TotalCredit = domain.ComputeTotals(r.Lines)
	return r
}
