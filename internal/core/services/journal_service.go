package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/subledger/internal/apperrors"
	"github.com/SscSPs/subledger/internal/core/domain"
	portsrepo "github.com/SscSPs/subledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/subledger/internal/core/ports/services"
	"github.com/SscSPs/subledger/internal/dto"
	"github.com/SscSPs/subledger/internal/utils/pagination"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBulkConcurrency = 8
	numberAllocAttempts    = 3
)

// JournalService owns journal headers and lines and drives the approval state machine.
type JournalService struct {
	BaseService
	reverser        portssvc.ReversalSvc
	tolerance       decimal.Decimal
	bulkConcurrency int
}

// JournalServiceOption is a function that configures a JournalService
type JournalServiceOption func(*JournalService)

// WithReverser wires the reversal engine that handles the REVERSE action.
func WithReverser(r portssvc.ReversalSvc) JournalServiceOption {
	return func(s *JournalService) {
		s.reverser = r
	}
}

// WithBalanceTolerance overrides the debit/credit tolerance.
func WithBalanceTolerance(tolerance decimal.Decimal) JournalServiceOption {
	return func(s *JournalService) {
		if tolerance.IsPositive() {
			s.tolerance = tolerance
		}
	}
}

// WithBulkConcurrency bounds how many items of a bulk request run at once.
func WithBulkConcurrency(n int) JournalServiceOption {
	return func(s *JournalService) {
		if n > 0 {
			s.bulkConcurrency = n
		}
	}
}

// WithJournalClock overrides the time source.
func WithJournalClock(now func() time.Time) JournalServiceOption {
	return func(s *JournalService) {
		s.Now = now
	}
}

// NewJournalService creates a new JournalService with the given dependencies
func NewJournalService(store portsrepo.TransactionManager, authorizer portssvc.Authorizer, options ...JournalServiceOption) *JournalService {
	s := &JournalService{
		BaseService:     newBaseService(store, authorizer),
		tolerance:       domain.DefaultBalanceTolerance,
		bulkConcurrency: defaultBulkConcurrency,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.JournalSvcFacade = (*JournalService)(nil)

// draftFromRequest builds and validates everything about a journal that does not need storage.
func (s *JournalService) draftFromRequest(companyID, journalID string, req dto.CreateJournalRequest) (domain.Journal, error) {
	date, err := time.Parse(dto.DateLayout, req.JournalDate)
	if err != nil {
		return domain.Journal{}, apperrors.NewFieldError("journal_date", "must be a date in YYYY-MM-DD format")
	}
	journalType := req.JournalType
	if journalType == "" {
		journalType = domain.General
	}
	if journalType == domain.ReversalJournal {
		return domain.Journal{}, apperrors.NewFieldError("journal_type", "REVERSAL is reserved for reversal journals")
	}
	rate := decimal.NewFromInt(1)
	if req.ExchangeRate != nil {
		rate = *req.ExchangeRate
	}

	j := domain.Journal{
		JournalHeader: domain.JournalHeader{
			JournalID:    journalID,
			CompanyID:    companyID,
			BranchID:     nonEmpty(req.BranchID),
			JournalDate:  date,
			Period:       domain.PeriodOf(date),
			JournalType:  journalType,
			Description:  strings.TrimSpace(req.Description),
			CurrencyCode: req.CurrencyCode,
			ExchangeRate: rate,
			Status:       domain.Draft,
		},
		Lines: make([]domain.JournalLine, len(req.Lines)),
	}
	for i, l := range req.Lines {
		j.Lines[i] = domain.JournalLine{
			LineID:          s.NewID(),
			JournalHeaderID: journalID,
			AccountID:       strings.TrimSpace(l.AccountID),
			Description:     nonEmpty(l.Description),
			DebitAmount:     l.DebitAmount,
			CreditAmount:    l.CreditAmount,
		}
	}
	domain.RenumberLines(j.Lines)

	if err := j.ValidateHeader(); err != nil {
		return domain.Journal{}, err
	}
	if err := s.checkLinesBalance(&j); err != nil {
		return domain.Journal{}, err
	}
	return j, nil
}

// checkLinesBalance runs the line rules and the balance rule and refreshes the totals.
func (s *JournalService) checkLinesBalance(j *domain.Journal) error {
	if err := domain.ValidateLines(j.Lines); err != nil {
		return err
	}
	j.TotalDebit, j.TotalCredit = domain.ComputeTotals(j.Lines)
	return domain.CheckBalance(j.TotalDebit, j.TotalCredit, s.tolerance)
}

func checkLineAccounts(ctx context.Context, repo portsrepo.AccountReader, j domain.Journal) error {
	ids := make([]string, 0, len(j.Lines))
	seen := make(map[string]bool, len(j.Lines))
	for _, l := range j.Lines {
		if !seen[l.AccountID] {
			seen[l.AccountID] = true
			ids = append(ids, l.AccountID)
		}
	}
	accounts, err := repo.FindAccountsByIDs(ctx, j.CompanyID, ids)
	if err != nil {
		return err
	}
	return domain.ValidateLineAccounts(j.CompanyID, j.Lines, accounts)
}

// withNumberRetry reruns a unit of work that lost a journal-number race.
func (s *JournalService) withNumberRetry(ctx context.Context, fn portsrepo.TxFunc) error {
	return retryNumberAllocation(ctx, &s.BaseService, fn)
}

func retryNumberAllocation(ctx context.Context, base *BaseService, fn portsrepo.TxFunc) error {
	var err error
	for attempt := 1; attempt <= numberAllocAttempts; attempt++ {
		err = base.Store.WithinTx(ctx, fn)
		if !errors.Is(err, apperrors.ErrDuplicate) {
			return err
		}
		base.LogWarn(ctx, "Journal number collision, retrying", slog.Int("attempt", attempt))
	}
	return err
}

// CreateJournal validates and persists a new DRAFT journal with a freshly allocated number.
func (s *JournalService) CreateJournal(ctx context.Context, companyID string, req dto.CreateJournalRequest, actor domain.Actor) (*domain.Journal, error) {
	if err := s.Authorize(ctx, actor, domain.Capability{Module: domain.ModuleJournal, Action: domain.CanCreate}); err != nil {
		return nil, err
	}

	journal, err := s.draftFromRequest(companyID, s.NewID(), req)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	journal.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actor.UserID,
		LastUpdatedAt: now,
		LastUpdatedBy: actor.UserID,
		Version:       1,
	}

	err = s.withNumberRetry(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		if err := checkLineAccounts(ctx, repos.AccountRepo, journal); err != nil {
			return err
		}
		number, err := repos.SequenceRepo.NextJournalNumber(ctx, companyID, journal.BranchID, journal.Period)
		if err != nil {
			return err
		}
		journal.JournalNumber = number
		return repos.JournalRepo.SaveJournal(ctx, journal)
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to create journal", slog.String("company_id", companyID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal created", slog.String("journal_id", journal.JournalID), slog.String("journal_number", journal.JournalNumber))
	return &journal, nil
}

// UpdateJournal replaces the header fields and lines of a DRAFT or REJECTED journal.
// The status is left as is; a REJECTED journal goes back to DRAFT only through REOPEN.
func (s *JournalService) UpdateJournal(ctx context.Context, companyID string, journalID string, req dto.UpdateJournalRequest, actor domain.Actor) (*domain.Journal, error) {
	if err := s.Authorize(ctx, actor, domain.Capability{Module: domain.ModuleJournal, Action: domain.CanUpdate}); err != nil {
		return nil, err
	}

	draft, err := s.draftFromRequest(companyID, journalID, req.CreateJournalRequest)
	if err != nil {
		return nil, err
	}

	var updated domain.Journal
	err = s.withNumberRetry(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		current, err := s.loadForWrite(ctx, repos, companyID, journalID, req.Version)
		if err != nil {
			return err
		}
		if !current.Status.IsEditable() {
			return apperrors.NewStateConflictError("journal %s is %s and can no longer be edited", current.JournalNumber, current.Status)
		}
		if err := checkLineAccounts(ctx, repos.AccountRepo, draft); err != nil {
			return err
		}

		updated = current.Clone()
		updated.BranchID = draft.BranchID
		updated.JournalDate = draft.JournalDate
		updated.Period = draft.Period
		updated.JournalType = draft.JournalType
		updated.Description = draft.Description
		updated.CurrencyCode = draft.CurrencyCode
		updated.ExchangeRate = draft.ExchangeRate
		updated.TotalDebit = draft.TotalDebit
		updated.TotalCredit = draft.TotalCredit
		updated.Lines = draft.Lines

		if updated.Period != current.Period || !sameBranch(updated.BranchID, current.BranchID) {
			number, err := repos.SequenceRepo.NextJournalNumber(ctx, companyID, updated.BranchID, updated.Period)
			if err != nil {
				return err
			}
			updated.JournalNumber = number
		}

		updated.Touch(actor.UserID, s.Now())
		return repos.JournalRepo.UpdateJournal(ctx, updated, current.Version)
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to update journal", slog.String("journal_id", journalID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal updated", slog.String("journal_id", journalID), slog.Int64("version", updated.Version))
	return &updated, nil
}

// loadForWrite locks a live journal and checks the caller's concurrency token.
func (s *JournalService) loadForWrite(ctx context.Context, repos portsrepo.RepositoryProvider, companyID, journalID string, expectedVersion *int64) (*domain.Journal, error) {
	current, err := repos.JournalRepo.FindJournalByIDForUpdate(ctx, companyID, journalID)
	if err != nil {
		return nil, err
	}
	if current.IsDeleted() {
		return nil, apperrors.NewStateConflictError("journal %s is deleted", current.JournalNumber)
	}
	if expectedVersion != nil && *expectedVersion != current.Version {
		return nil, staleVersion("journal", current.Version, *expectedVersion)
	}
	return current, nil
}

// TransitionJournal moves a journal along the state machine, stamping the actor and time.
func (s *JournalService) TransitionJournal(ctx context.Context, companyID string, journalID string, action domain.JournalAction, req dto.TransitionRequest, actor domain.Actor) (*domain.Journal, error) {
	if !action.IsValid() {
		return nil, apperrors.NewFieldError("action", fmt.Sprintf("%q is not a journal action", action))
	}
	if action == domain.ActionReverse {
		return s.reverse(ctx, companyID, journalID, req, actor)
	}
	if err := s.Authorize(ctx, actor, domain.CapabilityFor(action)); err != nil {
		return nil, err
	}

	reason := ""
	if req.Reason != nil {
		reason = strings.TrimSpace(*req.Reason)
	}
	if action == domain.ActionReject && reason == "" {
		return nil, apperrors.ErrReasonRequired
	}

	var journal domain.Journal
	var from domain.JournalStatus
	err := s.Store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		current, err := s.loadForWrite(ctx, repos, companyID, journalID, req.Version)
		if err != nil {
			return err
		}
		to, err := domain.NextStatus(current.Status, action)
		if err != nil {
			return err
		}

		journal = current.Clone()
		if action == domain.ActionSubmit {
			if err := s.checkLinesBalance(&journal); err != nil {
				return err
			}
			if err := checkLineAccounts(ctx, repos.AccountRepo, journal); err != nil {
				return err
			}
		}

		now := s.Now()
		stampTransition(&journal.JournalHeader, action, actor.UserID, reason, now)
		from = journal.Status
		journal.Status = to
		journal.Touch(actor.UserID, now)

		if err := repos.JournalRepo.UpdateJournalHeader(ctx, journal.JournalHeader, current.Version); err != nil {
			return err
		}
		return repos.JournalRepo.SaveStatusChange(ctx, domain.JournalStatusChange{
			ChangeID:   s.NewID(),
			JournalID:  journal.JournalID,
			CompanyID:  companyID,
			Action:     action,
			FromStatus: from,
			ToStatus:   to,
			ActorID:    actor.UserID,
			Reason:     nonEmpty(&reason),
			At:         now,
		})
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to transition journal", slog.String("journal_id", journalID), slog.String("action", string(action)))
		return nil, err
	}

	s.LogInfo(ctx, "Journal transitioned",
		slog.String("journal_id", journalID),
		slog.String("action", string(action)),
		slog.String("from", string(from)),
		slog.String("to", string(journal.Status)))
	return &journal, nil
}

func (s *JournalService) reverse(ctx context.Context, companyID, journalID string, req dto.TransitionRequest, actor domain.Actor) (*domain.Journal, error) {
	if s.reverser == nil {
		return nil, apperrors.NewAppError(500, "reversal engine not configured", nil)
	}
	reason := ""
	if req.Reason != nil {
		reason = *req.Reason
	}
	original, _, err := s.reverser.ReverseJournal(ctx, companyID, journalID, dto.ReverseJournalRequest{Reason: reason, Version: req.Version, ReversalDate: req.ReversalDate}, actor)
	return original, err
}

func stampTransition(h *domain.JournalHeader, action domain.JournalAction, userID, reason string, now time.Time) {
	by, at := &userID, &now
	switch action {
	case domain.ActionSubmit:
		h.SubmittedBy, h.SubmittedAt = by, at
	case domain.ActionApprove:
		h.ApprovedBy, h.ApprovedAt = by, at
	case domain.ActionReject:
		h.RejectedBy, h.RejectedAt = by, at
		h.RejectionReason = &reason
	case domain.ActionPost:
		h.PostedBy, h.PostedAt = by, at
	}
}

// DeleteJournal soft-deletes a DRAFT journal.
func (s *JournalService) DeleteJournal(ctx context.Context, companyID string, journalID string, actor domain.Actor) (*domain.Journal, error) {
	if err := s.Authorize(ctx, actor, domain.Capability{Module: domain.ModuleJournal, Action: domain.CanDelete}); err != nil {
		return nil, err
	}

	var journal domain.Journal
	err := s.Store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		current, err := s.loadForWrite(ctx, repos, companyID, journalID, nil)
		if err != nil {
			return err
		}
		if current.Status != domain.Draft {
			return apperrors.NewStateConflictError("journal %s is %s; only DRAFT journals can be deleted", current.JournalNumber, current.Status)
		}
		journal = current.Clone()
		now := s.Now()
		journal.DeletedAt = &now
		journal.Touch(actor.UserID, now)
		return repos.JournalRepo.UpdateJournalHeader(ctx, journal.JournalHeader, current.Version)
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to delete journal", slog.String("journal_id", journalID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal deleted", slog.String("journal_id", journalID))
	return &journal, nil
}

// RestoreJournal undeletes a soft-deleted journal.
func (s *JournalService) RestoreJournal(ctx context.Context, companyID string, journalID string, actor domain.Actor) (*domain.Journal, error) {
	if err := s.Authorize(ctx, actor, domain.Capability{Module: domain.ModuleJournal, Action: domain.CanDelete}); err != nil {
		return nil, err
	}

	var journal domain.Journal
	err := s.Store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		current, err := repos.JournalRepo.FindJournalByIDForUpdate(ctx, companyID, journalID)
		if err != nil {
			return err
		}
		if !current.IsDeleted() {
			return apperrors.NewStateConflictError("journal %s is not deleted", current.JournalNumber)
		}
		journal = current.Clone()
		journal.DeletedAt = nil
		journal.Touch(actor.UserID, s.Now())
		return repos.JournalRepo.UpdateJournalHeader(ctx, journal.JournalHeader, current.Version)
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to restore journal", slog.String("journal_id", journalID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal restored", slog.String("journal_id", journalID))
	return &journal, nil
}

// GetJournalByID retrieves a specific journal with its lines.
func (s *JournalService) GetJournalByID(ctx context.Context, companyID string, journalID string) (*domain.Journal, error) {
	var journal *domain.Journal
	err := s.Store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		var err error
		journal, err = repos.JournalRepo.FindJournalByID(ctx, companyID, journalID)
		return err
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to get journal", slog.String("journal_id", journalID))
		return nil, err
	}
	return journal, nil
}

// ListJournals retrieves a page of journal headers, newest journal date first.
func (s *JournalService) ListJournals(ctx context.Context, companyID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	filter := domain.JournalFilter{
		Period:         params.Period,
		BranchID:       nonEmpty(params.BranchID),
		IncludeDeleted: params.IncludeDeleted,
		Limit:          params.Limit + 1,
	}
	if params.Limit <= 0 {
		filter.Limit = 21
	}
	if params.Status != "" {
		status := domain.JournalStatus(params.Status)
		filter.Status = &status
	}
	if params.NextToken != nil && *params.NextToken != "" {
		journalDate, createdAt, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, apperrors.NewFieldError("nextToken", "is invalid")
		}
		filter.AfterJournalDate, filter.AfterCreatedAt = &journalDate, &createdAt
	}

	var headers []domain.JournalHeader
	err := s.Store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		var err error
		headers, err = repos.JournalRepo.ListJournals(ctx, companyID, filter)
		return err
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to list journals", slog.String("company_id", companyID))
		return nil, err
	}

	resp := &dto.ListJournalsResponse{Journals: []dto.JournalResponse{}}
	pageSize := filter.Limit - 1
	if len(headers) > pageSize {
		headers = headers[:pageSize]
		last := headers[len(headers)-1]
		token := pagination.EncodeToken(last.JournalDate, last.CreatedAt)
		resp.NextToken = &token
	}
	for _, h := range headers {
		resp.Journals = append(resp.Journals, dto.ToJournalHeaderResponse(h))
	}
	return resp, nil
}

// GetJournalHistory retrieves the approval trail of a journal, oldest first.
func (s *JournalService) GetJournalHistory(ctx context.Context, companyID string, journalID string) ([]domain.JournalStatusChange, error) {
	var changes []domain.JournalStatusChange
	err := s.Store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		if _, err := repos.JournalRepo.FindJournalByID(ctx, companyID, journalID); err != nil {
			return err
		}
		var err error
		changes, err = repos.JournalRepo.ListStatusChanges(ctx, companyID, journalID)
		return err
	})
	if err != nil {
		s.logOutcome(ctx, err, "Failed to get journal history", slog.String("journal_id", journalID))
		return nil, err
	}
	return changes, nil
}

// BulkTransition applies one action to every id independently.
func (s *JournalService) BulkTransition(ctx context.Context, companyID string, req dto.BulkTransitionRequest, actor domain.Actor) []dto.BulkResult {
	return s.bulk(ctx, req.JournalIDs, func(ctx context.Context, id string) (*domain.Journal, error) {
		return s.TransitionJournal(ctx, companyID, id, req.Action, dto.TransitionRequest{Reason: req.Reason}, actor)
	})
}

// BulkDelete soft-deletes every id independently.
func (s *JournalService) BulkDelete(ctx context.Context, companyID string, journalIDs []string, actor domain.Actor) []dto.BulkResult {
	return s.bulk(ctx, journalIDs, func(ctx context.Context, id string) (*domain.Journal, error) {
		return s.DeleteJournal(ctx, companyID, id, actor)
	})
}

// BulkRestore undeletes every id independently.
func (s *JournalService) BulkRestore(ctx context.Context, companyID string, journalIDs []string, actor domain.Actor) []dto.BulkResult {
	return s.bulk(ctx, journalIDs, func(ctx context.Context, id string) (*domain.Journal, error) {
		return s.RestoreJournal(ctx, companyID, id, actor)
	})
}

// bulk runs op per id with bounded parallelism. One failure never stops the others,
// and results keep the order of ids.
func (s *JournalService) bulk(ctx context.Context, ids []string, op func(context.Context, string) (*domain.Journal, error)) []dto.BulkResult {
	results := make([]dto.BulkResult, len(ids))
	var g errgroup.Group
	g.SetLimit(s.bulkConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = dto.BulkResult{JournalID: id}
			j, err := op(ctx, id)
			if err != nil {
				results[i].Code = apperrors.HTTPStatus(err)
				results[i].Error = err.Error()
				if results[i].Code >= 500 {
					results[i].Error = "Internal server error"
				}
				return nil
			}
			results[i].Success = true
			results[i].Status = j.Status
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	s.LogInfo(ctx, "Bulk operation finished", slog.Int("total", len(ids)), slog.Int("failed", failed))
	return results
}

func sameBranch(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
