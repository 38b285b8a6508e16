package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/subledger/internal/apperrors"
	"github.com/SscSPs/subledger/internal/core/domain"
	portsrepo "github.com/SscSPs/subledger/internal/core/ports/repositories"
)

type journalRepository struct {
	st *state
}

var _ portsrepo.JournalRepositoryFacade = (*journalRepository)(nil)

func (r *journalRepository) FindJournalByID(_ context.Context, companyID, journalID string) (*domain.Journal, error) {
	j, ok := r.st.journals[journalID]
	if !ok || j.CompanyID != companyID {
		return nil, apperrors.NewNotFoundError("journal " + journalID)
	}
	out := j.Clone()
	return &out, nil
}

func (r *journalRepository) FindJournalByIDForUpdate(ctx context.Context, companyID, journalID string) (*domain.Journal, error) {
	return r.FindJournalByID(ctx, companyID, journalID)
}

func (r *journalRepository) ListJournals(_ context.Context, companyID string, filter domain.JournalFilter) ([]domain.JournalHeader, error) {
	out := []domain.JournalHeader{}
	for _, j := range r.st.journals {
		h := j.JournalHeader
		if h.CompanyID != companyID || (!filter.IncludeDeleted && h.IsDeleted()) {
			continue
		}
		if filter.Status != nil && h.Status != *filter.Status {
			continue
		}
		if filter.Period != "" && h.Period != filter.Period {
			continue
		}
		if filter.BranchID != nil && (h.BranchID == nil || *h.BranchID != *filter.BranchID) {
			continue
		}
		if filter.AfterJournalDate != nil && filter.AfterCreatedAt != nil {
			if !before(h, *filter.AfterJournalDate, *filter.AfterCreatedAt) {
				continue
			}
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JournalDate.Equal(out[j].JournalDate) {
			return out[i].JournalDate.After(out[j].JournalDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// before reports whether h sorts after the cursor in newest-first order.
func before(h domain.JournalHeader, date, createdAt time.Time) bool {
	if !h.JournalDate.Equal(date) {
		return h.JournalDate.Before(date)
	}
	return h.CreatedAt.Before(createdAt)
}

func (r *journalRepository) ListStatusChanges(_ context.Context, companyID, journalID string) ([]domain.JournalStatusChange, error) {
	out := []domain.JournalStatusChange{}
	for _, c := range r.st.changes[journalID] {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *journalRepository) SaveJournal(_ context.Context, journal domain.Journal) error {
	if _, ok := r.st.journals[journal.JournalID]; ok {
		return apperrors.NewAppError(409, "journal id already exists", apperrors.ErrDuplicate)
	}
	if err := r.checkNumberFree(journal.JournalHeader); err != nil {
		return err
	}
	r.st.journals[journal.JournalID] = journal.Clone()
	return nil
}

func (r *journalRepository) checkNumberFree(h domain.JournalHeader) error {
	for id, j := range r.st.journals {
		if id != h.JournalID && j.CompanyID == h.CompanyID && j.JournalNumber == h.JournalNumber {
			return apperrors.NewAppError(409, "journal_number "+h.JournalNumber+" is already used", apperrors.ErrDuplicate)
		}
	}
	return nil
}

func (r *journalRepository) current(companyID, journalID string, expectedVersion int64) (domain.Journal, error) {
	j, ok := r.st.journals[journalID]
	if !ok || j.CompanyID != companyID {
		return domain.Journal{}, apperrors.NewNotFoundError("journal " + journalID)
	}
	if j.Version != expectedVersion {
		return domain.Journal{}, apperrors.NewStateConflictError("journal was modified concurrently")
	}
	return j, nil
}

func (r *journalRepository) UpdateJournal(_ context.Context, journal domain.Journal, expectedVersion int64) error {
	if _, err := r.current(journal.CompanyID, journal.JournalID, expectedVersion); err != nil {
		return err
	}
	if err := r.checkNumberFree(journal.JournalHeader); err != nil {
		return err
	}
	r.st.journals[journal.JournalID] = journal.Clone()
	return nil
}

func (r *journalRepository) UpdateJournalHeader(_ context.Context, header domain.JournalHeader, expectedVersion int64) error {
	j, err := r.current(header.CompanyID, header.JournalID, expectedVersion)
	if err != nil {
		return err
	}
	j.JournalHeader = header
	r.st.journals[header.JournalID] = j
	return nil
}

func (r *journalRepository) SaveStatusChange(_ context.Context, change domain.JournalStatusChange) error {
	if _, ok := r.st.journals[change.JournalID]; !ok {
		return apperrors.NewReferentialError("journal %s not found", change.JournalID)
	}
	r.st.changes[change.JournalID] = append(r.st.changes[change.JournalID], change)
	return nil
}
