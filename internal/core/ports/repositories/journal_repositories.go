package repositories

import (
	"context"

	"github.com/SscSPs/subledger/internal/core/domain"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindJournalByID retrieves a journal with its lines ordered by line number.
	FindJournalByID(ctx context.Context, companyID, journalID string) (*domain.Journal, error)

	// FindJournalByIDForUpdate is FindJournalByID that also holds the row for the rest of the unit of work.
	FindJournalByIDForUpdate(ctx context.Context, companyID, journalID string) (*domain.Journal, error)

	// ListJournals retrieves headers ordered by journal_date then created_at, newest first.
	ListJournals(ctx context.Context, companyID string, filter domain.JournalFilter) ([]domain.JournalHeader, error)

	// ListStatusChanges retrieves a journal's approval trail, oldest first.
	ListStatusChanges(ctx context.Context, companyID, journalID string) ([]domain.JournalStatusChange, error)
}

// JournalWriter defines write operations for journal data
type JournalWriter interface {
	// SaveJournal persists a new header and its lines. A taken journal number yields ErrDuplicate.
	SaveJournal(ctx context.Context, journal domain.Journal) error

	// UpdateJournal replaces header fields and the full line set, guarded by expectedVersion.
	UpdateJournal(ctx context.Context, journal domain.Journal, expectedVersion int64) error

	// UpdateJournalHeader writes header fields only (status, stamps, reversal links, deletion),
	// guarded by expectedVersion.
	UpdateJournalHeader(ctx context.Context, header domain.JournalHeader, expectedVersion int64) error

	// SaveStatusChange appends one row to a journal's approval trail.
	SaveStatusChange(ctx context.Context, change domain.JournalStatusChange) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}

// SequenceAllocator hands out journal numbers.
type SequenceAllocator interface {
	// NextJournalNumber returns the next number for (company, branch, period). Numbers are never reused.
	NextJournalNumber(ctx context.Context, companyID string, branchID *string, period string) (string, error)
}
