package services

import (
	"context"

	"github.com/SscSPs/subledger/internal/core/domain"
	"github.com/SscSPs/subledger/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetJournalByID retrieves a specific journal with its lines.
	GetJournalByID(ctx context.Context, companyID string, journalID string) (*domain.Journal, error)

	// ListJournals retrieves a page of journal headers.
	ListJournals(ctx context.Context, companyID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)

	// GetJournalHistory retrieves the approval trail of a journal.
	GetJournalHistory(ctx context.Context, companyID string, journalID string) ([]domain.JournalStatusChange, error)
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// CreateJournal persists a new DRAFT journal with its lines.
	CreateJournal(ctx context.Context, companyID string, req dto.CreateJournalRequest, actor domain.Actor) (*domain.Journal, error)

	// UpdateJournal replaces header and lines of a DRAFT or REJECTED journal.
	UpdateJournal(ctx context.Context, companyID string, journalID string, req dto.UpdateJournalRequest, actor domain.Actor) (*domain.Journal, error)

	// DeleteJournal soft-deletes a DRAFT journal.
	DeleteJournal(ctx context.Context, companyID string, journalID string, actor domain.Actor) (*domain.Journal, error)

	// RestoreJournal undeletes a journal.
	RestoreJournal(ctx context.Context, companyID string, journalID string, actor domain.Actor) (*domain.Journal, error)
}

// JournalLifecycleSvc moves journals through the approval state machine.
type JournalLifecycleSvc interface {
	// TransitionJournal applies one action. REVERSE is delegated to the reversal engine.
	TransitionJournal(ctx context.Context, companyID string, journalID string, action domain.JournalAction, req dto.TransitionRequest, actor domain.Actor) (*domain.Journal, error)
}

// JournalBulkSvc applies single-item operations to many journals, reporting per id.
type JournalBulkSvc interface {
	BulkTransition(ctx context.Context, companyID string, req dto.BulkTransitionRequest, actor domain.Actor) []dto.BulkResult
	BulkDelete(ctx context.Context, companyID string, journalIDs []string, actor domain.Actor) []dto.BulkResult
	BulkRestore(ctx context.Context, companyID string, journalIDs []string, actor domain.Actor) []dto.BulkResult
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	JournalLifecycleSvc
	JournalBulkSvc
}

// ReversalSvc produces compensating journals for posted ones.
type ReversalSvc interface {
	// ReverseJournal returns the updated original and the new reversal journal.
	ReverseJournal(ctx context.Context, companyID string, journalID string, req dto.ReverseJournalRequest, actor domain.Actor) (original *domain.Journal, reversal *domain.Journal, err error)
}
