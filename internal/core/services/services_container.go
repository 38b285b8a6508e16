package services

import (
	portsrepo "github.com/SscSPs/subledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/subledger/internal/core/ports/services"
	"github.com/SscSPs/subledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, store portsrepo.TransactionManager) *portssvc.ServiceContainer {
	authorizer := NewRoleAuthorizer(nil)
	reversal := NewReversalService(store, authorizer)

	journalOpts := []JournalServiceOption{WithReverser(reversal)}
	if cfg != nil {
		journalOpts = append(journalOpts,
			WithBalanceTolerance(cfg.BalanceTolerance),
			WithBulkConcurrency(cfg.BulkConcurrency),
		)
	}

	return &portssvc.ServiceContainer{
		Account:    NewAccountService(store, authorizer),
		Journal:    NewJournalService(store, authorizer, journalOpts...),
		Reversal:   reversal,
		Authorizer: authorizer,
	}
}
