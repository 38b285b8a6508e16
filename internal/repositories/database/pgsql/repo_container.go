package pgsql

import (
	portsrepo "github.com/SscSPs/subledger/internal/core/ports/repositories"
)

// NewRepositoryProvider binds every repository to db. A nil sequence uses the
// journal_sequences table.
func NewRepositoryProvider(db DBTX, sequence portsrepo.SequenceAllocator) portsrepo.RepositoryProvider {
	if sequence == nil {
		sequence = newPgxSequenceRepository(db)
	}
	return portsrepo.RepositoryProvider{
		AccountRepo:  newPgxAccountRepository(db),
		JournalRepo:  newPgxJournalRepository(db),
		SequenceRepo: sequence,
	}
}
