// Package memory is an in-process storage driver. Units of work are serialized and run
// against a private copy of the state that replaces the shared one only on commit.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/SscSPs/subledger/internal/core/domain"
	portsrepo "github.com/SscSPs/subledger/internal/core/ports/repositories"
)

type state struct {
	accounts  map[string]domain.Account // by account id
	journals  map[string]domain.Journal // by journal id
	changes   map[string][]domain.JournalStatusChange
	sequences map[string]int64
}

func newState() *state {
	return &state{
		accounts:  map[string]domain.Account{},
		journals:  map[string]domain.Journal{},
		changes:   map[string][]domain.JournalStatusChange{},
		sequences: map[string]int64{},
	}
}

func (s *state) clone() *state {
	out := &state{
		accounts:  maps.Clone(s.accounts),
		journals:  make(map[string]domain.Journal, len(s.journals)),
		changes:   make(map[string][]domain.JournalStatusChange, len(s.changes)),
		sequences: maps.Clone(s.sequences),
	}
	for id, j := range s.journals {
		out.journals[id] = j.Clone()
	}
	for id, c := range s.changes {
		out.changes[id] = append([]domain.JournalStatusChange(nil), c...)
	}
	return out
}

// Store implements TransactionManager on top of maps.
type Store struct {
	mu    sync.Mutex
	state *state
	// sequence, when set, replaces the built-in journal number counters.
	sequence portsrepo.SequenceAllocator
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSequenceAllocator makes the store hand out journal numbers from an external allocator.
func WithSequenceAllocator(a portsrepo.SequenceAllocator) StoreOption {
	return func(s *Store) {
		s.sequence = a
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{state: newState()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portsrepo.TransactionManager = (*Store)(nil)

// WithinTx runs fn against a snapshot and publishes it when fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.state.clone()
	repos := portsrepo.RepositoryProvider{
		AccountRepo:  &accountRepository{st: tx},
		JournalRepo:  &journalRepository{st: tx},
		SequenceRepo: &sequenceAllocator{st: tx},
	}
	if s.sequence != nil {
		repos.SequenceRepo = s.sequence
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	s.state = tx
	return nil
}
