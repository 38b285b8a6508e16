// Package redis hands out journal numbers from Redis counters so several API
// instances can share one sequence without touching the journal_sequences table.
package redis

import (
	"context"

	"github.com/SscSPs/subledger/internal/apperrors"
	"github.com/SscSPs/subledger/internal/core/domain"
	portsrepo "github.com/SscSPs/subledger/internal/core/ports/repositories"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "subledger:seq:"

// SequenceAllocator increments one Redis key per (company, branch, period).
// Numbers consumed by a rolled-back unit of work are skipped, never reused.
type SequenceAllocator struct {
	client goredis.UniversalClient
}

// NewSequenceAllocator creates an allocator on top of client.
func NewSequenceAllocator(client goredis.UniversalClient) *SequenceAllocator {
	return &SequenceAllocator{client: client}
}

var _ portsrepo.SequenceAllocator = (*SequenceAllocator)(nil)

// SequenceKey returns the Redis key holding a counter.
func SequenceKey(companyID string, branchID *string, period string) string {
	branch := "-"
	if branchID != nil && *branchID != "" {
		branch = *branchID
	}
	return keyPrefix + companyID + ":" + branch + ":" + period
}

// NextJournalNumber atomically bumps the counter and formats the result.
func (a *SequenceAllocator) NextJournalNumber(ctx context.Context, companyID string, branchID *string, period string) (string, error) {
	next, err := a.client.Incr(ctx, SequenceKey(companyID, branchID, period)).Result()
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to allocate journal number", err)
	}
	return domain.FormatJournalNumber(branchID, period, next), nil
}

// Ping checks connectivity at startup.
func (a *SequenceAllocator) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}
