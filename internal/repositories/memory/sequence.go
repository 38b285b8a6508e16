package memory

import (
	"context"

	"github.com/SscSPs/subledger/internal/core/domain"
	portsrepo "github.com/SscSPs/subledger/internal/core/ports/repositories"
)

type sequenceAllocator struct {
	st *state
}

var _ portsrepo.SequenceAllocator = (*sequenceAllocator)(nil)

func (a *sequenceAllocator) NextJournalNumber(_ context.Context, companyID string, branchID *string, period string) (string, error) {
	branch := "-"
	if branchID != nil {
		branch = *branchID
	}
	key := companyID + "|" + branch + "|" + period
	a.st.sequences[key]++
	return domain.FormatJournalNumber(branchID, period, a.st.sequences[key]), nil
}
