package pgsql

import (
	"context"

	"github.com/SscSPs/subledger/internal/core/domain"
	portsrepo "github.com/SscSPs/subledger/internal/core/ports/repositories"
)

type PgxSequenceRepository struct {
	BaseRepository
}

func newPgxSequenceRepository(db DBTX) *PgxSequenceRepository {
	return &PgxSequenceRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.SequenceAllocator = (*PgxSequenceRepository)(nil)

// NextJournalNumber bumps the (company, branch, period) counter. The row lock taken by the
// upsert serializes concurrent callers until their transactions end.
func (r *PgxSequenceRepository) NextJournalNumber(ctx context.Context, companyID string, branchID *string, period string) (string, error) {
	branch := ""
	if branchID != nil {
		branch = *branchID
	}
	query := `
		INSERT INTO journal_sequences (company_id, branch_id, period, last_value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (company_id, branch_id, period)
		DO UPDATE SET last_value = journal_sequences.last_value + 1
		RETURNING last_value;`
	var next int64
	if err := r.DB.QueryRow(ctx, query, companyID, branch, period).Scan(&next); err != nil {
		return "", translateError(err, "journal sequence")
	}
	return domain.FormatJournalNumber(branchID, period, next), nil
}
