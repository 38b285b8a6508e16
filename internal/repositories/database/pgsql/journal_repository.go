package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/subledger/internal/core/domain"
	portsrepo "github.com/SscSPs/subledger/internal/core/ports/repositories"
	"github.com/SscSPs/subledger/internal/models"
	"github.com/SscSPs/subledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const journalColumns = `
	journal_id, company_id, branch_id, journal_number, journal_date, period, journal_type,
	description, currency_code, exchange_rate, status, total_debit, total_credit,
	is_reversed, reversed_by, reversal_date, reversal_reason, reversal_of,
	submitted_by, submitted_at, approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
	posted_by, posted_at, deleted_at,
	created_at, created_by, last_updated_at, last_updated_by, version`

const lineColumns = `line_id, journal_header_id, line_number, account_id, description, debit_amount, credit_amount`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal headers, lines and history.
func newPgxJournalRepository(db DBTX) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{DB: db}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func headerArgs(m models.JournalHeader) []any {
	return []any{
		m.JournalID, m.CompanyID, m.BranchID, m.JournalNumber, m.JournalDate, m.Period, m.JournalType,
		m.Description, m.CurrencyCode, m.ExchangeRate, m.Status, m.TotalDebit, m.TotalCredit,
		m.IsReversed, m.ReversedBy, m.ReversalDate, m.ReversalReason, m.ReversalOf,
		m.SubmittedBy, m.SubmittedAt, m.ApprovedBy, m.ApprovedAt, m.RejectedBy, m.RejectedAt, m.RejectionReason,
		m.PostedBy, m.PostedAt, m.DeletedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy, m.Version,
	}
}

func scanHeader(row pgx.Row) (domain.JournalHeader, error) {
	var m models.JournalHeader
	err := row.Scan(
		&m.JournalID, &m.CompanyID, &m.BranchID, &m.JournalNumber, &m.JournalDate, &m.Period, &m.JournalType,
		&m.Description, &m.CurrencyCode, &m.ExchangeRate, &m.Status, &m.TotalDebit, &m.TotalCredit,
		&m.IsReversed, &m.ReversedBy, &m.ReversalDate, &m.ReversalReason, &m.ReversalOf,
		&m.SubmittedBy, &m.SubmittedAt, &m.ApprovedBy, &m.ApprovedAt, &m.RejectedBy, &m.RejectedAt, &m.RejectionReason,
		&m.PostedBy, &m.PostedAt, &m.DeletedAt,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy, &m.Version,
	)
	if err != nil {
		return domain.JournalHeader{}, err
	}
	return mapping.ToDomainJournalHeader(m), nil
}

func placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(ps, ", ")
}

// FindJournalByID retrieves a journal with its lines.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, companyID, journalID string) (*domain.Journal, error) {
	return r.findJournal(ctx, companyID, journalID, "")
}

// FindJournalByIDForUpdate locks the header row for the rest of the transaction.
func (r *PgxJournalRepository) FindJournalByIDForUpdate(ctx context.Context, companyID, journalID string) (*domain.Journal, error) {
	return r.findJournal(ctx, companyID, journalID, " FOR UPDATE")
}

func (r *PgxJournalRepository) findJournal(ctx context.Context, companyID, journalID, lock string) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_headers WHERE company_id = $1 AND journal_id = $2` + lock + `;`
	header, err := scanHeader(r.DB.QueryRow(ctx, query, companyID, journalID))
	if err != nil {
		return nil, translateError(err, "journal "+journalID)
	}
	lines, err := r.findLines(ctx, journalID)
	if err != nil {
		return nil, err
	}
	return &domain.Journal{JournalHeader: header, Lines: lines}, nil
}

func (r *PgxJournalRepository) findLines(ctx context.Context, journalID string) ([]domain.JournalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE journal_header_id = $1 ORDER BY line_number;`
	rows, err := r.DB.Query(ctx, query, journalID)
	if err != nil {
		return nil, translateError(err, "journal lines")
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		var m models.JournalLine
		if err := rows.Scan(&m.LineID, &m.JournalHeaderID, &m.LineNumber, &m.AccountID, &m.Description, &m.DebitAmount, &m.CreditAmount); err != nil {
			return nil, translateError(err, "journal lines")
		}
		lines = append(lines, mapping.ToDomainJournalLine(m))
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "journal lines")
	}
	return lines, nil
}

// ListJournals retrieves headers newest first, seeking past the cursor when one is set.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, companyID string, filter domain.JournalFilter) ([]domain.JournalHeader, error) {
	var sb strings.Builder
	args := []any{companyID}
	sb.WriteString(`SELECT ` + journalColumns + ` FROM journal_headers WHERE company_id = $1`)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if !filter.IncludeDeleted {
		sb.WriteString(` AND deleted_at IS NULL`)
	}
	if filter.Status != nil {
		sb.WriteString(` AND status = ` + arg(string(*filter.Status)))
	}
	if filter.Period != "" {
		sb.WriteString(` AND period = ` + arg(filter.Period))
	}
	if filter.BranchID != nil {
		sb.WriteString(` AND branch_id = ` + arg(*filter.BranchID))
	}
	if filter.AfterJournalDate != nil && filter.AfterCreatedAt != nil {
		sb.WriteString(` AND (journal_date, created_at) < (` + arg(*filter.AfterJournalDate) + `, ` + arg(*filter.AfterCreatedAt) + `)`)
	}
	sb.WriteString(` ORDER BY journal_date DESC, created_at DESC`)
	if filter.Limit > 0 {
		sb.WriteString(` LIMIT ` + arg(filter.Limit))
	}

	rows, err := r.DB.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, translateError(err, "journals")
	}
	defer rows.Close()

	headers := []domain.JournalHeader{}
	for rows.Next() {
		h, err := scanHeader(rows)
		if err != nil {
			return nil, translateError(err, "journals")
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "journals")
	}
	return headers, nil
}

// ListStatusChanges retrieves a journal's approval trail, oldest first.
func (r *PgxJournalRepository) ListStatusChanges(ctx context.Context, companyID, journalID string) ([]domain.JournalStatusChange, error) {
	query := `
		SELECT change_id, journal_id, company_id, action, from_status, to_status, actor_id, reason, at
		FROM journal_status_changes
		WHERE company_id = $1 AND journal_id = $2
		ORDER BY at, change_id;`
	rows, err := r.DB.Query(ctx, query, companyID, journalID)
	if err != nil {
		return nil, translateError(err, "journal history")
	}
	defer rows.Close()

	changes := []domain.JournalStatusChange{}
	for rows.Next() {
		var m models.JournalStatusChange
		if err := rows.Scan(&m.ChangeID, &m.JournalID, &m.CompanyID, &m.Action, &m.FromStatus, &m.ToStatus, &m.ActorID, &m.Reason, &m.At); err != nil {
			return nil, translateError(err, "journal history")
		}
		changes = append(changes, mapping.ToDomainStatusChange(m))
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "journal history")
	}
	return changes, nil
}

// SaveJournal inserts a header and its lines.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal) error {
	m := mapping.ToModelJournalHeader(journal.JournalHeader)
	args := headerArgs(m)
	query := `INSERT INTO journal_headers (` + journalColumns + `) VALUES (` + placeholders(len(args)) + `);`
	if _, err := r.DB.Exec(ctx, query, args...); err != nil {
		return translateError(err, "journal "+journal.JournalNumber)
	}
	return r.insertLines(ctx, journal.Lines)
}

func (r *PgxJournalRepository) insertLines(ctx context.Context, lines []domain.JournalLine) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `INSERT INTO journal_lines (` + lineColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7);`
	for _, l := range lines {
		m := mapping.ToModelJournalLine(l)
		batch.Queue(query, m.LineID, m.JournalHeaderID, m.LineNumber, m.AccountID, m.Description, m.DebitAmount, m.CreditAmount)
	}
	br := r.DB.SendBatch(ctx, batch)
	defer br.Close()
	for range lines {
		if _, err := br.Exec(); err != nil {
			return translateError(err, "journal lines")
		}
	}
	return nil
}

// UpdateJournal rewrites the header and replaces the line set.
func (r *PgxJournalRepository) UpdateJournal(ctx context.Context, journal domain.Journal, expectedVersion int64) error {
	if err := r.UpdateJournalHeader(ctx, journal.JournalHeader, expectedVersion); err != nil {
		return err
	}
	if _, err := r.DB.Exec(ctx, `DELETE FROM journal_lines WHERE journal_header_id = $1;`, journal.JournalID); err != nil {
		return translateError(err, "journal lines")
	}
	return r.insertLines(ctx, journal.Lines)
}

// UpdateJournalHeader writes every mutable header column if the stored version matches.
func (r *PgxJournalRepository) UpdateJournalHeader(ctx context.Context, header domain.JournalHeader, expectedVersion int64) error {
	m := mapping.ToModelJournalHeader(header)
	query := `
		UPDATE journal_headers SET
			branch_id = $3, journal_number = $4, journal_date = $5, period = $6, journal_type = $7,
			description = $8, currency_code = $9, exchange_rate = $10, status = $11,
			total_debit = $12, total_credit = $13,
			is_reversed = $14, reversed_by = $15, reversal_date = $16, reversal_reason = $17, reversal_of = $18,
			submitted_by = $19, submitted_at = $20, approved_by = $21, approved_at = $22,
			rejected_by = $23, rejected_at = $24, rejection_reason = $25,
			posted_by = $26, posted_at = $27, deleted_at = $28,
			last_updated_at = $29, last_updated_by = $30, version = $31
		WHERE company_id = $1 AND journal_id = $2 AND version = $32;`
	tag, err := r.DB.Exec(ctx, query,
		m.CompanyID, m.JournalID,
		m.BranchID, m.JournalNumber, m.JournalDate, m.Period, m.JournalType,
		m.Description, m.CurrencyCode, m.ExchangeRate, m.Status,
		m.TotalDebit, m.TotalCredit,
		m.IsReversed, m.ReversedBy, m.ReversalDate, m.ReversalReason, m.ReversalOf,
		m.SubmittedBy, m.SubmittedAt, m.ApprovedBy, m.ApprovedAt,
		m.RejectedBy, m.RejectedAt, m.RejectionReason,
		m.PostedBy, m.PostedAt, m.DeletedAt,
		m.LastUpdatedAt, m.LastUpdatedBy, m.Version,
		expectedVersion,
	)
	if err != nil {
		return translateError(err, "journal "+header.JournalNumber)
	}
	return expectOneRow(tag, "journal "+header.JournalNumber)
}

// SaveStatusChange appends one row to the approval trail.
func (r *PgxJournalRepository) SaveStatusChange(ctx context.Context, change domain.JournalStatusChange) error {
	m := mapping.ToModelStatusChange(change)
	query := `
		INSERT INTO journal_status_changes (change_id, journal_id, company_id, action, from_status, to_status, actor_id, reason, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`
	_, err := r.DB.Exec(ctx, query, m.ChangeID, m.JournalID, m.CompanyID, m.Action, m.FromStatus, m.ToStatus, m.ActorID, m.Reason, m.At)
	return translateError(err, "journal history")
}
