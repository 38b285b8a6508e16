package pgsql

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/SscSPs/subledger/internal/core/domain"
	portsrepo "github.com/SscSPs/subledger/internal/core/ports/repositories"
	"github.com/SscSPs/subledger/internal/models"
	"github.com/SscSPs/subledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `
	account_id, company_id, branch_id, account_code, account_name, account_type, account_subtype,
	parent_account_id, is_header, is_postable, normal_balance, currency_code, sort_order, level,
	is_active, description, deleted_at,
	created_at, created_by, last_updated_at, last_updated_by, version`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(db DBTX) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{DB: db}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID, &m.CompanyID, &m.BranchID, &m.AccountCode, &m.AccountName, &m.AccountType, &m.AccountSubtype,
		&m.ParentAccountID, &m.IsHeader, &m.IsPostable, &m.NormalBalance, &m.CurrencyCode, &m.SortOrder, &m.Level,
		&m.IsActive, &m.Description, &m.DeletedAt,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy, &m.Version,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "accounts")
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, translateError(err, "accounts")
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "accounts")
	}
	return accounts, nil
}

// FindAccountByID retrieves an account by its unique identifier.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, companyID, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE company_id = $1 AND account_id = $2;`
	a, err := scanAccount(r.DB.QueryRow(ctx, query, companyID, accountID))
	if err != nil {
		return nil, translateError(err, "account "+accountID)
	}
	return &a, nil
}

// FindAccountByCode retrieves an account by its company-unique code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, companyID, accountCode string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE company_id = $1 AND account_code = $2;`
	a, err := scanAccount(r.DB.QueryRow(ctx, query, companyID, accountCode))
	if err != nil {
		return nil, translateError(err, "account "+accountCode)
	}
	return &a, nil
}

// FindAccountsByIDs retrieves multiple accounts keyed by id.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE company_id = $1 AND account_id = ANY($2);`
	accounts, err := r.queryAccounts(ctx, query, companyID, accountIDs)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		out[a.AccountID] = a
	}
	return out, nil
}

// ListAccounts retrieves a company's chart ordered by sort_order then code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, companyID string, includeDeleted bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE company_id = $1 AND ($2 OR deleted_at IS NULL)
		ORDER BY sort_order, account_code;`
	return r.queryAccounts(ctx, query, companyID, includeDeleted)
}

// ListChildAccounts retrieves the direct children of a parent, deleted or not.
func (r *PgxAccountRepository) ListChildAccounts(ctx context.Context, companyID, parentAccountID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE company_id = $1 AND parent_account_id = $2
		ORDER BY sort_order, account_code;`
	return r.queryAccounts(ctx, query, companyID, parentAccountID)
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);`
	_, err := r.DB.Exec(ctx, query,
		m.AccountID, m.CompanyID, m.BranchID, m.AccountCode, m.AccountName, m.AccountType, m.AccountSubtype,
		m.ParentAccountID, m.IsHeader, m.IsPostable, m.NormalBalance, m.CurrencyCode, m.SortOrder, m.Level,
		m.IsActive, m.Description, m.DeletedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy, m.Version,
	)
	return translateError(err, "account "+account.AccountCode)
}

// UpdateAccount rewrites the mutable columns if the stored version matches.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account, expectedVersion int64) error {
	m := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts SET
			branch_id = $3, account_name = $4, account_subtype = $5, parent_account_id = $6,
			is_header = $7, is_postable = $8, currency_code = $9, sort_order = $10, level = $11,
			is_active = $12, description = $13, deleted_at = $14,
			last_updated_at = $15, last_updated_by = $16, version = $17
		WHERE company_id = $1 AND account_id = $2 AND version = $18;`
	tag, err := r.DB.Exec(ctx, query,
		m.CompanyID, m.AccountID,
		m.BranchID, m.AccountName, m.AccountSubtype, m.ParentAccountID,
		m.IsHeader, m.IsPostable, m.CurrencyCode, m.SortOrder, m.Level,
		m.IsActive, m.Description, m.DeletedAt,
		m.LastUpdatedAt, m.LastUpdatedBy, m.Version,
		expectedVersion,
	)
	if err != nil {
		return translateError(err, "account "+account.AccountCode)
	}
	return expectOneRow(tag, "account "+account.AccountCode)
}

// UpdateAccountLevels rewrites the derived level of several accounts in one batch.
func (r *PgxAccountRepository) UpdateAccountLevels(ctx context.Context, companyID string, levels map[string]int, userID string, now time.Time) error {
	if len(levels) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `
		UPDATE accounts SET level = $3, last_updated_at = $4, last_updated_by = $5, version = version + 1
		WHERE company_id = $1 AND account_id = $2;`
	for id, level := range levels {
		batch.Queue(query, companyID, id, level, now, userID)
	}
	br := r.DB.SendBatch(ctx, batch)
	defer br.Close()
	for range levels {
		tag, err := br.Exec()
		if err != nil {
			return translateError(err, "account levels")
		}
		if err := expectOneRow(tag, "account level"); err != nil {
			return err
		}
	}
	return nil
}

// LockHierarchy takes a transaction-scoped advisory lock keyed by the company.
func (r *PgxAccountRepository) LockHierarchy(ctx context.Context, companyID string) error {
	_, err := r.DB.Exec(ctx, `SELECT pg_advisory_xact_lock($1);`, hierarchyLockKey(companyID))
	return translateError(err, "account hierarchy lock")
}

func hierarchyLockKey(companyID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("accounts:" + companyID))
	return int64(h.Sum64())
}
