package pgsql

import (
	"errors"
	"testing"

	"github.com/SscSPs/subledger/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, apperrors.ErrNotFound},
		{"unique", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "uq_journal_number"}, apperrors.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: pgForeignKeyViolation}, apperrors.ErrReferential},
		{"check", &pgconn.PgError{Code: pgCheckViolation}, apperrors.ErrValidation},
		{"serialization", &pgconn.PgError{Code: pgSerializationFailure}, apperrors.ErrStateConflict},
		{"deadlock", &pgconn.PgError{Code: pgDeadlockDetected}, apperrors.ErrStateConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translateError(tt.err, "journal"), tt.want)
		})
	}

	assert.NoError(t, translateError(nil, "journal"))

	other := translateError(errors.New("connection reset"), "journal")
	assert.Equal(t, 500, apperrors.HTTPStatus(other))
}

func TestExpectOneRow(t *testing.T) {
	assert.NoError(t, expectOneRow(pgconn.NewCommandTag("UPDATE 1"), "journal"))
	assert.ErrorIs(t, expectOneRow(pgconn.NewCommandTag("UPDATE 0"), "journal"), apperrors.ErrStateConflict)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1, $2, $3", placeholders(3))
}

func TestHierarchyLockKey_StablePerCompany(t *testing.T) {
	assert.Equal(t, hierarchyLockKey("c1"), hierarchyLockKey("c1"))
	assert.NotEqual(t, hierarchyLockKey("c1"), hierarchyLockKey("c2"))
}
