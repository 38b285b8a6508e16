package domain

import (
	"testing"
	"time"

	"github.com/SscSPs/subledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func validAccount() Account {
	return Account{
		AccountID:    "acc-1",
		CompanyID:    "co-1",
		AccountCode:  "1001",
		AccountName:  "Cash on Hand",
		AccountType:  Asset,
		IsPostable:   true,
		CurrencyCode: "USD",
		IsActive:     true,
	}
}

func TestAccountType_NormalBalance(t *testing.T) {
	assert.Equal(t, Debit, Asset.NormalBalance())
	assert.Equal(t, Debit, Expense.NormalBalance())
	assert.Equal(t, Credit, Liability.NormalBalance())
	assert.Equal(t, Credit, Equity.NormalBalance())
	assert.Equal(t, Credit, Revenue.NormalBalance())
}

func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *Account)
		wantErr error
		msg     string
	}{
		{"valid postable", func(a *Account) {}, nil, ""},
		{"valid header", func(a *Account) { a.IsPostable, a.IsHeader = false, true }, nil, ""},
		{"header and postable", func(a *Account) { a.IsHeader = true }, apperrors.ErrValidation, "mutually exclusive"},
		{"neither header nor postable", func(a *Account) { a.IsPostable = false }, apperrors.ErrValidation, "either a header or postable"},
		{"empty code", func(a *Account) { a.AccountCode = "" }, apperrors.ErrValidation, "account_code"},
		{"code with space", func(a *Account) { a.AccountCode = "10 01" }, apperrors.ErrValidation, "account_code"},
		{"code too long", func(a *Account) { a.AccountCode = "1234567890123456789012345678901" }, apperrors.ErrValidation, "account_code"},
		{"code with hyphen and underscore", func(a *Account) { a.AccountCode = "AR-01_x" }, nil, ""},
		{"blank name", func(a *Account) { a.AccountName = "  " }, apperrors.ErrValidation, "account_name"},
		{"bad type", func(a *Account) { a.AccountType = "INCOME" }, apperrors.ErrValidation, "account_type"},
		{"lowercase currency", func(a *Account) { a.CurrencyCode = "usd" }, apperrors.ErrValidation, "currency_code"},
		{"sort order too big", func(a *Account) { a.SortOrder = 10000 }, apperrors.ErrValidation, "sort_order"},
		{"negative sort order", func(a *Account) { a.SortOrder = -1 }, apperrors.ErrValidation, "sort_order"},
		{"self parent", func(a *Account) { a.ParentAccountID = strPtr(a.AccountID) }, apperrors.ErrReferential, "own parent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAccount()
			tt.mutate(&a)
			err := a.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidateParent(t *testing.T) {
	header := Account{AccountID: "p", CompanyID: "co-1", AccountCode: "1000", AccountType: Asset, IsHeader: true, IsActive: true}
	child := validAccount()

	assert.NoError(t, ValidateParent(child, "p", &header))

	tests := []struct {
		name   string
		parent *Account
		msg    string
	}{
		{"missing", nil, "not found"},
		{"other company", func() *Account { p := header; p.CompanyID = "co-2"; return &p }(), "not found"},
		{"deleted", func() *Account { p := header; p.DeletedAt = timePtr(p.CreatedAt); return &p }(), "deleted"},
		{"inactive", func() *Account { p := header; p.IsActive = false; return &p }(), "inactive"},
		{"not header", func() *Account { p := header; p.IsHeader, p.IsPostable = false, true; return &p }(), "not a header"},
		{"different type", func() *Account { p := header; p.AccountType = Expense; return &p }(), "has type EXPENSE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParent(child, "p", tt.parent)
			assert.ErrorIs(t, err, apperrors.ErrReferential)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLevelUnder(t *testing.T) {
	assert.Equal(t, 0, LevelUnder(nil))
	assert.Equal(t, 3, LevelUnder(&Account{Level: 2}))
}

func TestAccountPatch(t *testing.T) {
	code := "X"
	typ := Expense
	company := "co-9"
	assert.ErrorIs(t, AccountPatch{AccountCode: &code}.CheckImmutable(), apperrors.ErrValidation)
	assert.ErrorIs(t, AccountPatch{AccountType: &typ}.CheckImmutable(), apperrors.ErrValidation)
	assert.ErrorIs(t, AccountPatch{CompanyID: &company}.CheckImmutable(), apperrors.ErrValidation)

	name := "Petty Cash"
	detach := ""
	a := validAccount()
	a.ParentAccountID = strPtr("p")
	p := AccountPatch{AccountName: &name, ParentAccountID: &detach}
	assert.NoError(t, p.CheckImmutable())
	assert.True(t, p.ChangesParent(a))

	out := p.Apply(a)
	assert.Equal(t, "Petty Cash", out.AccountName)
	assert.Nil(t, out.ParentAccountID)
	assert.Equal(t, "p", *a.ParentAccountID, "original must not be mutated")

	same := "p"
	assert.False(t, AccountPatch{ParentAccountID: &same}.ChangesParent(a))
}

func timePtr(t time.Time) *time.Time {
	return &t
}
