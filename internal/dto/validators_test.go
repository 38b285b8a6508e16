package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators())

	ok := CreateAccountRequest{
		AccountCode:  "1001-A_x",
		AccountName:  "Cash",
		AccountType:  "ASSET",
		CurrencyCode: "USD",
	}
	assert.NoError(t, binding.Validator.ValidateStruct(ok))

	badCode := ok
	badCode.AccountCode = "10 01"
	assert.Error(t, binding.Validator.ValidateStruct(badCode))

	badCurrency := ok
	badCurrency.CurrencyCode = "usd"
	assert.Error(t, binding.Validator.ValidateStruct(badCurrency))

	badType := ok
	badType.AccountType = "INCOME"
	assert.Error(t, binding.Validator.ValidateStruct(badType))
}

func TestAccountTreeParams_ToFilter(t *testing.T) {
	depth := 2
	f := AccountTreeParams{MaxDepth: &depth, AccountType: "EXPENSE", IncludeDeleted: true}.ToFilter()
	require.NotNil(t, f.AccountType)
	assert.Equal(t, "EXPENSE", string(*f.AccountType))
	assert.Equal(t, 2, *f.MaxDepth)
	assert.True(t, f.IncludeDeleted)
	assert.False(t, f.IncludeInactive)

	assert.Nil(t, AccountTreeParams{}.ToFilter().AccountType)
}

func TestNewBulkResponse(t *testing.T) {
	resp := NewBulkResponse([]BulkResult{{JournalID: "a", Success: true}, {JournalID: "b", Error: "nope"}, {JournalID: "c", Success: true}})
	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
}
