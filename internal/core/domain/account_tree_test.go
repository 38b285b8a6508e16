package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id, code string, parent string, sortOrder int) Account {
	a := Account{AccountID: id, AccountCode: code, AccountName: code, SortOrder: sortOrder, IsActive: true}
	if parent != "" {
		a.ParentAccountID = strPtr(parent)
	}
	return a
}

func codes(accounts []Account) []string {
	out := make([]string, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.AccountCode)
	}
	return out
}

func sampleChart() []Account {
	chart := []Account{
		node("4", "4000", "", 0),
		node("1b", "1100", "1", 0),
		node("1", "1000", "", 0),
		node("1a", "1001", "1", 0),
		node("1a1", "1001-A", "1a", 0),
		node("1c", "1050", "1", 5),
		node("0", "0100", "", 10),
	}
	for i := range chart {
		switch chart[i].AccountID {
		case "1a", "1b", "1c":
			chart[i].Level = 1
		case "1a1":
			chart[i].Level = 2
		}
	}
	return chart
}

func TestBuildTree_OrdersSiblingsBySortOrderThenCode(t *testing.T) {
	tree := BuildTree(sampleChart())
	require.Len(t, tree, 3)
	assert.Equal(t, []string{"1000", "4000", "0100"}, []string{tree[0].Account.AccountCode, tree[1].Account.AccountCode, tree[2].Account.AccountCode})
	assert.Equal(t, []string{"1000", "1001", "1001-A", "1100", "1050", "4000", "0100"}, codes(Flatten(tree)))
}

func TestBuildTree_OrphansBecomeRoots(t *testing.T) {
	tree := BuildTree([]Account{node("a", "A", "missing", 0), node("b", "B", "a", 0)})
	require.Len(t, tree, 1)
	assert.Equal(t, "A", tree[0].Account.AccountCode)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "B", tree[0].Children[0].Account.AccountCode)
}

func TestBuildTree_Empty(t *testing.T) {
	assert.Empty(t, BuildTree(nil))
	assert.Empty(t, Flatten(nil))
}

func TestAccountIndex_IsDescendant(t *testing.T) {
	ix := NewAccountIndex(sampleChart())
	assert.True(t, ix.IsDescendant("1a1", "1"))
	assert.True(t, ix.IsDescendant("1a", "1"))
	assert.False(t, ix.IsDescendant("1", "1a"))
	assert.False(t, ix.IsDescendant("4", "1"))
	assert.False(t, ix.IsDescendant("unknown", "1"))
}

func TestAccountIndex_IsDescendantTerminatesOnCorruptChain(t *testing.T) {
	ix := NewAccountIndex([]Account{node("a", "A", "b", 0), node("b", "B", "a", 0)})
	assert.False(t, ix.IsDescendant("a", "zzz"))
}

func TestAccountIndex_RelevelSubtree(t *testing.T) {
	ix := NewAccountIndex(sampleChart())

	changed := ix.RelevelSubtree("1a", 2)
	assert.Equal(t, map[string]int{"1a": 2, "1a1": 3}, changed)

	assert.Empty(t, ix.RelevelSubtree("1a", 1))
}

func TestPruneDepth(t *testing.T) {
	tree := PruneDepth(BuildTree(sampleChart()), 1)
	assert.Equal(t, []string{"1000", "1001", "1100", "1050", "4000", "0100"}, codes(Flatten(tree)))

	roots := PruneDepth(BuildTree(sampleChart()), 0)
	assert.Equal(t, []string{"1000", "4000", "0100"}, codes(Flatten(roots)))
}

func TestPruneDepth_UsesLevelWhenAncestorsAreFiltered(t *testing.T) {
	var withoutHeader []Account
	for _, a := range sampleChart() {
		if a.AccountID != "1" {
			withoutHeader = append(withoutHeader, a)
		}
	}

	tree := PruneDepth(BuildTree(withoutHeader), 1)
	assert.Equal(t, []string{"1001", "1100", "4000", "1050", "0100"}, codes(Flatten(tree)))

	assert.Equal(t, []string{"4000", "0100"}, codes(Flatten(PruneDepth(BuildTree(withoutHeader), 0))))
}

func TestTreeFilter_Match(t *testing.T) {
	asset := Asset
	a := Account{AccountType: Asset, IsActive: true}
	assert.True(t, TreeFilter{}.Match(a))
	assert.True(t, TreeFilter{AccountType: &asset}.Match(a))

	inactive := a
	inactive.IsActive = false
	assert.False(t, TreeFilter{}.Match(inactive))
	assert.True(t, TreeFilter{IncludeInactive: true}.Match(inactive))

	deleted := a
	deleted.DeletedAt = timePtr(a.CreatedAt)
	assert.False(t, TreeFilter{}.Match(deleted))
	assert.True(t, TreeFilter{IncludeDeleted: true}.Match(deleted))

	expense := Expense
	assert.False(t, TreeFilter{AccountType: &expense}.Match(a))
}

func TestDuplicateNames(t *testing.T) {
	flat := []Account{
		{AccountCode: "1001", AccountName: "Cash", ParentAccountID: strPtr("1")},
		{AccountCode: "1002", AccountName: " cash ", ParentAccountID: strPtr("1")},
		{AccountCode: "2001", AccountName: "Cash", ParentAccountID: strPtr("2")},
	}
	dups := DuplicateNames(flat)
	require.Len(t, dups, 1)
	assert.Equal(t, "1", dups[0].ParentAccountID)
	assert.Equal(t, []string{"1001", "1002"}, dups[0].AccountCodes)
}
