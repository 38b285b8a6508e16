package domain

import (
	"sort"
	"strings"
)

// AccountNode is one account in a built forest.
type AccountNode struct {
	Account  Account        `json:"account"`
	Children []*AccountNode `json:"children"`
}

// AccountIndex is a flat arena of accounts keyed by id with a parent -> children index.
// Root accounts are indexed under the empty parent id.
type AccountIndex struct {
	byID     map[string]Account
	children map[string][]string
}

// NewAccountIndex indexes accounts. Children lists are kept in sibling order.
func NewAccountIndex(accounts []Account) *AccountIndex {
	ix := &AccountIndex{
		byID:     make(map[string]Account, len(accounts)),
		children: make(map[string][]string),
	}
	for _, a := range accounts {
		ix.byID[a.AccountID] = a
	}
	for _, a := range accounts {
		parent := a.ParentID()
		if _, ok := ix.byID[parent]; !ok {
			parent = ""
		}
		ix.children[parent] = append(ix.children[parent], a.AccountID)
	}
	for parent := range ix.children {
		ix.sortSiblings(ix.children[parent])
	}
	return ix
}

func (ix *AccountIndex) sortSiblings(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := ix.byID[ids[i]], ix.byID[ids[j]]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.AccountCode < b.AccountCode
	})
}

// Get returns the account with the given id.
func (ix *AccountIndex) Get(id string) (Account, bool) {
	a, ok := ix.byID[id]
	return a, ok
}

// IsDescendant reports whether candidate sits somewhere below ancestor.
// It walks up from candidate and gives up after len(byID) steps, so a corrupted chain cannot loop.
func (ix *AccountIndex) IsDescendant(candidate, ancestor string) bool {
	cur, ok := ix.byID[candidate]
	for steps := 0; ok && steps <= len(ix.byID); steps++ {
		parent := cur.ParentID()
		if parent == "" {
			return false
		}
		if parent == ancestor {
			return true
		}
		cur, ok = ix.byID[parent]
	}
	return false
}

// Descendants returns every account below id in pre-order.
func (ix *AccountIndex) Descendants(id string) []Account {
	var out []Account
	seen := map[string]bool{id: true}
	var walk func(string)
	walk = func(parent string) {
		for _, cid := range ix.children[parent] {
			if seen[cid] {
				continue
			}
			seen[cid] = true
			out = append(out, ix.byID[cid])
			walk(cid)
		}
	}
	walk(id)
	return out
}

// RelevelSubtree computes new levels for id and its descendants given id's new level.
// Only accounts whose level actually changes are returned.
func (ix *AccountIndex) RelevelSubtree(id string, level int) map[string]int {
	changed := make(map[string]int)
	levels := map[string]int{id: level}
	if a, ok := ix.byID[id]; ok && a.Level != level {
		changed[id] = level
	}
	for _, d := range ix.Descendants(id) {
		l := levels[d.ParentID()] + 1
		levels[d.AccountID] = l
		if d.Level != l {
			changed[d.AccountID] = l
		}
	}
	return changed
}

// Tree builds the forest from the index roots.
func (ix *AccountIndex) Tree() []*AccountNode {
	seen := make(map[string]bool, len(ix.byID))
	var build func(id string) *AccountNode
	build = func(id string) *AccountNode {
		seen[id] = true
		node := &AccountNode{Account: ix.byID[id], Children: []*AccountNode{}}
		for _, cid := range ix.children[id] {
			if seen[cid] {
				continue
			}
			node.Children = append(node.Children, build(cid))
		}
		return node
	}
	roots := make([]*AccountNode, 0, len(ix.children[""]))
	for _, id := range ix.children[""] {
		roots = append(roots, build(id))
	}
	return roots
}

// BuildTree groups accounts by parent and orders siblings by (sort_order, account_code).
// Accounts whose parent is not in the input become roots.
func BuildTree(accounts []Account) []*AccountNode {
	return NewAccountIndex(accounts).Tree()
}

// Flatten returns the pre-order traversal of a forest.
func Flatten(nodes []*AccountNode) []Account {
	var out []Account
	var walk func([]*AccountNode)
	walk = func(ns []*AccountNode) {
		for _, n := range ns {
			out = append(out, n.Account)
			walk(n.Children)
		}
	}
	walk(nodes)
	return out
}

// PruneDepth drops accounts whose hierarchy level exceeds maxDepth (root accounts are level 0).
// Depth is read from Account.Level, not from the position in the forest, so a node promoted
// to root because its ancestors were filtered out keeps its real depth.
func PruneDepth(nodes []*AccountNode, maxDepth int) []*AccountNode {
	out := make([]*AccountNode, 0, len(nodes))
	for _, n := range nodes {
		if n.Account.Level > maxDepth {
			continue
		}
		n.Children = PruneDepth(n.Children, maxDepth)
		out = append(out, n)
	}
	return out
}

// TreeFilter narrows a chart-of-accounts read.
type TreeFilter struct {
	MaxDepth        *int
	AccountType     *AccountType
	IncludeInactive bool
	IncludeDeleted  bool
}

// Match reports whether a passes the filter's per-account predicates.
func (f TreeFilter) Match(a Account) bool {
	if !f.IncludeDeleted && a.IsDeleted() {
		return false
	}
	if !f.IncludeInactive && !a.IsActive {
		return false
	}
	if f.AccountType != nil && a.AccountType != *f.AccountType {
		return false
	}
	return true
}

// DuplicateName reports siblings sharing a case-insensitive name.
type DuplicateName struct {
	ParentAccountID string   `json:"parentAccountID"`
	AccountName     string   `json:"accountName"`
	AccountCodes    []string `json:"accountCodes"`
}

// DuplicateNames scans a flat listing for siblings whose names collide.
func DuplicateNames(flat []Account) []DuplicateName {
	type key struct{ parent, name string }
	groups := make(map[key][]Account)
	var order []key
	for _, a := range flat {
		k := key{a.ParentID(), strings.ToLower(strings.TrimSpace(a.AccountName))}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], a)
	}
	var out []DuplicateName
	for _, k := range order {
		g := groups[k]
		if len(g) < 2 {
			continue
		}
		d := DuplicateName{ParentAccountID: k.parent, AccountName: g[0].AccountName}
		for _, a := range g {
			d.AccountCodes = append(d.AccountCodes, a.AccountCode)
		}
		out = append(out, d)
	}
	return out
}

// AccountTree is a chart-of-accounts read: the forest plus advisory sibling-name collisions.
type AccountTree struct {
	Roots          []*AccountNode  `json:"roots"`
	DuplicateNames []DuplicateName `json:"duplicateNames"`
}
