package domain

import "time"

// JournalStatusChange is one row of a journal's approval trail.
type JournalStatusChange struct {
	ChangeID   string        `json:"changeID"`
	JournalID  string        `json:"journalID"`
	CompanyID  string        `json:"companyID"`
	Action     JournalAction `json:"action"`
	FromStatus JournalStatus `json:"fromStatus"`
	ToStatus   JournalStatus `json:"toStatus"`
	ActorID    string        `json:"actorID"`
	Reason     *string       `json:"reason,omitempty"`
	At         time.Time     `json:"at"`
}

// JournalFilter narrows a journal listing. Results are ordered newest journal date first.
type JournalFilter struct {
	Status         *JournalStatus
	Period         string
	BranchID       *string
	IncludeDeleted bool
	Limit          int
	// Cursor is the (journal_date, created_at) of the last row of the previous page.
	AfterJournalDate *time.Time
	AfterCreatedAt   *time.Time
}
