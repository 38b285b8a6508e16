package domain

// Role is the escalation tier of an actor.
type Role string

const (
	RoleStaff    Role = "staff"
	RoleManager  Role = "manager"
	RoleDirector Role = "director"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleStaff, RoleManager, RoleDirector:
		return true
	}
	return false
}

// Actor is the authenticated principal performing an operation.
type Actor struct {
	UserID string `json:"userID"`
	Role   Role   `json:"role"`
}

// Module is a protected area of the ledger.
type Module int

const (
	ModuleAccount Module = iota
	ModuleJournal
)

func (m Module) String() string {
	switch m {
	case ModuleAccount:
		return "account"
	case ModuleJournal:
		return "journal"
	}
	return "unknown"
}

// Action is an operation class within a module.
type Action int

const (
	CanCreate Action = iota
	CanUpdate
	CanDelete
	CanApprove
	CanRelease
)

func (a Action) String() string {
	switch a {
	case CanCreate:
		return "create"
	case CanUpdate:
		return "update"
	case CanDelete:
		return "delete"
	case CanApprove:
		return "approve"
	case CanRelease:
		return "release"
	}
	return "unknown"
}

// Capability is a {module, action} pair.
type Capability struct {
	Module Module
	Action Action
}

// CapabilityFor maps a lifecycle action onto the capability it needs.
func CapabilityFor(action JournalAction) Capability {
	switch action {
	case ActionApprove, ActionReject:
		return Capability{ModuleJournal, CanApprove}
	case ActionPost, ActionReverse:
		return Capability{ModuleJournal, CanRelease}
	default: // submit, reopen
		return Capability{ModuleJournal, CanUpdate}
	}
}
