package services

import (
	"github.com/SscSPs/subledger/internal/core/domain"
	portssvc "github.com/SscSPs/subledger/internal/core/ports/services"
)

// RoleMatrix is a closed capability table keyed by role.
type RoleMatrix map[domain.Role]map[domain.Capability]bool

// DefaultRoleMatrix encodes the staff < manager < director escalation model.
// Staff prepare and submit, managers approve or reject, directors post and reverse.
func DefaultRoleMatrix() RoleMatrix {
	staff := []domain.Capability{
		{Module: domain.ModuleAccount, Action: domain.CanCreate},
		{Module: domain.ModuleAccount, Action: domain.CanUpdate},
		{Module: domain.ModuleJournal, Action: domain.CanCreate},
		{Module: domain.ModuleJournal, Action: domain.CanUpdate},
		{Module: domain.ModuleJournal, Action: domain.CanDelete},
	}
	manager := append(append([]domain.Capability{}, staff...),
		domain.Capability{Module: domain.ModuleAccount, Action: domain.CanDelete},
		domain.Capability{Module: domain.ModuleJournal, Action: domain.CanApprove},
	)
	director := append(append([]domain.Capability{}, manager...),
		domain.Capability{Module: domain.ModuleAccount, Action: domain.CanApprove},
		domain.Capability{Module: domain.ModuleAccount, Action: domain.CanRelease},
		domain.Capability{Module: domain.ModuleJournal, Action: domain.CanRelease},
	)

	m := RoleMatrix{}
	for role, caps := range map[domain.Role][]domain.Capability{
		domain.RoleStaff:    staff,
		domain.RoleManager:  manager,
		domain.RoleDirector: director,
	} {
		m[role] = make(map[domain.Capability]bool, len(caps))
		for _, c := range caps {
			m[role][c] = true
		}
	}
	return m
}

// RoleAuthorizer answers capability checks from a RoleMatrix.
type RoleAuthorizer struct {
	matrix RoleMatrix
}

// NewRoleAuthorizer creates an authorizer; a nil matrix uses DefaultRoleMatrix.
func NewRoleAuthorizer(matrix RoleMatrix) *RoleAuthorizer {
	if matrix == nil {
		matrix = DefaultRoleMatrix()
	}
	return &RoleAuthorizer{matrix: matrix}
}

var _ portssvc.Authorizer = (*RoleAuthorizer)(nil)

// Can reports whether the actor's role holds {module, action}.
func (a *RoleAuthorizer) Can(actor domain.Actor, module domain.Module, action domain.Action) bool {
	if actor.UserID == "" {
		return false
	}
	return a.matrix[actor.Role][domain.Capability{Module: module, Action: action}]
}
