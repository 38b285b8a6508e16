package services

import "github.com/SscSPs/subledger/internal/core/domain"

// Authorizer decides whether an actor holds a capability.
type Authorizer interface {
	Can(actor domain.Actor, module domain.Module, action domain.Action) bool
}
