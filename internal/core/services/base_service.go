package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/subledger/internal/apperrors"
	"github.com/SscSPs/subledger/internal/core/domain"
	portsrepo "github.com/SscSPs/subledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/subledger/internal/core/ports/services"
	"github.com/SscSPs/subledger/internal/middleware"
	"github.com/google/uuid"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Store      portsrepo.TransactionManager
	Authorizer portssvc.Authorizer
	// Now and NewID are overridable so tests can pin time and ids.
	Now   func() time.Time
	NewID func() string
}

func newBaseService(store portsrepo.TransactionManager, authorizer portssvc.Authorizer) BaseService {
	return BaseService{
		Store:      store,
		Authorizer: authorizer,
		Now:        func() time.Time { return time.Now().UTC() },
		NewID:      uuid.NewString,
	}
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// Authorize returns ErrForbidden unless the actor holds the capability.
// Without an authorizer every request is denied.
func (s *BaseService) Authorize(ctx context.Context, actor domain.Actor, capability domain.Capability) error {
	if s.Authorizer == nil {
		s.LogWarn(ctx, "No authorizer configured, denying access", slog.String("user_id", actor.UserID))
		return apperrors.NewForbiddenError("no authorizer configured")
	}
	if !s.Authorizer.Can(actor, capability.Module, capability.Action) {
		s.LogDebug(ctx, "Capability denied",
			slog.String("user_id", actor.UserID),
			slog.String("role", string(actor.Role)),
			slog.String("module", capability.Module.String()),
			slog.String("action", capability.Action.String()))
		return apperrors.NewForbiddenError("role %q may not %s %s", actor.Role, capability.Action, capability.Module)
	}
	return nil
}

// logOutcome logs failures at a level matching their category. Caller mistakes are not errors.
func (s *BaseService) logOutcome(ctx context.Context, err error, msg string, keyvals ...any) {
	if apperrors.HTTPStatus(err) >= 500 {
		s.LogError(ctx, err, msg, keyvals...)
		return
	}
	s.LogDebug(ctx, msg, append(keyvals, slog.String("reason", err.Error()))...)
}
