package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"courtside/internal/domain/account"
	"courtside/internal/domain/apperr"
	"courtside/internal/domain/register"
)

// RegisterStoreForOrchestrator defines the store interface needed by CreateRegister.
type RegisterStoreForOrchestrator interface {
	Create(ctx context.Context, r register.Register) error
}

// CreateRegisterInput carries input for the create register orchestrator.
type CreateRegisterInput struct {
	Actor       account.Actor
	Date        string // YYYY-MM-DD
	GroupTimeID string
	Entries     []register.Entry
}

// CreateRegisterDeps holds dependencies for CreateRegister.
type CreateRegisterDeps struct {
	Occurrence    OccurrenceDeps
	RegisterStore RegisterStoreForOrchestrator
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteCreateRegister records attendance for one session occurrence.
// PRE: Actor owns the group time; Date is a session of it
// POST: Register persisted; the session's plan becomes read-only
// INVARIANT: At most one register exists per (Date, GroupTimeID)
func ExecuteCreateRegister(ctx context.Context, input CreateRegisterInput, deps CreateRegisterDeps) (register.Register, error) {
	s, err := resolveOccurrence(ctx, input.Actor, input.Date, input.GroupTimeID, "create_register", deps.Occurrence)
	if err != nil {
		return register.Register{}, err
	}
	if s.HasRegister {
		return register.Register{}, apperr.Validation("a register already exists for %s on %s", s.GroupName, s.Date)
	}

	entries := input.Entries
	if entries == nil {
		entries = []register.Entry{}
	}
	r := register.Register{
		ID:          deps.GenerateID(),
		Date:        s.Date,
		GroupTimeID: s.GroupTimeID,
		CoachID:     s.CoachID,
		CreatedBy:   input.Actor.AccountID,
		CreatedAt:   deps.Now(),
		Entries:     entries,
	}
	if err := r.Validate(); err != nil {
		return register.Register{}, err
	}
	if err := deps.RegisterStore.Create(ctx, r); err != nil {
		return register.Register{}, err
	}

	slog.Info("register_event", "event", "register_created", "register_id", r.ID, "group_time_id", r.GroupTimeID,
		"date", r.Date, "present", r.PresentCount(), "account_id", input.Actor.AccountID)
	return r, nil
}
