package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"courtside/internal/domain/account"
	"courtside/internal/domain/apperr"
	"courtside/internal/domain/session"
	"courtside/internal/metrics"
)

// PlanStoreForOrchestrator defines the store interface needed by session plan orchestrators.
type PlanStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (session.Plan, error)
	Create(ctx context.Context, p session.Plan) error
	Update(ctx context.Context, p session.Plan) error
}

// SessionPlanDeps holds dependencies for the session plan orchestrators.
type SessionPlanDeps struct {
	Occurrence OccurrenceDeps
	PlanStore  PlanStoreForOrchestrator
	Metrics    *metrics.Metrics
	GenerateID func() string
	Now        func() time.Time
}

// --- Create Session Plan ---

// CreateSessionPlanInput carries input for the create session plan orchestrator.
type CreateSessionPlanInput struct {
	Actor       account.Actor
	Date        string // YYYY-MM-DD
	GroupTimeID string
	Summary     string
}

// ExecuteCreateSessionPlan writes the plan for one session occurrence.
// PRE: Actor owns the group time; Date is a session of it
// POST: Plan persisted, or PlanningClosed when the session already has a register
// INVARIANT: At most one plan exists per (Date, GroupTimeID)
func ExecuteCreateSessionPlan(ctx context.Context, input CreateSessionPlanInput, deps SessionPlanDeps) (session.Plan, error) {
	s, err := resolveOccurrence(ctx, input.Actor, input.Date, input.GroupTimeID, "create_session_plan", deps.Occurrence)
	if err != nil {
		return session.Plan{}, err
	}
	if err := session.EnsurePlanningOpen(s); err != nil {
		rejectPlan(s, input.Actor, deps.Metrics)
		return session.Plan{}, err
	}

	now := deps.Now()
	p := session.Plan{
		ID:          deps.GenerateID(),
		Date:        s.Date,
		GroupTimeID: s.GroupTimeID,
		GroupName:   s.GroupName,
		Summary:     strings.TrimSpace(input.Summary),
		CreatedBy:   input.Actor.AccountID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return session.Plan{}, err
	}
	if err := deps.PlanStore.Create(ctx, p); err != nil {
		if errors.Is(err, apperr.ErrPlanningClosed) {
			rejectPlan(s, input.Actor, deps.Metrics)
		}
		return session.Plan{}, err
	}

	slog.Info("session_plan_event", "event", "plan_created", "plan_id", p.ID, "group_time_id", p.GroupTimeID, "date", p.Date, "account_id", input.Actor.AccountID)
	deps.Metrics.PlanCreated()
	return p, nil
}

// --- Update Session Plan ---

// UpdateSessionPlanInput carries input for the update session plan orchestrator.
type UpdateSessionPlanInput struct {
	Actor   account.Actor
	PlanID  string
	Summary string
}

// ExecuteUpdateSessionPlan changes the summary of a plan whose session has no register yet.
// PRE: Actor owns the plan's group time
// POST: Summary updated, or PlanningClosed once a register exists
func ExecuteUpdateSessionPlan(ctx context.Context, input UpdateSessionPlanInput, deps SessionPlanDeps) (session.Plan, error) {
	if input.PlanID == "" {
		return session.Plan{}, apperr.Validation("plan ID is required")
	}
	p, err := deps.PlanStore.GetByID(ctx, input.PlanID)
	if err != nil {
		return session.Plan{}, err
	}
	slot, err := deps.Occurrence.SlotStore.GetSlot(ctx, p.GroupTimeID)
	if err != nil {
		return session.Plan{}, err
	}
	if !input.Actor.Owns(slot.Time.CoachID) {
		slog.Warn("auth_denied", "op", "update_session_plan", "account_id", input.Actor.AccountID, "plan_id", p.ID)
		return session.Plan{}, apperr.Forbidden("plan belongs to another coach's session")
	}

	hasRegister, err := deps.Occurrence.RegisterStore.ExistsForSlot(ctx, p.Date, p.GroupTimeID)
	if err != nil {
		return session.Plan{}, err
	}
	s := session.Session{Date: p.Date, GroupTimeID: p.GroupTimeID, GroupName: p.GroupName, HasRegister: hasRegister}
	if err := session.EnsurePlanningOpen(s); err != nil {
		rejectPlan(s, input.Actor, deps.Metrics)
		return session.Plan{}, err
	}

	p.Summary = strings.TrimSpace(input.Summary)
	p.UpdatedAt = deps.Now()
	if err := p.Validate(); err != nil {
		return session.Plan{}, err
	}
	if err := deps.PlanStore.Update(ctx, p); err != nil {
		if errors.Is(err, apperr.ErrPlanningClosed) {
			rejectPlan(s, input.Actor, deps.Metrics)
		}
		return session.Plan{}, err
	}

	slog.Info("session_plan_event", "event", "plan_updated", "plan_id", p.ID, "account_id", input.Actor.AccountID)
	return p, nil
}

func rejectPlan(s session.Session, actor account.Actor, m *metrics.Metrics) {
	slog.Info("session_plan_event", "event", "plan_rejected", "reason", "register_exists",
		"group_time_id", s.GroupTimeID, "date", s.Date, "account_id", actor.AccountID)
	m.PlanRejected("register_exists")
}
