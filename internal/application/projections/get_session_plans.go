package projections

import (
	"context"

	"courtside/internal/domain/session"
)

// SessionPlanStore defines the plan listing needed by plan projections.
type SessionPlanStore interface {
	ListInRange(ctx context.Context, start, end string) ([]session.Plan, error)
}

// SessionPlansDeps holds dependencies for QuerySessionPlans.
type SessionPlansDeps struct {
	PeriodStore CalendarPeriodStore
	SlotStore   CalendarSlotStore
	PlanStore   SessionPlanStore
}

// QuerySessionPlans lists the plans written for a period's group times.
// Coaches see only plans for their own group times.
// POST: Plans ordered by date
func QuerySessionPlans(ctx context.Context, q CalendarQuery, deps SessionPlansDeps) ([]session.Plan, error) {
	p, start, end, ok, err := resolveRange(ctx, q, deps.PeriodStore)
	if err != nil || !ok {
		return []session.Plan{}, err
	}

	slots, err := deps.SlotStore.ListSlots(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	visible := make(map[string]bool, len(slots))
	for _, s := range ownedSlots(q.Actor, slots) {
		visible[s.Time.ID] = true
	}

	plans, err := deps.PlanStore.ListInRange(ctx, start.Format(session.DateFormat), end.Format(session.DateFormat))
	if err != nil {
		return nil, err
	}
	out := []session.Plan{}
	for _, plan := range plans {
		if visible[plan.GroupTimeID] {
			out = append(out, plan)
		}
	}
	return out, nil
}
