package projections

import (
	"context"

	"courtside/internal/domain/session"
)

// SessionStatusesDeps holds dependencies for QuerySessionStatuses.
type SessionStatusesDeps struct {
	Calendar  RegisterCalendarDeps
	PlanStore SessionPlanStore
}

// SessionStatusesResult is the resolved calendar with its counts.
type SessionStatusesResult struct {
	Sessions []session.Resolved
	Stats    session.Stats
	Weeks    []session.WeekStats
}

// QuerySessionStatuses classifies every session in range as has_register, has_plan or needs_plan.
// POST: Stats.Total == len(Sessions); Weeks partition Sessions by ISO week
func QuerySessionStatuses(ctx context.Context, q CalendarQuery, deps SessionStatusesDeps) (SessionStatusesResult, error) {
	sessions, err := QueryRegisterCalendar(ctx, q, deps.Calendar)
	if err != nil {
		return SessionStatusesResult{}, err
	}
	plans, err := QuerySessionPlans(ctx, q, SessionPlansDeps{
		PeriodStore: deps.Calendar.PeriodStore,
		SlotStore:   deps.Calendar.SlotStore,
		PlanStore:   deps.PlanStore,
	})
	if err != nil {
		return SessionStatusesResult{}, err
	}

	resolved := session.Resolve(sessions, plans)
	return SessionStatusesResult{
		Sessions: resolved,
		Stats:    session.WeeklyStats(resolved),
		Weeks:    session.StatsByWeek(resolved),
	}, nil
}
