package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"courtside/internal/domain/account"
	"courtside/internal/domain/apperr"
	"courtside/internal/domain/group"
	"courtside/internal/domain/holiday"
	"courtside/internal/domain/period"
	"courtside/internal/domain/session"
)

// SlotStoreForSession defines the group time lookup needed by session orchestrators.
type SlotStoreForSession interface {
	GetSlot(ctx context.Context, groupTimeID string) (group.Slot, error)
}

// PeriodStoreForSession defines the teaching period lookup needed by session orchestrators.
type PeriodStoreForSession interface {
	GetByID(ctx context.Context, id string) (period.Period, error)
}

// HolidayStoreForSession defines the holiday lookup needed by session orchestrators.
type HolidayStoreForSession interface {
	ListOverlapping(ctx context.Context, start, end time.Time) ([]holiday.Holiday, error)
}

// RegisterCheckerForSession reports whether a session occurrence has a register.
type RegisterCheckerForSession interface {
	ExistsForSlot(ctx context.Context, date, groupTimeID string) (bool, error)
}

// OccurrenceDeps holds the lookups that resolve one session occurrence.
type OccurrenceDeps struct {
	SlotStore     SlotStoreForSession
	PeriodStore   PeriodStoreForSession
	HolidayStore  HolidayStoreForSession
	RegisterStore RegisterCheckerForSession
}

// resolveOccurrence builds the session for (date, groupTimeID) and checks the actor
// may act on it.
// POST: Returns the session with HasRegister set, or NotFound / Forbidden / Validation
func resolveOccurrence(ctx context.Context, actor account.Actor, date, groupTimeID, op string, deps OccurrenceDeps) (session.Session, error) {
	date = strings.TrimSpace(date)
	day, err := time.Parse(session.DateFormat, date)
	if err != nil {
		return session.Session{}, apperr.Validation("date %q must be YYYY-MM-DD", date)
	}
	if strings.TrimSpace(groupTimeID) == "" {
		return session.Session{}, apperr.Validation("group time ID is required")
	}

	slot, err := deps.SlotStore.GetSlot(ctx, groupTimeID)
	if err != nil {
		return session.Session{}, err
	}
	if !actor.Owns(slot.Time.CoachID) {
		slog.Warn("auth_denied", "op", op, "account_id", actor.AccountID, "group_time_id", groupTimeID)
		return session.Session{}, apperr.Forbidden("group time %s belongs to another coach", groupTimeID)
	}
	if !slot.Time.OccursOn(day) {
		return session.Session{}, apperr.Validation("%s does not run on %s", slot.Group.Name, day.Weekday())
	}

	p, err := deps.PeriodStore.GetByID(ctx, slot.Group.PeriodID)
	if err != nil {
		return session.Session{}, err
	}
	if !p.Contains(day) {
		return session.Session{}, apperr.Validation("%s is outside %s", date, p.Name)
	}
	holidays, err := deps.HolidayStore.ListOverlapping(ctx, day, day)
	if err != nil {
		return session.Session{}, err
	}
	if holiday.AnyContains(holidays, day) {
		return session.Session{}, apperr.Validation("%s is a club holiday", date)
	}

	hasRegister, err := deps.RegisterStore.ExistsForSlot(ctx, date, groupTimeID)
	if err != nil {
		return session.Session{}, err
	}
	return session.Session{
		ID:           session.ID(groupTimeID, date),
		Date:         date,
		GroupTimeID:  groupTimeID,
		GroupID:      slot.Group.ID,
		GroupName:    slot.Group.Name,
		CoachID:      slot.Time.CoachID,
		StartTime:    slot.Time.StartTime,
		EndTime:      slot.Time.EndTime,
		StudentCount: slot.Group.StudentCount,
		HasRegister:  hasRegister,
	}, nil
}
