package projections

import (
	"context"
	"sort"
	"strings"
	"time"

	"courtside/internal/domain/account"
	"courtside/internal/domain/apperr"
	"courtside/internal/domain/group"
	"courtside/internal/domain/holiday"
	"courtside/internal/domain/period"
	"courtside/internal/domain/register"
	"courtside/internal/domain/session"
)

// CalendarPeriodStore defines the period lookup needed by calendar projections.
type CalendarPeriodStore interface {
	GetByID(ctx context.Context, id string) (period.Period, error)
}

// CalendarSlotStore defines the group time listing needed by calendar projections.
type CalendarSlotStore interface {
	ListSlots(ctx context.Context, periodID string) ([]group.Slot, error)
}

// CalendarHolidayStore defines the holiday lookup needed by calendar projections.
type CalendarHolidayStore interface {
	ListOverlapping(ctx context.Context, start, end time.Time) ([]holiday.Holiday, error)
}

// CalendarRegisterStore defines the register listing needed by calendar projections.
type CalendarRegisterStore interface {
	ListInRange(ctx context.Context, start, end string) ([]register.Register, error)
}

// RegisterCalendarDeps holds dependencies for QueryRegisterCalendar.
type RegisterCalendarDeps struct {
	PeriodStore   CalendarPeriodStore
	SlotStore     CalendarSlotStore
	HolidayStore  CalendarHolidayStore
	RegisterStore CalendarRegisterStore
}

// CalendarQuery selects the sessions of a teaching period.
// Empty StartDate / EndDate default to the period bounds.
type CalendarQuery struct {
	Actor     account.Actor
	PeriodID  string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
}

// QueryRegisterCalendar resolves sessions on-the-fly from GroupTimes + Period - Holidays,
// flagging the ones that already have a register.
// Coaches see only their own group times.
// PRE: PeriodID names an existing period
// POST: Sessions ordered by date, then start time, then group name
func QueryRegisterCalendar(ctx context.Context, q CalendarQuery, deps RegisterCalendarDeps) ([]session.Session, error) {
	p, start, end, ok, err := resolveRange(ctx, q, deps.PeriodStore)
	if err != nil || !ok {
		return []session.Session{}, err
	}

	slots, err := deps.SlotStore.ListSlots(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	slots = ownedSlots(q.Actor, slots)

	holidays, err := deps.HolidayStore.ListOverlapping(ctx, start, end)
	if err != nil {
		return nil, err
	}
	registers, err := deps.RegisterStore.ListInRange(ctx, start.Format(session.DateFormat), end.Format(session.DateFormat))
	if err != nil {
		return nil, err
	}
	registerIDs := make(map[string]string, len(registers))
	for _, r := range registers {
		registerIDs[session.ID(r.GroupTimeID, r.Date)] = r.ID
	}

	sessions := []session.Session{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if holiday.AnyContains(holidays, d) {
			continue
		}
		date := d.Format(session.DateFormat)
		for _, slot := range slots {
			if !slot.Time.OccursOn(d) {
				continue
			}
			id := session.ID(slot.Time.ID, date)
			regID, has := registerIDs[id]
			sessions = append(sessions, session.Session{
				ID:           id,
				Date:         date,
				GroupTimeID:  slot.Time.ID,
				GroupID:      slot.Group.ID,
				GroupName:    slot.Group.Name,
				CoachID:      slot.Time.CoachID,
				StartTime:    slot.Time.StartTime,
				EndTime:      slot.Time.EndTime,
				StudentCount: slot.Group.StudentCount,
				HasRegister:  has,
				RegisterID:   regID,
			})
		}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.GroupName < b.GroupName
	})
	return sessions, nil
}

// resolveRange loads the period and intersects it with the requested dates.
// ok is false when the request does not overlap the period.
func resolveRange(ctx context.Context, q CalendarQuery, periods CalendarPeriodStore) (p period.Period, start, end time.Time, ok bool, err error) {
	if strings.TrimSpace(q.PeriodID) == "" {
		return p, start, end, false, apperr.Validation("period_id is required")
	}
	p, err = periods.GetByID(ctx, q.PeriodID)
	if err != nil {
		return p, start, end, false, err
	}

	from, to := p.StartDate, p.EndDate
	if q.StartDate != "" {
		if from, err = time.Parse(session.DateFormat, q.StartDate); err != nil {
			return p, start, end, false, apperr.Validation("start_date %q must be YYYY-MM-DD", q.StartDate)
		}
	}
	if q.EndDate != "" {
		if to, err = time.Parse(session.DateFormat, q.EndDate); err != nil {
			return p, start, end, false, apperr.Validation("end_date %q must be YYYY-MM-DD", q.EndDate)
		}
	}
	if from.After(to) {
		return p, start, end, false, apperr.Validation("start_date must not be after end_date")
	}
	start, end, ok = p.Clamp(from, to)
	return p, start, end, ok, nil
}

func ownedSlots(actor account.Actor, slots []group.Slot) []group.Slot {
	if actor.Role.IsAdmin() {
		return slots
	}
	var out []group.Slot
	for _, s := range slots {
		if actor.Owns(s.Time.CoachID) {
			out = append(out, s)
		}
	}
	return out
}
