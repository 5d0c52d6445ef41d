// Package session classifies virtual coaching sessions by planning status.
//
// A session is one occurrence of a group's weekly time slot on a date. It is
// never stored: the register calendar derives it from group times, teaching
// periods and holidays. Plans and registers attach to a session by the pair
// (Date, GroupTimeID).
package session

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"courtside/internal/domain/apperr"
)

// Status is the derived planning state of a session.
type Status string

// Session statuses
const (
	StatusHasRegister Status = "has_register"
	StatusHasPlan     Status = "has_plan"
	StatusNeedsPlan   Status = "needs_plan"
)

// DateFormat is the wire and storage format of session dates.
const DateFormat = "2006-01-02"

// MaxSummaryLength bounds a plan summary.
const MaxSummaryLength = 5000

// Session is one occurrence of a group time slot.
type Session struct {
	ID           string // "<groupTimeID>:<YYYY-MM-DD>", display only
	Date         string // YYYY-MM-DD
	GroupTimeID  string
	GroupID      string
	GroupName    string
	CoachID      string
	StartTime    string // HH:MM
	EndTime      string // HH:MM
	StudentCount int
	HasRegister  bool
	RegisterID   string
}

// ID builds the display identifier of a session occurrence.
func ID(groupTimeID, date string) string {
	return groupTimeID + ":" + date
}

// Plan is a coach's written plan for a session occurrence.
type Plan struct {
	ID          string
	Date        string // YYYY-MM-DD
	GroupTimeID string
	GroupName   string
	Summary     string
	CreatedBy   string // AccountID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks if the Plan has valid data.
// PRE: Plan struct is populated
// POST: Returns nil if valid, a validation error otherwise
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.GroupTimeID) == "" {
		return apperr.Validation("group time ID is required")
	}
	if _, err := time.Parse(DateFormat, p.Date); err != nil {
		return apperr.Validation("plan date %q must be YYYY-MM-DD", p.Date)
	}
	if strings.TrimSpace(p.Summary) == "" {
		return apperr.Validation("plan summary is required")
	}
	if len(p.Summary) > MaxSummaryLength {
		return apperr.Validation("plan summary cannot exceed %d characters", MaxSummaryLength)
	}
	return nil
}

// Matches reports whether the plan belongs to the session.
func (p *Plan) Matches(s Session) bool {
	return p.Date == s.Date && p.GroupTimeID == s.GroupTimeID
}

// Resolved is a session with its derived status and matching plan, if any.
type Resolved struct {
	Session Session
	Status  Status
	Plan    *Plan
}

type slotKey struct {
	date        string
	groupTimeID string
}

// Resolve classifies every session as exactly one status.
// A register wins over a plan; a session with a register still carries its plan.
// When several plans match one session the first in input order is used.
// POST: len(result) == len(sessions), same order
// INVARIANT: inputs are not mutated
func Resolve(sessions []Session, plans []Plan) []Resolved {
	byKey := make(map[slotKey]*Plan, len(plans))
	for i := range plans {
		k := slotKey{plans[i].Date, plans[i].GroupTimeID}
		if _, ok := byKey[k]; !ok {
			p := plans[i]
			byKey[k] = &p
		}
	}

	out := make([]Resolved, 0, len(sessions))
	for _, s := range sessions {
		plan := byKey[slotKey{s.Date, s.GroupTimeID}]
		status := StatusNeedsPlan
		switch {
		case s.HasRegister:
			status = StatusHasRegister
		case plan != nil:
			status = StatusHasPlan
		}
		out = append(out, Resolved{Session: s, Status: status, Plan: plan})
	}
	return out
}

// Stats counts resolved sessions by status.
// INVARIANT: HasRegister + HasPlan + NeedsPlan == Total
type Stats struct {
	Total       int
	HasRegister int
	HasPlan     int
	NeedsPlan   int
}

func (st *Stats) add(s Status) {
	st.Total++
	switch s {
	case StatusHasRegister:
		st.HasRegister++
	case StatusHasPlan:
		st.HasPlan++
	default:
		st.NeedsPlan++
	}
}

// WeeklyStats counts the statuses of the given resolved sessions.
func WeeklyStats(resolved []Resolved) Stats {
	var st Stats
	for _, r := range resolved {
		st.add(r.Status)
	}
	return st
}

// WeekStats is the Stats of one ISO week.
type WeekStats struct {
	WeekStart string // Monday, YYYY-MM-DD
	Stats
}

// StatsByWeek groups resolved sessions by ISO week (Monday start), ordered by week.
// Sessions with unparseable dates are skipped.
func StatsByWeek(resolved []Resolved) []WeekStats {
	weeks := make(map[string]*WeekStats)
	for _, r := range resolved {
		d, err := time.Parse(DateFormat, r.Session.Date)
		if err != nil {
			continue
		}
		start := WeekStart(d).Format(DateFormat)
		ws, ok := weeks[start]
		if !ok {
			ws = &WeekStats{WeekStart: start}
			weeks[start] = ws
		}
		ws.add(r.Status)
	}

	out := make([]WeekStats, 0, len(weeks))
	for _, ws := range weeks {
		out = append(out, *ws)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart < out[j].WeekStart })
	return out
}

// WeekStart returns the Monday on or before d, at midnight in d's location.
func WeekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	y, m, day := d.Date()
	return time.Date(y, m, day-offset, 0, 0, 0, 0, d.Location())
}

// EnsurePlanningOpen returns ErrPlanningClosed once a session has a register.
func EnsurePlanningOpen(s Session) error {
	if s.HasRegister {
		return apperr.PlanningClosed("session %s already has a register", describe(s))
	}
	return nil
}

func describe(s Session) string {
	if s.GroupName != "" {
		return fmt.Sprintf("%q on %s", s.GroupName, s.Date)
	}
	return ID(s.GroupTimeID, s.Date)
}
