package group

import (
	"fmt"
	"strings"
	"time"

	"courtside/internal/domain/apperr"
)

// Day of week constants
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// ValidDays contains all valid day values, indexed by time.Weekday.
var ValidDays = []string{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

const clockFormat = "15:04"

// Domain errors
var (
	ErrEmptyName      = fmt.Errorf("%w: group name cannot be empty", apperr.ErrValidation)
	ErrEmptyPeriodID  = fmt.Errorf("%w: period ID cannot be empty", apperr.ErrValidation)
	ErrNegativeCount  = fmt.Errorf("%w: student count cannot be negative", apperr.ErrValidation)
	ErrEmptyGroupID   = fmt.Errorf("%w: group ID cannot be empty", apperr.ErrValidation)
	ErrEmptyCoachID   = fmt.Errorf("%w: coach ID cannot be empty", apperr.ErrValidation)
	ErrInvalidDay     = fmt.Errorf("%w: day must be a valid day of the week", apperr.ErrValidation)
	ErrInvalidTime    = fmt.Errorf("%w: times must be HH:MM", apperr.ErrValidation)
	ErrEndBeforeStart = fmt.Errorf("%w: end time must be after start time", apperr.ErrValidation)
)

// Group is a coaching squad within a teaching period.
type Group struct {
	ID           string
	PeriodID     string
	Name         string
	StudentCount int
}

// Validate checks if the Group has valid data.
// PRE: Group struct is populated
// POST: Returns nil if valid, error otherwise
func (g *Group) Validate() error {
	if strings.TrimSpace(g.PeriodID) == "" {
		return ErrEmptyPeriodID
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.StudentCount < 0 {
		return ErrNegativeCount
	}
	return nil
}

// GroupTime is a recurring weekly slot for a group, taken by one coach.
// Sessions are resolved on-the-fly from GroupTime + Period - Holidays.
type GroupTime struct {
	ID        string
	GroupID   string
	CoachID   string
	Day       string // monday, tuesday, etc.
	StartTime string // HH:MM
	EndTime   string // HH:MM
}

// Validate checks if the GroupTime has valid data.
// PRE: GroupTime struct is populated
// POST: Returns nil if valid, error otherwise
func (gt *GroupTime) Validate() error {
	if strings.TrimSpace(gt.GroupID) == "" {
		return ErrEmptyGroupID
	}
	if strings.TrimSpace(gt.CoachID) == "" {
		return ErrEmptyCoachID
	}
	if _, ok := weekdayOf(gt.Day); !ok {
		return ErrInvalidDay
	}
	start, err := time.Parse(clockFormat, gt.StartTime)
	if err != nil {
		return ErrInvalidTime
	}
	end, err := time.Parse(clockFormat, gt.EndTime)
	if err != nil {
		return ErrInvalidTime
	}
	if !end.After(start) {
		return ErrEndBeforeStart
	}
	return nil
}

// Weekday returns the slot's day as a time.Weekday.
// PRE: Validate() == nil
func (gt *GroupTime) Weekday() time.Weekday {
	wd, _ := weekdayOf(gt.Day)
	return wd
}

// OccursOn returns true if the slot runs on the weekday of date.
func (gt *GroupTime) OccursOn(date time.Time) bool {
	wd, ok := weekdayOf(gt.Day)
	return ok && date.Weekday() == wd
}

// DurationHours returns the slot length in hours.
// PRE: StartTime and EndTime are in HH:MM format
// POST: Returns duration as float64 hours, or error if times can't be parsed
func (gt *GroupTime) DurationHours() (float64, error) {
	start, err := time.Parse(clockFormat, gt.StartTime)
	if err != nil {
		return 0, fmt.Errorf("invalid start time %q: %w", gt.StartTime, err)
	}
	end, err := time.Parse(clockFormat, gt.EndTime)
	if err != nil {
		return 0, fmt.Errorf("invalid end time %q: %w", gt.EndTime, err)
	}
	return end.Sub(start).Hours(), nil
}

// NormalizeDay lowercases and trims a day name.
func NormalizeDay(day string) string {
	return strings.ToLower(strings.TrimSpace(day))
}

func weekdayOf(day string) (time.Weekday, bool) {
	for i, d := range ValidDays {
		if d == day {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// Slot is a group time together with the group it belongs to.
type Slot struct {
	Group Group
	Time  GroupTime
}
