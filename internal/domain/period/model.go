package period

import (
	"fmt"
	"strings"
	"time"

	"courtside/internal/domain/apperr"
)

// Domain errors
var (
	ErrEmptyName      = fmt.Errorf("%w: period name cannot be empty", apperr.ErrValidation)
	ErrInvalidDates   = fmt.Errorf("%w: start date must be before end date", apperr.ErrValidation)
	ErrEmptyStartDate = fmt.Errorf("%w: start date cannot be zero", apperr.ErrValidation)
	ErrEmptyEndDate   = fmt.Errorf("%w: end date cannot be zero", apperr.ErrValidation)
)

// Period is a teaching period (school term or coaching season).
// Sessions are only generated for dates inside a period.
type Period struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

// Validate checks if the Period has valid data.
// PRE: Period struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Period) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.StartDate.IsZero() {
		return ErrEmptyStartDate
	}
	if p.EndDate.IsZero() {
		return ErrEmptyEndDate
	}
	if !p.StartDate.Before(p.EndDate) {
		return ErrInvalidDates
	}
	return nil
}

// Contains returns true if the given date falls within this period, inclusive.
// INVARIANT: Period fields are not mutated
func (p *Period) Contains(date time.Time) bool {
	d := dayOf(date)
	return !d.Before(dayOf(p.StartDate)) && !d.After(dayOf(p.EndDate))
}

// Clamp intersects [from, to] with the period.
// POST: ok is false when the ranges do not overlap
func (p *Period) Clamp(from, to time.Time) (start, end time.Time, ok bool) {
	start, end = dayOf(from), dayOf(to)
	if ps := dayOf(p.StartDate); start.Before(ps) {
		start = ps
	}
	if pe := dayOf(p.EndDate); end.After(pe) {
		end = pe
	}
	return start, end, !start.After(end)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
