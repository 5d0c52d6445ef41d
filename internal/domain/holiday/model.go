package holiday

import (
	"fmt"
	"strings"
	"time"

	"courtside/internal/domain/apperr"
)

// Domain errors
var (
	ErrEmptyName      = fmt.Errorf("%w: holiday name cannot be empty", apperr.ErrValidation)
	ErrInvalidDates   = fmt.Errorf("%w: start date must be before or equal to end date", apperr.ErrValidation)
	ErrEmptyStartDate = fmt.Errorf("%w: start date cannot be zero", apperr.ErrValidation)
	ErrEmptyEndDate   = fmt.Errorf("%w: end date cannot be zero", apperr.ErrValidation)
)

// Holiday is a day (or range) when the club runs no sessions.
type Holiday struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

// Validate checks if the Holiday has valid data.
// PRE: Holiday struct is populated
// POST: Returns nil if valid, error otherwise
func (h *Holiday) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return ErrEmptyName
	}
	if h.StartDate.IsZero() {
		return ErrEmptyStartDate
	}
	if h.EndDate.IsZero() {
		return ErrEmptyEndDate
	}
	if h.StartDate.After(h.EndDate) {
		return ErrInvalidDates
	}
	return nil
}

// Contains returns true if the given date falls within this holiday, inclusive.
// INVARIANT: Holiday fields are not mutated
func (h *Holiday) Contains(date time.Time) bool {
	d := dayOf(date)
	return !d.Before(dayOf(h.StartDate)) && !d.After(dayOf(h.EndDate))
}

// AnyContains returns true if any holiday covers the date.
func AnyContains(holidays []Holiday, date time.Time) bool {
	for i := range holidays {
		if holidays[i].Contains(date) {
			return true
		}
	}
	return false
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
