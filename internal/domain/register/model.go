package register

import (
	"fmt"
	"strings"
	"time"

	"courtside/internal/domain/apperr"
)

const dateFormat = "2006-01-02"

// Domain errors
var (
	ErrEmptyGroupTimeID = fmt.Errorf("%w: group time ID cannot be empty", apperr.ErrValidation)
	ErrEmptyCoachID     = fmt.Errorf("%w: coach ID cannot be empty", apperr.ErrValidation)
	ErrInvalidDate      = fmt.Errorf("%w: register date must be YYYY-MM-DD", apperr.ErrValidation)
	ErrEmptyStudentName = fmt.Errorf("%w: student name cannot be empty", apperr.ErrValidation)
	ErrDuplicateStudent = fmt.Errorf("%w: student listed twice", apperr.ErrValidation)
)

// Register is the attendance record for one session occurrence.
// Once a register exists for (Date, GroupTimeID) the session's plan is closed.
type Register struct {
	ID          string
	Date        string // YYYY-MM-DD
	GroupTimeID string
	CoachID     string
	CreatedBy   string // AccountID
	CreatedAt   time.Time
	Entries     []Entry
}

// Entry marks one student present or absent.
type Entry struct {
	StudentName string
	Present     bool
}

// Validate checks if the Register has valid data.
// PRE: Register struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Register) Validate() error {
	if strings.TrimSpace(r.GroupTimeID) == "" {
		return ErrEmptyGroupTimeID
	}
	if strings.TrimSpace(r.CoachID) == "" {
		return ErrEmptyCoachID
	}
	if _, err := time.Parse(dateFormat, r.Date); err != nil {
		return ErrInvalidDate
	}
	seen := make(map[string]bool, len(r.Entries))
	for _, e := range r.Entries {
		name := strings.ToLower(strings.TrimSpace(e.StudentName))
		if name == "" {
			return ErrEmptyStudentName
		}
		if seen[name] {
			return ErrDuplicateStudent
		}
		seen[name] = true
	}
	return nil
}

// Day returns the register date as a time.
// PRE: Validate() == nil
func (r *Register) Day() time.Time {
	d, _ := time.Parse(dateFormat, r.Date)
	return d
}

// PresentCount returns the number of students marked present.
func (r *Register) PresentCount() int {
	n := 0
	for _, e := range r.Entries {
		if e.Present {
			n++
		}
	}
	return n
}
