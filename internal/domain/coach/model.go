package coach

import (
	"fmt"
	"net/mail"
	"strings"

	"courtside/internal/domain/apperr"
)

// Domain errors
var (
	ErrEmptyName    = fmt.Errorf("%w: coach name cannot be empty", apperr.ErrValidation)
	ErrInvalidEmail = fmt.Errorf("%w: coach email is not valid", apperr.ErrValidation)
)

// Coach is a person who runs sessions and invoices the club monthly.
type Coach struct {
	ID    string
	Name  string
	Email string // optional
}

// Validate checks if the Coach has valid data.
// PRE: Coach struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Coach) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return ErrInvalidEmail
		}
	}
	return nil
}
