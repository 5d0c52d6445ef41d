package account

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"courtside/internal/domain/apperr"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
)

// Role is the caller's permission level. It is resolved once at the session
// boundary and used by every permission check.
type Role string

// Role constants
const (
	RoleCoach      Role = "coach"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ValidRoles contains all valid role values.
var ValidRoles = []Role{RoleCoach, RoleAdmin, RoleSuperAdmin}

// Domain errors
var (
	ErrInvalidEmail     = fmt.Errorf("%w: email must contain '@'", apperr.ErrValidation)
	ErrEmptyEmail       = fmt.Errorf("%w: email cannot be empty", apperr.ErrValidation)
	ErrEmailTooLong     = fmt.Errorf("%w: email cannot exceed %d characters", apperr.ErrValidation, MaxEmailLength)
	ErrInvalidRole      = fmt.Errorf("%w: role must be one of: coach, admin, super_admin", apperr.ErrValidation)
	ErrMissingCoachID   = fmt.Errorf("%w: coach accounts must be linked to a coach", apperr.ErrValidation)
	ErrEmptyPassword    = fmt.Errorf("%w: password cannot be empty", apperr.ErrValidation)
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least 12 characters", apperr.ErrValidation)
	ErrWrongPassword    = errors.New("incorrect password")
)

// ParseRole converts a stored or transmitted role name into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(strings.ToLower(s)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, v := range ValidRoles {
		if v == r {
			return true
		}
	}
	return false
}

// IsAdmin returns true for admin and super_admin.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// IsSuperAdmin returns true only for super_admin.
func (r Role) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}

// Actor identifies who is performing an operation.
// CoachID is set for coach accounts and links them to the invoices,
// group times and registers they own.
type Actor struct {
	AccountID string
	Role      Role
	CoachID   string
}

// Owns returns true if the actor may act on a record belonging to coachID.
// Admins own everything; coaches own only their own records.
func (a Actor) Owns(coachID string) bool {
	if a.Role.IsAdmin() {
		return true
	}
	return a.CoachID != "" && a.CoachID == coachID
}

// Account holds state for the Account concept.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	CoachID      string
	CreatedAt    time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if len(a.Email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	if !a.Role.Valid() {
		return ErrInvalidRole
	}
	if a.Role == RoleCoach && strings.TrimSpace(a.CoachID) == "" {
		return ErrMissingCoachID
	}
	return nil
}

// Actor returns the Actor this account acts as.
func (a *Account) Actor() Actor {
	return Actor{AccountID: a.ID, Role: a.Role, CoachID: a.CoachID}
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext is non-empty and >= 12 characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < 12 {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked returns true if the account is currently locked out.
func (a *Account) IsLocked(now time.Time) bool {
	if a.LockedUntil.IsZero() {
		return false
	}
	return now.Before(a.LockedUntil)
}

// RecordFailedLogin increments the failed login counter and locks the account after 5 failures.
// POST: FailedLogins incremented; LockedUntil set if >= 5 failures
func (a *Account) RecordFailedLogin(now time.Time) {
	a.FailedLogins++
	if a.FailedLogins >= 5 {
		a.LockedUntil = now.Add(15 * time.Minute)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}
