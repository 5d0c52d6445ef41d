package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"courtside/internal/domain/account"
	"courtside/internal/domain/apperr"
)

// ChangePasswordInput is a signed-in user's request to replace their own password.
type ChangePasswordInput struct {
	AccountID       string
	CurrentPassword string
	NewPassword     string
}

// AccountStoreForChangePassword loads and saves the signed-in account.
type AccountStoreForChangePassword interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ChangePasswordDeps holds dependencies for ExecuteChangePassword.
// A wrong current password counts towards the same lockout as a failed login.
type ChangePasswordDeps struct {
	AccountStore AccountStoreForChangePassword
	Now          func() time.Time
}

var (
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
	ErrNewPasswordSame      = errors.New("new password must be different from current password")
)

// ExecuteChangePassword checks the current password and stores a hash of the new one.
// PRE: AccountID names an existing account
// POST: on success the new password verifies and the failed-attempt counter is cleared
// POST: on a wrong current password the failure is recorded; five in a row lock the account
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	if input.CurrentPassword == "" || input.NewPassword == "" {
		return apperr.Validation("current and new password are required")
	}

	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return err
	}
	now := deps.Now()
	if acct.IsLocked(now) {
		slog.Info("auth_event", "event", "password_change_blocked", "account_id", acct.ID, "reason", "locked")
		return fmt.Errorf("%w: %w", apperr.ErrForbidden, ErrAccountLocked)
	}
	if err := acct.CheckPassword(input.CurrentPassword); err != nil {
		acct.RecordFailedLogin(now)
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return err
		}
		slog.Info("auth_event", "event", "password_change_failed", "account_id", acct.ID, "failed_logins", acct.FailedLogins)
		return fmt.Errorf("%w: %w", apperr.ErrValidation, ErrCurrentPasswordWrong)
	}
	if input.CurrentPassword == input.NewPassword {
		return fmt.Errorf("%w: %w", apperr.ErrValidation, ErrNewPasswordSame)
	}
	if err := acct.SetPassword(input.NewPassword); err != nil {
		return err
	}
	acct.ResetFailedLogins()
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "password_changed", "account_id", acct.ID, "role", string(acct.Role))
	return nil
}
