package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"courtside/internal/domain/account"
	"courtside/internal/domain/apperr"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Actor    account.Actor
	Email    string
	Password string
	Role     account.Role
	CoachID  string
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	CoachStore   CoachStoreForInvoice
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateAccount coordinates account creation.
// Only admins create accounts, and only super admins create other super admins.
// PRE: Valid email, password >= 12 chars, valid role; coach accounts name an existing coach
// POST: Account created with hashed password
// INVARIANT: Email must be unique
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (account.Account, error) {
	if !input.Actor.Role.IsAdmin() {
		return account.Account{}, apperr.Forbidden("only admins can create accounts")
	}
	if input.Role.IsSuperAdmin() && !input.Actor.Role.IsSuperAdmin() {
		return account.Account{}, apperr.Forbidden("only super admins can create super admin accounts")
	}
	return createAccount(ctx, input, deps)
}

func createAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (account.Account, error) {
	email := strings.TrimSpace(input.Email)
	if _, err := deps.AccountStore.GetByEmail(ctx, email); err == nil {
		return account.Account{}, apperr.Validation("an account with this email already exists")
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     email,
		Role:      input.Role,
		CreatedAt: deps.Now(),
	}
	if input.Role == account.RoleCoach {
		acct.CoachID = strings.TrimSpace(input.CoachID)
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}
	if acct.CoachID != "" {
		if _, err := deps.CoachStore.GetByID(ctx, acct.CoachID); err != nil {
			return account.Account{}, err
		}
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return account.Account{}, err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return account.Account{}, err
	}

	slog.Info("auth_event", "event", "account_created", "email", acct.Email, "role", acct.Role, "account_id", input.Actor.AccountID)
	return acct, nil
}

// ExecuteSeedAdmin creates a super admin account if no accounts exist.
// PRE: Database is initialized
// POST: Super admin account created if count == 0
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, email, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := createAccount(ctx, CreateAccountInput{
		Email:    email,
		Password: password,
		Role:     account.RoleSuperAdmin,
	}, deps); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}
