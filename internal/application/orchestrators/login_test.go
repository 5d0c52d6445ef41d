package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"courtside/internal/domain/account"
	"courtside/internal/domain/apperr"
)

// mockAccountStore implements the account store interfaces for testing.
type mockAccountStore struct {
	accounts map[string]account.Account
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account)}
}

// GetByID implements AccountStoreForChangePassword.
func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, apperr.NotFound("account %s", id)
	}
	return a, nil
}

// GetByEmail implements AccountStoreForLogin.
func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, strings.TrimSpace(email)) {
			return a, nil
		}
	}
	return account.Account{}, apperr.NotFound("account")
}

// Save implements AccountStoreForLogin.
func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.accounts[a.ID] = a
	return nil
}

// Count implements AccountStoreForCreate.
func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

const testPassword = "correct horse battery"

func seededAccountStore(t *testing.T) *mockAccountStore {
	t.Helper()
	store := newMockAccountStore()
	a := account.Account{ID: "acc-mere", Email: "mere@club.nz", Role: account.RoleCoach, CoachID: "c-1"}
	if err := a.SetPassword(testPassword); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	store.accounts[a.ID] = a
	return store
}

// TestExecuteLogin_Success tests a valid login returns the role and coach link.
func TestExecuteLogin_Success(t *testing.T) {
	store := seededAccountStore(t)
	res, err := ExecuteLogin(context.Background(), LoginInput{Email: "MERE@club.nz", Password: testPassword},
		LoginDeps{AccountStore: store, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AccountID != "acc-mere" || res.Role != account.RoleCoach || res.CoachID != "c-1" {
		t.Errorf("unexpected result: %+v", res)
	}
}

// TestExecuteLogin_Lockout tests that five failures lock the account and success resets the counter.
func TestExecuteLogin_Lockout(t *testing.T) {
	store := seededAccountStore(t)
	now := fixedTime
	deps := LoginDeps{AccountStore: store, Now: func() time.Time { return now }}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := ExecuteLogin(ctx, LoginInput{Email: "mere@club.nz", Password: "wrong password!"}, deps); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}
	if _, err := ExecuteLogin(ctx, LoginInput{Email: "mere@club.nz", Password: testPassword}, deps); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}

	now = now.Add(16 * time.Minute)
	if _, err := ExecuteLogin(ctx, LoginInput{Email: "mere@club.nz", Password: testPassword}, deps); err != nil {
		t.Fatalf("after lock expiry: %v", err)
	}
	if a := store.accounts["acc-mere"]; a.FailedLogins != 0 || !a.LockedUntil.IsZero() {
		t.Errorf("expected counters reset, got %d / %v", a.FailedLogins, a.LockedUntil)
	}
}

// TestExecuteLogin_UnknownEmail tests that unknown accounts get the generic error.
func TestExecuteLogin_UnknownEmail(t *testing.T) {
	store := seededAccountStore(t)
	_, err := ExecuteLogin(context.Background(), LoginInput{Email: "nobody@club.nz", Password: testPassword},
		LoginDeps{AccountStore: store, Now: fixedNow})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

// TestExecuteCreateAccount tests the admin-only account creation rules.
func TestExecuteCreateAccount(t *testing.T) {
	tests := []struct {
		name  string
		input CreateAccountInput
		want  error
	}{
		{"admin creates coach", CreateAccountInput{Actor: adminActor, Email: "tom@club.nz", Password: testPassword, Role: account.RoleCoach, CoachID: "c-2"}, nil},
		{"coach creates account", CreateAccountInput{Actor: coachActor, Email: "x@club.nz", Password: testPassword, Role: account.RoleCoach, CoachID: "c-2"}, apperr.ErrForbidden},
		{"admin creates super admin", CreateAccountInput{Actor: adminActor, Email: "x@club.nz", Password: testPassword, Role: account.RoleSuperAdmin}, apperr.ErrForbidden},
		{"super admin creates super admin", CreateAccountInput{Actor: superActor, Email: "x@club.nz", Password: testPassword, Role: account.RoleSuperAdmin}, nil},
		{"duplicate email", CreateAccountInput{Actor: adminActor, Email: "Mere@club.nz", Password: testPassword, Role: account.RoleAdmin}, apperr.ErrValidation},
		{"coach without link", CreateAccountInput{Actor: adminActor, Email: "x@club.nz", Password: testPassword, Role: account.RoleCoach}, apperr.ErrValidation},
		{"unknown coach", CreateAccountInput{Actor: adminActor, Email: "x@club.nz", Password: testPassword, Role: account.RoleCoach, CoachID: "c-9"}, apperr.ErrNotFound},
		{"short password", CreateAccountInput{Actor: adminActor, Email: "x@club.nz", Password: "short", Role: account.RoleAdmin}, apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededAccountStore(t)
			deps := CreateAccountDeps{
				AccountStore: store,
				CoachStore:   newInvoiceDeps(newMockInvoiceStore()).CoachStore,
				GenerateID:   sequentialIDs(),
				Now:          fixedNow,
			}
			acct, err := ExecuteCreateAccount(context.Background(), tt.input, deps)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if acct.PasswordHash == "" || store.accounts[acct.ID].Email != tt.input.Email {
					t.Errorf("account not stored with a hash: %+v", acct)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if len(store.accounts) != 1 {
				t.Error("no account should be stored")
			}
		})
	}
}

// TestExecuteSeedAdmin tests seeding only runs on an empty store.
func TestExecuteSeedAdmin(t *testing.T) {
	store := newMockAccountStore()
	deps := CreateAccountDeps{AccountStore: store, GenerateID: sequentialIDs(), Now: fixedNow}
	ctx := context.Background()

	if err := ExecuteSeedAdmin(ctx, deps, "owner@club.nz", testPassword); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(store.accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(store.accounts))
	}
	for _, a := range store.accounts {
		if a.Role != account.RoleSuperAdmin {
			t.Errorf("seeded role = %s, want super_admin", a.Role)
		}
	}
	if err := ExecuteSeedAdmin(ctx, deps, "second@club.nz", testPassword); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if len(store.accounts) != 1 {
		t.Error("seeding must not run twice")
	}
}

// TestExecuteChangePassword tests password changes.
func TestExecuteChangePassword(t *testing.T) {
	store := seededAccountStore(t)
	now := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	deps := ChangePasswordDeps{AccountStore: store, Now: func() time.Time { return now }}
	ctx := context.Background()

	err := ExecuteChangePassword(ctx, ChangePasswordInput{AccountID: "acc-mere", CurrentPassword: "nope nope nope", NewPassword: "another long pass"}, deps)
	if !errors.Is(err, ErrCurrentPasswordWrong) || !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected wrong current password validation error, got %v", err)
	}
	if got := store.accounts["acc-mere"].FailedLogins; got != 1 {
		t.Errorf("FailedLogins = %d, want 1", got)
	}
	err = ExecuteChangePassword(ctx, ChangePasswordInput{AccountID: "acc-mere", CurrentPassword: testPassword, NewPassword: testPassword}, deps)
	if !errors.Is(err, ErrNewPasswordSame) {
		t.Errorf("expected ErrNewPasswordSame, got %v", err)
	}
	if err := ExecuteChangePassword(ctx, ChangePasswordInput{AccountID: "acc-mere", CurrentPassword: testPassword, NewPassword: "another long pass"}, deps); err != nil {
		t.Fatalf("change: %v", err)
	}
	a := store.accounts["acc-mere"]
	if err := a.CheckPassword("another long pass"); err != nil {
		t.Error("new password should verify")
	}
	if a.FailedLogins != 0 {
		t.Errorf("FailedLogins = %d after success, want 0", a.FailedLogins)
	}
}

func TestExecuteChangePassword_LocksAfterRepeatedGuesses(t *testing.T) {
	store := seededAccountStore(t)
	now := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	deps := ChangePasswordDeps{AccountStore: store, Now: func() time.Time { return now }}
	ctx := context.Background()
	guess := ChangePasswordInput{AccountID: "acc-mere", CurrentPassword: "wrong guess here", NewPassword: "another long pass"}

	for i := 0; i < 5; i++ {
		if err := ExecuteChangePassword(ctx, guess, deps); !errors.Is(err, ErrCurrentPasswordWrong) {
			t.Fatalf("guess %d: got %v", i+1, err)
		}
	}
	err := ExecuteChangePassword(ctx, ChangePasswordInput{AccountID: "acc-mere", CurrentPassword: testPassword, NewPassword: "another long pass"}, deps)
	if !errors.Is(err, ErrAccountLocked) || !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected locked account to be refused, got %v", err)
	}

	now = now.Add(16 * time.Minute)
	if err := ExecuteChangePassword(ctx, ChangePasswordInput{AccountID: "acc-mere", CurrentPassword: testPassword, NewPassword: "another long pass"}, deps); err != nil {
		t.Errorf("change after lockout expiry: %v", err)
	}
}
