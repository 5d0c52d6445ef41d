package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"courtside/internal/adapters/storage"
	domain "courtside/internal/domain/account"
	"courtside/internal/domain/apperr"
)

const accountColumns = "id, email, password_hash, role, coach_id, created_at, failed_logins, locked_until"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AccountStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or a not-found error
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE id = ?", id)
	entity, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, apperr.NotFound("account %s", id)
	}
	return entity, err
}

// GetByEmail retrieves an Account by email, case-insensitively.
// PRE: email is non-empty
// POST: Returns the entity or a not-found error
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE email = ? COLLATE NOCASE", strings.TrimSpace(email))
	entity, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, apperr.NotFound("account with that email")
	}
	return entity, err
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	var coachID any
	if entity.CoachID != "" {
		coachID = entity.CoachID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email=excluded.email,
			password_hash=excluded.password_hash,
			role=excluded.role,
			coach_id=excluded.coach_id,
			failed_logins=excluded.failed_logins,
			locked_until=excluded.locked_until`,
		entity.ID,
		entity.Email,
		entity.PasswordHash,
		string(entity.Role),
		coachID,
		storage.FormatTime(entity.CreatedAt),
		entity.FailedLogins,
		storage.FormatTime(entity.LockedUntil),
	)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

// List retrieves Accounts based on the filter.
// A zero Limit returns every match.
// POST: Returns matching entities, newest first
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Account, error) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT " + accountColumns + " FROM account")
	if filter.Role != "" {
		b.WriteString(" WHERE role = ?")
		args = append(args, string(filter.Role))
	}
	b.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		entity, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of accounts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&count)
	return count, err
}

// CountByRole returns the number of accounts with role; an empty role counts all.
func (s *SQLiteStore) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	if role == "" {
		return s.Count(ctx)
	}
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account WHERE role = ?", string(role)).Scan(&count)
	return count, err
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var entity domain.Account
	var role string
	var coachID, createdAt, lockedUntil sql.NullString
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.PasswordHash,
		&role,
		&coachID,
		&createdAt,
		&entity.FailedLogins,
		&lockedUntil,
	)
	if err != nil {
		return domain.Account{}, err
	}
	entity.Role = domain.Role(role)
	entity.CoachID = coachID.String
	if entity.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Account{}, err
	}
	if entity.LockedUntil, err = storage.ParseTime(lockedUntil); err != nil {
		return domain.Account{}, err
	}
	return entity, nil
}
