package register

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"courtside/internal/adapters/storage"
	"courtside/internal/domain/apperr"
	domain "courtside/internal/domain/register"
)

const registerColumns = "id, date, group_time_id, coach_id, created_by, created_at, entries"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new register store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts a register; at most one register exists per (date, group time).
// PRE: value has been validated
// POST: Register persisted, or a validation error if the slot already has one
func (s *SQLiteStore) Create(ctx context.Context, r domain.Register) error {
	entries := r.Entries
	if entries == nil {
		entries = []domain.Entry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode register entries: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO attendance_register ("+registerColumns+") VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT(date, group_time_id) DO NOTHING",
		r.ID, r.Date, r.GroupTimeID, r.CoachID, r.CreatedBy, storage.FormatTime(r.CreatedAt), string(raw),
	)
	if err != nil {
		return fmt.Errorf("insert register: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Validation("a register already exists for %s on %s", r.GroupTimeID, r.Date)
	}
	return nil
}

// GetByID retrieves a Register by its ID.
// PRE: id is non-empty
// POST: Returns the entity or a not-found error
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Register, error) {
	r, err := scanRegister(s.db.QueryRowContext(ctx, "SELECT "+registerColumns+" FROM attendance_register WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Register{}, apperr.NotFound("register %s", id)
	}
	return r, err
}

// ExistsForSlot reports whether a register exists for the session occurrence.
func (s *SQLiteStore) ExistsForSlot(ctx context.Context, date, groupTimeID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM attendance_register WHERE date = ? AND group_time_id = ?)", date, groupTimeID,
	).Scan(&exists)
	return exists, err
}

// ListInRange retrieves registers dated within [start, end] (YYYY-MM-DD, inclusive).
// POST: Returns registers ordered by date
func (s *SQLiteStore) ListInRange(ctx context.Context, start, end string) ([]domain.Register, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+registerColumns+" FROM attendance_register WHERE date >= ? AND date <= ? ORDER BY date, group_time_id", start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Register
	for rows.Next() {
		r, err := scanRegister(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanRegister(scan func(dest ...any) error) (domain.Register, error) {
	var r domain.Register
	var createdAt sql.NullString
	var entries string
	if err := scan(&r.ID, &r.Date, &r.GroupTimeID, &r.CoachID, &r.CreatedBy, &createdAt, &entries); err != nil {
		return domain.Register{}, err
	}
	var err error
	if r.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Register{}, err
	}
	if err := json.Unmarshal([]byte(entries), &r.Entries); err != nil {
		return domain.Register{}, fmt.Errorf("decode register entries: %w", err)
	}
	return r, nil
}
