package sessionplan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"courtside/internal/adapters/storage"
	"courtside/internal/domain/apperr"
	domain "courtside/internal/domain/session"
)

const planColumns = "id, date, group_time_id, group_name, summary, created_by, created_at, updated_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new session plan store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts a plan for a session occurrence.
// PRE: value has been validated
// POST: Plan persisted; PlanningClosed if a register exists, Validation if a plan exists
func (s *SQLiteStore) Create(ctx context.Context, p domain.Plan) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := ensureNoRegister(ctx, tx, p.Date, p.GroupTimeID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO session_plan ("+planColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(date, group_time_id) DO NOTHING",
		p.ID, p.Date, p.GroupTimeID, p.GroupName, p.Summary, p.CreatedBy,
		storage.FormatTime(p.CreatedAt), storage.FormatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Validation("a plan already exists for %s on %s", p.GroupTimeID, p.Date)
	}
	return tx.Commit()
}

// Update changes the summary of an existing plan.
// PRE: value has been validated
// POST: Summary and UpdatedAt persisted; PlanningClosed if a register exists
func (s *SQLiteStore) Update(ctx context.Context, p domain.Plan) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := ensureNoRegister(ctx, tx, p.Date, p.GroupTimeID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE session_plan SET summary = ?, updated_at = ? WHERE id = ?",
		p.Summary, storage.FormatTime(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return fmt.Errorf("update session plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("session plan %s", p.ID)
	}
	return tx.Commit()
}

// GetByID retrieves a Plan by its ID.
// PRE: id is non-empty
// POST: Returns the entity or a not-found error
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Plan, error) {
	p, err := scanPlan(s.db.QueryRowContext(ctx, "SELECT "+planColumns+" FROM session_plan WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Plan{}, apperr.NotFound("session plan %s", id)
	}
	return p, err
}

// ListInRange retrieves plans dated within [start, end] (YYYY-MM-DD, inclusive).
// POST: Returns plans ordered by date
func (s *SQLiteStore) ListInRange(ctx context.Context, start, end string) ([]domain.Plan, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+planColumns+" FROM session_plan WHERE date >= ? AND date <= ? ORDER BY date, group_time_id", start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Plan
	for rows.Next() {
		p, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

func ensureNoRegister(ctx context.Context, tx *sql.Tx, date, groupTimeID string) error {
	var exists bool
	err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM attendance_register WHERE date = ? AND group_time_id = ?)", date, groupTimeID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return apperr.PlanningClosed("session %s on %s already has a register", groupTimeID, date)
	}
	return nil
}

func scanPlan(scan func(dest ...any) error) (domain.Plan, error) {
	var p domain.Plan
	var createdAt, updatedAt sql.NullString
	if err := scan(&p.ID, &p.Date, &p.GroupTimeID, &p.GroupName, &p.Summary, &p.CreatedBy, &createdAt, &updatedAt); err != nil {
		return domain.Plan{}, err
	}
	var err error
	if p.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Plan{}, err
	}
	if p.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Plan{}, err
	}
	return p, nil
}
