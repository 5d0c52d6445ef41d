package group

import (
	"context"
	"database/sql"
	"errors"

	"courtside/internal/adapters/storage"
	"courtside/internal/domain/apperr"
	domain "courtside/internal/domain/group"
)

const slotSelect = `SELECT g.id, g.period_id, g.name, g.student_count,
	t.id, t.group_id, t.coach_id, t.day, t.start_time, t.end_time
	FROM group_time t JOIN coaching_group g ON g.id = t.group_id`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new group store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetGroup retrieves a Group by its ID.
// PRE: id is non-empty
// POST: Returns the entity or a not-found error
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (domain.Group, error) {
	var g domain.Group
	err := s.db.QueryRowContext(ctx, "SELECT id, period_id, name, student_count FROM coaching_group WHERE id = ?", id).
		Scan(&g.ID, &g.PeriodID, &g.Name, &g.StudentCount)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Group{}, apperr.NotFound("group %s", id)
	}
	return g, err
}

// SaveGroup persists a Group.
// PRE: value has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) SaveGroup(ctx context.Context, g domain.Group) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO coaching_group (id, period_id, name, student_count) VALUES (?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET period_id=excluded.period_id, name=excluded.name, student_count=excluded.student_count",
		g.ID, g.PeriodID, g.Name, g.StudentCount,
	)
	return err
}

// DeleteGroup removes a Group and, by cascade, its time slots.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM coaching_group WHERE id = ?", id)
	return err
}

// ListGroups retrieves the groups of a period ordered by name.
func (s *SQLiteStore) ListGroups(ctx context.Context, periodID string) ([]domain.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, period_id, name, student_count FROM coaching_group WHERE period_id = ? ORDER BY name", periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.PeriodID, &g.Name, &g.StudentCount); err != nil {
			return nil, err
		}
		results = append(results, g)
	}
	return results, rows.Err()
}

// SaveTime persists a GroupTime.
// PRE: value has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) SaveTime(ctx context.Context, t domain.GroupTime) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO group_time (id, group_id, coach_id, day, start_time, end_time) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET group_id=excluded.group_id, coach_id=excluded.coach_id, day=excluded.day,
			start_time=excluded.start_time, end_time=excluded.end_time`,
		t.ID, t.GroupID, t.CoachID, t.Day, t.StartTime, t.EndTime,
	)
	return err
}

// DeleteTime removes a GroupTime.
func (s *SQLiteStore) DeleteTime(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM group_time WHERE id = ?", id)
	return err
}

// GetSlot retrieves a GroupTime together with its Group.
// PRE: groupTimeID is non-empty
// POST: Returns the slot or a not-found error
func (s *SQLiteStore) GetSlot(ctx context.Context, groupTimeID string) (domain.Slot, error) {
	slot, err := scanSlot(s.db.QueryRowContext(ctx, slotSelect+" WHERE t.id = ?", groupTimeID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Slot{}, apperr.NotFound("group time %s", groupTimeID)
	}
	return slot, err
}

// ListSlots retrieves every time slot of every group in a period.
// POST: Returns slots ordered by group name then start time
func (s *SQLiteStore) ListSlots(ctx context.Context, periodID string) ([]domain.Slot, error) {
	rows, err := s.db.QueryContext(ctx, slotSelect+" WHERE g.period_id = ? ORDER BY g.name, t.start_time", periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Slot
	for rows.Next() {
		slot, err := scanSlot(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, slot)
	}
	return results, rows.Err()
}

func scanSlot(scan func(dest ...any) error) (domain.Slot, error) {
	var s domain.Slot
	err := scan(
		&s.Group.ID, &s.Group.PeriodID, &s.Group.Name, &s.Group.StudentCount,
		&s.Time.ID, &s.Time.GroupID, &s.Time.CoachID, &s.Time.Day, &s.Time.StartTime, &s.Time.EndTime,
	)
	return s, err
}
