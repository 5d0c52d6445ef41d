package rate

import (
	"context"

	"courtside/internal/adapters/storage"
	domain "courtside/internal/domain/rate"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new rate store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// ListByCoach retrieves every rate a coach has, ordered by item type.
// PRE: coachID is non-empty
func (s *SQLiteStore) ListByCoach(ctx context.Context, coachID string) ([]domain.CoachRate, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT coach_id, item_type, hourly_rate FROM coach_rate WHERE coach_id = ? ORDER BY item_type", coachID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.CoachRate
	for rows.Next() {
		var entity domain.CoachRate
		if err := rows.Scan(&entity.CoachID, &entity.ItemType, &entity.HourlyRate); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Save upserts a rate keyed by (coach, item type).
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, entity domain.CoachRate) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO coach_rate (coach_id, item_type, hourly_rate) VALUES (?, ?, ?) ON CONFLICT(coach_id, item_type) DO UPDATE SET hourly_rate=excluded.hourly_rate",
		entity.CoachID, entity.ItemType, entity.HourlyRate.String(),
	)
	return err
}

// Delete removes one rate.
func (s *SQLiteStore) Delete(ctx context.Context, coachID, itemType string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM coach_rate WHERE coach_id = ? AND item_type = ?", coachID, itemType)
	return err
}
