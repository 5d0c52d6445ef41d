package holiday

import (
	"context"
	"time"

	"courtside/internal/adapters/storage"
	domain "courtside/internal/domain/holiday"
)

const holidayColumns = "id, name, start_date, end_date"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new HolidayStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists a Holiday to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Holiday) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO holiday ("+holidayColumns+") VALUES (?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET name=excluded.name, start_date=excluded.start_date, end_date=excluded.end_date",
		entity.ID, entity.Name, entity.StartDate.Format(storage.DateFormat), entity.EndDate.Format(storage.DateFormat),
	)
	return err
}

// Delete removes a Holiday from the database.
// PRE: id is non-empty
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM holiday WHERE id = ?", id)
	return err
}

// List retrieves all Holidays ordered by start date.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Holiday, error) {
	return s.query(ctx, "SELECT "+holidayColumns+" FROM holiday ORDER BY start_date")
}

// ListOverlapping retrieves Holidays that touch [start, end].
// POST: Returns holidays ordered by start date
func (s *SQLiteStore) ListOverlapping(ctx context.Context, start, end time.Time) ([]domain.Holiday, error) {
	return s.query(ctx,
		"SELECT "+holidayColumns+" FROM holiday WHERE start_date <= ? AND end_date >= ? ORDER BY start_date",
		end.Format(storage.DateFormat), start.Format(storage.DateFormat),
	)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Holiday
	for rows.Next() {
		var entity domain.Holiday
		var startStr, endStr string
		if err := rows.Scan(&entity.ID, &entity.Name, &startStr, &endStr); err != nil {
			return nil, err
		}
		entity.StartDate, _ = time.Parse(storage.DateFormat, startStr)
		entity.EndDate, _ = time.Parse(storage.DateFormat, endStr)
		results = append(results, entity)
	}
	return results, rows.Err()
}
