package period

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"courtside/internal/adapters/storage"
	"courtside/internal/domain/apperr"
	domain "courtside/internal/domain/period"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new period store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Period by its ID.
// PRE: id is non-empty
// POST: Returns the entity or a not-found error
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Period, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, start_date, end_date FROM teaching_period WHERE id = ?", id)
	entity, err := scanPeriod(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Period{}, apperr.NotFound("teaching period %s", id)
	}
	return entity, err
}

// Save persists a Period to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Period) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO teaching_period (id, name, start_date, end_date) VALUES (?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET name=excluded.name, start_date=excluded.start_date, end_date=excluded.end_date",
		entity.ID, entity.Name, entity.StartDate.Format(storage.DateFormat), entity.EndDate.Format(storage.DateFormat),
	)
	return err
}

// Delete removes a Period and, by cascade, its groups.
// PRE: id is non-empty
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM teaching_period WHERE id = ?", id)
	return err
}

// List retrieves all Periods ordered by start date.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Period, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, start_date, end_date FROM teaching_period ORDER BY start_date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Period
	for rows.Next() {
		entity, err := scanPeriod(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanPeriod(scan func(dest ...any) error) (domain.Period, error) {
	var entity domain.Period
	var startStr, endStr string
	if err := scan(&entity.ID, &entity.Name, &startStr, &endStr); err != nil {
		return domain.Period{}, err
	}
	entity.StartDate, _ = time.Parse(storage.DateFormat, startStr)
	entity.EndDate, _ = time.Parse(storage.DateFormat, endStr)
	return entity, nil
}
