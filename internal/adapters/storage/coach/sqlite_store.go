package coach

import (
	"context"
	"database/sql"
	"errors"

	"courtside/internal/adapters/storage"
	"courtside/internal/domain/apperr"
	domain "courtside/internal/domain/coach"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new coach store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Coach by its ID.
// PRE: id is non-empty
// POST: Returns the entity or a not-found error
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Coach, error) {
	var entity domain.Coach
	err := s.db.QueryRowContext(ctx, "SELECT id, name, email FROM coach WHERE id = ?", id).
		Scan(&entity.ID, &entity.Name, &entity.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coach{}, apperr.NotFound("coach %s", id)
	}
	return entity, err
}

// Save persists a Coach to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Coach) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO coach (id, name, email) VALUES (?, ?, ?) ON CONFLICT(id) DO UPDATE SET name=excluded.name, email=excluded.email",
		entity.ID, entity.Name, entity.Email,
	)
	return err
}

// List retrieves all Coaches ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Coach, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email FROM coach ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Coach
	for rows.Next() {
		var entity domain.Coach
		if err := rows.Scan(&entity.ID, &entity.Name, &entity.Email); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
