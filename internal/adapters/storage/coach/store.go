package coach

import (
	"context"

	domain "courtside/internal/domain/coach"
)

// Store persists coaches.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Coach, error)
	Save(ctx context.Context, value domain.Coach) error
	List(ctx context.Context) ([]domain.Coach, error)
}
