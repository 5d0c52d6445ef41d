package holiday

import (
	"context"
	"time"

	domain "courtside/internal/domain/holiday"
)

// Store persists club holidays.
type Store interface {
	Save(ctx context.Context, value domain.Holiday) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Holiday, error)
	ListOverlapping(ctx context.Context, start, end time.Time) ([]domain.Holiday, error)
}
