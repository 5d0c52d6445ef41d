package rate

import (
	"context"

	domain "courtside/internal/domain/rate"
)

// Store persists coach default rates.
type Store interface {
	ListByCoach(ctx context.Context, coachID string) ([]domain.CoachRate, error)
	Save(ctx context.Context, value domain.CoachRate) error
	Delete(ctx context.Context, coachID, itemType string) error
}
