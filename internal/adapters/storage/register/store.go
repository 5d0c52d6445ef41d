package register

import (
	"context"

	domain "courtside/internal/domain/register"
)

// Store persists attendance registers.
type Store interface {
	Create(ctx context.Context, value domain.Register) error
	GetByID(ctx context.Context, id string) (domain.Register, error)
	ExistsForSlot(ctx context.Context, date, groupTimeID string) (bool, error)
	ListInRange(ctx context.Context, start, end string) ([]domain.Register, error)
}
