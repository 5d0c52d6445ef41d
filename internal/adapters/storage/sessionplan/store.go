package sessionplan

import (
	"context"

	domain "courtside/internal/domain/session"
)

// Store persists session plans.
// Writes re-check register existence inside a transaction so a plan can
// never be created or changed for a session that already has a register.
type Store interface {
	Create(ctx context.Context, value domain.Plan) error
	Update(ctx context.Context, value domain.Plan) error
	GetByID(ctx context.Context, id string) (domain.Plan, error)
	ListInRange(ctx context.Context, start, end string) ([]domain.Plan, error)
}
