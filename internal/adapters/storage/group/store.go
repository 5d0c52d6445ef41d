package group

import (
	"context"

	domain "courtside/internal/domain/group"
)

// Store persists groups and their weekly time slots.
type Store interface {
	GetGroup(ctx context.Context, id string) (domain.Group, error)
	SaveGroup(ctx context.Context, value domain.Group) error
	DeleteGroup(ctx context.Context, id string) error
	ListGroups(ctx context.Context, periodID string) ([]domain.Group, error)

	SaveTime(ctx context.Context, value domain.GroupTime) error
	DeleteTime(ctx context.Context, id string) error
	GetSlot(ctx context.Context, groupTimeID string) (domain.Slot, error)
	ListSlots(ctx context.Context, periodID string) ([]domain.Slot, error)
}
