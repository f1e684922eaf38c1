// Package records persists missions and rewards for the local (offline)
// store, one JSON document per (user, kind, id).
package records

import (
	"context"

	"github.com/dmitrijs2005/tokenquest/internal/models"
)

type Repository interface {
	// List returns the user's entities of kind in creation order.
	List(ctx context.Context, userID string, kind models.Kind) ([]models.Entity, error)
	// Get returns common.ErrorNotFound when absent.
	Get(ctx context.Context, userID string, kind models.Kind, id string) (*models.Entity, error)
	// Insert returns common.ErrorAlreadyExists on an id clash.
	Insert(ctx context.Context, userID string, e *models.Entity) error
	// Upsert writes e whether or not it exists.
	Upsert(ctx context.Context, userID string, e *models.Entity) error
	// Delete returns common.ErrorNotFound when nothing was deleted.
	Delete(ctx context.Context, userID string, kind models.Kind, id string) error
	// DeleteAll removes the whole collection and reports how many rows went.
	DeleteAll(ctx context.Context, userID string, kind models.Kind) (int64, error)
}
