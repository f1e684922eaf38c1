// Package entities stores missions and rewards as JSONB documents keyed by
// (user, kind, id).
package entities

import (
	"context"

	"github.com/dmitrijs2005/tokenquest/internal/models"
)

type Repository interface {
	// List returns the collection in insertion order, empty when there is none.
	List(ctx context.Context, userID string, kind models.Kind) ([]models.Entity, error)
	// GetForUpdate locks the document until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, userID string, kind models.Kind, id string) (*models.Entity, error)
	// Upsert creates or fully replaces the document with e.ID.
	Upsert(ctx context.Context, userID string, e *models.Entity) error
	// Delete returns common.ErrorNotFound when nothing was removed.
	Delete(ctx context.Context, userID string, kind models.Kind, id string) error
}
