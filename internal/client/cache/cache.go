// Package cache is the client's read-through/write-through mirror of the
// remote store: one entity list per (user, kind) and one account snapshot
// per user. Every write replaces the stored value wholesale, so readers
// see either the previous or the next value, never a mix.
package cache

import (
	"context"

	"github.com/dmitrijs2005/tokenquest/internal/models"
)

// LocalCache is not a source of truth. Implementations return copies, so
// callers may mutate what they get.
type LocalCache interface {
	// Entities reports ok=false when nothing is cached for (userID, kind).
	Entities(ctx context.Context, userID string, kind models.Kind) ([]models.Entity, bool, error)
	SetEntities(ctx context.Context, userID string, kind models.Kind, es []models.Entity) error
	ClearEntities(ctx context.Context, userID string, kind models.Kind) error

	Account(ctx context.Context, userID string) (*models.Account, bool, error)
	SetAccount(ctx context.Context, a *models.Account) error

	// Purge drops everything cached for userID.
	Purge(ctx context.Context, userID string) error
}

func entitiesKey(userID string, kind models.Kind) string {
	return "entities/" + userID + "/" + string(kind)
}

func accountKey(userID string) string {
	return "account/" + userID
}
