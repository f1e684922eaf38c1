// Package accounts persists the per-user energy ledger on the server.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/tokenquest/internal/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Account) error
	Get(ctx context.Context, userID string) (*models.Account, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, userID string) (*models.Account, error)
	// Update returns common.ErrInsufficientEnergy for a negative balance.
	Update(ctx context.Context, a *models.Account) error
}
