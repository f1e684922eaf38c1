// Package accounts persists account ledgers for the local (offline) store.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/tokenquest/internal/models"
)

type Repository interface {
	// Create returns common.ErrorAlreadyExists if the account exists.
	Create(ctx context.Context, a *models.Account) error
	// Get returns common.ErrorNotFound when absent.
	Get(ctx context.Context, id string) (*models.Account, error)
	// Update overwrites every mutable column; returns common.ErrorNotFound
	// when absent and common.ErrInsufficientEnergy when energy would go negative.
	Update(ctx context.Context, a *models.Account) error
}
