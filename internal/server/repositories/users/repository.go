// Package users stores server accounts' credentials.
package users

import (
	"context"

	"github.com/dmitrijs2005/tokenquest/internal/server/models"
)

type Repository interface {
	// Create fills user.ID and returns common.ErrorAlreadyExists when the
	// username is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
