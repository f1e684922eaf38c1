package client

import (
	"context"

	"github.com/dmitrijs2005/tokenquest/internal/models"
)

// RemoteStore is the authoritative document store for one user's
// collections and account. Missing documents are reported as
// common.ErrorNotFound; transport failures as ErrUnavailable.
type RemoteStore interface {
	ListCollection(ctx context.Context, userID string, kind models.Kind) ([]models.Entity, error)
	PutEntity(ctx context.Context, userID string, kind models.Kind, e models.Entity) error
	UpdateEntity(ctx context.Context, userID string, kind models.Kind, id string, patch models.EntityPatch) error
	DeleteEntity(ctx context.Context, userID string, kind models.Kind, id string) error
	GetAccount(ctx context.Context, userID string) (*models.Account, error)
	UpdateAccount(ctx context.Context, userID string, patch models.AccountPatch) (*models.Account, error)
}

// Client is the account-level API of a remote server.
type Client interface {
	Close() error
	Register(ctx context.Context, username, displayName string, salt, verifier []byte) (string, error)
	GetSalt(ctx context.Context, username string) ([]byte, error)
	// Login returns the user id on success.
	Login(ctx context.Context, username string, verifier []byte) (string, error)
	Ping(ctx context.Context) error
	// PresignBackup returns an object key and a presigned PUT URL.
	PresignBackup(ctx context.Context, userID string) (key, url string, err error)
}
