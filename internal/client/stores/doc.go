// Package stores holds the RemoteStore implementations that do not go
// through the gRPC server:
//
//   - Local: the client SQLite database, for offline use.
//   - KV: NATS JetStream key-value buckets, one per kind plus accounts.
//   - Memory: in-process maps with fault injection, for demos and tests.
//
// All of them also implement AccountCreator so the client can register
// users without a server.
package stores

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/models"
)

// AccountCreator creates the account document at registration.
type AccountCreator interface {
	CreateAccount(ctx context.Context, a *models.Account) error
}

func checkKind(kind models.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", common.ErrValidation, kind)
	}
	return nil
}

// normalize stamps the collection kind onto e and validates it.
func normalize(kind models.Kind, e *models.Entity) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if e.Kind == "" {
		e.Kind = kind
	}
	if e.Kind != kind {
		return fmt.Errorf("%w: %s stored in %s collection", common.ErrValidation, e.Kind, kind.Collection())
	}
	if e.ID == "" {
		return fmt.Errorf("%w: entity id is required", common.ErrValidation)
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return nil
}

// keepResolution copies the resolution state of the stored document onto e.
// Full writes edit content only; resolving goes through UpdateEntity.
func keepResolution(e *models.Entity, stored models.Entity) {
	e.Resolved = stored.Resolved
	e.ResolvedAt = stored.ResolvedAt
}

// applyAccount applies p to a and rejects a negative balance.
func applyAccount(a *models.Account, p models.AccountPatch) error {
	p.Apply(a)
	if err := a.Validate(); err != nil {
		return common.ErrInsufficientEnergy
	}
	return nil
}

// applyEntity applies p to e and validates the result. Resolving an entity
// that is already resolved fails with common.ErrAlreadyResolved so that two
// writers racing on the same entity cannot both credit the account.
func applyEntity(e *models.Entity, p models.EntityPatch) error {
	if p.Resolved != nil && *p.Resolved && e.Resolved {
		return fmt.Errorf("%w: %s %s", common.ErrAlreadyResolved, e.Kind, e.ID)
	}
	p.Apply(e)
	if err := e.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return nil
}
