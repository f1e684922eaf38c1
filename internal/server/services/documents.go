package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/dbx"
	"github.com/dmitrijs2005/tokenquest/internal/logging"
	"github.com/dmitrijs2005/tokenquest/internal/models"
	"github.com/dmitrijs2005/tokenquest/internal/server/repositories/repomanager"
)

// DocumentService serves a user's mission and reward collections and the
// account document. Patches are read-modify-write inside one transaction
// with the row locked.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *DocumentService {
	return &DocumentService{db: db, repomanager: m, log: log.With("module", "documents")}
}

func (s *DocumentService) ListCollection(ctx context.Context, userID string, kind models.Kind) ([]models.Entity, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	return s.repomanager.Entities(s.db).List(ctx, userID, kind)
}

// PutEntity stores e under its own id, replacing the content of any existing
// document. The stored resolution state is kept; only UpdateEntity changes it.
func (s *DocumentService) PutEntity(ctx context.Context, userID string, kind models.Kind, e models.Entity) error {
	if err := normalize(kind, &e); err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Entities(tx)
		stored, err := repo.GetForUpdate(ctx, userID, kind, e.ID)
		switch {
		case err == nil:
			e.Resolved, e.ResolvedAt = stored.Resolved, stored.ResolvedAt
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}
		return repo.Upsert(ctx, userID, &e)
	})
}

func (s *DocumentService) UpdateEntity(ctx context.Context, userID string, kind models.Kind, id string, patch models.EntityPatch) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Entities(tx)
		e, err := repo.GetForUpdate(ctx, userID, kind, id)
		if err != nil {
			return err
		}
		if patch.Resolved != nil && *patch.Resolved && e.Resolved {
			return fmt.Errorf("%w: %s %s", common.ErrAlreadyResolved, kind, id)
		}
		patch.Apply(e)
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%w: %w", common.ErrValidation, err)
		}
		return repo.Upsert(ctx, userID, e)
	})
}

// DeleteEntity returns common.ErrorNotFound when the document does not exist.
func (s *DocumentService) DeleteEntity(ctx context.Context, userID string, kind models.Kind, id string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return s.repomanager.Entities(s.db).Delete(ctx, userID, kind, id)
}

func (s *DocumentService) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).Get(ctx, userID)
}

// UpdateAccount applies patch and returns the stored account. A patch that
// would leave the balance negative is rejected with
// common.ErrInsufficientEnergy and changes nothing.
func (s *DocumentService) UpdateAccount(ctx context.Context, userID string, patch models.AccountPatch) (*models.Account, error) {
	out, err := dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Account, error) {
		repo := s.repomanager.Accounts(tx)
		a, err := repo.GetForUpdate(ctx, userID)
		if err != nil {
			return nil, err
		}
		patch.Apply(a)
		if err := a.Validate(); err != nil {
			return nil, common.ErrInsufficientEnergy
		}
		if err := repo.Update(ctx, a); err != nil {
			return nil, err
		}
		return a, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "account updated", "user_id", userID, "energy", out.Energy)
	return out, nil
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
