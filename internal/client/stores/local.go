package stores

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/tokenquest/internal/client/client"
	"github.com/dmitrijs2005/tokenquest/internal/client/repositories/accounts"
	"github.com/dmitrijs2005/tokenquest/internal/client/repositories/records"
	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/dbx"
	"github.com/dmitrijs2005/tokenquest/internal/models"
)

// Local is a RemoteStore over the client SQLite database. Read-modify-write
// operations run in one transaction.
type Local struct {
	db *sql.DB
}

var (
	_ client.RemoteStore = (*Local)(nil)
	_ AccountCreator     = (*Local)(nil)
)

func NewLocal(db *sql.DB) *Local {
	return &Local{db: db}
}

func (s *Local) ListCollection(ctx context.Context, userID string, kind models.Kind) ([]models.Entity, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	return records.NewSQLiteRepository(s.db).List(ctx, userID, kind)
}

func (s *Local) PutEntity(ctx context.Context, userID string, kind models.Kind, e models.Entity) error {
	if err := normalize(kind, &e); err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := records.NewSQLiteRepository(tx)
		stored, err := repo.Get(ctx, userID, kind, e.ID)
		switch {
		case err == nil:
			keepResolution(&e, *stored)
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}
		return repo.Upsert(ctx, userID, &e)
	})
}

func (s *Local) UpdateEntity(ctx context.Context, userID string, kind models.Kind, id string, patch models.EntityPatch) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := records.NewSQLiteRepository(tx)
		e, err := repo.Get(ctx, userID, kind, id)
		if err != nil {
			return err
		}
		if err := applyEntity(e, patch); err != nil {
			return err
		}
		return repo.Upsert(ctx, userID, e)
	})
}

func (s *Local) DeleteEntity(ctx context.Context, userID string, kind models.Kind, id string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return records.NewSQLiteRepository(s.db).Delete(ctx, userID, kind, id)
}

func (s *Local) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	return accounts.NewSQLiteRepository(s.db).Get(ctx, userID)
}

func (s *Local) UpdateAccount(ctx context.Context, userID string, patch models.AccountPatch) (*models.Account, error) {
	return dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Account, error) {
		repo := accounts.NewSQLiteRepository(tx)
		a, err := repo.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := applyAccount(a, patch); err != nil {
			return nil, err
		}
		if err := repo.Update(ctx, a); err != nil {
			return nil, err
		}
		return a, nil
	})
}

func (s *Local) CreateAccount(ctx context.Context, a *models.Account) error {
	return accounts.NewSQLiteRepository(s.db).Create(ctx, a)
}
