package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tokenquest/internal/client/cache"
	"github.com/dmitrijs2005/tokenquest/internal/client/client"
	"github.com/dmitrijs2005/tokenquest/internal/client/services"
	"github.com/dmitrijs2005/tokenquest/internal/client/stores"
	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/filex"
	"github.com/dmitrijs2005/tokenquest/internal/logging"
	"github.com/dmitrijs2005/tokenquest/internal/models"
)

// Env is the set of services a command runs against.
type Env struct {
	db     *sql.DB
	log    logging.Logger
	auth   services.AuthService
	syncer services.EntitySyncer
	ledger services.LedgerService
	stats  services.StatsService
}

// OpenEnv opens and migrates the client database named by opts.
func OpenEnv(ctx context.Context, opts *RootOptions) (*Env, error) {
	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	log := logging.New(logging.NewWriter(opts.LogFile), logging.Options{Level: level}).With("app", "admin")

	var svcOpts []services.Option
	if opts.Catalog != "" {
		catalog, err := models.LoadCatalog(opts.Catalog)
		if err != nil {
			return nil, err
		}
		svcOpts = append(svcOpts, services.WithCatalog(catalog))
	}

	path, err := filex.DataFile(opts.DataDir, opts.Database)
	if err != nil {
		return nil, err
	}
	db, err := client.InitDatabase(ctx, path)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", path, "error", err)
		return nil, err
	}
	return newEnv(db, log, svcOpts...), nil
}

func newEnv(db *sql.DB, log logging.Logger, opts ...services.Option) *Env {
	store := stores.NewLocal(db)
	c := cache.NewMemory()
	syncer := services.NewEntitySyncer(store, c, log, opts...)
	ledger := services.NewLedgerService(syncer, store, c, log, opts...)
	return &Env{
		db:     db,
		log:    log,
		auth:   services.NewAuthService(nil, db, store, opts...),
		syncer: syncer,
		ledger: ledger,
		stats:  services.NewStatsService(syncer, ledger),
	}
}

func (e *Env) Close() error {
	return e.db.Close()
}

// resolveUser accepts a username remembered by the client or a raw user id
// and returns the user id of an existing account.
func (e *Env) resolveUser(ctx context.Context, user string) (string, error) {
	if id, err := e.auth.UserID(ctx, user); err == nil {
		return id, nil
	}
	if _, err := e.ledger.Account(ctx, user); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("user %q: %w", user, common.ErrorNotFound)
		}
		return "", err
	}
	return user, nil
}
