package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/tokenquest/internal/client/cache"
	"github.com/dmitrijs2005/tokenquest/internal/client/client"
	"github.com/dmitrijs2005/tokenquest/internal/client/config"
	"github.com/dmitrijs2005/tokenquest/internal/client/stores"
)

// backend bundles what a config.Backend provides. api is nil for the
// serverless backends; accounts is nil when the server creates accounts.
type backend struct {
	store    client.RemoteStore
	cache    cache.LocalCache
	api      client.Client
	accounts stores.AccountCreator
	close    func() error
}

func nopClose() error { return nil }

func openBackend(ctx context.Context, c *config.Config, db *sql.DB) (*backend, error) {
	switch c.Backend {
	case config.BackendGRPC:
		gc, err := client.NewGRPCClient(c.ServerEndpointAddr, c.CallTimeout)
		if err != nil {
			return nil, fmt.Errorf("grpc client: %w", err)
		}
		// the auth service owns and closes the connection
		return &backend{store: gc, cache: cache.NewSQLite(db), api: gc, close: nopClose}, nil

	case config.BackendLocal:
		s := stores.NewLocal(db)
		return &backend{store: s, cache: cache.NewMemory(), accounts: s, close: nopClose}, nil

	case config.BackendNATS:
		s, closeFn, err := stores.ConnectKV(ctx, c.NATSURL, c.NATSBucketPrefix)
		if err != nil {
			return nil, err
		}
		return &backend{
			store:    s,
			cache:    cache.NewSQLite(db),
			accounts: s,
			close:    func() error { closeFn(); return nil },
		}, nil

	case config.BackendMemory:
		s := stores.NewMemory()
		return &backend{store: s, cache: cache.NewMemory(), accounts: s, close: nopClose}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", c.Backend)
}
