package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/client/client"
	"github.com/dmitrijs2005/tokenquest/internal/client/config"
	"github.com/dmitrijs2005/tokenquest/internal/client/repositories/journal"
	"github.com/dmitrijs2005/tokenquest/internal/client/services"
	"github.com/dmitrijs2005/tokenquest/internal/filex"
	"github.com/dmitrijs2005/tokenquest/internal/logging"
	"github.com/dmitrijs2005/tokenquest/internal/models"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
	// ModeLocal is used by the serverless backends.
	ModeLocal Mode = "local"
)

type App struct {
	config *config.Config
	log    logging.Logger
	out    io.Writer
	reader *bufio.Reader
	st     styles

	authService    services.AuthService
	syncer         services.EntitySyncer
	ledger         services.LedgerService
	statsService   services.StatsService
	journalService services.JournalService
	backupService  services.BackupService

	online  bool
	session *services.Session

	mu   sync.Mutex
	Mode Mode

	closers []func() error
	now     func() time.Time
}

// NewApp opens the client database and the configured backend and builds
// the services on top of them.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(logging.NewWriter(c.LogFile), logging.Options{Level: c.LogLevel}).With("app", "cli")

	dbPath, err := filex.DataFile(c.DataDir, c.DatabasePath)
	if err != nil {
		return nil, err
	}
	db, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", dbPath, "error", err)
		return nil, err
	}

	opts, err := serviceOptions(c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	b, err := openBackend(ctx, c, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(c, log, db, b, opts...)
	a.closers = append(a.closers, b.close, db.Close)
	return a, nil
}

func serviceOptions(c *config.Config) ([]services.Option, error) {
	if c.CatalogFile == "" {
		return nil, nil
	}
	catalog, err := models.LoadCatalog(c.CatalogFile)
	if err != nil {
		return nil, err
	}
	return []services.Option{services.WithCatalog(catalog)}, nil
}

func newApp(c *config.Config, log logging.Logger, db *sql.DB, b *backend, opts ...services.Option) *App {
	syncer := services.NewEntitySyncer(b.store, b.cache, log, opts...)
	ledger := services.NewLedgerService(syncer, b.store, b.cache, log, opts...)

	a := &App{
		config:         c,
		log:            log,
		out:            os.Stdout,
		reader:         bufio.NewReader(os.Stdin),
		st:             defaultStyles(),
		authService:    services.NewAuthService(b.api, db, b.accounts, opts...),
		syncer:         syncer,
		ledger:         ledger,
		statsService:   services.NewStatsService(syncer, ledger),
		journalService: services.NewJournalService(journal.NewSQLiteRepository(db), opts...),
		backupService:  services.NewBackupService(b.api, syncer, ledger, nil, opts...),
		online:         b.api != nil,
		now:            time.Now,
	}
	a.Mode = ModeOffline
	if !a.online {
		a.Mode = ModeLocal
	}
	return a
}

// Run starts the connectivity watcher (server backend only) and the REPL,
// and releases everything when the REPL returns.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if a.online {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
		}()
	}

	a.Root(ctx)

	cancel()
	wg.Wait()
	return a.Close(ctx)
}

// Close wipes the session and releases the backend and the database.
func (a *App) Close(ctx context.Context) error {
	a.session.Wipe()
	a.session = nil

	var errs []error
	if err := a.authService.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()

	if changed {
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
		a.log.Info(context.Background(), "mode changed", "mode", string(mode))
	}
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) userID() string {
	if a.session == nil {
		return ""
	}
	return a.session.UserID
}

// StartOnlineStatusWatcher pings the server every interval and flips
// between online and offline mode. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(pingCtx)
			cancel()

			switch mode := a.mode(); {
			case err != nil && mode == ModeOnline:
				a.setMode(ModeOffline)
			case err == nil && mode != ModeOnline:
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
