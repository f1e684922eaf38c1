package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/client/cache"
	"github.com/dmitrijs2005/tokenquest/internal/client/stores"
	"github.com/dmitrijs2005/tokenquest/internal/logging"
	"github.com/dmitrijs2005/tokenquest/internal/models"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 7, 7, 9, 30, 0, 0, time.UTC)

const testCatalogYAML = `
missions:
  - title: Morning run
    description: Run five kilometres
    energy: 5
  - title: Read
    description: Read one chapter
    energy: 2
rewards:
  - title: Coffee
    description: A proper espresso
    energy: 3
  - title: Gadget
    description: Something shiny
    energy: 10
`

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sequence struct {
	mu sync.Mutex
	n  int
}

func (s *sequence) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

type fixture struct {
	store  *stores.Memory
	cache  *cache.Memory
	clock  *clock
	ids    *sequence
	syncer EntitySyncer
	ledger LedgerService
}

func testCatalog(t *testing.T) *models.Catalog {
	t.Helper()
	c, err := models.ParseCatalog([]byte(testCatalogYAML))
	require.NoError(t, err)
	return c
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: stores.NewMemory(),
		cache: cache.NewMemory(),
		clock: &clock{t: t0},
		ids:   &sequence{},
	}
	opts := []Option{WithCatalog(testCatalog(t)), WithClock(f.clock.now), WithIDGenerator(f.ids.next)}
	f.syncer = NewEntitySyncer(f.store, f.cache, logging.Discard(), opts...)
	f.ledger = NewLedgerService(f.syncer, f.store, f.cache, logging.Discard(), opts...)
	return f
}

// session is a second client of the same remote store with its own cache,
// like the same user signed in on another device.
func (f *fixture) session(t *testing.T) *fixture {
	t.Helper()
	other := &fixture{store: f.store, cache: cache.NewMemory(), clock: f.clock, ids: f.ids}
	opts := []Option{WithCatalog(testCatalog(t)), WithClock(f.clock.now), WithIDGenerator(f.ids.next)}
	other.syncer = NewEntitySyncer(other.store, other.cache, logging.Discard(), opts...)
	other.ledger = NewLedgerService(other.syncer, other.store, other.cache, logging.Discard(), opts...)
	return other
}

// withAccount registers u1 with the given balance.
func (f *fixture) withAccount(t *testing.T, energy int64) *fixture {
	t.Helper()
	a := models.NewAccount("u1", "Ada", t0)
	a.Energy = energy
	require.NoError(t, f.store.CreateAccount(context.Background(), a))
	return f
}

// byTitle finds a seeded entity of kind by title.
func (f *fixture) byTitle(t *testing.T, kind models.Kind, title string) models.Entity {
	t.Helper()
	list, err := f.syncer.Get(context.Background(), "u1", kind)
	require.NoError(t, err)
	for _, e := range list {
		if e.Title == title {
			return e
		}
	}
	t.Fatalf("%s %q not found", kind, title)
	return models.Entity{}
}

func (f *fixture) remote(t *testing.T, kind models.Kind) []models.Entity {
	t.Helper()
	list, err := f.store.ListCollection(context.Background(), "u1", kind)
	require.NoError(t, err)
	return list
}

func (f *fixture) account(t *testing.T) *models.Account {
	t.Helper()
	a, err := f.store.GetAccount(context.Background(), "u1")
	require.NoError(t, err)
	return a
}

func requireResolvedInvariant(t *testing.T, es []models.Entity) {
	t.Helper()
	for _, e := range es {
		require.Equal(t, e.Resolved, e.ResolvedAt != nil, "entity %s", e.ID)
	}
}
