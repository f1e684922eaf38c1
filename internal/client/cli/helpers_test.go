package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/client/cache"
	"github.com/dmitrijs2005/tokenquest/internal/client/client"
	"github.com/dmitrijs2005/tokenquest/internal/client/config"
	"github.com/dmitrijs2005/tokenquest/internal/client/services"
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

type testApp struct {
	*App
	store *stores.Memory
	buf   *bytes.Buffer
}

// newTestApp builds an App over the in-memory backend with a fixed clock
// and ids "id-1", "id-2", ...
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	catalog, err := models.ParseCatalog([]byte(testCatalogYAML))
	require.NoError(t, err)

	n := 0
	newID := func() string { n++; return fmt.Sprintf("id-%d", n) }
	now := func() time.Time { return t0 }

	mem := stores.NewMemory()
	b := &backend{store: mem, cache: cache.NewMemory(), accounts: mem, close: nopClose}
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Backend = config.BackendMemory

	a := newApp(cfg, logging.Discard(), db, b,
		services.WithCatalog(catalog), services.WithClock(now), services.WithIDGenerator(newID))
	a.now = now

	buf := &bytes.Buffer{}
	a.out = buf
	return &testApp{App: a, store: mem, buf: buf}
}

// feed replaces stdin with lines.
func (ta *testApp) feed(lines ...string) {
	ta.reader = bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = old })
}

// loggedIn registers and logs in "alice" and clears the output.
func (ta *testApp) loggedIn(t *testing.T) {
	t.Helper()
	stubPassword(t, "secret")
	ctx := context.Background()

	ta.feed("alice", "Alice")
	require.NoError(t, ta.Register(ctx, nil))
	ta.feed("alice")
	require.NoError(t, ta.Login(ctx, nil))
	require.True(t, ta.isLoggedIn())
	ta.buf.Reset()
}

func (ta *testApp) account(t *testing.T) *models.Account {
	t.Helper()
	acc, err := ta.store.GetAccount(context.Background(), ta.userID())
	require.NoError(t, err)
	return acc
}
