package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/tokenquest/internal/client/client"
	"github.com/dmitrijs2005/tokenquest/internal/client/services"
	"github.com/dmitrijs2005/tokenquest/internal/client/stores"
	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "tokenquest-admin", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"reset", "adjust-energy", "show"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
			assert.NotNil(t, sub.Flags().Lookup("user"))
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	db := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, db)
	assert.Equal(t, "tokenquest.db", db.DefValue)
}

// store is a migrated client database in a temp dir with one local user.
type store struct {
	dir    string
	userID string
}

func newStore(t *testing.T) *store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	db, err := client.InitDatabase(ctx, filepath.Join(dir, "tokenquest.db"))
	require.NoError(t, err)
	defer db.Close()

	auth := services.NewAuthService(nil, db, stores.NewLocal(db))
	id, err := auth.Register(ctx, "alice", "Alice", []byte("secret"))
	require.NoError(t, err)

	return &store{dir: dir, userID: id}
}

func (s *store) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--data-dir", s.dir))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decode[T any](t *testing.T, raw string) T {
	t.Helper()
	var r struct {
		Status string `json:"status"`
		Data   T      `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	require.Equal(t, "ok", r.Status)
	return r.Data
}

func TestInvalidFormat(t *testing.T) {
	s := newStore(t)
	_, err := s.run(t, "show", "--user", "alice", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestUnknownUser(t *testing.T) {
	s := newStore(t)
	_, err := s.run(t, "show", "--user", "bob")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUserFlagRequired(t *testing.T) {
	s := newStore(t)
	_, err := s.run(t, "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user")
}

func TestAdjustEnergy(t *testing.T) {
	s := newStore(t)

	out, err := s.run(t, "adjust-energy", "--user", "alice", "--delta", "50", "--format", "json")
	require.NoError(t, err)
	acct := decode[models.Account](t, out)
	assert.Equal(t, s.userID, acct.ID)
	assert.Equal(t, int64(50), acct.Energy)
	assert.Equal(t, int64(50), acct.TotalEnergyEarned)

	// raw user id works as well
	out, err = s.run(t, "adjust-energy", "--user", s.userID, "--delta=-20", "--format", "json")
	require.NoError(t, err)
	acct = decode[models.Account](t, out)
	assert.Equal(t, int64(30), acct.Energy)
	assert.Equal(t, int64(50), acct.TotalEnergyEarned)
}

func TestAdjustEnergy_Overdraw(t *testing.T) {
	s := newStore(t)

	_, err := s.run(t, "adjust-energy", "--user", "alice", "--delta=-1")
	require.ErrorIs(t, err, common.ErrInsufficientEnergy)

	out, err := s.run(t, "show", "--user", "alice", "--format", "json")
	require.NoError(t, err)
	res := decode[showResult](t, out)
	assert.Equal(t, int64(0), res.Account.Energy)
}

func TestAdjustEnergy_OutOfRange(t *testing.T) {
	s := newStore(t)
	_, err := s.run(t, "adjust-energy", "--user", "alice", "--delta=-9223372036854775808")
	require.ErrorIs(t, err, common.ErrValidation)
	assert.NotErrorIs(t, err, common.ErrInsufficientEnergy)
}

func TestAdjustEnergy_ZeroDelta(t *testing.T) {
	s := newStore(t)
	_, err := s.run(t, "adjust-energy", "--user", "alice", "--delta", "0")
	require.ErrorIs(t, err, errZeroDelta)
}

func TestAdjustEnergy_TextOutput(t *testing.T) {
	s := newStore(t)
	out, err := s.run(t, "adjust-energy", "--user", "alice", "--delta", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "adjusted by +7")
	assert.Contains(t, out, "(Alice)")
}

func TestShow_SeedsDefaults(t *testing.T) {
	s := newStore(t)

	out, err := s.run(t, "show", "--user", "alice", "--format", "json")
	require.NoError(t, err)
	res := decode[showResult](t, out)

	catalog := models.DefaultCatalog()
	assert.Equal(t, s.userID, res.UserID)
	assert.Len(t, res.Missions, catalog.Size(models.KindMission))
	assert.Len(t, res.Rewards, catalog.Size(models.KindReward))
	assert.Zero(t, res.CompletedMissions)
	assert.Zero(t, res.Streak)
	require.NotNil(t, res.Account)
	assert.Equal(t, "Alice", res.Account.DisplayName)
}

func TestShow_TextOutput(t *testing.T) {
	s := newStore(t)
	out, err := s.run(t, "show", "--user", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "account "+s.userID)
	assert.Contains(t, out, "missions (")
	assert.Contains(t, out, "rewards (")
}

func TestReset(t *testing.T) {
	s := newStore(t)

	out, err := s.run(t, "show", "--user", "alice", "--format", "json")
	require.NoError(t, err)
	before := decode[showResult](t, out)
	require.NotEmpty(t, before.Missions)

	_, err = s.run(t, "adjust-energy", "--user", "alice", "--delta", "5")
	require.NoError(t, err)

	out, err = s.run(t, "reset", "missions", "--user", "alice", "--format", "json")
	require.NoError(t, err)
	res := decode[resetResult](t, out)
	assert.Equal(t, models.KindMission, res.Kind)
	require.Len(t, res.Entities, len(before.Missions))
	for _, e := range res.Entities {
		assert.False(t, e.Resolved)
		for _, old := range before.Missions {
			assert.NotEqual(t, old.ID, e.ID)
		}
	}

	out, err = s.run(t, "show", "--user", "alice", "--format", "json")
	require.NoError(t, err)
	after := decode[showResult](t, out)
	assert.Equal(t, int64(5), after.Account.Energy)
	assert.ElementsMatch(t, ids(res.Entities), ids(after.Missions))
	assert.ElementsMatch(t, ids(before.Rewards), ids(after.Rewards))
}

func TestReset_UnknownKind(t *testing.T) {
	s := newStore(t)
	_, err := s.run(t, "reset", "quests", "--user", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestReset_TextOutput(t *testing.T) {
	s := newStore(t)
	out, err := s.run(t, "reset", "rewards", "--user", "alice", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "rewards of "+s.userID+" reset to")
	assert.Contains(t, out, "[ ]")
}

func ids(es []models.Entity) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.ID)
	}
	return out
}
