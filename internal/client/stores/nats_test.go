package stores

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/tokenquest/internal/client/client"
	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/models"
)

// runNATS starts an in-process JetStream server on a random port.
func runNATS(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	require.NoError(t, err)

	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("embedded NATS server failed to start")
	}
	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	return ns
}

func newNATS(t *testing.T) store {
	t.Helper()
	ns := runNATS(t)
	kv, closeFn, err := ConnectKV(context.Background(), ns.ClientURL(), "test")
	require.NoError(t, err)
	t.Cleanup(closeFn)
	return kv
}

func openBucket(t *testing.T) *jsBucket {
	t.Helper()
	ns := runNATS(t)
	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	js, err := jetstream.New(nc)
	require.NoError(t, err)

	kv, err := js.CreateOrUpdateKeyValue(context.Background(), jetstream.KeyValueConfig{Bucket: "adapter", History: 5})
	require.NoError(t, err)
	return &jsBucket{kv: kv}
}

func TestJSBucket_Errors(t *testing.T) {
	ctx := context.Background()
	b := openBucket(t)

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, _, err = b.Get(ctx, "u1.a")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, b.Create(ctx, "u1.a", []byte(`1`)))
	assert.ErrorIs(t, b.Create(ctx, "u1.a", []byte(`2`)), common.ErrorAlreadyExists)

	value, rev, err := b.Get(ctx, "u1.a")
	require.NoError(t, err)
	assert.Equal(t, []byte(`1`), value)

	require.NoError(t, b.Update(ctx, "u1.a", []byte(`3`), rev))
	assert.ErrorIs(t, b.Update(ctx, "u1.a", []byte(`4`), rev), errRevisionMismatch)

	value, _, err = b.Get(ctx, "u1.a")
	require.NoError(t, err)
	assert.Equal(t, []byte(`3`), value)

	require.NoError(t, b.Put(ctx, "u1.b", []byte(`5`)))
	keys, err = b.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1.a", "u1.b"}, keys)

	require.NoError(t, b.Delete(ctx, "u1.a"))
	_, _, err = b.Get(ctx, "u1.a")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	keys, err = b.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1.b"}, keys)

	// a deleted key can be created again
	require.NoError(t, b.Create(ctx, "u1.a", []byte(`6`)))
}

func TestConnectKV_Unreachable(t *testing.T) {
	_, _, err := ConnectKV(context.Background(), "nats://127.0.0.1:1", "test")
	require.ErrorIs(t, err, client.ErrUnavailable)
}

func TestNATS_StaleResolveRejected(t *testing.T) {
	ctx := context.Background()
	s := newNATS(t)

	require.NoError(t, s.PutEntity(ctx, "u1", models.KindReward, models.Entity{
		ID: "r1", Title: "Coffee", EnergyValue: 3, CreatedAt: t0,
	}))
	require.NoError(t, s.UpdateEntity(ctx, "u1", models.KindReward, "r1", models.ResolvePatch(t0)))
	err := s.UpdateEntity(ctx, "u1", models.KindReward, "r1", models.ResolvePatch(t0.Add(time.Minute)))
	assert.ErrorIs(t, err, common.ErrAlreadyResolved)
}
