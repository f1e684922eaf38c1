package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/tokenquest/internal/client/client"
	"github.com/dmitrijs2005/tokenquest/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tokenquest/internal/client/stores"
	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func getMeta(t *testing.T, db *sql.DB, k string) []byte {
	t.Helper()
	v, err := metadata.NewSQLiteRepository(db).Get(context.Background(), k)
	require.NoError(t, err)
	return v
}

// ---- fake client ----

// fakeClient implements client.Client for AuthService and BackupService tests.
type fakeClient struct {
	CloseErr error

	RegisterRet string
	RegisterErr error

	GetSaltRet []byte
	GetSaltErr error

	LoginRet string
	LoginErr error

	PingErr error

	PresignKey string
	PresignURL string
	PresignErr error

	LastRegisterUser     string
	LastRegisterDisplay  string
	LastRegisterSalt     []byte
	LastRegisterVerifier []byte
	LastGetSaltUser      string
	LastLoginUser        string
	LastLoginVerifier    []byte
	LastPresignUser      string
}

func (f *fakeClient) Close() error { return f.CloseErr }

func (f *fakeClient) Register(_ context.Context, username, displayName string, salt, verifier []byte) (string, error) {
	f.LastRegisterUser = username
	f.LastRegisterDisplay = displayName
	f.LastRegisterSalt = append([]byte(nil), salt...)
	f.LastRegisterVerifier = append([]byte(nil), verifier...)
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeClient) GetSalt(_ context.Context, username string) ([]byte, error) {
	f.LastGetSaltUser = username
	return append([]byte(nil), f.GetSaltRet...), f.GetSaltErr
}

func (f *fakeClient) Login(_ context.Context, username string, verifier []byte) (string, error) {
	f.LastLoginUser = username
	f.LastLoginVerifier = append([]byte(nil), verifier...)
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Ping(context.Context) error { return f.PingErr }

func (f *fakeClient) PresignBackup(_ context.Context, userID string) (string, string, error) {
	f.LastPresignUser = userID
	return f.PresignKey, f.PresignURL, f.PresignErr
}

// ---- TESTS ----

func TestRegister_Online_SendsSaltAndVerifier(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{RegisterRet: "uid-1"}
	svc := NewAuthService(fc, db, nil)

	id, err := svc.Register(context.Background(), " Ada@Example.com ", "Ada", []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, "uid-1", id)
	assert.Equal(t, "ada@example.com", fc.LastRegisterUser)
	assert.Equal(t, "Ada", fc.LastRegisterDisplay)
	require.Len(t, fc.LastRegisterSalt, cryptox.SaltSize)

	key := cryptox.DeriveMasterKey([]byte("pw"), fc.LastRegisterSalt)
	assert.True(t, cryptox.CheckVerifier(key, fc.LastRegisterVerifier))
}

func TestRegister_Online_Error(t *testing.T) {
	fc := &fakeClient{RegisterErr: common.ErrorAlreadyExists}
	_, err := NewAuthService(fc, setupDB(t), nil).Register(context.Background(), "ada", "", []byte("pw"))
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestRegister_Local_CreatesAccountAndAllowsOfflineLogin(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	accounts := stores.NewLocal(db)
	svc := NewAuthService(nil, db, accounts, WithClock((&clock{t: t0}).now), WithIDGenerator((&sequence{}).next))

	id, err := svc.Register(ctx, "ada", "Ada", []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)

	a, err := accounts.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), a.Energy)
	assert.Equal(t, "Ada", a.DisplayName)

	_, err = svc.Register(ctx, "ADA", "", []byte("other"))
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	s, err := svc.OfflineLogin(ctx, "ada", []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, id, s.UserID)
	assert.Len(t, s.MasterKey, 32)

	_, err = svc.OfflineLogin(ctx, "ada", []byte("wrong"))
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	_, err = svc.OnlineLogin(ctx, "ada", []byte("pw"))
	assert.ErrorIs(t, err, client.ErrNotSupported)
	assert.ErrorIs(t, svc.Ping(ctx), client.ErrNotSupported)
	assert.NoError(t, svc.Close(ctx))
}

func TestUserID_LooksUpRememberedUser(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	svc := NewAuthService(nil, db, stores.NewLocal(db), WithClock((&clock{t: t0}).now), WithIDGenerator((&sequence{}).next))

	id, err := svc.Register(ctx, "ada", "Ada", []byte("pw"))
	require.NoError(t, err)

	got, err := svc.UserID(ctx, " ADA ")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = svc.UserID(ctx, "grace")
	assert.ErrorIs(t, err, client.ErrLocalDataNotAvailable)

	_, err = svc.UserID(ctx, "a/b")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestOfflineLogin_NoLocalData(t *testing.T) {
	svc := NewAuthService(&fakeClient{}, setupDB(t), nil)
	_, err := svc.OfflineLogin(context.Background(), "ada", []byte("pw"))
	require.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
}

func TestOnlineLogin_SavesOfflineData(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	salt := []byte("0123456789abcdef")
	fc := &fakeClient{GetSaltRet: salt, LoginRet: "uid-7"}
	svc := NewAuthService(fc, db, nil)

	s, err := svc.OnlineLogin(ctx, "ada", []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, "uid-7", s.UserID)
	assert.Equal(t, "ada", fc.LastGetSaltUser)

	want := cryptox.DeriveMasterKey([]byte("pw"), salt)
	assert.Equal(t, want, s.MasterKey)
	assert.Equal(t, cryptox.MakeVerifier(want), fc.LastLoginVerifier)

	assert.Equal(t, []byte("uid-7"), getMeta(t, db, "users/ada/user_id"))
	assert.Equal(t, salt, getMeta(t, db, "users/ada/salt"))

	// the server is gone, the remembered verifier still works
	fc.GetSaltErr = client.ErrUnavailable
	offline, err := svc.OfflineLogin(ctx, "ada", []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, "uid-7", offline.UserID)

	require.NoError(t, svc.ClearOfflineData(ctx, "ada"))
	_, err = svc.OfflineLogin(ctx, "ada", []byte("pw"))
	assert.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
}

func TestOnlineLogin_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("salt", func(t *testing.T) {
		fc := &fakeClient{GetSaltErr: client.ErrUnavailable}
		_, err := NewAuthService(fc, setupDB(t), nil).OnlineLogin(ctx, "ada", []byte("pw"))
		assert.ErrorIs(t, err, client.ErrUnavailable)
		assert.ErrorContains(t, err, "get salt error")
	})

	t.Run("login", func(t *testing.T) {
		db := setupDB(t)
		fc := &fakeClient{GetSaltRet: []byte("s"), LoginErr: client.ErrUnauthorized}
		_, err := NewAuthService(fc, db, nil).OnlineLogin(ctx, "ada", []byte("pw"))
		assert.ErrorIs(t, err, client.ErrUnauthorized)
		assert.Nil(t, getMeta(t, db, "users/ada/salt"))
	})

	t.Run("bad username", func(t *testing.T) {
		_, err := NewAuthService(&fakeClient{}, setupDB(t), nil).OnlineLogin(ctx, "a/b", []byte("pw"))
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestPingAndClose(t *testing.T) {
	boom := errors.New("boom")
	svc := NewAuthService(&fakeClient{PingErr: boom, CloseErr: boom}, setupDB(t), nil)
	assert.ErrorIs(t, svc.Ping(context.Background()), boom)
	assert.ErrorIs(t, svc.Close(context.Background()), boom)
}

func TestSession_Wipe(t *testing.T) {
	s := &Session{MasterKey: []byte{1, 2, 3}}
	s.Wipe()
	assert.Equal(t, []byte{0, 0, 0}, s.MasterKey)

	var nilSession *Session
	assert.NotPanics(t, nilSession.Wipe)
}
