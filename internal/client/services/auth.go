package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/client/client"
	"github.com/dmitrijs2005/tokenquest/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tokenquest/internal/client/stores"
	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/cryptox"
	"github.com/dmitrijs2005/tokenquest/internal/dbx"
	"github.com/dmitrijs2005/tokenquest/internal/models"
)

// Session is a logged-in user. MasterKey is derived from the password and
// never leaves the process.
type Session struct {
	UserID    string
	Username  string
	MasterKey []byte
}

// Wipe zeroes the master key.
func (s *Session) Wipe() {
	if s != nil {
		common.WipeByteArray(s.MasterKey)
	}
}

// AuthService registers and logs users in against the active backend.
//
// With a server client, OnlineLogin authenticates remotely and remembers
// (user id, salt, verifier) locally so OfflineLogin works later. Without
// one, Register creates the user locally together with an empty account
// and only OfflineLogin is available.
type AuthService interface {
	Register(ctx context.Context, username, displayName string, password []byte) (string, error)
	OnlineLogin(ctx context.Context, username string, password []byte) (*Session, error)
	OfflineLogin(ctx context.Context, username string, password []byte) (*Session, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	// ClearOfflineData forgets the stored credentials of username.
	ClearOfflineData(ctx context.Context, username string) error
	// UserID returns the id remembered for username, or
	// client.ErrLocalDataNotAvailable when the user never logged in here.
	UserID(ctx context.Context, username string) (string, error)
}

type authService struct {
	client   client.Client
	db       *sql.DB
	accounts stores.AccountCreator
	now      func() time.Time
	newID    func() string
}

// NewAuthService builds the service. c is nil for the serverless backends,
// in which case accounts receives the account created at registration.
func NewAuthService(c client.Client, db *sql.DB, accounts stores.AccountCreator, opts ...Option) AuthService {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &authService{client: c, db: db, accounts: accounts, now: o.now, newID: o.newID}
}

const (
	keyUserID   = "user_id"
	keySalt     = "salt"
	keyVerifier = "verifier"
)

func userPrefix(username string) string {
	return "users/" + username + "/"
}

func normalizeUsername(username string) (string, error) {
	u := strings.ToLower(strings.TrimSpace(username))
	if u == "" || strings.Contains(u, "/") {
		return "", fmt.Errorf("%w: invalid username %q", common.ErrValidation, username)
	}
	return u, nil
}

type offlineData struct {
	userID   string
	salt     []byte
	verifier []byte
}

func (a *authService) loadOfflineData(ctx context.Context, username string) (*offlineData, error) {
	prefix := userPrefix(username)
	kv, err := metadata.NewSQLiteRepository(a.db).ListPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	d := &offlineData{
		userID:   string(kv[prefix+keyUserID]),
		salt:     kv[prefix+keySalt],
		verifier: kv[prefix+keyVerifier],
	}
	if d.userID == "" || len(d.salt) == 0 || len(d.verifier) == 0 {
		return nil, client.ErrLocalDataNotAvailable
	}
	return d, nil
}

// saveOfflineData stores what OfflineLogin needs in one transaction.
func (a *authService) saveOfflineData(ctx context.Context, username string, d *offlineData) error {
	prefix := userPrefix(username)
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, prefix+keyUserID, []byte(d.userID)); err != nil {
			return err
		}
		if err := repo.Set(ctx, prefix+keySalt, d.salt); err != nil {
			return err
		}
		return repo.Set(ctx, prefix+keyVerifier, d.verifier)
	})
}

// Register returns the new user id.
func (a *authService) Register(ctx context.Context, username, displayName string, password []byte) (string, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return "", err
	}

	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)
	verifier := cryptox.MakeVerifier(key)

	if a.client != nil {
		return a.client.Register(ctx, username, displayName, salt, verifier)
	}

	if _, err := a.loadOfflineData(ctx, username); err == nil {
		return "", fmt.Errorf("user %q: %w", username, common.ErrorAlreadyExists)
	}
	if a.accounts == nil {
		return "", client.ErrNotSupported
	}

	userID := a.newID()
	if err := a.accounts.CreateAccount(ctx, models.NewAccount(userID, displayName, a.now())); err != nil {
		return "", fmt.Errorf("account creation error: %w", err)
	}
	if err := a.saveOfflineData(ctx, username, &offlineData{userID: userID, salt: salt, verifier: verifier}); err != nil {
		return "", fmt.Errorf("offline data saving error: %w", err)
	}
	return userID, nil
}

// OnlineLogin authenticates against the server and saves offline data.
func (a *authService) OnlineLogin(ctx context.Context, username string, password []byte) (*Session, error) {
	if a.client == nil {
		return nil, client.ErrNotSupported
	}
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}

	salt, err := a.client.GetSalt(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get salt error: %w", err)
	}

	key := cryptox.DeriveMasterKey(password, salt)
	verifier := cryptox.MakeVerifier(key)

	userID, err := a.client.Login(ctx, username, verifier)
	if err != nil {
		common.WipeByteArray(key)
		return nil, fmt.Errorf("login error: %w", err)
	}

	if err := a.saveOfflineData(ctx, username, &offlineData{userID: userID, salt: salt, verifier: verifier}); err != nil {
		common.WipeByteArray(key)
		return nil, fmt.Errorf("offline data saving error: %w", err)
	}
	return &Session{UserID: userID, Username: username, MasterKey: key}, nil
}

// OfflineLogin verifies the password against the stored verifier.
// Missing local data is client.ErrLocalDataNotAvailable; a wrong password
// is client.ErrUnauthorized.
func (a *authService) OfflineLogin(ctx context.Context, username string, password []byte) (*Session, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}
	d, err := a.loadOfflineData(ctx, username)
	if err != nil {
		return nil, err
	}

	key := cryptox.DeriveMasterKey(password, d.salt)
	if !cryptox.CheckVerifier(key, d.verifier) {
		common.WipeByteArray(key)
		return nil, client.ErrUnauthorized
	}
	return &Session{UserID: d.userID, Username: username, MasterKey: key}, nil
}

func (a *authService) Ping(ctx context.Context) error {
	if a.client == nil {
		return client.ErrNotSupported
	}
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

func (a *authService) ClearOfflineData(ctx context.Context, username string) error {
	username, err := normalizeUsername(username)
	if err != nil {
		return err
	}
	return metadata.NewSQLiteRepository(a.db).DeletePrefix(ctx, userPrefix(username))
}

func (a *authService) UserID(ctx context.Context, username string) (string, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return "", err
	}
	d, err := a.loadOfflineData(ctx, username)
	if err != nil {
		return "", err
	}
	return d.userID, nil
}
