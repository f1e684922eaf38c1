package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/dbx"
	"github.com/dmitrijs2005/tokenquest/internal/logging"
	"github.com/dmitrijs2005/tokenquest/internal/models"
	"github.com/dmitrijs2005/tokenquest/internal/server/config"
	sm "github.com/dmitrijs2005/tokenquest/internal/server/models"
	"github.com/dmitrijs2005/tokenquest/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/tokenquest/internal/server/repositories/entities"
	"github.com/dmitrijs2005/tokenquest/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/tokenquest/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

var (
	errBoom = errors.New("boom")
	t0      = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		BackupURLValidityDuration:    15 * time.Minute,
		S3Region:                     "us-east-1",
		S3RootUser:                   "minioadmin",
		S3RootPassword:               "minioadmin",
		S3BaseEndpoint:               "http://127.0.0.1:9000",
		S3Bucket:                     "tokenquest",
	}
}

type fakeUsersRepo struct {
	createOut *sm.User
	createErr error
	created   []*sm.User

	getOut *sm.User
	getErr error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *sm.User) (*sm.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, u)
	if f.createOut != nil {
		return f.createOut, nil
	}
	u.ID = "u1"
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(context.Context, string) (*sm.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRefreshRepo struct {
	findOut *sm.RefreshToken
	findErr error

	delErr     error
	deleted    []string
	createErr  error
	created    []time.Time
	expiredErr error
}

func (f *fakeRefreshRepo) Create(_ context.Context, _ string, _ string, expiresAt time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, expiresAt)
	return nil
}

func (f *fakeRefreshRepo) Find(context.Context, string) (*sm.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	return f.delErr
}

func (f *fakeRefreshRepo) DeleteExpired(context.Context, string, time.Time) (int64, error) {
	return 0, f.expiredErr
}

// fakeAccounts enforces the same non-negative balance rule as the table.
type fakeAccounts struct {
	rows      map[string]*models.Account
	createErr error
	updateErr error
}

func (f *fakeAccounts) Create(_ context.Context, a *models.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.rows[a.ID]; ok {
		return common.ErrorAlreadyExists
	}
	f.rows[a.ID] = a.Clone()
	return nil
}

func (f *fakeAccounts) Get(_ context.Context, userID string) (*models.Account, error) {
	a, ok := f.rows[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a.Clone(), nil
}

func (f *fakeAccounts) GetForUpdate(ctx context.Context, userID string) (*models.Account, error) {
	return f.Get(ctx, userID)
}

func (f *fakeAccounts) Update(_ context.Context, a *models.Account) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if a.Energy < 0 {
		return common.ErrInsufficientEnergy
	}
	f.rows[a.ID] = a.Clone()
	return nil
}

type fakeEntities struct {
	docs map[string]models.Entity
	// order keeps insertion order per user/kind.
	order []string
}

func entityKey(userID string, kind models.Kind, id string) string {
	return userID + "/" + string(kind) + "/" + id
}

func (f *fakeEntities) List(_ context.Context, userID string, kind models.Kind) ([]models.Entity, error) {
	out := make([]models.Entity, 0)
	for _, k := range f.order {
		e, ok := f.docs[k]
		if ok && k == entityKey(userID, kind, e.ID) {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (f *fakeEntities) GetForUpdate(_ context.Context, userID string, kind models.Kind, id string) (*models.Entity, error) {
	e, ok := f.docs[entityKey(userID, kind, id)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := e.Clone()
	return &c, nil
}

func (f *fakeEntities) Upsert(_ context.Context, userID string, e *models.Entity) error {
	k := entityKey(userID, e.Kind, e.ID)
	if _, ok := f.docs[k]; !ok {
		f.order = append(f.order, k)
	}
	f.docs[k] = e.Clone()
	return nil
}

func (f *fakeEntities) Delete(_ context.Context, userID string, kind models.Kind, id string) error {
	k := entityKey(userID, kind, id)
	if _, ok := f.docs[k]; !ok {
		return common.ErrorNotFound
	}
	delete(f.docs, k)
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	a *fakeAccounts
	e *fakeEntities
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: &fakeUsersRepo{},
		r: &fakeRefreshRepo{},
		a: &fakeAccounts{rows: map[string]*models.Account{}},
		e: &fakeEntities{docs: map[string]models.Entity{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error        { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                     { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository     { return m.r }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository               { return m.a }
func (m *fakeRepoManager) Entities(dbx.DBTX) entities.Repository               { return m.e }

func newUserService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *UserService {
	t.Helper()
	s := NewUserService(db, rm, testConfig(), logging.Discard())
	s.now = func() time.Time { return t0 }
	s.tokens.WithClock(s.now)
	return s
}

func newDocumentService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *DocumentService {
	t.Helper()
	return NewDocumentService(db, rm, logging.Discard())
}
