package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/logging"
	"github.com/dmitrijs2005/tokenquest/internal/models"
	"github.com/dmitrijs2005/tokenquest/internal/rpc"
	"github.com/dmitrijs2005/tokenquest/internal/server/auth"
	sm "github.com/dmitrijs2005/tokenquest/internal/server/models"
	"github.com/dmitrijs2005/tokenquest/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const secret = "test-secret"

type fakeUsers struct {
	registerErr error
	loginErr    error
	refreshErr  error
}

func (f *fakeUsers) Register(_ context.Context, username, displayName string, _, _ []byte) (*sm.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &sm.User{ID: "id-" + username, UserName: username, DisplayName: displayName}, nil
}

func (f *fakeUsers) GetSalt(context.Context, string) ([]byte, error) { return []byte("salt"), nil }

func (f *fakeUsers) Login(_ context.Context, userName string, _ []byte) (*services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.TokenPair{UserID: "id-" + userName, AccessToken: "a", RefreshToken: "r"}, nil
}

func (f *fakeUsers) RefreshToken(context.Context, string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &services.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
}

// fakeDocuments keeps one user's data keyed by user id.
type fakeDocuments struct {
	entities map[string][]models.Entity
	accounts map[string]*models.Account
	err      error
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{entities: map[string][]models.Entity{}, accounts: map[string]*models.Account{}}
}

func (f *fakeDocuments) ListCollection(_ context.Context, userID string, kind models.Kind) ([]models.Entity, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Entity, 0)
	for _, e := range f.entities[userID] {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeDocuments) PutEntity(_ context.Context, userID string, _ models.Kind, e models.Entity) error {
	if f.err != nil {
		return f.err
	}
	f.entities[userID] = append(f.entities[userID], e)
	return nil
}

func (f *fakeDocuments) UpdateEntity(context.Context, string, models.Kind, string, models.EntityPatch) error {
	return f.err
}

func (f *fakeDocuments) DeleteEntity(context.Context, string, models.Kind, string) error {
	return f.err
}

func (f *fakeDocuments) GetAccount(_ context.Context, userID string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.accounts[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a.Clone(), nil
}

func (f *fakeDocuments) UpdateAccount(ctx context.Context, userID string, p models.AccountPatch) (*models.Account, error) {
	a, err := f.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Apply(a)
	if a.Energy < 0 {
		return nil, common.ErrInsufficientEnergy
	}
	f.accounts[userID] = a
	return a.Clone(), nil
}

type fakeBackups struct{}

func (fakeBackups) PresignBackup(_ context.Context, userID string) (*services.BackupTarget, error) {
	return &services.BackupTarget{Key: "backups/" + userID + "/k", URL: "http://s3/k", ExpiresAt: t0}, nil
}

type harness struct {
	client    *rpc.QuestStoreClient
	documents *fakeDocuments
	users     *fakeUsers
	registry  *prometheus.Registry
	tokens    *auth.Tokens
}

func newTestGRPCServer(us Users, ds Documents, m *Metrics) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Discard(), us, ds, fakeBackups{}, auth.NewTokens([]byte(secret)), m)
}

func startHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		documents: newFakeDocuments(),
		users:     &fakeUsers{},
		registry:  prometheus.NewRegistry(),
		tokens:    auth.NewTokens([]byte(secret)),
	}
	s := newTestGRPCServer(h.users, h.documents, NewMetrics(h.registry))

	lis := bufconn.Listen(1 << 20)
	srv := s.NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	h.client = rpc.NewQuestStoreClient(conn)
	return h
}

// as returns a context carrying a valid access token for userID.
func (h *harness) as(t *testing.T, userID string) context.Context {
	t.Helper()
	tok, err := h.tokens.Generate(userID, time.Hour)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, tok)
}
