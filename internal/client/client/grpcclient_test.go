package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/models"
	"github.com/dmitrijs2005/tokenquest/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// fakeQS embeds the interface so unexercised methods panic.
type fakeQS struct {
	questStore

	lastRefreshReq *rpc.RefreshTokenRequest
	refreshResp    *rpc.RefreshTokenResponse
	refreshErr     error

	pingResp *rpc.PingResponse
	pingErr  error

	loginResp *rpc.LoginResponse
	loginErr  error

	lastRegister *rpc.RegisterRequest
	registerErr  error

	listResp *rpc.ListCollectionResponse
	listErr  error

	lastPut    *rpc.PutEntityRequest
	lastUpdate *rpc.UpdateEntityRequest
	lastDelete *rpc.DeleteEntityRequest
	writeErr   error

	accountResp *rpc.AccountResponse
	accountErr  error
	lastAccPat  *rpc.UpdateAccountRequest

	presignResp *rpc.PresignBackupResponse
}

func (f *fakeQS) RefreshToken(_ context.Context, in *rpc.RefreshTokenRequest, _ ...grpc.CallOption) (*rpc.RefreshTokenResponse, error) {
	f.lastRefreshReq = in
	return f.refreshResp, f.refreshErr
}
func (f *fakeQS) Ping(context.Context, *rpc.PingRequest, ...grpc.CallOption) (*rpc.PingResponse, error) {
	return f.pingResp, f.pingErr
}
func (f *fakeQS) Login(context.Context, *rpc.LoginRequest, ...grpc.CallOption) (*rpc.LoginResponse, error) {
	return f.loginResp, f.loginErr
}
func (f *fakeQS) Register(_ context.Context, in *rpc.RegisterRequest, _ ...grpc.CallOption) (*rpc.RegisterResponse, error) {
	f.lastRegister = in
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &rpc.RegisterResponse{UserID: "u-new"}, nil
}
func (f *fakeQS) ListCollection(context.Context, *rpc.ListCollectionRequest, ...grpc.CallOption) (*rpc.ListCollectionResponse, error) {
	return f.listResp, f.listErr
}
func (f *fakeQS) PutEntity(_ context.Context, in *rpc.PutEntityRequest, _ ...grpc.CallOption) (*rpc.Empty, error) {
	f.lastPut = in
	return &rpc.Empty{}, f.writeErr
}
func (f *fakeQS) UpdateEntity(_ context.Context, in *rpc.UpdateEntityRequest, _ ...grpc.CallOption) (*rpc.Empty, error) {
	f.lastUpdate = in
	return &rpc.Empty{}, f.writeErr
}
func (f *fakeQS) DeleteEntity(_ context.Context, in *rpc.DeleteEntityRequest, _ ...grpc.CallOption) (*rpc.Empty, error) {
	f.lastDelete = in
	return &rpc.Empty{}, f.writeErr
}
func (f *fakeQS) GetAccount(context.Context, *rpc.GetAccountRequest, ...grpc.CallOption) (*rpc.AccountResponse, error) {
	return f.accountResp, f.accountErr
}
func (f *fakeQS) UpdateAccount(_ context.Context, in *rpc.UpdateAccountRequest, _ ...grpc.CallOption) (*rpc.AccountResponse, error) {
	f.lastAccPat = in
	return f.accountResp, f.accountErr
}
func (f *fakeQS) PresignBackup(context.Context, *rpc.PresignBackupRequest, ...grpc.CallOption) (*rpc.PresignBackupResponse, error) {
	return f.presignResp, nil
}

/*************
 * accessTokenInterceptor tests
 *************/

func TestInterceptor_RefreshesTokenOnExpiredAndRetries(t *testing.T) {
	f := &fakeQS{refreshResp: &rpc.RefreshTokenResponse{AccessToken: "A2", RefreshToken: "R2"}}
	c := &GRPCClient{client: f, accessToken: "A1", refreshToken: "R1"}

	callCount := 0
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		callCount++
		md, _ := metadata.FromOutgoingContext(ctx)
		toks := md.Get(common.AccessTokenHeaderName)
		require.Len(t, toks, 1)

		if callCount == 1 {
			require.Equal(t, "A1", toks[0])
			return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		require.Equal(t, "A2", toks[0])
		return nil
	}

	err := c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.NoError(t, err)
	require.Equal(t, 2, callCount)
	access, refresh := c.tokens()
	require.Equal(t, "A2", access)
	require.Equal(t, "R2", refresh)
	require.Equal(t, "R1", f.lastRefreshReq.RefreshToken)
}

func TestInterceptor_NoRefreshIfNoRefreshToken(t *testing.T) {
	f := &fakeQS{}
	c := &GRPCClient{client: f, accessToken: "A1"}

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	}

	err := c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.Error(t, err)
	require.Nil(t, f.lastRefreshReq)
}

func TestInterceptor_RefreshFailureReturned(t *testing.T) {
	boom := status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	f := &fakeQS{refreshErr: boom}
	c := &GRPCClient{client: f, accessToken: "A1", refreshToken: "R1"}

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	}

	err := c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.Equal(t, boom, err)
}

func TestInterceptor_IgnoresOtherErrors(t *testing.T) {
	c := &GRPCClient{accessToken: "X"}
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Internal, "boom")
	}
	err := c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.Error(t, err)
}

func TestInterceptor_AppliesDefaultDeadline(t *testing.T) {
	c := &GRPCClient{callTimeout: time.Second}
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		_, ok := ctx.Deadline()
		require.True(t, ok)
		return nil
	}
	require.NoError(t, c.accessTokenInterceptor(context.Background(), "/svc/M", nil, nil, nil, invoker))
}

/*************
 * mapError
 *************/

func TestMapError(t *testing.T) {
	c := &GRPCClient{}
	tests := []struct {
		code codes.Code
		want error
	}{
		{codes.Unauthenticated, ErrUnauthorized},
		{codes.PermissionDenied, ErrUnauthorized},
		{codes.Unavailable, ErrUnavailable},
		{codes.DeadlineExceeded, ErrUnavailable},
		{codes.NotFound, common.ErrorNotFound},
		{codes.AlreadyExists, common.ErrorAlreadyExists},
		{codes.FailedPrecondition, common.ErrInsufficientEnergy},
		{codes.Aborted, common.ErrAlreadyResolved},
		{codes.InvalidArgument, common.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := c.mapError(status.Error(tt.code, "x"))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.NoError(t, c.mapError(nil))
	assert.ErrorIs(t, c.mapError(context.DeadlineExceeded), ErrUnavailable)

	internal := c.mapError(status.Error(codes.Internal, "db down"))
	assert.ErrorContains(t, internal, "rpc error")
	assert.NotErrorIs(t, internal, ErrUnavailable)
}

/*************
 * API methods
 *************/

func TestLogin_StoresTokensReturnsUserID(t *testing.T) {
	f := &fakeQS{loginResp: &rpc.LoginResponse{UserID: "u1", AccessToken: "A", RefreshToken: "R"}}
	c := &GRPCClient{client: f}

	id, err := c.Login(context.Background(), "ann", []byte("v"))
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
	a, r := c.tokens()
	assert.Equal(t, "A", a)
	assert.Equal(t, "R", r)

	f.loginErr = status.Error(codes.Unauthenticated, "unauthorized")
	_, err = c.Login(context.Background(), "ann", []byte("bad"))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegister(t *testing.T) {
	f := &fakeQS{}
	c := &GRPCClient{client: f}

	id, err := c.Register(context.Background(), "ann", "Ann", []byte("salt"), []byte("ver"))
	require.NoError(t, err)
	assert.Equal(t, "u-new", id)
	assert.Equal(t, "Ann", f.lastRegister.DisplayName)

	f.registerErr = status.Error(codes.AlreadyExists, "taken")
	_, err = c.Register(context.Background(), "ann", "", nil, nil)
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestPing(t *testing.T) {
	f := &fakeQS{pingResp: &rpc.PingResponse{Status: "OK"}}
	c := &GRPCClient{client: f}
	require.NoError(t, c.Ping(context.Background()))

	f.pingResp = &rpc.PingResponse{Status: "DEGRADED"}
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)

	f.pingErr = status.Error(codes.Unavailable, "down")
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestListCollection(t *testing.T) {
	f := &fakeQS{listResp: &rpc.ListCollectionResponse{}}
	c := &GRPCClient{client: f}

	got, err := c.ListCollection(context.Background(), "u1", models.KindMission)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	f.listErr = status.Error(codes.Unavailable, "down")
	_, err = c.ListCollection(context.Background(), "u1", models.KindMission)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestEntityWrites(t *testing.T) {
	f := &fakeQS{}
	c := &GRPCClient{client: f}
	ctx := context.Background()

	e := models.Entity{ID: "m1", Kind: models.KindMission, Title: "a", Description: "b", EnergyValue: 1}
	require.NoError(t, c.PutEntity(ctx, "u1", models.KindMission, e))
	assert.Equal(t, "m1", f.lastPut.Entity.ID)

	require.NoError(t, c.UpdateEntity(ctx, "u1", models.KindMission, "m1", models.ResolvePatch(time.Now())))
	assert.Equal(t, "m1", f.lastUpdate.ID)
	require.NotNil(t, f.lastUpdate.Patch.Resolved)

	f.writeErr = status.Error(codes.NotFound, "gone")
	err := c.DeleteEntity(ctx, "u1", models.KindMission, "m1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, "m1", f.lastDelete.ID)
}

func TestAccountCalls(t *testing.T) {
	f := &fakeQS{accountResp: &rpc.AccountResponse{Account: models.Account{ID: "u1", Energy: 3}}}
	c := &GRPCClient{client: f}
	ctx := context.Background()

	a, err := c.GetAccount(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, a.Energy)

	energy := int64(1)
	_, err = c.UpdateAccount(ctx, "u1", models.AccountPatch{Energy: &energy})
	require.NoError(t, err)
	assert.EqualValues(t, 1, *f.lastAccPat.Patch.Energy)

	f.accountErr = status.Error(codes.FailedPrecondition, "insufficient energy")
	_, err = c.UpdateAccount(ctx, "u1", models.AccountPatch{Energy: &energy})
	assert.ErrorIs(t, err, common.ErrInsufficientEnergy)
}

func TestPresignBackup(t *testing.T) {
	f := &fakeQS{presignResp: &rpc.PresignBackupResponse{Key: "k", URL: "https://s3/k"}}
	c := &GRPCClient{client: f}

	key, url, err := c.PresignBackup(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "k", key)
	assert.Equal(t, "https://s3/k", url)
}

func TestClose_NilConn(t *testing.T) {
	require.NoError(t, (&GRPCClient{}).Close())
}

func TestNewGRPCClient(t *testing.T) {
	c, err := NewGRPCClient("127.0.0.1:0", time.Second)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.False(t, errors.Is(err, ErrUnavailable))
}
