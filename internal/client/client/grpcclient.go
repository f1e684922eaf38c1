package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/models"
	"github.com/dmitrijs2005/tokenquest/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// DefaultCallTimeout bounds a single RPC when the caller set no deadline.
const DefaultCallTimeout = 10 * time.Second

// questStore is the part of rpc.QuestStoreClient used here.
type questStore interface {
	Ping(ctx context.Context, in *rpc.PingRequest, opts ...grpc.CallOption) (*rpc.PingResponse, error)
	Register(ctx context.Context, in *rpc.RegisterRequest, opts ...grpc.CallOption) (*rpc.RegisterResponse, error)
	GetSalt(ctx context.Context, in *rpc.GetSaltRequest, opts ...grpc.CallOption) (*rpc.GetSaltResponse, error)
	Login(ctx context.Context, in *rpc.LoginRequest, opts ...grpc.CallOption) (*rpc.LoginResponse, error)
	RefreshToken(ctx context.Context, in *rpc.RefreshTokenRequest, opts ...grpc.CallOption) (*rpc.RefreshTokenResponse, error)
	ListCollection(ctx context.Context, in *rpc.ListCollectionRequest, opts ...grpc.CallOption) (*rpc.ListCollectionResponse, error)
	PutEntity(ctx context.Context, in *rpc.PutEntityRequest, opts ...grpc.CallOption) (*rpc.Empty, error)
	UpdateEntity(ctx context.Context, in *rpc.UpdateEntityRequest, opts ...grpc.CallOption) (*rpc.Empty, error)
	DeleteEntity(ctx context.Context, in *rpc.DeleteEntityRequest, opts ...grpc.CallOption) (*rpc.Empty, error)
	GetAccount(ctx context.Context, in *rpc.GetAccountRequest, opts ...grpc.CallOption) (*rpc.AccountResponse, error)
	UpdateAccount(ctx context.Context, in *rpc.UpdateAccountRequest, opts ...grpc.CallOption) (*rpc.AccountResponse, error)
	PresignBackup(ctx context.Context, in *rpc.PresignBackupRequest, opts ...grpc.CallOption) (*rpc.PresignBackupResponse, error)
}

// GRPCClient implements Client and RemoteStore over gRPC.
type GRPCClient struct {
	endpointURL string
	callTimeout time.Duration
	conn        *grpc.ClientConn
	client      questStore

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

var (
	_ Client      = (*GRPCClient)(nil)
	_ RemoteStore = (*GRPCClient)(nil)
)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken, s.refreshToken = access, refresh
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if _, ok := ctx.Deadline(); !ok && s.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}

	access, refresh := s.tokens()
	ctx = withAccessToken(ctx, access)

	err := invoker(ctx, method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refresh == "" {
		return err
	}

	resp, rerr := s.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refresh})
	if rerr != nil {
		return rerr
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)

	ctx = withAccessToken(ctx, resp.AccessToken)
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient connects lazily to endpointURL (host:port).
func NewGRPCClient(endpointURL string, callTimeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, callTimeout: callTimeout}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewQuestStoreClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Register(ctx context.Context, userName, displayName string, salt, verifier []byte) (string, error) {
	resp, err := s.client.Register(ctx, &rpc.RegisterRequest{
		Username: userName, DisplayName: displayName, Salt: salt, Verifier: verifier,
	})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.UserID, nil
}

func (s *GRPCClient) GetSalt(ctx context.Context, userName string) ([]byte, error) {
	resp, err := s.client.GetSalt(ctx, &rpc.GetSaltRequest{Username: userName})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Salt, nil
}

func (s *GRPCClient) Login(ctx context.Context, userName string, verifier []byte) (string, error) {
	resp, err := s.client.Login(ctx, &rpc.LoginRequest{Username: userName, VerifierCandidate: verifier})
	if err != nil {
		return "", s.mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return resp.UserID, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) PresignBackup(ctx context.Context, userID string) (string, string, error) {
	resp, err := s.client.PresignBackup(ctx, &rpc.PresignBackupRequest{UserID: userID})
	if err != nil {
		return "", "", s.mapError(err)
	}
	return resp.Key, resp.URL, nil
}

func (s *GRPCClient) ListCollection(ctx context.Context, userID string, kind models.Kind) ([]models.Entity, error) {
	resp, err := s.client.ListCollection(ctx, &rpc.ListCollectionRequest{UserID: userID, Kind: kind})
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.Entities == nil {
		return []models.Entity{}, nil
	}
	return resp.Entities, nil
}

func (s *GRPCClient) PutEntity(ctx context.Context, userID string, kind models.Kind, e models.Entity) error {
	_, err := s.client.PutEntity(ctx, &rpc.PutEntityRequest{UserID: userID, Kind: kind, Entity: e})
	return s.mapError(err)
}

func (s *GRPCClient) UpdateEntity(ctx context.Context, userID string, kind models.Kind, id string, patch models.EntityPatch) error {
	_, err := s.client.UpdateEntity(ctx, &rpc.UpdateEntityRequest{UserID: userID, Kind: kind, ID: id, Patch: patch})
	return s.mapError(err)
}

func (s *GRPCClient) DeleteEntity(ctx context.Context, userID string, kind models.Kind, id string) error {
	_, err := s.client.DeleteEntity(ctx, &rpc.DeleteEntityRequest{UserID: userID, Kind: kind, ID: id})
	return s.mapError(err)
}

func (s *GRPCClient) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	resp, err := s.client.GetAccount(ctx, &rpc.GetAccountRequest{UserID: userID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.Account, nil
}

func (s *GRPCClient) UpdateAccount(ctx context.Context, userID string, patch models.AccountPatch) (*models.Account, error) {
	resp, err := s.client.UpdateAccount(ctx, &rpc.UpdateAccountRequest{UserID: userID, Patch: patch})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.Account, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return ErrUnavailable
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.AlreadyExists:
		return common.ErrorAlreadyExists
	case codes.FailedPrecondition:
		return common.ErrInsufficientEnergy
	case codes.Aborted:
		return common.ErrAlreadyResolved
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrValidation, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
