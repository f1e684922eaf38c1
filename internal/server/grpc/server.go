// Package grpc exposes the server services over the QuestStore gRPC service.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/tokenquest/internal/logging"
	"github.com/dmitrijs2005/tokenquest/internal/models"
	"github.com/dmitrijs2005/tokenquest/internal/rpc"
	sm "github.com/dmitrijs2005/tokenquest/internal/server/models"
	"github.com/dmitrijs2005/tokenquest/internal/server/services"
	"google.golang.org/grpc"
)

// Users is the part of services.UserService the transport needs.
type Users interface {
	Register(ctx context.Context, username, displayName string, salt, verifier []byte) (*sm.User, error)
	GetSalt(ctx context.Context, userName string) ([]byte, error)
	Login(ctx context.Context, userName string, verifierCandidate []byte) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// Documents is the part of services.DocumentService the transport needs.
type Documents interface {
	ListCollection(ctx context.Context, userID string, kind models.Kind) ([]models.Entity, error)
	PutEntity(ctx context.Context, userID string, kind models.Kind, e models.Entity) error
	UpdateEntity(ctx context.Context, userID string, kind models.Kind, id string, patch models.EntityPatch) error
	DeleteEntity(ctx context.Context, userID string, kind models.Kind, id string) error
	GetAccount(ctx context.Context, userID string) (*models.Account, error)
	UpdateAccount(ctx context.Context, userID string, patch models.AccountPatch) (*models.Account, error)
}

type Backups interface {
	PresignBackup(ctx context.Context, userID string) (*services.BackupTarget, error)
}

// TokenVerifier resolves an access token to its user id.
type TokenVerifier interface {
	UserID(token string) (string, error)
}

type GRPCServer struct {
	rpc.UnimplementedQuestStoreServer
	address   string
	users     Users
	documents Documents
	backups   Backups
	tokens    TokenVerifier
	metrics   *Metrics
	logger    logging.Logger
}

func NewGRPCServer(address string, l logging.Logger, us Users, ds Documents, bs Backups, tv TokenVerifier, m *Metrics) *GRPCServer {
	return &GRPCServer{
		address:   address,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		documents: ds,
		backups:   bs,
		tokens:    tv,
		metrics:   m,
	}
}

// NewServer builds a grpc.Server with the interceptor chain and the
// QuestStore service registered. Metrics wrap authentication so rejected
// calls are counted too.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	chain := []grpc.UnaryServerInterceptor{s.loggingInterceptor}
	if s.metrics != nil {
		chain = append([]grpc.UnaryServerInterceptor{s.metrics.UnaryInterceptor}, chain...)
	}
	chain = append(chain, s.accessTokenInterceptor)

	srv := grpc.NewServer(append(opts, grpc.ChainUnaryInterceptor(chain...))...)
	rpc.RegisterQuestStoreServer(srv, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	ctx = logging.WithAttrs(ctx, "method", info.FullMethod)
	resp, err := handler(ctx, req)
	if err != nil {
		s.logger.Debug(ctx, "rpc failed", "error", err, "elapsed", time.Since(start))
	} else {
		s.logger.Debug(ctx, "rpc served", "elapsed", time.Since(start))
	}
	return resp, err
}
