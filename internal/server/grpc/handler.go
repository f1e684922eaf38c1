package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/tokenquest/internal/common"
	"github.com/dmitrijs2005/tokenquest/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, _ *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.RegisterResponse, error) {
	s.logger.Info(ctx, "Registration request")

	u, err := s.users.Register(ctx, req.Username, req.DisplayName, req.Salt, req.Verifier)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "username", req.Username)
	return &rpc.RegisterResponse{UserID: u.ID}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *rpc.GetSaltRequest) (*rpc.GetSaltResponse, error) {
	salt, err := s.users.GetSalt(ctx, req.Username)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.GetSaltResponse{Salt: salt}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	pair, err := s.users.Login(ctx, req.Username, req.VerifierCandidate)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.LoginResponse{UserID: pair.UserID, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.RefreshTokenResponse, error) {
	pair, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.RefreshTokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *GRPCServer) ListCollection(ctx context.Context, req *rpc.ListCollectionRequest) (*rpc.ListCollectionResponse, error) {
	userID, err := s.owner(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	es, err := s.documents.ListCollection(ctx, userID, req.Kind)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.ListCollectionResponse{Entities: es}, nil
}

func (s *GRPCServer) PutEntity(ctx context.Context, req *rpc.PutEntityRequest) (*rpc.Empty, error) {
	userID, err := s.owner(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.documents.PutEntity(ctx, userID, req.Kind, req.Entity); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) UpdateEntity(ctx context.Context, req *rpc.UpdateEntityRequest) (*rpc.Empty, error) {
	userID, err := s.owner(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.documents.UpdateEntity(ctx, userID, req.Kind, req.ID, req.Patch); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) DeleteEntity(ctx context.Context, req *rpc.DeleteEntityRequest) (*rpc.Empty, error) {
	userID, err := s.owner(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.documents.DeleteEntity(ctx, userID, req.Kind, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) GetAccount(ctx context.Context, req *rpc.GetAccountRequest) (*rpc.AccountResponse, error) {
	userID, err := s.owner(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	a, err := s.documents.GetAccount(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.AccountResponse{Account: *a}, nil
}

func (s *GRPCServer) UpdateAccount(ctx context.Context, req *rpc.UpdateAccountRequest) (*rpc.AccountResponse, error) {
	userID, err := s.owner(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	a, err := s.documents.UpdateAccount(ctx, userID, req.Patch)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.AccountResponse{Account: *a}, nil
}

func (s *GRPCServer) PresignBackup(ctx context.Context, req *rpc.PresignBackupRequest) (*rpc.PresignBackupResponse, error) {
	userID, err := s.owner(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	target, err := s.backups.PresignBackup(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.PresignBackupResponse{Key: target.Key, URL: target.URL, ExpiresAt: target.ExpiresAt}, nil
}

// owner returns the authenticated user. A request naming another user is
// refused; an empty request user means "me".
func (s *GRPCServer) owner(ctx context.Context, requested string) (string, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "unauthenticated")
	}
	if requested != "" && requested != userID {
		s.logger.Warn(ctx, "cross-user access refused", "user_id", userID, "requested", requested)
		return "", status.Error(codes.PermissionDenied, common.ErrorForbidden.Error())
	}
	return userID, nil
}

func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrInsufficientEnergy):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrAlreadyResolved):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	s.logger.Error(ctx, "rpc internal error", "error", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}
