package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// QuestStoreClient is the typed client API for the QuestStore service.
type QuestStoreClient struct {
	cc grpc.ClientConnInterface
}

func NewQuestStoreClient(cc grpc.ClientConnInterface) *QuestStoreClient {
	return &QuestStoreClient{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts ...grpc.CallOption) (*Resp, error) {
	req, err := Encode(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	resp := new(Resp)
	if err := Decode(out, resp); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

func (c *QuestStoreClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingRequest, PingResponse](ctx, c.cc, MethodPing, in, opts...)
}

func (c *QuestStoreClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterRequest, RegisterResponse](ctx, c.cc, MethodRegister, in, opts...)
}

func (c *QuestStoreClient) GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error) {
	return invoke[GetSaltRequest, GetSaltResponse](ctx, c.cc, MethodGetSalt, in, opts...)
}

func (c *QuestStoreClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginRequest, LoginResponse](ctx, c.cc, MethodLogin, in, opts...)
}

func (c *QuestStoreClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenRequest, RefreshTokenResponse](ctx, c.cc, MethodRefreshToken, in, opts...)
}

func (c *QuestStoreClient) ListCollection(ctx context.Context, in *ListCollectionRequest, opts ...grpc.CallOption) (*ListCollectionResponse, error) {
	return invoke[ListCollectionRequest, ListCollectionResponse](ctx, c.cc, MethodListCollection, in, opts...)
}

func (c *QuestStoreClient) PutEntity(ctx context.Context, in *PutEntityRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[PutEntityRequest, Empty](ctx, c.cc, MethodPutEntity, in, opts...)
}

func (c *QuestStoreClient) UpdateEntity(ctx context.Context, in *UpdateEntityRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[UpdateEntityRequest, Empty](ctx, c.cc, MethodUpdateEntity, in, opts...)
}

func (c *QuestStoreClient) DeleteEntity(ctx context.Context, in *DeleteEntityRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[DeleteEntityRequest, Empty](ctx, c.cc, MethodDeleteEntity, in, opts...)
}

func (c *QuestStoreClient) GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[GetAccountRequest, AccountResponse](ctx, c.cc, MethodGetAccount, in, opts...)
}

func (c *QuestStoreClient) UpdateAccount(ctx context.Context, in *UpdateAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[UpdateAccountRequest, AccountResponse](ctx, c.cc, MethodUpdateAccount, in, opts...)
}

func (c *QuestStoreClient) PresignBackup(ctx context.Context, in *PresignBackupRequest, opts ...grpc.CallOption) (*PresignBackupResponse, error) {
	return invoke[PresignBackupRequest, PresignBackupResponse](ctx, c.cc, MethodPresignBackup, in, opts...)
}
