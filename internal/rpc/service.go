package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "tokenquest.v1.QuestStore"

const (
	MethodPing           = "Ping"
	MethodRegister       = "Register"
	MethodGetSalt        = "GetSalt"
	MethodLogin          = "Login"
	MethodRefreshToken   = "RefreshToken"
	MethodListCollection = "ListCollection"
	MethodPutEntity      = "PutEntity"
	MethodUpdateEntity   = "UpdateEntity"
	MethodDeleteEntity   = "DeleteEntity"
	MethodGetAccount     = "GetAccount"
	MethodUpdateAccount  = "UpdateAccount"
	MethodPresignBackup  = "PresignBackup"
)

// FullMethod returns "/tokenquest.v1.QuestStore/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// PublicMethods are callable without an access token.
var PublicMethods = map[string]bool{
	FullMethod(MethodPing):         true,
	FullMethod(MethodRegister):     true,
	FullMethod(MethodGetSalt):      true,
	FullMethod(MethodLogin):        true,
	FullMethod(MethodRefreshToken): true,
}

// QuestStoreServer is the server API for the QuestStore service.
type QuestStoreServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	ListCollection(context.Context, *ListCollectionRequest) (*ListCollectionResponse, error)
	PutEntity(context.Context, *PutEntityRequest) (*Empty, error)
	UpdateEntity(context.Context, *UpdateEntityRequest) (*Empty, error)
	DeleteEntity(context.Context, *DeleteEntityRequest) (*Empty, error)
	GetAccount(context.Context, *GetAccountRequest) (*AccountResponse, error)
	UpdateAccount(context.Context, *UpdateAccountRequest) (*AccountResponse, error)
	PresignBackup(context.Context, *PresignBackupRequest) (*PresignBackupResponse, error)
}

// UnimplementedQuestStoreServer answers every method with codes.Unimplemented.
type UnimplementedQuestStoreServer struct{}

func unimplemented(m string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", m)
}

func (UnimplementedQuestStoreServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented(MethodPing)
}
func (UnimplementedQuestStoreServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, unimplemented(MethodRegister)
}
func (UnimplementedQuestStoreServer) GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error) {
	return nil, unimplemented(MethodGetSalt)
}
func (UnimplementedQuestStoreServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, unimplemented(MethodLogin)
}
func (UnimplementedQuestStoreServer) RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error) {
	return nil, unimplemented(MethodRefreshToken)
}
func (UnimplementedQuestStoreServer) ListCollection(context.Context, *ListCollectionRequest) (*ListCollectionResponse, error) {
	return nil, unimplemented(MethodListCollection)
}
func (UnimplementedQuestStoreServer) PutEntity(context.Context, *PutEntityRequest) (*Empty, error) {
	return nil, unimplemented(MethodPutEntity)
}
func (UnimplementedQuestStoreServer) UpdateEntity(context.Context, *UpdateEntityRequest) (*Empty, error) {
	return nil, unimplemented(MethodUpdateEntity)
}
func (UnimplementedQuestStoreServer) DeleteEntity(context.Context, *DeleteEntityRequest) (*Empty, error) {
	return nil, unimplemented(MethodDeleteEntity)
}
func (UnimplementedQuestStoreServer) GetAccount(context.Context, *GetAccountRequest) (*AccountResponse, error) {
	return nil, unimplemented(MethodGetAccount)
}
func (UnimplementedQuestStoreServer) UpdateAccount(context.Context, *UpdateAccountRequest) (*AccountResponse, error) {
	return nil, unimplemented(MethodUpdateAccount)
}
func (UnimplementedQuestStoreServer) PresignBackup(context.Context, *PresignBackupRequest) (*PresignBackupResponse, error) {
	return nil, unimplemented(MethodPresignBackup)
}

// unary adapts a typed server method to a grpc.MethodDesc. The interceptor
// chain sees the raw *structpb.Struct request.
func unary[Req, Resp any](method string, call func(QuestStoreServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}

			handle := func(ctx context.Context, req any) (any, error) {
				var r Req
				if err := Decode(req.(*structpb.Struct), &r); err != nil {
					return nil, status.Error(codes.InvalidArgument, err.Error())
				}
				resp, err := call(srv.(QuestStoreServer), ctx, &r)
				if err != nil {
					return nil, err
				}
				out, err := Encode(resp)
				if err != nil {
					return nil, status.Error(codes.Internal, err.Error())
				}
				return out, nil
			}

			if interceptor == nil {
				return handle(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, handle)
		},
	}
}

// QuestStoreServiceDesc describes the service for grpc.Server.RegisterService.
var QuestStoreServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*QuestStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, QuestStoreServer.Ping),
		unary(MethodRegister, QuestStoreServer.Register),
		unary(MethodGetSalt, QuestStoreServer.GetSalt),
		unary(MethodLogin, QuestStoreServer.Login),
		unary(MethodRefreshToken, QuestStoreServer.RefreshToken),
		unary(MethodListCollection, QuestStoreServer.ListCollection),
		unary(MethodPutEntity, QuestStoreServer.PutEntity),
		unary(MethodUpdateEntity, QuestStoreServer.UpdateEntity),
		unary(MethodDeleteEntity, QuestStoreServer.DeleteEntity),
		unary(MethodGetAccount, QuestStoreServer.GetAccount),
		unary(MethodUpdateAccount, QuestStoreServer.UpdateAccount),
		unary(MethodPresignBackup, QuestStoreServer.PresignBackup),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tokenquest/v1/quest_store",
}

func RegisterQuestStoreServer(s grpc.ServiceRegistrar, srv QuestStoreServer) {
	s.RegisterService(&QuestStoreServiceDesc, srv)
}
