// Package rpc declares the QuestStore gRPC service shared by the server and
// the client.
//
// The service is declared by hand instead of being generated from a .proto
// file. Every request and response travels as a google.protobuf.Struct that
// carries the JSON form of the Go message types in this package, so the
// document shapes defined in internal/models (kind-specific field names,
// RFC 3339 timestamps) are exactly what goes over the wire.
//
// Server side: implement QuestStoreServer (embed UnimplementedQuestStoreServer
// for forward compatibility) and call RegisterQuestStoreServer.
// Client side: wrap a *grpc.ClientConn with NewQuestStoreClient.
package rpc
