// Package client contains the client-side building blocks that talk to a
// quest store.
//
// # Overview
//
//  1. RemoteStore: the document-store contract the syncer and the ledger
//     depend on (collections of missions/rewards and the account document).
//  2. Client: the account contract (Register, GetSalt, Login, Ping,
//     PresignBackup).
//  3. GRPCClient: the gRPC implementation of both. It injects the access
//     token via an interceptor, refreshes an expired token once, and maps
//     gRPC status codes to sentinel errors.
//  4. InitDatabase / RunMigrations: the client SQLite database with embedded
//     goose migrations.
//
// # Error Handling
//
// Transport failures surface as ErrUnavailable so callers can tell them
// apart from common.ErrorNotFound. Auth failures surface as ErrUnauthorized.
package client
