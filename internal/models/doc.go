// Package models holds the domain records shared by the client, the server
// and every store implementation: entities (missions and rewards), the
// per-user account ledger, partial updates for both, and the default
// catalog seeded into empty collections.
package models
