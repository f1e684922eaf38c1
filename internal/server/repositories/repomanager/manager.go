// Package repomanager hands out the server repositories bound to either the
// pool or a transaction, and owns the schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/tokenquest/internal/dbx"
	"github.com/dmitrijs2005/tokenquest/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/tokenquest/internal/server/repositories/entities"
	"github.com/dmitrijs2005/tokenquest/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/tokenquest/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Accounts(db dbx.DBTX) accounts.Repository
	Entities(db dbx.DBTX) entities.Repository
}
