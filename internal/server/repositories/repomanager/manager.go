package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/careervault/internal/dbx"
	"github.com/dmitrijs2005/careervault/internal/server/repositories/items"
	"github.com/dmitrijs2005/careervault/internal/server/repositories/vaults"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code runs
// against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Vaults(db dbx.DBTX) vaults.Repository
	Items(db dbx.DBTX) items.Repository
}
