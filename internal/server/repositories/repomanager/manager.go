package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/mediaupload/internal/dbx"
	"github.com/dmitrijs2005/mediaupload/internal/server/repositories/components"
	"github.com/dmitrijs2005/mediaupload/internal/server/repositories/uploads"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code path
// works against *sql.DB and inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Uploads(db dbx.DBTX) uploads.Repository
	Components(db dbx.DBTX) components.Repository
}
