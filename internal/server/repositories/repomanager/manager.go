package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/qrscan/internal/dbx"
	"github.com/dmitrijs2005/qrscan/internal/server/repositories/codes"
	"github.com/dmitrijs2005/qrscan/internal/server/repositories/history"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	History(db dbx.DBTX) history.Repository
	Codes(db dbx.DBTX) codes.Repository
}
