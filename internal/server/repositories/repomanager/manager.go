package repomanager

import (
	"context"
	"database/sql"

	"github.com/1anshu-stack/backend/internal/dbx"
	"github.com/1anshu-stack/backend/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
