// Package repomanager vends repository implementations bound to a DBTX and
// owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/DeepaPrasanna/social-media/internal/dbx"
	"github.com/DeepaPrasanna/social-media/internal/server/repositories/posts"
	"github.com/DeepaPrasanna/social-media/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to the given DBTX, so a
// service can run several repository calls inside one transaction.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
