// Package migrations embeds the SQL schema of the remote document store and
// of the client's local replica and applies it with goose.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
)

// Migration sets.
const (
	ServerSet = "server"
	ClientSet = "client"
)

//go:embed server/*.sql client/*.sql
var embedMigrations embed.FS

// Migrate applies every pending migration of set to db. dialect is the
// database/sql driver name ("pgx" or "sqlite3").
func Migrate(db *sql.DB, dialect string, set string) error {
	if db == nil {
		return errors.New("migration error: db is nil")
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, set); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
