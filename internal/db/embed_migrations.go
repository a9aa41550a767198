package db

import "embed"

// MigrationFS embeds the schema migrations for users and tasks.
// cmd/migrate applies them through internal/db/migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
