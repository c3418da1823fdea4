// Package migrations holds the Postgres schema applied by the migrate command.
package migrations

import "github.com/uptrace/bun/migrate"

// Migrations collects every schema step; each file registers itself from init.
var Migrations = migrate.NewMigrations()
