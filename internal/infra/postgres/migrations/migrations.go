// Package migrations holds the bun migrations of the Postgres schema. Each
// file is named <version>_<name>.go so the migrator can derive its version.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()
