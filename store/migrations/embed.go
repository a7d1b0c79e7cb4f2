// Package migrations embeds the schema files for the SQLite backend. The
// PostgreSQL schema is built in code because its vector column dimension is
// only known at runtime.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SQLite embed.FS
