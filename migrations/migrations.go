// Package migrations embeds the SQL schema files for the remote PostgreSQL
// store and the local SQLite snapshot cache.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
