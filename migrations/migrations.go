// Package migrations embeds the form-definition schema migrations so the
// formgate binary can migrate its own store without external files.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
