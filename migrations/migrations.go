// Package migrations embeds the per-driver schema files for the rules,
// alerts, and feedback tables so the engine binary migrates itself without
// shipping loose SQL alongside it.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
