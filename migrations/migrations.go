// Package migrations embeds the goose SQL migrations that provision the
// database schema.
package migrations

import "embed"

// FS holds the embedded migration files.
//
//go:embed *.sql
var FS embed.FS
