package migrations

import "embed"

// FS contains embedded Postgres migrations for combat storage.
//
//go:embed *.sql
var FS embed.FS
