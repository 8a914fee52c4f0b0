package migrations

import "embed"

// Migrations holds the goose SQL migrations for the document store schema.
//
//go:embed *.sql
var Migrations embed.FS
