// Package schema holds the postgres migrations, applied in file name order
// by database.Migrate.
package schema

import "embed"

//go:embed *.sql
var FS embed.FS
