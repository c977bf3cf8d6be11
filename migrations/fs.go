// Package migrations embeds the SQL schema migrations shipped with the
// service binary.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
