// Package migrations bundles the SQL schema applied by "emergency-view migrate".
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
