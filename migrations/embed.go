// Package migrations expone los scripts SQL del esquema.
package migrations

import "embed"

// FS scripts *.sql, aplicados en orden lexicográfico.
//
//go:embed *.sql
var FS embed.FS
