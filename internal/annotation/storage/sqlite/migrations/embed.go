// Package migrations embeds the annotation store schema files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
