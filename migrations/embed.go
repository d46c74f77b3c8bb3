// Package migrations embeds the goose SQL migrations so they can be applied
// from the binary and from the integration test harness.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
