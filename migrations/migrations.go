// Package migrations embeds the SQL applied by "clinic-dashboard api migrate".
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
