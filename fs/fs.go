// Package appfs embeds the files shipped with the binaries: migrations, templates and assets.
package appfs

import "embed"

//go:embed migrations all:assets
var FS embed.FS
