package webassets

import "embed"

// FS contains embedded web assets from this directory.

//go:embed signin.html
var FS embed.FS
