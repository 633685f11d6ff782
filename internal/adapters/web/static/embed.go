// Package static holds the landing page served at /.
package static

import "embed"

//go:embed index.html
var Site embed.FS
