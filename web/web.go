package web

import "embed"

// Static holds the embedded web/static directory, served at /static/*.
// Handlers access it via fs.Sub(Static, "static").
//
//go:embed static
var Static embed.FS
