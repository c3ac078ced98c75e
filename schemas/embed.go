// Package schemas holds the JSON Schemas for the placement-cell API request bodies.
package schemas

import "embed"

// Files contains every *.schema.json in this directory.
//
//go:embed *.schema.json
var Files embed.FS
