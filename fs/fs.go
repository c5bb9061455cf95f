// Package appfs embeds the database migrations and HTML templates shipped with the binaries.
package appfs

import "embed"

// all: keeps the "_" prefixed layouts.
//
//go:embed migrations all:templates
var FS embed.FS
