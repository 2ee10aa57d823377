//go:build tools

package tools

// This file tracks versions of CLI tool dependencies.
// It is not compiled into the binary.
//
// Migrations are embedded and applied on startup; the goose CLI is only
// needed to author new ones:
// - github.com/pressly/goose/v3/cmd/goose
