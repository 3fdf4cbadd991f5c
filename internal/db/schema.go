// Package db holds the database schema applied by cmd/migrate.
package db

import (
	_ "embed"
	"strings"
)

//go:embed schema.sql
var schema string

// Schema returns the idempotent DDL for every table the backend uses.
func Schema() string { return schema }

// Statements splits the schema into individual statements.
func Statements() []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}
