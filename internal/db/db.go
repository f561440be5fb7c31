// Package db holds the topic bank schema and its goose migrations.
package db

import "embed"

// Migrations embeds the goose SQL migrations under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that goose reads.
const MigrationsDir = "migrations"
