package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setPostgresEnv(t *testing.T) {
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_USER", "quiz")
	t.Setenv("PG_PASSWORD", "p@ss word")
	t.Setenv("PG_DATABASE", "mcq")
}

func TestLoadDefaults(t *testing.T) {
	setPostgresEnv(t)
	t.Setenv("SESSION_TOKEN_SECRET", "s3cret")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "mcqforge", cfg.Name)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, BankPostgres, cfg.Bank.Source)
	assert.Equal(t, 2, cfg.AI.MaxRetries)
	assert.Equal(t, 900*time.Millisecond, cfg.AI.RetryBaseDelay)
	assert.Equal(t, 60*time.Second, cfg.AI.HTTPTimeout)
	assert.Equal(t, 30*time.Minute, cfg.AI.CacheTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Session.TapDebounce)
	assert.Equal(t, 12*time.Hour, cfg.Security.SessionTokenTTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, []string{"*"}, cfg.Session.AllowedOrigins)
}

func TestLoadRequiresTokenSecret(t *testing.T) {
	setPostgresEnv(t)
	t.Setenv("SESSION_TOKEN_SECRET", "")

	_, err := Load(context.Background())
	assert.Error(t, err)
}

func TestLoadFileBankSkipsPostgres(t *testing.T) {
	t.Setenv("SESSION_TOKEN_SECRET", "s3cret")
	t.Setenv("BANK_SOURCE", "file")
	t.Setenv("BANK_FILE", "testdata/bank.yaml")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "testdata/bank.yaml", cfg.Bank.File)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*App)
		wantErr string
	}{
		{"postgres missing host", func(a *App) { a.Postgres.Host = "" }, "PG_HOST"},
		{"unknown bank", func(a *App) { a.Bank.Source = "s3" }, "unknown BANK_SOURCE"},
		{"bad generator url", func(a *App) { a.AI.GeneratorURL = "not a url" }, "AI_GENERATOR_URL"},
		{"valid", func(*App) {}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := &App{
				Bank:     Bank{Source: BankPostgres},
				Postgres: Postgres{Host: "db", User: "u", Database: "d", Port: 5432},
			}
			tc.mutate(app)
			err := app.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	pg := Postgres{Host: "db", Port: 5433, User: "quiz", Password: "p@ss word", Database: "mcq", SSLMode: "require"}
	assert.Equal(t, "postgres://quiz:p%40ss%20word@db:5433/mcq?sslmode=require", pg.DSN())
}
