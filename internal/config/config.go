package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Bank sources.
const (
	BankPostgres = "postgres"
	BankFile     = "file"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"mcqforge"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres Postgres
	Redis    Redis
	Security Security
	Bank     Bank
	AI       AI
	Session  Session
	CORS     CORS
}

// Postgres captures connection info for the topic bank database.
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:""`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER" envDefault:""`
	Password string `env:"PG_PASSWORD" envDefault:""`
	Database string `env:"PG_DATABASE" envDefault:""`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int32  `env:"PG_MAX_CONNS" envDefault:"10"`
}

// DSN renders the connection string understood by pgx.
func (p Postgres) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     p.Database,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	return u.String()
}

func (p Postgres) validate() error {
	var missing []string
	if p.Host == "" {
		missing = append(missing, "PG_HOST")
	}
	if p.User == "" {
		missing = append(missing, "PG_USER")
	}
	if p.Database == "" {
		missing = append(missing, "PG_DATABASE")
	}
	if len(missing) > 0 {
		return fmt.Errorf("postgres: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Redis backs the generation cache. An empty address disables caching.
type Redis struct {
	Addr     string `env:"REDIS_ADDR" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing session tokens.
type Security struct {
	SessionTokenSecret string        `env:"SESSION_TOKEN_SECRET,notEmpty"`
	SessionTokenTTL    time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"12h"`
}

// Bank selects where topic questions come from.
type Bank struct {
	Source string `env:"BANK_SOURCE" envDefault:"postgres"`
	File   string `env:"BANK_FILE" envDefault:"configs/bank.yaml"`
}

// AI configures the image question generator.
type AI struct {
	GeneratorURL   string        `env:"AI_GENERATOR_URL" envDefault:""`
	GeneratorKey   string        `env:"AI_GENERATOR_API_KEY" envDefault:""`
	HTTPTimeout    time.Duration `env:"AI_HTTP_TIMEOUT" envDefault:"60s"`
	MaxRetries     int           `env:"AI_MAX_RETRIES" envDefault:"2"`
	RetryBaseDelay time.Duration `env:"AI_RETRY_BASE_DELAY" envDefault:"900ms"`
	CacheTTL       time.Duration `env:"GENERATION_CACHE_TTL" envDefault:"30m"`
}

// Session governs in-memory session lifetime.
type Session struct {
	IdleTTL        time.Duration `env:"SESSION_IDLE_TTL" envDefault:"2h"`
	SweepInterval  time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
	TapDebounce    time.Duration `env:"TAP_DEBOUNCE_WINDOW" envDefault:"250ms"`
	AllowedOrigins []string      `env:"WS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other.
func (a *App) Validate() error {
	switch strings.ToLower(a.Bank.Source) {
	case BankPostgres:
		if err := a.Postgres.validate(); err != nil {
			return err
		}
	case BankFile:
		if a.Bank.File == "" {
			return errors.New("bank: BANK_FILE is required when BANK_SOURCE=file")
		}
	default:
		return fmt.Errorf("bank: unknown BANK_SOURCE %q", a.Bank.Source)
	}
	if a.AI.GeneratorURL != "" {
		if _, err := url.ParseRequestURI(a.AI.GeneratorURL); err != nil {
			return fmt.Errorf("ai: invalid AI_GENERATOR_URL: %w", err)
		}
	}
	return nil
}

// LoadPostgres parses only the database settings, for tools that need
// nothing else.
func LoadPostgres() (Postgres, error) {
	var pg Postgres
	if err := env.ParseWithOptions(&pg, env.Options{RequiredIfNoDef: true}); err != nil {
		return Postgres{}, fmt.Errorf("parse postgres config: %w", err)
	}
	if err := pg.validate(); err != nil {
		return Postgres{}, err
	}
	return pg, nil
}
