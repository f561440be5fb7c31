package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/w9840102-lang/mcqforge/internal/bankimport"
	"github.com/w9840102-lang/mcqforge/internal/config"
	"github.com/w9840102-lang/mcqforge/internal/db/queries"
	"github.com/w9840102-lang/mcqforge/internal/db/repository"
	"github.com/w9840102-lang/mcqforge/internal/question/external"
)

type options struct {
	from       string
	file       string
	out        string
	topic      string
	amount     int
	category   int
	difficulty string
	envFile    string
}

func main() {
	var opts options
	pflag.StringVar(&opts.from, "from", "", "source format: yaml, xlsx or opentdb (default: from file extension)")
	pflag.StringVarP(&opts.file, "file", "f", "", "input file for yaml/xlsx")
	pflag.StringVarP(&opts.out, "out", "o", "", "write a .yaml or .xlsx bank instead of importing into postgres")
	pflag.StringVarP(&opts.topic, "topic", "t", "", "topic name for opentdb imports")
	pflag.IntVar(&opts.amount, "amount", 20, "opentdb: questions to fetch (max 50)")
	pflag.IntVar(&opts.category, "category", 0, "opentdb: category id")
	pflag.StringVar(&opts.difficulty, "difficulty", "", "opentdb: easy, medium or hard")
	pflag.StringVar(&opts.envFile, "env-file", "configs/.env", "dotenv file to load before reading PG_* variables")
	pflag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("app", "bankimport").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}
}

func run(ctx context.Context, opts options) error {
	source := sourceFormat(opts)
	topics, err := read(ctx, source, opts)
	if err != nil {
		return err
	}

	if opts.out != "" {
		return export(opts.out, topics)
	}

	if opts.envFile != "" {
		_ = godotenv.Load(opts.envFile)
	}
	pg, err := config.LoadPostgres()
	if err != nil {
		return err
	}
	pool, err := pgxpool.New(ctx, pg.DSN())
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repo := repository.NewQuestionRepository(queries.New(pool).WithTx(tx))
	sum, err := bankimport.NewImporter(repo, log.Logger).Import(ctx, topics, source)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.Info().
		Int("topics", sum.Topics).
		Int("read", sum.Read).
		Int("inserted", sum.Inserted).
		Int("duplicate", sum.Duplicate).
		Int("dropped", sum.Dropped).
		Msg("import complete")
	return nil
}

func sourceFormat(opts options) string {
	if opts.from != "" {
		return strings.ToLower(opts.from)
	}
	switch strings.ToLower(filepath.Ext(opts.file)) {
	case ".xlsx":
		return "xlsx"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}

func read(ctx context.Context, source string, opts options) ([]bankimport.TopicRecords, error) {
	switch source {
	case "yaml":
		f, err := os.Open(opts.file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return bankimport.ReadYAML(f)
	case "xlsx":
		f, err := os.Open(opts.file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		topics, rowErrs, err := bankimport.ReadXLSX(f)
		for _, re := range rowErrs {
			log.Warn().Int("row", re.Row).Str("reason", re.Error).Msg("row skipped")
		}
		return topics, err
	case "opentdb":
		rec, err := bankimport.FromOpenTDB(ctx, external.NewOpenTDBClient("", nil), opts.topic, external.OpenTDBQuery{
			Amount:     opts.amount,
			Category:   opts.category,
			Difficulty: opts.difficulty,
		})
		if err != nil {
			return nil, err
		}
		return []bankimport.TopicRecords{rec}, nil
	case "":
		return nil, errors.New("cannot tell the source format; pass --from")
	default:
		return nil, fmt.Errorf("unknown source format %q", source)
	}
}

func export(path string, topics []bankimport.TopicRecords) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		err = bankimport.WriteXLSXTemplate(f, topics)
	default:
		err = bankimport.WriteYAML(f, topics)
	}
	if err != nil {
		return err
	}
	log.Info().Str("path", path).Int("topics", len(topics)).Msg("bank written")
	return nil
}
