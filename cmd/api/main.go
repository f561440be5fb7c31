package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/w9840102-lang/mcqforge/internal/app"
	"github.com/w9840102-lang/mcqforge/internal/config"
)

func main() {
	envFile := pflag.String("env-file", "configs/.env", "dotenv file loaded outside production")
	pflag.Parse()

	if os.Getenv("APP_ENV") != "production" && *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Printf("mcqforge: no env file loaded from %s: %v", *envFile, err)
		}
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("mcqforge: %v", err)
	}

	instance, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("mcqforge: bootstrap: %v", err)
	}

	if err := instance.Run(ctx); err != nil {
		log.Fatalf("mcqforge: %v", err)
	}
}
