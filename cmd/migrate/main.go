package main

import (
	"flag"
	"os"

	"github.com/foliobay/backend/internal/database"
	"github.com/foliobay/backend/internal/logging"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	// Pretty console output for an operator-facing tool
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	log := logging.NewLogger("migrate")

	var (
		command     string
		steps       int
		databaseURL string
	)

	flag.StringVar(&command, "command", "up", "Migration command: up, down, version")
	flag.IntVar(&steps, "steps", 1, "Number of migrations to roll back (down only)")
	flag.StringVar(&databaseURL, "database", "", "Database URL (overrides DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		log.Fatal().Msg("DATABASE_URL environment variable or -database flag is required")
	}

	switch command {
	case "up":
		if err := database.RunMigrations(databaseURL); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
	case "down":
		if err := database.RollbackMigrations(databaseURL, steps); err != nil {
			log.Fatal().Err(err).Msg("Rollback failed")
		}
	case "version":
		version, dirty, err := database.MigrationVersion(databaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get version")
		}
		log.Info().
			Uint("version", version).
			Bool("dirty", dirty).
			Msg("Current migration version")
	default:
		log.Fatal().Str("command", command).Msg("Unknown command")
	}
}
