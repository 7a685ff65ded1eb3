// Command seed loads the JSON files in SEED_PATH (default ./seeder) into the
// configured database. Quotes are attributed to the first admin, so log in
// once with an ADMINS address before seeding.
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-quotes-backend/internal/config"
	"github.com/tbourn/go-quotes-backend/internal/repo"
	"github.com/tbourn/go-quotes-backend/internal/seed"
	"github.com/tbourn/go-quotes-backend/internal/services"
	"github.com/tbourn/go-quotes-backend/internal/sysutil"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	sysutil.SetupLogger(sysutil.LoggerOptions{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "seed",
		Out:     os.Stderr,
	})

	dir := cfg.Quotes.SeedPath
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := repo.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	if err := repo.SeedStatuses(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("seed statuses")
	}

	files, err := seed.LoadDir(dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", dir).Msg("load seed files")
	}

	st := services.NewStatusService(db, cfg.Quotes)
	quotes := services.NewQuoteService(db, nil, st, nil, 0)
	res, err := seed.Apply(ctx, db, quotes, files)
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().
		Int("files", len(files)).
		Int("statuses", res.Statuses).
		Int("quotes", res.Quotes).
		Int("skipped_quotes", res.SkippedQuotes).
		Msg("seeding done")
}
