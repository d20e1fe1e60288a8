package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/flagquiz/assets"
	"github.com/robalobadob/flagquiz/internal/config"
	"github.com/robalobadob/flagquiz/internal/countries"
	"github.com/robalobadob/flagquiz/internal/game"
	"github.com/robalobadob/flagquiz/internal/httpserver"
	"github.com/robalobadob/flagquiz/internal/metrics"
	"github.com/robalobadob/flagquiz/internal/results"
	"github.com/robalobadob/flagquiz/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	if err := countries.Init(cfg.CountriesFile); err != nil {
		log.Fatal().Err(err).Str("file", cfg.CountriesFile).Msg("failed to load country pool")
	}
	pool := countries.Default()
	dealer, err := game.NewDealer(pool.IDs(), nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build dealer")
	}

	db, err := results.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open database")
	}
	defer db.Close()
	if err := results.Migrate(db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := store.NewMemoryStore()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("redis unreachable")
		}
		sessions = store.NewRedisStore(rdb, cfg.SessionTTL)
		log.Info().Str("addr", opts.Addr).Dur("ttl", cfg.SessionTTL).Msg("sessions in redis")
	}

	srv := httpserver.New(httpserver.Deps{
		Store:   sessions,
		Results: results.NewStore(db),
		Pool:    pool,
		Dealer:  dealer,
		Metrics: metrics.New(),
		Config:  cfg,
	})

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Int("countries", pool.Len()).Msg("starting flagquiz server")
	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func setupLogging(cfg *config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
