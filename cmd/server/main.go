package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/avelin/pairwise/internal/app"
	"github.com/avelin/pairwise/internal/cache"
	"github.com/avelin/pairwise/internal/config"
	"github.com/avelin/pairwise/internal/db"
	"github.com/avelin/pairwise/internal/geo"
	"github.com/avelin/pairwise/internal/logger"
	"github.com/avelin/pairwise/internal/server"
	"github.com/avelin/pairwise/internal/service/account"
	"github.com/avelin/pairwise/internal/service/directory"
	"github.com/avelin/pairwise/internal/service/match"
)

func main() {
	_ = godotenv.Load()
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	geocoder := geo.NewNominatimGeocoder(cfg)

	appCtx := app.New(cfg, database, redisCache, geocoder, log)

	registrars := []server.Registrar{
		account.NewRegistrar(appCtx),
		directory.NewRegistrar(appCtx),
		match.NewRegistrar(appCtx),
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
