package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/avelin/pairwise/internal/cache"
	"github.com/avelin/pairwise/internal/config"
	"github.com/avelin/pairwise/internal/geo"
)

// AppContext holds shared dependencies (DB, Redis, Geocoder, Logger, etc.)
type AppContext struct {
	Cfg        *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Geocoder   geo.Geocoder
	Logger     *slog.Logger
}

// New creates a new AppContext
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, gc geo.Geocoder, logger *slog.Logger) *AppContext {
	return &AppContext{
		Cfg:        cfg,
		DB:         db,
		RedisCache: rdb,
		Geocoder:   gc,
		Logger:     logger,
	}
}
