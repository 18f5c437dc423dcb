package main

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"autopark-service/internal/auth"
	"autopark-service/internal/config"
	"autopark-service/internal/db"
	"autopark-service/internal/geocoding"
	httphandler "autopark-service/internal/http"
	"autopark-service/internal/http/middleware"
	"autopark-service/internal/logger"
	"autopark-service/internal/repository"
	"autopark-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	var cache *redis.Client
	if cfg.Redis.Addr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	geocoder := geocoding.NewClient(cfg, cache, log)

	stores := repository.NewStores(database)
	txManager := repository.NewTxManager(database)

	importService := service.NewImportService(txManager, geocoder, log)
	exportService := service.NewExportService(stores, log)
	rangeService := service.NewTripRangeService(stores, geocoder, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(importService, exportService, rangeService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting autopark service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
