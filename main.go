// CredoCarbon SuperAdmin API
//
// Backend for managing carbon registry data.
//
// @title CredoCarbon SuperAdmin API
// @description Backend API for managing carbon registry data
// @version 1.0
// @host localhost:8080
// @BasePath /api
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	appconfig "credocarbon/config"
	"credocarbon/registry"
	appserver "credocarbon/server"
	"credocarbon/storage"
	"credocarbon/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	utils.InitLogging()
	startTime := time.Now()

	cfg, err := appconfig.Load()
	if err != nil {
		utils.LogError("CONFIG", err)
		return 2
	}
	utils.TrustProxyHeaders.Store(cfg.TrustProxyHeaders)

	store, err := storage.New(cfg)
	if err != nil {
		utils.LogError("STORAGE", err)
		return 1
	}
	svc := registry.NewService(store, cfg)

	// Redis is optional; without it, rate limit counters are process local.
	// When configured, fail fast if it is unreachable.
	if cfg.RedisURL != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		pingErr := rdb.Ping(ctx).Err()
		cancel()
		rdb.Close()
		if pingErr != nil {
			utils.LogError("REDIS", pingErr, "addr", cfg.RedisURL)
			return 1
		}
	}

	readyState := appserver.NewReadyState(store, cfg.RegistryFile)
	app := appserver.CreateFiberApp()
	setupRoutes(app, cfg, svc, startTime, readyState)

	probeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := readyState.ProbeStorage(probeCtx); err != nil {
		utils.LogError("STORAGE", err, "backend", cfg.StorageBackend)
		cancel()
		return 1
	}
	cancel()
	readyState.MarkStorageReady()
	readyState.MarkAdminReady()

	boot := appserver.NewBootstrapper(cfg.Host, cfg.Port, cfg.ShutdownGrace)
	if err := boot.Start(app); err != nil {
		var bindErr *appserver.BindError
		if errors.As(err, &bindErr) {
			utils.LogError("BIND", bindErr)
		} else {
			utils.LogError("SERVER", err)
		}
		return 1
	}
	return 0
}
