// Command engine-server runs the block-driven decision engine behind an
// HTTP/websocket API, wiring config, logging, secrets, persistence and
// auth around one *engine.Engine the way the teacher's main.go wires its
// bot around one exchange client.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"blockengine/config"
	"blockengine/internal/api"
	"blockengine/internal/auth"
	"blockengine/internal/engine"
	"blockengine/internal/events"
	"blockengine/internal/logging"
	"blockengine/internal/persistence"
	"blockengine/internal/secrets"
	"blockengine/internal/tradingwindow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(&logging.Config{
		Level:       cfg.LoggingConfig.Level,
		Output:      cfg.LoggingConfig.Output,
		Component:   "engine-server",
		IncludeFile: cfg.LoggingConfig.IncludeFile,
		JSONFormat:  cfg.LoggingConfig.JSONFormat,
	})
	logging.SetDefault(logger)
	logger.Info("starting engine-server")

	secretsClient, err := secrets.NewClient(cfg.VaultConfig)
	if err != nil {
		logger.Fatal("failed to initialize secrets client", "error", err)
	}
	if !cfg.VaultConfig.Enabled {
		secretsClient.Seed(secrets.Credentials{
			JWTSecret:     cfg.AuthConfig.JWTSecret,
			PostgresDSN:   cfg.PostgresConfig.DSN,
			RedisPassword: cfg.RedisConfig.Password,
		})
	}
	creds, err := secretsClient.Fetch(context.Background())
	if err != nil {
		logger.Fatal("failed to fetch startup secrets", "error", err)
	}

	eng := engine.New(cfg.ToEngineConfig())
	eventBus := events.NewEventBus()
	window := tradingwindow.FromConfig(cfg.TradingWindowConfig)

	var authService *auth.Service
	if cfg.AuthConfig.Enabled {
		jwtManager := auth.NewJWTManager(creds.JWTSecret, cfg.AuthConfig.AccessTokenDuration)
		passwordManager := auth.NewPasswordManager(auth.DefaultBcryptCost, auth.MinPasswordLength)
		authService = auth.NewService(jwtManager, passwordManager, cfg.AuthConfig.OperatorUser, cfg.AuthConfig.OperatorPasswordHash)
		logger.Info("auth enabled", "operator", cfg.AuthConfig.OperatorUser)
	}

	var redisStore *persistence.RedisStore
	if cfg.RedisConfig.Enabled {
		redisCfg := cfg.RedisConfig
		redisCfg.Password = creds.RedisPassword
		redisStore = persistence.NewRedisStore(redisCfg)
		if !redisStore.Healthy() {
			logger.Warn("redis snapshot cache unreachable at startup, continuing degraded")
		}
	}

	var pgStore *persistence.PGStore
	if cfg.PostgresConfig.Enabled {
		dsn := cfg.PostgresConfig.DSN
		if creds.PostgresDSN != "" {
			dsn = creds.PostgresDSN
		}
		pgStore, err = persistence.NewPGStore(context.Background(), dsn)
		if err != nil {
			logger.Fatal("failed to connect to postgres", "error", err)
		}
	}

	serverCfg := api.ServerConfig{
		Port:           cfg.ServerConfig.Port,
		Host:           cfg.ServerConfig.Host,
		ProductionMode: cfg.LoggingConfig.Level != "debug",
		AllowedOrigins: splitOrigins(cfg.ServerConfig.AllowedOrigins),
	}
	server := api.NewServer(serverCfg, eng, eventBus, window, authService, redisStore, pgStore)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("server failed", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down engine-server")

	shutdownTimeout := time.Duration(cfg.ServerConfig.ShutdownTimeout) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down server", "error", err)
	}
	if pgStore != nil {
		pgStore.Close()
	}
	if redisStore != nil {
		if err := redisStore.Close(); err != nil {
			logger.Error("error closing redis store", "error", err)
		}
	}

	logger.Info("engine-server stopped")
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
