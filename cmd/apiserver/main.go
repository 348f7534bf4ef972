// API server entry point for molscreen.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/molscreen/molscreen/internal/config"
	"github.com/molscreen/molscreen/internal/infrastructure/logging"
	"github.com/molscreen/molscreen/internal/infrastructure/metrics"
	"github.com/molscreen/molscreen/internal/ingest"
	httpserver "github.com/molscreen/molscreen/internal/interfaces/http"
	"github.com/molscreen/molscreen/internal/interfaces/http/handlers"
	"github.com/molscreen/molscreen/internal/interfaces/http/middleware"
	"github.com/molscreen/molscreen/internal/screening"
	"github.com/molscreen/molscreen/pkg/client"
)

const defaultConfigPath = "configs/config.yaml"

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	gitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: []string{cfg.Log.Output},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	logger.Info("starting molscreen API server",
		logging.String("version", version),
		logging.String("commit", gitCommit),
		logging.Int("port", cfg.Server.Port),
		logging.String("predictor", cfg.Predictor.BaseURL),
	)

	m := metrics.New()

	clientOpts := []client.Option{
		client.WithUserAgent("molscreen-apiserver/" + version),
	}
	if cfg.Predictor.Timeout > 0 {
		clientOpts = append(clientOpts, client.WithTimeout(cfg.Predictor.Timeout))
	}
	predClient, err := client.NewClient(cfg.Predictor.BaseURL, clientOpts...)
	if err != nil {
		logger.Fatal("failed to construct prediction client", logging.Err(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := screening.NewStore(cfg.Session.TTL, logger)
	store.StartSweeper(ctx, cfg.Session.TTL/2)

	service := screening.NewService(
		logger,
		ingest.NewNormalizer(logger),
		screening.NewClientPredictor(predClient),
		store,
		m.Screening,
	)

	sessionMw := middleware.NewSessionMiddleware(
		sessionSecret(cfg, logger),
		cfg.Session.CookieName,
		cfg.Session.TTL,
		logger,
	)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		ScreeningHandler:  handlers.NewScreeningHandler(service, cfg.Input.MaxUploadBytes, m.Screening, logger),
		HealthHandler:     handlers.NewHealthHandler(version),
		SessionMiddleware: sessionMw,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		Logger:            logger,
		Metrics:           m,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server failed", logging.Err(err))
		}
	case sig := <-quit:
		logger.Info("received shutdown signal", logging.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown failed", logging.Err(err))
	}
}

// loadConfig reads the config file when present, otherwise falls back to
// environment variables and defaults.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

// sessionSecret returns the configured cookie secret, or a random one when
// unset.  A random secret invalidates existing sessions on restart, which
// is acceptable for purely ephemeral state.
func sessionSecret(cfg *config.Config, logger logging.Logger) []byte {
	if cfg.Session.Secret != "" {
		return []byte(cfg.Session.Secret)
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		logger.Fatal("failed to generate session secret", logging.Err(err))
	}
	logger.Warn("session.secret not set, using a random secret; sessions will not survive restarts")
	return secret
}
