package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storyforge/internal/util"
	"storyforge/pkg/ai"
	"storyforge/services/story/internal/app"
	"storyforge/services/story/internal/config"
	"storyforge/services/story/internal/server"
)

func main() {
	cfg, err := config.Load(os.Getenv("STORY_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)
	trusted, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	gemini, err := ai.NewGeminiClient(ai.GeminiConfig{
		APIKey:   cfg.GeminiAPIKey,
		Endpoint: cfg.GeminiEndpoint,
		Timeout:  cfg.UpstreamTimeout(),
	})
	if err != nil {
		log.Fatalf("failed to init gemini client: %v", err)
	}

	appCore, err := app.New(app.Config{Generator: gemini})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:                 appCore,
		RelayUpstreamStatus: cfg.RelayUpstreamStatus,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		TrustedProxies:      trusted,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	// Generation can legitimately run for the whole upstream timeout.
	writeTimeout := time.Duration(0)
	if t := cfg.UpstreamTimeout(); t > 0 {
		writeTimeout = t + 10*time.Second
	}
	addr := cfg.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpServer.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("story server listening", "addr", addr, "relay_upstream_status", cfg.RelayUpstreamStatus)
	if err := util.Serve(ctx, srv, cfg.ShutdownTimeout()); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
	logger.Info("story server stopped")
}
