// OneDragon agent server hosts the multi-session agent runtime and
// exposes it over an HTTP API.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/one-dragon/onedragon-agent/pkg/api"
	"github.com/one-dragon/onedragon-agent/pkg/config"
	"github.com/one-dragon/onedragon-agent/pkg/runtime"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	envFile := flag.String("env-file", ".env", "Path to environment file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		slog.Warn("Could not load env file, continuing with existing environment",
			"path", *envFile, "error", err)
	}

	addr := getEnv("ODA_LISTEN_ADDR", ":8080")
	cfg := config.FromEnv()

	slog.Info("Starting OneDragon agent server",
		"addr", addr, "storage", string(cfg.Storage))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A nil runner factory makes Start fall back to the loopback echo
	// runner; production deployments wire a real engine here.
	rt := runtime.NewContext(cfg, nil)
	if err := rt.Start(ctx); err != nil {
		slog.Error("Failed to start runtime context", "error", err)
		os.Exit(1)
	}

	server := api.NewServer(rt)
	if err := server.Run(ctx, addr); err != nil {
		slog.Error("HTTP server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rt.Stop(shutdownCtx)
	slog.Info("Shutdown complete")
}
