package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shakeplot/shakeplot/internal/backend"
	"github.com/shakeplot/shakeplot/internal/core"
	"github.com/shakeplot/shakeplot/internal/logging"
)

func getConfigPath() string {
	// First check if config path is provided via environment variable
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}

	// Default to config.yaml in current working directory
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return filepath.Join(cwd, "config.yaml")
}

// loadConfig reads the config file when present and falls back to the
// defaults when the default path holds none. A CONFIG_PATH that cannot be
// read is fatal: the operator asked for that file.
func loadConfig() *core.ServiceConfig {
	configPath := getConfigPath()
	config, err := core.LoadConfig(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && os.Getenv("CONFIG_PATH") == "" {
			logging.Info().Str("path", configPath).Msg("no config file found, using defaults")
			return core.DefaultConfig()
		}
		logging.Fatal().Err(err).Str("path", configPath).Msg("failed to load config")
	}
	return config
}

func main() {
	config := loadConfig()
	logging.Init(config.Logging)

	coreService := core.NewCoreService(config)
	server := backend.NewServer(config)

	apiService := backend.NewAPIService(config, coreService)
	apiService.SetRoutes(server)

	address := config.Address()
	logging.Info().
		Str("address", address).
		Strs("macro_types", coreService.MacroTypes()).
		Msg("starting server")

	// Start HTTP server in a goroutine to allow graceful shutdown
	go func() {
		if err := server.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("http server error")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logging.Err(err).Msg("server shutdown error")
	}
}
