package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/novucs/local-bigquery/internal/app"
	"github.com/novucs/local-bigquery/internal/common"
	"github.com/novucs/local-bigquery/internal/server"
)

var (
	// Command-line flags
	configFile   = flag.String("config", "", "Configuration file path")
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP  = flag.Int("p", 0, "Server port (shorthand, overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	dataDir      = flag.String("data-dir", "", "Data directory (overrides config)")
	project      = flag.String("project", "", "Default project name (overrides config)")
	replMode     = flag.Bool("repl", false, "Start an interactive SQL shell instead of the server")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func main() {
	// Crash protection: write a crash report before exiting on panic
	common.InstallCrashHandler("")
	defer common.RecoverWithCrashFile()

	// Parse command-line flags
	flag.Parse()

	// Handle version flag
	if *showVersion || *showVersionV {
		fmt.Printf("local-bigquery version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Merge port flags (shorthand takes precedence)
	finalPort := *serverPort
	if *serverPortP != 0 {
		finalPort = *serverPortP
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner
	var err error

	// Auto-discover config file if not specified
	path := *configFile
	if path == "" {
		if _, err := os.Stat("local-bigquery.toml"); err == nil {
			path = "local-bigquery.toml"
		}
	}

	config, err = common.LoadFromFile(path)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Str("path", path).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	// 2. Apply command-line flag overrides (highest priority)
	common.ApplyFlagOverrides(config, finalPort, *serverHost, *dataDir, *project)

	// 3. Initialize logger with final configuration
	logger = common.InitLogger(config)

	if *replMode {
		// The REPL owns stdout; keep log noise out of it
		runREPL(config, logger)
		return
	}

	// 4. Print banner
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Str("config_file", path).
		Int("port", config.Server.Port).
		Str("host", config.Server.Host).
		Str("data_dir", config.Storage.DataDir).
		Msg("Application configuration loaded")

	// Initialize application
	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	// Create HTTP server
	srv := server.New(application)

	// Start server in goroutine
	go func() {
		defer func() {
			if r := recover(); r != nil {
				common.WriteCrashFile(r, common.GetStackTrace())
				logger.Fatal().Str("panic", fmt.Sprintf("%v", r)).Msg("Server goroutine panicked")
			}
		}()

		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Give goroutine a moment to start
	time.Sleep(100 * time.Millisecond)

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Msg("Server ready - Press Ctrl+C to stop")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("Interrupt signal received")

	// Graceful shutdown
	logger.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
}
