package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Parse flags (override env vars)
	port := flag.String("port", cfg.Server.Port, "Server port")
	storage := flag.String("storage", cfg.Storage.Driver, "Storage driver (memory, file, sqlite)")
	storagePath := flag.String("storage-path", cfg.Storage.Path, "Storage directory or database file")
	engines := flag.String("engines", cfg.Session.SearchEnginesFile, "Search engine registry file (.yaml or .toml)")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Storage.Driver = *storage
	cfg.Storage.Path = *storagePath
	cfg.Session.SearchEnginesFile = *engines
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	// Create server
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
	case err := <-errChan:
		log.Printf("Server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Close(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
		os.Exit(1)
	}
}
