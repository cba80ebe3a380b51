// Package server wires the browser session service together.
//
// This package orchestrates all components:
//   - Configuration, logging, Prometheus metrics and request tracing
//   - Search-engine registry and snapshot store
//   - Session manager, restored before any route is served
//   - HTTP routing with Gin, WebSocket stream and middleware stack
//
// Server Lifecycle:
//  1. Validate configuration
//  2. Initialize logger, metrics registry and tracer
//  3. Load the search-engine registry
//  4. Open the store and restore the session
//  5. Setup HTTP routes and middleware
//  6. Start HTTP server
//  7. Graceful shutdown: stop serving, write the final snapshot, close the store
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go srv.Run()
//	defer srv.Close(ctx)
package server
