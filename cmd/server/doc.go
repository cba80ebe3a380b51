// Package main is the entry point for the browser session server.
//
// The server keeps a browser's tabs and settings in memory, persists them
// with debounced writes and restores them on startup. A UI shell drives it
// over HTTP and follows changes over a WebSocket stream.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# File store under /var/lib/browser
//	./server -port 8000 -storage file -storage-path /var/lib/browser
//
//	# SQLite store with a custom search-engine list
//	./server -storage sqlite -storage-path ./session.db -engines engines.yaml
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown, final snapshot written
package main
