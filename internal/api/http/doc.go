// Package http provides HTTP handlers and routing for the browser session API.
//
// This package implements all HTTP endpoints using the Gin framework, so a
// UI shell can drive the session: open, select and close tabs, change
// settings and force or inspect persistence.
//
// Endpoints:
//   - Health: / and /health
//   - Session: /session, /session/flush, /session/restore
//   - Tabs: /tabs, /tabs/batch, /tabs/:index/select, /tabs/:index
//   - Settings: /settings, /search-engines
//
// Status Codes:
//   - 404: tab index out of range
//   - 400: malformed body or index, invalid search engine
//   - 500: flush failed
//
// Example Usage:
//
//	handlers := http.NewHandlers(sessionManager)
//	handlers.Register(router)
package http
