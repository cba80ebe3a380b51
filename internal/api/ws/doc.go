// Package ws provides the WebSocket stream of session state changes.
//
// A connected UI shell receives one state_changed message per committed
// tab mutation and re-reads whatever it displays. Slow clients may miss
// intermediate messages; the latest state is always one get_state away.
//
// Message Types (Client → Server):
//   - ping: Keep-alive ping
//   - get_state: Request the full session view
//
// Message Types (Server → Client):
//   - system: Sent once after connecting
//   - state_changed: A tab mutation was committed
//   - state: Full session view
//   - pong: Reply to ping
//   - error: Unknown message type
//
// Example Usage:
//
//	handler := ws.NewHandler(sessionManager, middleware.DefaultCORSConfig(), logger, metrics)
//	router.GET("/stream", handler.HandleConnection)
package ws
