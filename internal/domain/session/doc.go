// Package session provides the browser session: open tabs, the current
// tab and browser-wide settings, kept persisted in a store.
//
// Components:
//   - Manager: owns the tab collection and settings, serializes mutations
//   - Scheduler: debounces and coalesces snapshot writes
//   - Restore: rebuilds the session from the persisted snapshot at startup
//
// Persistence:
//
// Every committed mutation encodes a snapshot and hands it to the
// Scheduler. A request arriving at least the save window after the previous
// one is written immediately; anything sooner arms a timer, and a burst of
// requests collapses into one deferred write of the last state.
//
// Restoration Process:
//  1. Read the snapshot stored under the session key
//  2. Decode settings, falling back to defaults when absent or invalid
//  3. Decode every tab entry; any bad entry keeps the default state
//  4. Sort by persisted tab index and append as one batch
//  5. Select min(currentIndex, len-1)
//
// Example Usage:
//
//	manager := session.NewManager(st, session.Options{Logger: logger})
//	result := manager.Restore(ctx)
//	manager.OpenTab(ctx, tabs.NewPage("https://example.com", "Example"))
//	defer manager.Shutdown(ctx)
package session
