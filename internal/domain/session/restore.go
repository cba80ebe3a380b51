package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/settings"
	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/snapshot"
	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/tabs"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/store"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/tracing"
)

// ErrInvalidTabEntry is returned when a persisted tab cannot be rebuilt
var ErrInvalidTabEntry = errors.New("invalid tab entry")

// Restore outcomes, also used as metric labels
const (
	OutcomeRestored  = "restored"
	OutcomeEmpty     = "empty"
	OutcomeMalformed = "malformed"
	OutcomeFailed    = "failed"
)

// RestoreResult reports what Restore did. Restore itself never fails: when
// Restored is false the session kept its default state and Reason says why.
type RestoreResult struct {
	Restored bool   `json:"restored"`
	Outcome  string `json:"outcome"`
	Tabs     int    `json:"tabs"`
	Current  int    `json:"current_index"`
	Reason   string `json:"reason,omitempty"`
}

// plan is a fully decoded snapshot, ready to apply
type plan struct {
	settings settings.Settings
	payloads []tabs.Payload
	current  int
}

type indexedPayload struct {
	index   int
	payload tabs.Payload
}

// Restore loads the persisted snapshot and applies it. It never schedules a
// save of its own; a save still queued from before is dropped when the
// restore succeeds.
func (m *Manager) Restore(ctx context.Context) RestoreResult {
	var span *tracing.Span
	if m.tracer != nil {
		span, ctx = m.tracer.StartSpan(ctx, "session.restore")
	}

	result := m.restore(ctx)

	if span != nil {
		span.SetTag("outcome", result.Outcome)
		if result.Outcome == OutcomeMalformed || result.Outcome == OutcomeFailed {
			span.SetError(errors.New(result.Reason))
		}
		span.Finish()
		m.tracer.Submit(span)
	}

	if m.metrics != nil {
		m.metrics.RecordRestore(result.Outcome)
	}

	if result.Restored {
		m.logger.Info("Session restored",
			zap.Int("tabs", result.Tabs),
			zap.Int("current_index", result.Current),
		)
	} else {
		m.logger.Warn("Session not restored, keeping default state",
			zap.String("outcome", result.Outcome),
			zap.String("reason", result.Reason),
		)
		m.mu.Lock()
		result.Tabs = m.tabs.Len()
		result.Current = m.tabs.Current()
		m.mu.Unlock()
	}
	return result
}

// restore holds m.mu throughout, so no mutation lands between reading the
// store and replacing the state. A save queued before the restore belongs
// to the state being replaced: it is dropped on success and handed back to
// the scheduler otherwise.
func (m *Manager) restore(ctx context.Context) RestoreResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	held := m.scheduler.discard()
	result := m.load(ctx)
	if result.Restored {
		m.revision++
		if held != nil {
			m.logger.Debug("Dropped save superseded by restore", zap.Uint64("revision", held.rev))
		}
	} else if held != nil {
		m.persist(tracing.WithSpan(ctx, held.trace, ""), pendingSave{revision: held.rev, data: held.data})
	}
	return result
}

// load reads, decodes and applies the stored snapshot. Caller holds m.mu.
func (m *Manager) load(ctx context.Context) RestoreResult {
	raw, err := m.store.Get(ctx, m.key)
	if errors.Is(err, store.ErrNotFound) {
		return RestoreResult{Outcome: OutcomeEmpty, Reason: "no saved session"}
	}
	if err != nil {
		return RestoreResult{Outcome: OutcomeFailed, Reason: err.Error()}
	}

	snap, err := snapshot.Decode(raw)
	if err != nil {
		return RestoreResult{Outcome: OutcomeMalformed, Reason: err.Error()}
	}

	p, err := m.plan(snap)
	if err != nil {
		return RestoreResult{Outcome: OutcomeFailed, Reason: err.Error()}
	}

	m.tabs.Clear()
	m.tabs.AppendBatch(p.payloads)
	if p.current >= 0 {
		// In range by construction
		_ = m.tabs.SelectAt(p.current)
	}
	m.settings = p.settings

	now := time.Now()
	m.lastRestored = &now
	if m.metrics != nil {
		m.metrics.RecordTabMutation("restore", m.tabs.Len())
	}

	return RestoreResult{
		Restored: true,
		Outcome:  OutcomeRestored,
		Tabs:     m.tabs.Len(),
		Current:  m.tabs.Current(),
	}
}

// plan decodes everything up front so a bad entry never touches live state
func (m *Manager) plan(snap *snapshot.Snapshot) (*plan, error) {
	st := settings.Default()
	section, ok := snap.SettingsSection()
	if !ok {
		m.logger.Warn("Persisted settings are not an object, using defaults")
	}
	decoded, err := settings.Decode(section, m.registry)
	switch {
	case err != nil:
		m.logger.Warn("Persisted settings invalid, using defaults", zap.Error(err))
	case decoded != nil:
		st = *decoded
	}

	entries := make([]indexedPayload, 0, len(snap.Tabs))
	for i, e := range snap.Tabs {
		index, payloadMap, err := snapshot.Entry(e)
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrInvalidTabEntry, i, err)
		}
		payload, err := m.codec.Decode(payloadMap)
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrInvalidTabEntry, i, err)
		}
		entries = append(entries, indexedPayload{index: index, payload: payload})
	}

	if len(entries) == 0 {
		entries = append(entries, indexedPayload{payload: m.codec.New()})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].index < entries[j].index
	})

	payloads := make([]tabs.Payload, len(entries))
	for i, e := range entries {
		payloads[i] = e.payload
	}

	current := snap.CurrentIndex
	if current > len(payloads)-1 {
		current = len(payloads) - 1
	}

	return &plan{settings: st, payloads: payloads, current: current}, nil
}
