// Package snapshot converts the browser state to and from its persisted form.
//
// Encoding only builds plain maps, slices and primitives. Decoding only
// parses: it checks the structure but never validates values. Repairing
// what was decoded is the session restore logic's job.
package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/settings"
	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/tabs"
)

// ErrMalformedSnapshot is returned when stored text cannot be parsed
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Version is the schema version written by Encode
const Version = 1

// Tab entry keys
const (
	KeyTabIndex = "tabIndex"
	KeyPayload  = "payload"
)

// Snapshot is the persisted aggregate
type Snapshot struct {
	Version      int                      `json:"version"`
	SavedAt      string                   `json:"savedAt,omitempty"`
	Tabs         []map[string]interface{} `json:"tabs"`
	CurrentIndex int                      `json:"currentIndex"`
	Settings     interface{}              `json:"settings,omitempty"`
}

// api sorts map keys so equal states produce equal bytes
var api = sonic.ConfigStd

// Encode builds the snapshot for the given state
func Encode(s settings.Settings, ts []tabs.Tab, currentIndex int) Snapshot {
	entries := make([]map[string]interface{}, len(ts))
	for i, t := range ts {
		entries[i] = map[string]interface{}{
			KeyTabIndex: t.Index,
			KeyPayload:  t.Payload.Encode(),
		}
	}
	return Snapshot{
		Version:      Version,
		Tabs:         entries,
		CurrentIndex: currentIndex,
		Settings:     s.Encode(),
	}
}

// Stamp returns a copy of snap with SavedAt set
func (snap Snapshot) Stamp(at time.Time) Snapshot {
	snap.SavedAt = at.UTC().Format(time.RFC3339Nano)
	return snap
}

// Marshal serializes a snapshot to JSON text
func Marshal(snap Snapshot) ([]byte, error) {
	data, err := api.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// Decode parses stored text. Anything that does not have the snapshot's
// shape fails with ErrMalformedSnapshot.
func Decode(raw []byte) (*Snapshot, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedSnapshot)
	}

	var snap Snapshot
	if err := api.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if snap.Tabs == nil {
		return nil, fmt.Errorf("%w: missing tabs", ErrMalformedSnapshot)
	}
	if snap.Version == 0 {
		snap.Version = Version
	}
	return &snap, nil
}

// SettingsSection returns the settings object. ok is false when the
// section is present but is not a JSON object; an absent section yields
// a nil map and ok true.
func (snap *Snapshot) SettingsSection() (map[string]interface{}, bool) {
	switch v := snap.Settings.(type) {
	case nil:
		return nil, true
	case map[string]interface{}:
		return v, true
	default:
		return nil, false
	}
}

// Entry splits a tab entry into its persisted index and payload map
func Entry(m map[string]interface{}) (int, map[string]interface{}, error) {
	if m == nil {
		return 0, nil, errors.New("tab entry is null")
	}
	raw, ok := m[KeyTabIndex]
	if !ok {
		return 0, nil, fmt.Errorf("tab entry missing %s", KeyTabIndex)
	}
	var index int
	switch n := raw.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, nil, fmt.Errorf("tab entry %s is fractional: %v", KeyTabIndex, n)
		}
		index = int(n)
	case int:
		index = n
	default:
		return 0, nil, fmt.Errorf("tab entry %s is %T", KeyTabIndex, raw)
	}

	payload, ok := m[KeyPayload].(map[string]interface{})
	if !ok {
		return 0, nil, fmt.Errorf("tab entry %s is %T", KeyPayload, m[KeyPayload])
	}
	return index, payload, nil
}
