// Package settings defines the browser-wide settings record.
//
// Settings is a plain value: copying it yields an independent instance, and
// "changing" a setting means replacing the whole record. The chosen search
// engine is stored as its position in the search registry.
package settings

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/search"
)

var (
	ErrInvalidSearchEngineIndex = errors.New("invalid search engine index")
	ErrInvalidSettings          = errors.New("invalid settings encoding")
)

// Encoding keys
const (
	KeySearchEngine     = "searchEngine"
	KeyDebuggingEnabled = "debuggingEnabled"
)

// Settings holds browser-wide preferences
type Settings struct {
	SearchEngine     int  `json:"searchEngine"`
	DebuggingEnabled bool `json:"debuggingEnabled"`
}

// Default returns the settings used when nothing valid was persisted
func Default() Settings {
	return Settings{SearchEngine: 0, DebuggingEnabled: false}
}

// Copy returns a value-equal independent instance
func (s Settings) Copy() Settings {
	return s
}

// WithSearchEngine returns a copy selecting engine index i
func (s Settings) WithSearchEngine(i int) Settings {
	s.SearchEngine = i
	return s
}

// WithDebugging returns a copy with debugging toggled
func (s Settings) WithDebugging(enabled bool) Settings {
	s.DebuggingEnabled = enabled
	return s
}

// Validate checks the engine index against the registry
func (s Settings) Validate(reg *search.Registry) error {
	if _, err := reg.At(s.SearchEngine); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSearchEngineIndex, err)
	}
	return nil
}

// Engine resolves the selected engine
func (s Settings) Engine(reg *search.Registry) (search.Engine, error) {
	e, err := reg.At(s.SearchEngine)
	if err != nil {
		return search.Engine{}, fmt.Errorf("%w: %v", ErrInvalidSearchEngineIndex, err)
	}
	return e, nil
}

// Encode returns the persisted map form
func (s Settings) Encode() map[string]interface{} {
	return map[string]interface{}{
		KeySearchEngine:     s.SearchEngine,
		KeyDebuggingEnabled: s.DebuggingEnabled,
	}
}

// Decode rebuilds settings from their map form. A nil map yields (nil, nil):
// the section was absent. A missing debugging flag defaults to false.
func Decode(m map[string]interface{}, reg *search.Registry) (*Settings, error) {
	if m == nil {
		return nil, nil
	}

	raw, ok := m[KeySearchEngine]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidSettings, KeySearchEngine)
	}
	index, ok := toInt(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T", ErrInvalidSettings, KeySearchEngine, raw)
	}

	s := Settings{SearchEngine: index}
	if err := s.Validate(reg); err != nil {
		return nil, err
	}

	if raw, ok := m[KeyDebuggingEnabled]; ok && raw != nil {
		enabled, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s is %T", ErrInvalidSettings, KeyDebuggingEnabled, raw)
		}
		s.DebuggingEnabled = enabled
	}

	return &s, nil
}

// toInt accepts the numeric shapes a JSON decoder or a caller may produce.
// Fractional values are rejected.
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
