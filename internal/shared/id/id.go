// Package id provides ID generation for the browser session service.
//
// IDs are prefixed ULIDs (tab_*, sess_*, trace_*), so they sort by creation time and
// read well in logs. Tabs are addressed by position in the API; the ID only
// gives each page payload a stable identity across renumbering and restarts.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TabID identifies a tab payload
type TabID string

// SessionID identifies one running browser session
type SessionID string

const (
	TabPrefix     = "tab"
	SessionPrefix = "sess"
	TracePrefix   = "trace"
	SpanPrefix    = "span"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for deterministic IDs in tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewTabID generates a new tab ID
func NewTabID() TabID {
	return TabID(Default().GenerateWithPrefix(TabPrefix))
}

// NewSessionID generates a new session ID
func NewSessionID() SessionID {
	return SessionID(Default().GenerateWithPrefix(SessionPrefix))
}

// NewTraceID generates an ID for a request trace
func NewTraceID() string {
	return Default().GenerateWithPrefix(TracePrefix)
}

// NewSpanID generates an ID for one span of a trace
func NewSpanID() string {
	return Default().GenerateWithPrefix(SpanPrefix)
}

func (id TabID) String() string     { return string(id) }
func (id SessionID) String() string { return string(id) }

// IsValid reports whether s is a ULID, with or without a type prefix
func IsValid(s string) bool {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	_, err := ulid.Parse(s)
	return err == nil
}

// Timestamp extracts the creation time from a (possibly prefixed) ULID
func Timestamp(s string) (time.Time, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	parsed, err := ulid.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
