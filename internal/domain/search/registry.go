package search

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

var (
	ErrIndexOutOfRange   = errors.New("search engine index out of range")
	ErrEmptyRegistry     = errors.New("search engine registry is empty")
	ErrUnsupportedFormat = errors.New("unsupported registry file format")
)

// QueryPlaceholder is replaced by the escaped query in Engine.SearchURL
const QueryPlaceholder = "{query}"

// Engine describes a search engine
type Engine struct {
	Name       string `json:"name" yaml:"name" toml:"name"`
	Keyword    string `json:"keyword,omitempty" yaml:"keyword" toml:"keyword"`
	SearchURL  string `json:"search_url" yaml:"search_url" toml:"search_url"`
	SuggestURL string `json:"suggest_url,omitempty" yaml:"suggest_url" toml:"suggest_url"`
}

// QueryURL expands the engine's search URL for query
func (e Engine) QueryURL(query string) string {
	return strings.ReplaceAll(e.SearchURL, QueryPlaceholder, url.QueryEscape(query))
}

// Registry is an ordered, immutable list of engines. Settings reference
// engines only by their position in this list.
type Registry struct {
	engines []Engine
}

// registryFile is the on-disk layout for YAML and TOML registries
type registryFile struct {
	Engines []Engine `yaml:"engines" toml:"engines"`
}

// NewRegistry creates a registry from engines. The slice is copied.
func NewRegistry(engines []Engine) (*Registry, error) {
	if len(engines) == 0 {
		return nil, ErrEmptyRegistry
	}
	for i, e := range engines {
		if e.Name == "" {
			return nil, fmt.Errorf("engine %d: missing name", i)
		}
		if !strings.Contains(e.SearchURL, QueryPlaceholder) {
			return nil, fmt.Errorf("engine %q: search_url must contain %s", e.Name, QueryPlaceholder)
		}
	}
	return &Registry{engines: append([]Engine(nil), engines...)}, nil
}

// Default returns the built-in registry
func Default() *Registry {
	return &Registry{engines: []Engine{
		{Name: "Google", Keyword: "g", SearchURL: "https://www.google.com/search?q={query}", SuggestURL: "https://suggestqueries.google.com/complete/search?client=firefox&q={query}"},
		{Name: "DuckDuckGo", Keyword: "ddg", SearchURL: "https://duckduckgo.com/?q={query}", SuggestURL: "https://duckduckgo.com/ac/?q={query}&type=list"},
		{Name: "Bing", Keyword: "b", SearchURL: "https://www.bing.com/search?q={query}"},
		{Name: "Startpage", Keyword: "sp", SearchURL: "https://www.startpage.com/do/search?q={query}"},
		{Name: "Brave", Keyword: "br", SearchURL: "https://search.brave.com/search?q={query}"},
	}}
}

// Load reads a registry from a .yaml/.yml or .toml file
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var file registryFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	case ".toml":
		err = toml.Unmarshal(data, &file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}

	return NewRegistry(file.Engines)
}

// LoadOrDefault loads path, or returns the built-in registry when path is empty
func LoadOrDefault(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// At returns the engine at index i
func (r *Registry) At(i int) (Engine, error) {
	if i < 0 || i >= len(r.engines) {
		return Engine{}, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(r.engines))
	}
	return r.engines[i], nil
}

// Len returns the number of engines
func (r *Registry) Len() int {
	return len(r.engines)
}

// All returns a copy of the engines in order
func (r *Registry) All() []Engine {
	return append([]Engine(nil), r.engines...)
}

// IndexOf returns the position of the engine with the given name or keyword, or -1
func (r *Registry) IndexOf(nameOrKeyword string) int {
	for i, e := range r.engines {
		if strings.EqualFold(e.Name, nameOrKeyword) || (e.Keyword != "" && e.Keyword == nameOrKeyword) {
			return i
		}
	}
	return -1
}
