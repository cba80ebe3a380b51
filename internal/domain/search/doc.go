// Package search holds the ordered search-engine registry.
//
// The registry is externally supplied: either the built-in list or a YAML or
// TOML file of the form
//
//	engines:
//	  - name: DuckDuckGo
//	    keyword: ddg
//	    search_url: https://duckduckgo.com/?q={query}
//
// Browser settings refer to an engine only by its position, so the order of
// the file is significant.
package search
