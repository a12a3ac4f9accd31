package tabs

import (
	"net/url"
	"strings"
)

// Resolver classifies free-text address-bar input into a direct URL or a
// search query. Pure and deterministic; no network access.
type Resolver struct {
	searchURL string
}

// NewResolver creates a resolver building search URLs on the given
// engine prefix (e.g. "https://duckduckgo.com/?q=").
func NewResolver(searchURL string) *Resolver {
	return &Resolver{searchURL: searchURL}
}

// Resolve turns input into a navigable URL. Input with no dot or with an
// embedded space is treated as a search query; scheme-less host input
// gets https:// prepended; anything else passes through unchanged.
func (r *Resolver) Resolve(input string) string {
	trimmed := strings.TrimSpace(input)

	if !strings.Contains(trimmed, ".") || strings.Contains(trimmed, " ") {
		return r.searchURL + url.QueryEscape(trimmed)
	}

	if !hasScheme(trimmed) {
		return "https://" + trimmed
	}

	return trimmed
}

func hasScheme(s string) bool {
	return strings.Contains(s, "://")
}

// Hostname extracts the display host from a resolved URL; falls back to
// the raw string when it does not parse.
func Hostname(resolved string) string {
	parsed, err := url.Parse(resolved)
	if err != nil || parsed.Hostname() == "" {
		return resolved
	}
	return parsed.Hostname()
}
