package tabs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	r := NewResolver("https://duckduckgo.com/?q=")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare word becomes search", "openai", "https://duckduckgo.com/?q=openai"},
		{"spaced phrase becomes search", "how to disappear", "https://duckduckgo.com/?q=how+to+disappear"},
		{"dotted phrase with space still searches", "what is example.com", "https://duckduckgo.com/?q=what+is+example.com"},
		{"bare host gets https", "example.com", "https://example.com"},
		{"host with path gets https", "example.com/path", "https://example.com/path"},
		{"explicit http passes through", "http://x.com", "http://x.com"},
		{"explicit https passes through", "https://x.com/a?b=c", "https://x.com/a?b=c"},
		{"surrounding whitespace trimmed", "  example.com  ", "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.input))
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := NewResolver("https://duckduckgo.com/?q=")
	assert.Equal(t, r.Resolve("privacy tools"), r.Resolve("privacy tools"))
}

func TestHostname(t *testing.T) {
	assert.Equal(t, "example.com", Hostname("https://example.com/a/b"))
	assert.Equal(t, "sub.example.com", Hostname("http://sub.example.com"))
	assert.Equal(t, "not a url", Hostname("not a url"))
}
