package refcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateMatchesPattern(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := Generate()
		assert.Regexp(t, Pattern, code)
		seen[code] = true
	}
	// 100 üretimde çakışma beklemek makul değil
	assert.Greater(t, len(seen), 95)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare code", "REF-1A2B3C4D", "REF-1A2B3C4D"},
		{"lowercase", "ref-1a2b3c4d", "REF-1A2B3C4D"},
		{"whitespace", "  REF-1A2B3C4D \n", "REF-1A2B3C4D"},
		{"full url", "https://kayit.link/check-in/auto/REF-1A2B3C4D", "REF-1A2B3C4D"},
		{"url with query", "https://kayit.link/check-in/auto/REF-1A2B3C4D?src=qr", "REF-1A2B3C4D"},
		{"url with fragment", "https://kayit.link/check-in/auto/REF-1A2B3C4D#top", "REF-1A2B3C4D"},
		{"url trailing slash", "https://kayit.link/check-in/auto/REF-1A2B3C4D/", "REF-1A2B3C4D"},
		{"relative path", "/check-in/auto/ref-1a2b3c4d", "REF-1A2B3C4D"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
		{"garbage passes through", "hello world", "HELLO WORLD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}
