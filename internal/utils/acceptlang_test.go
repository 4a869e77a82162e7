package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineLanguage(t *testing.T) {
	supported := []string{"EN", "RO"}
	cases := []struct {
		name   string
		query  string
		accept string
		def    string
		want   string
	}{
		{"query param wins", "ro", "en-US,en;q=0.9", "EN", "RO"},
		{"region subtag dropped", "", "ro-MD", "EN", "RO"},
		{"accept order", "", "en-US,en;q=0.9,ro;q=0.8", "EN", "EN"},
		{"higher q preferred", "", "ro;q=0.9,en;q=0.8", "EN", "RO"},
		{"q zero ignored", "", "ro;q=0,fr", "EN", "EN"},
		{"unsupported query falls through", "fr", "ro", "EN", "RO"},
		{"default fallback", "", "fr-FR,es;q=0.9", "EN", "EN"},
		{"first supported when default unknown", "", "", "DE", "EN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetermineLanguage(tc.query, tc.accept, supported, tc.def))
		})
	}
}

func TestParseQuality(t *testing.T) {
	assert.Equal(t, 0.8, parseQuality("q=0.8"))
	assert.Equal(t, 1.0, parseQuality("level=1"))
	assert.Equal(t, 1.0, parseQuality("q=abc"))
	assert.Equal(t, 0.0, parseQuality(" q = 0 "))
}
