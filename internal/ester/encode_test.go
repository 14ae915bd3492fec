package ester

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeNonASCII(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"estonian vowels", "Sõda ja rahu", "S{u00F5}da ja rahu"},
		{"plain ascii unchanged", "war and peace", "war and peace"},
		{"multiple escapes", "Tõde ja õigus", "T{u00F5}de ja {u00F5}igus"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EscapeNonASCII(tt.input))
		})
	}
}

func TestSqueeze(t *testing.T) {
	assert.Equal(t, "a b c", Squeeze("a  b   c"))
	assert.Equal(t, "a b", Squeeze("a \t b"))
	assert.Equal(t, "ab", Squeeze("ab"))
}

func TestNormalizeDashes(t *testing.T) {
	assert.Equal(t, "1984-2024", NormalizeDashes("1984–2024"))
	assert.Equal(t, "a-b", NormalizeDashes("a—b"))
	assert.Equal(t, "a-b", NormalizeDashes("a-b"))
}

func TestStripControl(t *testing.T) {
	// soft hyphen and zero-width space are format characters
	assert.Equal(t, "romaan", StripControl("ro­ma​an"))
	assert.Equal(t, "ab", StripControl("a\x00b"))
	assert.Equal(t, "clean", StripControl("clean"))
}

func TestQueryEscapeKeepsBraces(t *testing.T) {
	assert.Equal(t, "S{u00F5}da+ja+rahu", queryEscape("S{u00F5}da ja rahu"))
	assert.Equal(t, "a%26b", queryEscape("a&b"))
}
