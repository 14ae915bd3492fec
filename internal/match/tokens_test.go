package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestASCIIFold(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"estonian diacritics", "Sõda ja rahu", "soda ja rahu"},
		{"mixed case", "TÕDE ja Õigus", "tode ja oigus"},
		{"french accents", "Saint-Exupéry", "saint-exupery"},
		{"already plain", "dune", "dune"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ASCIIFold(tt.input))
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]bool
	}{
		{
			name:     "punctuation separates",
			input:    "Sõda ja rahu : romaan",
			expected: map[string]bool{"soda": true, "ja": true, "rahu": true, "romaan": true},
		},
		{
			name:     "duplicates collapse",
			input:    "war and war",
			expected: map[string]bool{"war": true, "and": true},
		},
		{
			name:     "digits survive",
			input:    "Fahrenheit 451",
			expected: map[string]bool{"fahrenheit": true, "451": true},
		},
		{
			name:     "only punctuation",
			input:    "...!?",
			expected: map[string]bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.input))
		})
	}
}

func TestStripTrailingParens(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Dune (Dune, #1)", "Dune"},
		{"The Shining", "The Shining"},
		{"Foundation (Foundation #1) ", "Foundation"},
		{"(untitled)", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripTrailingParens(tt.input))
		})
	}
}

func TestSurname(t *testing.T) {
	tests := []struct {
		name     string
		author   string
		expected string
	}{
		{"comma convention", "Tolstoi, Lev", "tolstoi"},
		{"natural order", "Frank Herbert", "herbert"},
		{"single name", "Homeros", "homeros"},
		{"hyphenated with comma", "Saint-Exupéry, Antoine de", "saint-exupery"},
		{"empty", "", ""},
		{"comma only", ",", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Surname(tt.author))
		})
	}
}
