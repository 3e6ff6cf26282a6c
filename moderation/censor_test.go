package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const maskingRune = '*'

// The dictionary uses specific words to avoid partial collisions
// (e.g. "he" inside "The").
func TestCensor_Apply(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake", "mushroom"}
	censor, err := NewCensor(dictionary, maskingRune)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		masked   bool
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
			masked:   true,
		},
		{
			name:     "Multiple occurrences",
			input:    "badger badger badger",
			expected: "****** ****** ******",
			masked:   true,
		},
		{
			name:     "Leet speak and internal punctuation",
			input:    "Look at B.4.d.g.€r !",
			expected: "Look at ********** !",
			masked:   true,
		},
		{
			name:     "Clean input untouched",
			input:    "nothing to see here",
			expected: "nothing to see here",
			masked:   false,
		},
		{
			name:     "Empty input",
			input:    "",
			expected: "",
			masked:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, masked := censor.Apply(tt.input)
			require.Equal(t, tt.expected, got)
			require.Equal(t, tt.masked, masked)
		})
	}
}

func TestCensor_UppercaseAndNoise(t *testing.T) {
	req := require.New(t)
	censor, err := NewCensor([]string{"badger", "snake"}, maskingRune)
	req.NoError(err)

	got, masked := censor.Apply("S-N-A-K-E is a B.A.D.G.E.R")
	req.True(masked)
	req.Equal("********* is a ***********", got)
}
