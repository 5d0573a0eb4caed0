package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"short message", "What is phishing?", "What is phishing?"},
		{"long message truncated", strings.Repeat("a", 50), strings.Repeat("a", 30)},
		{"whitespace collapsed", "  How   do I\nstay safe?  ", "How do I stay safe?"},
		{"multibyte runes kept whole", strings.Repeat("စ", 40), strings.Repeat("စ", 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, deriveTitle(tt.input))
		})
	}
}
