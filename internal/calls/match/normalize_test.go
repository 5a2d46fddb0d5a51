package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"formatted US number with country code", "+1 (615) 555-0100", "6155550100", true},
		{"bare ten digits", "6155550100", "6155550100", true},
		{"eleven digits leading one", "16155550100", "6155550100", true},
		{"eleven digits not starting with one", "26155550100", "26155550100", true},
		{"international twelve digits", "+31612345678", "31612345678", true},
		{"seven digit local number too short", "555-0100", "", false},
		{"nine digits too short", "615555010", "", false},
		{"empty string", "", "", false},
		{"letters only", "call me", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIsPure(t *testing.T) {
	first, ok1 := Normalize("+1 (615) 555-0100")
	second, ok2 := Normalize("+1 (615) 555-0100")
	assert.Equal(t, first, second)
	assert.Equal(t, ok1, ok2)
}
