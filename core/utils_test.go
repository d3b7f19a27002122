package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_CleanString(t *testing.T) {
	assert.Equal(t, "awe", CleanString("  awe "))
	assert.Equal(t, "Awe", CleanString("  Awe "))
	assert.Equal(t, "awe@test.cd", CleanString(" AWE@Test.cd ", true))
}

func Test_SanitizeSet(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil", input: nil, want: []string{}},
		{name: "blanks dropped", input: []string{"", "  ", "Math"}, want: []string{"Math"}},
		{name: "trimmed dupes collapse", input: []string{"Math", " Math", "", "CS"}, want: []string{"Math", "CS"}},
		{name: "first occurrence wins", input: []string{"CS", "Math", "CS"}, want: []string{"CS", "Math"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeSet(tt.input))
		})
	}
}
