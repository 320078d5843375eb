package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Raw", `{"a": 1}`, `{"a": 1}`},
		{"JSONFence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"BareFence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Whitespace", "  \n{\"a\": 1}\n ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}
