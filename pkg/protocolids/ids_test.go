package protocolids

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		id   string
		ok   bool
	}{
		{"hello", Hello, true},
		{"noise", Noise, true},
		{"yamux", Yamux, true},
		{"empty", "", false},
		{"no slash", "hello/1.0.0", false},
		{"newline", "/hello\n", false},
		{"max", "/" + strings.Repeat("a", maxLength-1), true},
		{"too long", "/" + strings.Repeat("a", maxLength), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidProtocolID)
			}
		})
	}
}
