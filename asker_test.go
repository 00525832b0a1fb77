package sitechat_test

import (
	"testing"

	"github.com/fwojciec/sitechat"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeQuestion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"trims surrounding whitespace", "  what is this?  \n", "what is this?"},
		{"replaces newlines with spaces", "first line\nsecond line", "first line second line"},
		{"replaces windows newlines", "first\r\nsecond", "first second"},
		{"empty stays empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sitechat.SanitizeQuestion(tt.question))
		})
	}
}
