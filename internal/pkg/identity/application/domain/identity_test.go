package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeToken(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "abc123", "abc123"},
		{"surrounding whitespace", "  abc123\n", "abc123"},
		{"bearer prefix", "Bearer abc123", "abc123"},
		{"repeated bearer prefixes", "Bearer Bearer abc123", "abc123"},
		{"double quoted", `"abc123"`, "abc123"},
		{"single quoted", "'abc123'", "abc123"},
		{"braced", "{abc123}", "abc123"},
		{"quoted bearer", `"Bearer abc123"`, "abc123"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NormalizeToken(tc.raw))
		})
	}
}
