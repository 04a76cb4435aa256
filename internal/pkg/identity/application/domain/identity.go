package identity

import (
	"errors"
	"strings"
)

// ErrUnauthorized covers missing, malformed, unknown and expired credentials.
var ErrUnauthorized = errors.New("unauthorized")

// Identity is the authenticated principal attached to a connection.
type Identity struct {
	UserID   int64  `json:"userId"`
	NickName string `json:"nickName"`
}

// NormalizeToken undoes the wrappings clients are seen to apply: surrounding
// whitespace, quotes, braces, and any number of "Bearer " prefixes.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	token = strings.Trim(token, `"'{}`)
	token = strings.TrimSpace(token)
	for {
		rest := strings.TrimPrefix(token, "Bearer ")
		if rest == token {
			break
		}
		token = strings.TrimSpace(rest)
	}
	return token
}
