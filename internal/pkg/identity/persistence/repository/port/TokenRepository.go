package repository

import (
	"context"
	"time"

	identity "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/identity/application/domain"
)

// TokenRepository resolves access-token hashes to identities.
type TokenRepository interface {
	// IdentityByTokenHash resolves a sha256 token hash to its owner, skipping
	// expired tokens. Returns (nil, nil) when no live token matches.
	IdentityByTokenHash(ctx context.Context, hash string, now time.Time) (*identity.Identity, error)

	// TouchToken stamps the token's last activity time.
	TouchToken(ctx context.Context, hash string, at time.Time) error
}
