package repository

import (
	"context"

	presence "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/presence/application/domain"
)

// PresenceRepository reads and writes user presence state.
type PresenceRepository interface {
	// UserStatus returns the stored status, or (nil, nil) for an unknown user.
	UserStatus(ctx context.Context, userID int64) (*presence.Status, error)

	// SetUserStatus persists the status.
	SetUserStatus(ctx context.Context, userID int64, status presence.Status) error

	// AudienceFor lists the distinct active co-members across all of the
	// user's active channels, the user excluded.
	AudienceFor(ctx context.Context, userID int64) ([]int64, error)
}
