package usecase

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	presence "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/presence/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/presence/persistence/repository/port"
)

// Emitter pushes events to users' personal topics.
type Emitter interface {
	ToUser(userID int64, eventType string, data any)
	ToUsers(userIDs []int64, eventType string, data any)
}

// SetStatusInput describes one presence transition. Broadcast false persists
// the preference without notifying anyone.
type SetStatusInput struct {
	UserID    int64
	Status    presence.Status
	Broadcast bool
}

// SetStatusResult echoes the applied status.
type SetStatusResult struct {
	Status presence.Status `json:"status"`
}

// SetStatusUseCase persists a presence transition and, when broadcasting,
// notifies every distinct active co-member. Tearing down live connections on
// an explicit offline is the gateway's job, after it has acknowledged the
// operation.
type SetStatusUseCase struct {
	Repo    repository.PresenceRepository
	Emitter Emitter
}

func NewSetStatusUseCase(repo repository.PresenceRepository, em Emitter) *SetStatusUseCase {
	return &SetStatusUseCase{Repo: repo, Emitter: em}
}

func (uc *SetStatusUseCase) Execute(ctx context.Context, in SetStatusInput) (*SetStatusResult, error) {
	if !in.Status.Valid() {
		return nil, presence.ErrInvalidStatus
	}

	current, err := uc.Repo.UserStatus(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if current != nil && *current == in.Status {
		return &SetStatusResult{Status: in.Status}, nil
	}

	if err := uc.Repo.SetUserStatus(ctx, in.UserID, in.Status); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if in.Broadcast {
		audience, err := uc.Repo.AudienceFor(ctx, in.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		uc.Emitter.ToUsers(lo.Uniq(audience), presence.EventUserStatusChanged, presence.StatusChangedData{
			UserID: in.UserID,
			Status: in.Status,
		})
	}

	return &SetStatusResult{Status: in.Status}, nil
}
