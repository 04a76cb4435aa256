package usecase

import (
	"context"
	"fmt"

	channel "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/persistence/repository/port"
)

// JoinChannelInput identifies the user and the public channel to join.
type JoinChannelInput struct {
	UserID    int64
	ChannelID int64
}

// JoinResult carries the recomputed member count after a successful join.
type JoinResult struct {
	MemberCount int
}

// JoinChannelUseCase admits a user into a public channel, reactivating a
// historical membership when one exists.
type JoinChannelUseCase struct {
	Repo    repository.ChannelRepository
	Emitter Emitter
}

func NewJoinChannelUseCase(repo repository.ChannelRepository, em Emitter) *JoinChannelUseCase {
	return &JoinChannelUseCase{Repo: repo, Emitter: em}
}

func (uc *JoinChannelUseCase) Execute(ctx context.Context, in JoinChannelInput) (*JoinResult, error) {
	ch, err := uc.Repo.FindChannel(ctx, in.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if ch == nil {
		return nil, channel.ErrChannelNotFound
	}

	count, err := performJoin(ctx, uc.Repo, uc.Emitter, ch, in.UserID)
	if err != nil {
		return nil, err
	}
	return &JoinResult{MemberCount: count}, nil
}
