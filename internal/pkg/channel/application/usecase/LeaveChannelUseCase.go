package usecase

import (
	"context"
	"fmt"
	"time"

	channel "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/persistence/repository/port"
)

// LeaveChannelInput identifies the departing member.
type LeaveChannelInput struct {
	UserID    int64
	ChannelID int64
}

// LeaveChannelUseCase marks the membership inactive and evaluates the
// teardown rule.
type LeaveChannelUseCase struct {
	Repo    repository.ChannelRepository
	Emitter Emitter
}

func NewLeaveChannelUseCase(repo repository.ChannelRepository, em Emitter) *LeaveChannelUseCase {
	return &LeaveChannelUseCase{Repo: repo, Emitter: em}
}

func (uc *LeaveChannelUseCase) Execute(ctx context.Context, in LeaveChannelInput) (*DepartureResult, error) {
	membership, err := uc.Repo.ActiveMembership(ctx, in.ChannelID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if membership == nil {
		return nil, channel.ErrNotMember
	}

	ch, err := uc.Repo.FindChannel(ctx, in.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if ch == nil {
		return nil, channel.ErrChannelNotFound
	}

	if err := uc.Repo.DeactivateMembership(ctx, membership.ID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	result, err := finalizeDeparture(ctx, uc.Repo, uc.Emitter, ch, *membership)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
