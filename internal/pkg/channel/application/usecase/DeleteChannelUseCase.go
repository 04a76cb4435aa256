package usecase

import (
	"context"
	"fmt"

	channel "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/persistence/repository/port"
)

// DeleteChannelInput identifies the channel and the acting admin.
type DeleteChannelInput struct {
	ActorID   int64
	ChannelID int64
}

// DeleteChannelUseCase removes a channel on explicit admin request and
// notifies its active members.
type DeleteChannelUseCase struct {
	Repo    repository.ChannelRepository
	Emitter Emitter
}

func NewDeleteChannelUseCase(repo repository.ChannelRepository, em Emitter) *DeleteChannelUseCase {
	return &DeleteChannelUseCase{Repo: repo, Emitter: em}
}

func (uc *DeleteChannelUseCase) Execute(ctx context.Context, in DeleteChannelInput) error {
	membership, err := uc.Repo.ActiveMembership(ctx, in.ChannelID, in.ActorID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if membership == nil || membership.Role != channel.RoleAdmin {
		return channel.ErrAdminOnly
	}

	ch, err := uc.Repo.FindChannel(ctx, in.ChannelID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if ch == nil {
		return channel.ErrChannelNotFound
	}

	members, err := uc.Repo.ActiveMembers(ctx, ch.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	uc.Emitter.ToUsers(memberIDs(members), channel.EventChannelDeleted, channel.ChannelDeletedData{
		ChannelID:   ch.ID,
		ChannelName: ch.Name,
		Reason:      channel.TeardownDeletedByAdmin,
	})

	if err := uc.Repo.DeleteChannel(ctx, ch.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
