package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	channel "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/persistence/repository/port"
)

// UpdateChannelInput carries the admin edit. Nil fields are left untouched;
// an empty description clears it.
type UpdateChannelInput struct {
	ActorID     int64
	ChannelID   int64
	Name        *string
	Description *string
}

// UpdateChannelUseCase lets an admin rename a channel or edit its description.
type UpdateChannelUseCase struct {
	Repo    repository.ChannelRepository
	Emitter Emitter
}

func NewUpdateChannelUseCase(repo repository.ChannelRepository, em Emitter) *UpdateChannelUseCase {
	return &UpdateChannelUseCase{Repo: repo, Emitter: em}
}

func (uc *UpdateChannelUseCase) Execute(ctx context.Context, in UpdateChannelInput) (*channel.Channel, error) {
	membership, err := uc.Repo.ActiveMembership(ctx, in.ChannelID, in.ActorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if membership == nil || membership.Role != channel.RoleAdmin {
		return nil, channel.ErrAdminOnly
	}

	ch, err := uc.Repo.FindChannel(ctx, in.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if ch == nil {
		return nil, channel.ErrChannelNotFound
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, channel.ErrNameRequired
		}
		if name != ch.Name {
			existing, err := uc.Repo.FindChannelByName(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
			}
			if existing != nil && existing.ID != ch.ID {
				return nil, channel.ErrNameTaken
			}
			ch.Name = name
		}
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			ch.Description = nil
		} else {
			ch.Description = &description
		}
	}

	err = uc.Repo.UpdateChannel(ctx, *ch)
	if errors.Is(err, channel.ErrNameTaken) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	members, err := uc.Repo.ActiveMembers(ctx, ch.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	uc.Emitter.ToUsers(memberIDs(members), channel.EventChannelUpdated, channel.ChannelUpdatedData{Channel: *ch})

	return ch, nil
}
