package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	channel "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/persistence/repository/port"
)

// JoinByNameInput identifies the user and the channel name to join or create.
type JoinByNameInput struct {
	UserID int64
	Name   string
}

// JoinByNameResult distinguishes the three outcomes: a brand-new channel, a
// no-op for an existing membership, or a regular join.
type JoinByNameResult struct {
	Channel       *channel.Channel
	Created       bool
	AlreadyJoined bool
	MemberCount   int
}

// JoinByNameUseCase looks a channel up by display name; when none exists it
// creates a public one owned by the caller, otherwise it behaves like a join.
type JoinByNameUseCase struct {
	Repo    repository.ChannelRepository
	Emitter Emitter
}

func NewJoinByNameUseCase(repo repository.ChannelRepository, em Emitter) *JoinByNameUseCase {
	return &JoinByNameUseCase{Repo: repo, Emitter: em}
}

func (uc *JoinByNameUseCase) Execute(ctx context.Context, in JoinByNameInput) (*JoinByNameResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, channel.ErrNameRequired
	}

	ch, err := uc.Repo.FindChannelByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if ch == nil {
		created, err := uc.createOwned(ctx, name, in.UserID)
		if errors.Is(err, channel.ErrNameTaken) {
			// Lost the creation race; the channel exists now, so fall
			// through to the join path.
			ch, err = uc.Repo.FindChannelByName(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
			}
			if ch == nil {
				return nil, channel.ErrChannelNotFound
			}
		} else if err != nil {
			return nil, err
		} else {
			uc.Emitter.ToUser(in.UserID, channel.EventUserJoinedChannel, channel.UserJoinedChannelData{
				UserID:      in.UserID,
				ChannelID:   created.ID,
				ChannelName: created.Name,
			})
			return &JoinByNameResult{Channel: created, Created: true, MemberCount: 1}, nil
		}
	}

	active, err := uc.Repo.ActiveMembership(ctx, ch.ID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if active != nil {
		uc.Emitter.ToUser(in.UserID, channel.EventUserJoinedChannel, channel.UserJoinedChannelData{
			UserID:      in.UserID,
			ChannelID:   ch.ID,
			ChannelName: ch.Name,
		})
		return &JoinByNameResult{Channel: ch, AlreadyJoined: true}, nil
	}

	count, err := performJoin(ctx, uc.Repo, uc.Emitter, ch, in.UserID)
	if err != nil {
		return nil, err
	}
	return &JoinByNameResult{Channel: ch, MemberCount: count}, nil
}

func (uc *JoinByNameUseCase) createOwned(ctx context.Context, name string, userID int64) (*channel.Channel, error) {
	ch, err := channel.NewChannel(channel.KindPublic, name, nil, userID)
	if err != nil {
		return nil, err
	}

	created, err := uc.Repo.CreateChannel(ctx, ch)
	if errors.Is(err, channel.ErrNameTaken) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	err = uc.Repo.InsertMembership(ctx, channel.Membership{
		ChannelID: created.ID,
		UserID:    userID,
		Role:      channel.RoleAdmin,
		JoinedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &created, nil
}
