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

// InviteInput identifies the inviting member, the channel and the target user.
type InviteInput struct {
	ActorID      int64
	ChannelID    int64
	TargetUserID int64
}

// InviteUseCase issues a pending invitation. Any member may invite to a
// public channel; private channels are admin-invite-only. When the target is
// banned and the actor is an admin, the invitation implicitly lifts the ban
// and clears outstanding kick votes.
type InviteUseCase struct {
	Repo    repository.ChannelRepository
	Emitter Emitter
}

func NewInviteUseCase(repo repository.ChannelRepository, em Emitter) *InviteUseCase {
	return &InviteUseCase{Repo: repo, Emitter: em}
}

func (uc *InviteUseCase) Execute(ctx context.Context, in InviteInput) (*channel.Invitation, error) {
	if in.TargetUserID == in.ActorID {
		return nil, channel.ErrSelfInvite
	}

	actor, err := uc.Repo.ActiveMembership(ctx, in.ChannelID, in.ActorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if actor == nil {
		return nil, channel.ErrNotMember
	}

	ch, err := uc.Repo.FindChannel(ctx, in.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if ch == nil {
		return nil, channel.ErrChannelNotFound
	}
	if ch.Kind == channel.KindPrivate && actor.Role != channel.RoleAdmin {
		return nil, channel.ErrAdminOnly
	}

	invited, err := uc.Repo.FindUser(ctx, in.TargetUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if invited == nil {
		return nil, channel.ErrUserNotFound
	}

	existing, err := uc.Repo.ActiveMembership(ctx, in.ChannelID, in.TargetUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if existing != nil {
		return nil, channel.ErrAlreadyMember
	}

	ban, err := uc.Repo.ActiveBan(ctx, in.ChannelID, in.TargetUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if ban != nil {
		if actor.Role != channel.RoleAdmin {
			return nil, channel.ErrBanLiftAdminOnly
		}
		if err := uc.Repo.LiftBan(ctx, ban.ID, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if err := uc.Repo.ClearKickVotes(ctx, in.ChannelID, in.TargetUserID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	now := time.Now().UTC()
	expiresAt := now.Add(channel.DefaultInvitationTTL)
	invitation, err := uc.Repo.CreateInvitation(ctx, channel.Invitation{
		ChannelID:     in.ChannelID,
		InvitedUserID: in.TargetUserID,
		InvitedBy:     in.ActorID,
		Status:        channel.InvitationPending,
		ExpiresAt:     &expiresAt,
		CreatedAt:     now,
	})
	if errors.Is(err, channel.ErrPendingInvitationExists) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	inviter, err := uc.Repo.FindUser(ctx, in.ActorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if inviter != nil {
		uc.Emitter.ToUser(in.TargetUserID, channel.EventInvitationReceived, channel.InvitationReceivedData{
			InvitationID:       invitation.ID,
			ChannelID:          ch.ID,
			ChannelName:        ch.Name,
			ChannelType:        ch.Kind,
			ChannelDescription: ch.Description,
			InviterID:          inviter.ID,
			InviterNickName:    inviter.NickName,
			InviterFirstName:   inviter.FirstName,
			InviterLastName:    inviter.LastName,
			InviterEmail:       inviter.Email,
			CreatedAt:          invitation.CreatedAt,
			ExpiresAt:          invitation.ExpiresAt,
		})
	}

	return &invitation, nil
}

// ExecuteByName resolves a nickname to a user id before delegating to Execute.
func (uc *InviteUseCase) ExecuteByName(ctx context.Context, actorID, channelID int64, nickName string) (*channel.Invitation, error) {
	nickName = strings.TrimSpace(nickName)
	if nickName == "" {
		return nil, channel.ErrUserNotFound
	}

	target, err := uc.Repo.FindUserByNick(ctx, nickName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if target == nil {
		return nil, channel.ErrUserNotFound
	}

	return uc.Execute(ctx, InviteInput{ActorID: actorID, ChannelID: channelID, TargetUserID: target.ID})
}
