package usecase

import (
	"context"
	"fmt"
	"time"

	channel "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/persistence/repository/port"
)

// AcceptInvitationInput identifies the invitation from the invited user's side.
type AcceptInvitationInput struct {
	UserID       int64
	InvitationID int64
}

// AcceptInvitationUseCase turns a pending invitation into an active
// membership. The ban check is repeated here defensively: a ban issued after
// the invite must still keep the user out.
type AcceptInvitationUseCase struct {
	Repo    repository.ChannelRepository
	Emitter Emitter
}

func NewAcceptInvitationUseCase(repo repository.ChannelRepository, em Emitter) *AcceptInvitationUseCase {
	return &AcceptInvitationUseCase{Repo: repo, Emitter: em}
}

func (uc *AcceptInvitationUseCase) Execute(ctx context.Context, in AcceptInvitationInput) (*JoinResult, error) {
	invitation, err := uc.Repo.PendingInvitation(ctx, in.InvitationID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if invitation == nil {
		return nil, channel.ErrInvitationNotFound
	}

	ch, err := uc.Repo.FindChannel(ctx, invitation.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if ch == nil {
		return nil, channel.ErrChannelNotFound
	}

	ban, err := uc.Repo.ActiveBan(ctx, invitation.ChannelID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if ban != nil {
		return nil, channel.ErrBanned
	}

	now := time.Now().UTC()

	existing, err := uc.Repo.ActiveMembership(ctx, invitation.ChannelID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if existing != nil {
		// The invitation is settled either way.
		if err := uc.Repo.MarkInvitation(ctx, invitation.ID, channel.InvitationAccepted, now); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return nil, channel.ErrAlreadyMember
	}

	inviter := invitation.InvitedBy
	if err := activateMembership(ctx, uc.Repo, invitation.ChannelID, in.UserID, &inviter); err != nil {
		return nil, err
	}

	if err := uc.Repo.MarkInvitation(ctx, invitation.ID, channel.InvitationAccepted, now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	count, err := announceJoin(ctx, uc.Repo, uc.Emitter, ch, in.UserID)
	if err != nil {
		return nil, err
	}

	accepted, err := uc.Repo.FindUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if accepted != nil {
		uc.Emitter.ToUser(invitation.InvitedBy, channel.EventInvitationAccepted, channel.InvitationAnsweredData{
			InvitationID:  invitation.ID,
			ChannelID:     invitation.ChannelID,
			ChannelName:   ch.Name,
			UserID:        accepted.ID,
			UserNickName:  accepted.NickName,
			UserFirstName: accepted.FirstName,
			UserLastName:  accepted.LastName,
		})
	}

	return &JoinResult{MemberCount: count}, nil
}
