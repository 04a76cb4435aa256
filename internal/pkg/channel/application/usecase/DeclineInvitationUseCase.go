package usecase

import (
	"context"
	"fmt"
	"time"

	channel "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/persistence/repository/port"
)

// DeclineInvitationInput identifies the invitation from the invited user's side.
type DeclineInvitationInput struct {
	UserID       int64
	InvitationID int64
}

// DeclineInvitationUseCase marks a pending invitation rejected and notifies
// the inviter.
type DeclineInvitationUseCase struct {
	Repo    repository.ChannelRepository
	Emitter Emitter
}

func NewDeclineInvitationUseCase(repo repository.ChannelRepository, em Emitter) *DeclineInvitationUseCase {
	return &DeclineInvitationUseCase{Repo: repo, Emitter: em}
}

func (uc *DeclineInvitationUseCase) Execute(ctx context.Context, in DeclineInvitationInput) error {
	invitation, err := uc.Repo.PendingInvitation(ctx, in.InvitationID, in.UserID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if invitation == nil {
		return channel.ErrInvitationNotFound
	}

	if err := uc.Repo.MarkInvitation(ctx, invitation.ID, channel.InvitationRejected, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	ch, err := uc.Repo.FindChannel(ctx, invitation.ChannelID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	declined, err := uc.Repo.FindUser(ctx, in.UserID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if ch != nil && declined != nil {
		uc.Emitter.ToUser(invitation.InvitedBy, channel.EventInvitationDeclined, channel.InvitationAnsweredData{
			InvitationID:  invitation.ID,
			ChannelID:     invitation.ChannelID,
			ChannelName:   ch.Name,
			UserID:        declined.ID,
			UserNickName:  declined.NickName,
			UserFirstName: declined.FirstName,
			UserLastName:  declined.LastName,
		})
	}

	return nil
}
