package usecase

import (
	"context"
	"fmt"
	"time"

	channel "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/persistence/repository/port"
)

// RevokeMembershipInput identifies the admin, the private channel and the
// member to remove.
type RevokeMembershipInput struct {
	ActorID      int64
	ChannelID    int64
	TargetUserID int64
}

// RevokeMembershipUseCase force-removes a non-admin member from a private
// channel. The departure is broadcast exactly like a voluntary leave and the
// teardown rule is evaluated the same way.
type RevokeMembershipUseCase struct {
	Repo    repository.ChannelRepository
	Emitter Emitter
}

func NewRevokeMembershipUseCase(repo repository.ChannelRepository, em Emitter) *RevokeMembershipUseCase {
	return &RevokeMembershipUseCase{Repo: repo, Emitter: em}
}

func (uc *RevokeMembershipUseCase) Execute(ctx context.Context, in RevokeMembershipInput) (*DepartureResult, error) {
	ch, err := uc.Repo.FindChannel(ctx, in.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if ch == nil {
		return nil, channel.ErrChannelNotFound
	}
	if ch.Kind != channel.KindPrivate {
		return nil, channel.ErrNotPrivate
	}

	actor, err := uc.Repo.ActiveMembership(ctx, in.ChannelID, in.ActorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if actor == nil || actor.Role != channel.RoleAdmin {
		return nil, channel.ErrAdminOnly
	}

	target, err := uc.Repo.ActiveMembership(ctx, in.ChannelID, in.TargetUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if target == nil {
		return nil, channel.ErrTargetNotMember
	}
	if target.Role == channel.RoleAdmin {
		return nil, channel.ErrCannotRevokeAdmin
	}

	if err := uc.Repo.DeactivateMembership(ctx, target.ID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	result, err := finalizeDeparture(ctx, uc.Repo, uc.Emitter, ch, *target)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
