package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	channel "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/persistence/repository/port"
)

// KickInput identifies the voter (or admin), the public channel, the target
// and an optional reason recorded on the resulting ban.
type KickInput struct {
	ActorID      int64
	ChannelID    int64
	TargetUserID int64
	Reason       *string
}

// KickResult reports either a recorded vote or an applied ban.
type KickResult struct {
	Banned bool
	Votes  int
	DepartureResult
}

// KickUseCase implements the consensus removal path for public channels.
// Admins ban immediately; everyone else casts a vote that is tallied from the
// store on every call, and the quorum promotes the votes into a ban attributed
// to no one.
type KickUseCase struct {
	Repo    repository.ChannelRepository
	Emitter Emitter
}

func NewKickUseCase(repo repository.ChannelRepository, em Emitter) *KickUseCase {
	return &KickUseCase{Repo: repo, Emitter: em}
}

func (uc *KickUseCase) Execute(ctx context.Context, in KickInput) (*KickResult, error) {
	if in.TargetUserID == in.ActorID {
		return nil, channel.ErrSelfKick
	}

	ch, err := uc.Repo.FindChannel(ctx, in.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if ch == nil {
		return nil, channel.ErrChannelNotFound
	}
	if ch.Kind != channel.KindPublic {
		return nil, channel.ErrKickNotPublic
	}

	actor, err := uc.Repo.ActiveMembership(ctx, in.ChannelID, in.ActorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if actor == nil {
		return nil, channel.ErrNotMember
	}

	target, err := uc.Repo.ActiveMembership(ctx, in.ChannelID, in.TargetUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if target == nil {
		return nil, channel.ErrTargetNotMember
	}
	if target.Role == channel.RoleAdmin && actor.Role != channel.RoleAdmin {
		return nil, channel.ErrCannotKickAdmin
	}

	ban, err := uc.Repo.ActiveBan(ctx, in.ChannelID, in.TargetUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if ban != nil {
		return nil, channel.ErrAlreadyBanned
	}

	if actor.Role == channel.RoleAdmin {
		departure, err := uc.applyBan(ctx, ch, *target, &in.ActorID, in.Reason)
		if err != nil {
			return nil, err
		}
		return &KickResult{Banned: true, DepartureResult: departure}, nil
	}

	err = uc.Repo.InsertKickVote(ctx, in.ChannelID, in.TargetUserID, in.ActorID)
	if errors.Is(err, channel.ErrDuplicateVote) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	votes, err := uc.Repo.CountKickVotes(ctx, in.ChannelID, in.TargetUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if votes >= channel.VoteThreshold {
		reason := in.Reason
		if reason == nil {
			threshold := channel.ThresholdReason
			reason = &threshold
		}
		departure, err := uc.applyBan(ctx, ch, *target, nil, reason)
		if err != nil {
			return nil, err
		}
		return &KickResult{Banned: true, DepartureResult: departure}, nil
	}

	return &KickResult{Votes: votes}, nil
}

// applyBan is the shared ban application: upsert the ban row (a previously
// lifted ban is refreshed, never duplicated), deactivate the membership,
// clear every outstanding vote against the target and broadcast the
// departure.
func (uc *KickUseCase) applyBan(ctx context.Context, ch *channel.Channel, target channel.Membership, bannedBy *int64, reason *string) (DepartureResult, error) {
	now := time.Now().UTC()

	_, err := uc.Repo.UpsertBan(ctx, channel.Ban{
		ChannelID: ch.ID,
		UserID:    target.UserID,
		BannedBy:  bannedBy,
		Reason:    reason,
		BannedAt:  now,
	})
	if err != nil {
		return DepartureResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := uc.Repo.DeactivateMembership(ctx, target.ID, now); err != nil {
		return DepartureResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := uc.Repo.ClearKickVotes(ctx, ch.ID, target.UserID); err != nil {
		return DepartureResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return finalizeDeparture(ctx, uc.Repo, uc.Emitter, ch, target)
}
