package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	channel "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/persistence/repository/port"
)

// Helpers shared by the join, leave, revoke and kick paths. Counts are always
// recomputed from the store after the mutation; nothing here keeps a tally.

func memberIDs(members []channel.Membership) []int64 {
	return lo.Map(members, func(m channel.Membership, _ int) int64 { return m.UserID })
}

func adminCount(members []channel.Membership) int {
	return lo.CountBy(members, func(m channel.Membership) bool { return m.Role == channel.RoleAdmin })
}

// performJoin runs the public-channel join sequence against an already-loaded
// channel: ban and duplicate checks, reactivate-or-insert, then the
// member_joined / user_joined_channel broadcasts. Returns the recomputed
// member count.
func performJoin(ctx context.Context, repo repository.ChannelRepository, em Emitter, ch *channel.Channel, userID int64) (int, error) {
	if ch.Kind != channel.KindPublic {
		return 0, channel.ErrNotPublic
	}

	ban, err := repo.ActiveBan(ctx, ch.ID, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if ban != nil {
		return 0, channel.ErrBanned
	}

	active, err := repo.ActiveMembership(ctx, ch.ID, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if active != nil {
		return 0, channel.ErrAlreadyMember
	}

	if err := activateMembership(ctx, repo, ch.ID, userID, nil); err != nil {
		return 0, err
	}

	return announceJoin(ctx, repo, em, ch, userID)
}

// activateMembership reactivates a historical membership row when one exists,
// otherwise inserts a fresh member row. An insert losing the race to a
// concurrent join surfaces as ErrAlreadyMember from the store constraint.
func activateMembership(ctx context.Context, repo repository.ChannelRepository, channelID, userID int64, addedBy *int64) error {
	previous, err := repo.InactiveMembership(ctx, channelID, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	now := time.Now().UTC()
	if previous != nil {
		if err := repo.ReactivateMembership(ctx, previous.ID, now, addedBy); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return nil
	}

	err = repo.InsertMembership(ctx, channel.Membership{
		ChannelID: channelID,
		UserID:    userID,
		Role:      channel.RoleMember,
		AddedBy:   addedBy,
		JoinedAt:  now,
	})
	if errors.Is(err, channel.ErrAlreadyMember) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// announceJoin recomputes membership and broadcasts member_joined to every
// active member plus user_joined_channel to the joiner.
func announceJoin(ctx context.Context, repo repository.ChannelRepository, em Emitter, ch *channel.Channel, userID int64) (int, error) {
	members, err := repo.ActiveMembers(ctx, ch.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	role := channel.RoleMember
	for _, m := range members {
		if m.UserID == userID {
			role = m.Role
			break
		}
	}

	joiner, err := repo.FindUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if joiner == nil {
		return 0, channel.ErrUserNotFound
	}

	em.ToUsers(memberIDs(members), channel.EventMemberJoined, channel.MemberJoinedData{
		ChannelID:   ch.ID,
		User:        *joiner,
		Role:        role,
		MemberCount: len(members),
	})
	em.ToUser(userID, channel.EventUserJoinedChannel, channel.UserJoinedChannelData{
		UserID:      userID,
		ChannelID:   ch.ID,
		ChannelName: ch.Name,
	})

	return len(members), nil
}

// DepartureResult reports how a departure resolved: either the channel
// survived with MemberCount remaining members, or the teardown rule fired.
type DepartureResult struct {
	ChannelDeleted bool
	Reason         string
	MemberCount    int
}

// finalizeDeparture recomputes membership after departed was marked inactive
// and applies the teardown rule: a channel with no active members, or whose
// departing admin was the last admin, is deleted and everyone affected gets
// channel_deleted. Otherwise the remaining members get member_left and the
// departed user gets user_left_channel.
func finalizeDeparture(ctx context.Context, repo repository.ChannelRepository, em Emitter, ch *channel.Channel, departed channel.Membership) (DepartureResult, error) {
	remaining, err := repo.ActiveMembers(ctx, ch.ID)
	if err != nil {
		return DepartureResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if len(remaining) == 0 || (departed.Role == channel.RoleAdmin && adminCount(remaining) == 0) {
		reason := channel.TeardownNoMembers
		if len(remaining) > 0 {
			reason = channel.TeardownNoAdmins
		}
		data := channel.ChannelDeletedData{
			ChannelID:   ch.ID,
			ChannelName: ch.Name,
			Reason:      reason,
		}
		em.ToUsers(memberIDs(remaining), channel.EventChannelDeleted, data)
		em.ToUser(departed.UserID, channel.EventChannelDeleted, data)

		if err := repo.DeleteChannel(ctx, ch.ID); err != nil {
			return DepartureResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return DepartureResult{ChannelDeleted: true, Reason: reason}, nil
	}

	em.ToUsers(memberIDs(remaining), channel.EventMemberLeft, channel.MemberLeftData{
		ChannelID:   ch.ID,
		UserID:      departed.UserID,
		MemberCount: len(remaining),
	})
	em.ToUser(departed.UserID, channel.EventUserLeftChannel, channel.UserLeftChannelData{
		UserID:      departed.UserID,
		ChannelID:   ch.ID,
		ChannelName: ch.Name,
	})

	return DepartureResult{MemberCount: len(remaining)}, nil
}
