package usecase

import (
	"context"
	"fmt"
	"time"

	channel "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/persistence/repository/port"
)

// SweepInactiveChannelsUseCase removes channels whose last activity predates
// the cutoff. Active members are told before the channel disappears.
type SweepInactiveChannelsUseCase struct {
	Repo    repository.ChannelRepository
	Emitter Emitter
}

func NewSweepInactiveChannelsUseCase(repo repository.ChannelRepository, em Emitter) *SweepInactiveChannelsUseCase {
	return &SweepInactiveChannelsUseCase{Repo: repo, Emitter: em}
}

// Execute deletes every channel inactive since cutoff and returns how many
// were removed. A failure on one channel aborts the sweep; the next run picks
// up where this one stopped.
func (uc *SweepInactiveChannelsUseCase) Execute(ctx context.Context, cutoff time.Time) (int, error) {
	stale, err := uc.Repo.ChannelsInactiveSince(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	removed := 0
	for _, ch := range stale {
		members, err := uc.Repo.ActiveMembers(ctx, ch.ID)
		if err != nil {
			return removed, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		uc.Emitter.ToUsers(memberIDs(members), channel.EventChannelDeleted, channel.ChannelDeletedData{
			ChannelID:   ch.ID,
			ChannelName: ch.Name,
			Reason:      channel.TeardownInactivity,
		})
		if err := uc.Repo.DeleteChannel(ctx, ch.ID); err != nil {
			return removed, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		removed++
	}
	return removed, nil
}
