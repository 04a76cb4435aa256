package usecase

import (
	"context"
	"fmt"

	presence "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/presence/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/presence/persistence/repository/port"
)

// ConnectionLifecycleUseCase maps socket attach/detach to presence
// transitions. The gateway calls Connected on the first session and
// Disconnected after the last one closes.
type ConnectionLifecycleUseCase struct {
	Repo      repository.PresenceRepository
	SetStatus *SetStatusUseCase
}

func NewConnectionLifecycleUseCase(repo repository.PresenceRepository, set *SetStatusUseCase) *ConnectionLifecycleUseCase {
	return &ConnectionLifecycleUseCase{Repo: repo, SetStatus: set}
}

// Connected promotes the user to online unless they chose dnd.
func (uc *ConnectionLifecycleUseCase) Connected(ctx context.Context, userID int64) error {
	current, err := uc.Repo.UserStatus(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if current != nil && *current == presence.StatusDnd {
		return nil
	}
	_, err = uc.SetStatus.Execute(ctx, SetStatusInput{
		UserID:    userID,
		Status:    presence.StatusOnline,
		Broadcast: true,
	})
	return err
}

// Disconnected demotes an online user to offline with a broadcast. A dnd or
// offline preference is left untouched.
func (uc *ConnectionLifecycleUseCase) Disconnected(ctx context.Context, userID int64) error {
	current, err := uc.Repo.UserStatus(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if current == nil || *current != presence.StatusOnline {
		return nil
	}
	_, err = uc.SetStatus.Execute(ctx, SetStatusInput{
		UserID:    userID,
		Status:    presence.StatusOffline,
		Broadcast: true,
	})
	return err
}
