package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	channel "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/persistence/repository/port"
)

// CreateChannelInput carries the data needed to open a new channel.
type CreateChannelInput struct {
	ActorID     int64
	Kind        channel.Kind
	Name        string
	Description *string
}

// CreateChannelUseCase creates a channel and makes its creator the first admin.
type CreateChannelUseCase struct {
	Repo repository.ChannelRepository
}

func NewCreateChannelUseCase(repo repository.ChannelRepository) *CreateChannelUseCase {
	return &CreateChannelUseCase{Repo: repo}
}

// Execute persists the channel and the owner's admin membership. A name
// collision, whether seen by the lookup or raced into the unique index,
// resolves to ErrNameTaken.
func (uc *CreateChannelUseCase) Execute(ctx context.Context, in CreateChannelInput) (*channel.Channel, error) {
	ch, err := channel.NewChannel(in.Kind, in.Name, in.Description, in.ActorID)
	if err != nil {
		return nil, err
	}

	existing, err := uc.Repo.FindChannelByName(ctx, ch.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if existing != nil {
		return nil, channel.ErrNameTaken
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
		UserID:    in.ActorID,
		Role:      channel.RoleAdmin,
		JoinedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &created, nil
}
