package usecase

import (
	"context"
	"fmt"
	"time"

	message "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/message/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/message/persistence/repository/port"
)

// SendMessageInput carries one outbound message.
type SendMessageInput struct {
	SenderID  int64
	ChannelID int64
	Content   string
	ReplyToID *int64
}

// SendMessageUseCase persists the message, seeds one receipt per active
// participant and fans the payload out to every participant's personal topic.
type SendMessageUseCase struct {
	Repo    repository.MessageRepository
	Emitter Emitter
}

func NewSendMessageUseCase(repo repository.MessageRepository, em Emitter) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Emitter: em}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*message.Payload, error) {
	m, err := message.NewMessage(in.ChannelID, in.SenderID, in.Content, in.ReplyToID)
	if err != nil {
		return nil, err
	}

	member, err := uc.Repo.ActiveMembership(ctx, in.ChannelID, in.SenderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !member {
		return nil, message.ErrNotMember
	}

	m, err = uc.Repo.SaveMessage(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Receipt rows are cut for the membership as of send time. Users joining
	// later never get one for this message.
	participants, err := uc.Repo.ActiveParticipantIDs(ctx, in.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	deliveredAt := time.Now().UTC()
	if err := uc.Repo.CreateReceipts(ctx, m.ID, participants, deliveredAt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	sender, err := uc.Repo.FindSender(ctx, in.SenderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if sender == nil {
		sender = &message.Sender{ID: in.SenderID}
	}

	payload := &message.Payload{
		ID:        m.ID,
		Content:   m.Content,
		SenderID:  m.SenderID,
		Sender:    *sender,
		ChannelID: m.ChannelID,
		ReplyToID: m.ReplyToID,
		CreatedAt: m.CreatedAt,
		Status: message.DeliveryStatus{
			Sent:        true,
			Delivered:   true,
			DeliveredAt: &deliveredAt,
		},
	}

	uc.Emitter.ToUsers(participants, message.EventNewMessage, payload)
	return payload, nil
}
