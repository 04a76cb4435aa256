package usecase

import (
	"context"
	"fmt"
	"time"

	message "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/message/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/message/persistence/repository/port"
)

// MarkDeliveredInput identifies the message a client has received.
type MarkDeliveredInput struct {
	UserID    int64
	MessageID int64
}

// MarkDeliveredResult is the acknowledgement returned to the recipient.
type MarkDeliveredResult struct {
	MessageID   int64      `json:"messageId"`
	DeliveredAt *time.Time `json:"deliveredAt"`
}

// MarkDeliveredUseCase confirms delivery, typically after a reconnect when a
// client catches up on messages sent while it was offline.
type MarkDeliveredUseCase struct {
	Repo    repository.MessageRepository
	Emitter Emitter
}

func NewMarkDeliveredUseCase(repo repository.MessageRepository, em Emitter) *MarkDeliveredUseCase {
	return &MarkDeliveredUseCase{Repo: repo, Emitter: em}
}

func (uc *MarkDeliveredUseCase) Execute(ctx context.Context, in MarkDeliveredInput) (*MarkDeliveredResult, error) {
	m, err := uc.Repo.FindMessageForMember(ctx, in.MessageID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if m == nil {
		return nil, message.ErrMessageNotFound
	}

	receipt, err := uc.Repo.MarkDelivered(ctx, in.MessageID, in.UserID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if m.SenderID != in.UserID {
		uc.Emitter.ToUser(m.SenderID, message.EventMessageDelivered, message.DeliveredData{
			MessageID:   in.MessageID,
			DeliveredTo: in.UserID,
			DeliveredAt: receipt.DeliveredAt,
		})
	}

	return &MarkDeliveredResult{MessageID: in.MessageID, DeliveredAt: receipt.DeliveredAt}, nil
}
