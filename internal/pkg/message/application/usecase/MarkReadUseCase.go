package usecase

import (
	"context"
	"fmt"
	"time"

	message "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/message/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/message/persistence/repository/port"
)

// MarkReadInput identifies the message the reader has seen.
type MarkReadInput struct {
	UserID    int64
	MessageID int64
}

// MarkReadResult is the acknowledgement returned to the reader.
type MarkReadResult struct {
	MessageID int64      `json:"messageId"`
	ReadAt    *time.Time `json:"readAt"`
}

// MarkReadUseCase records a read receipt. Repeated calls keep the first read
// timestamp, and a read on an undelivered receipt sets delivery too.
type MarkReadUseCase struct {
	Repo    repository.MessageRepository
	Emitter Emitter
}

func NewMarkReadUseCase(repo repository.MessageRepository, em Emitter) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo, Emitter: em}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) (*MarkReadResult, error) {
	m, err := uc.Repo.FindMessageForMember(ctx, in.MessageID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if m == nil {
		return nil, message.ErrMessageNotFound
	}

	receipt, err := uc.Repo.MarkRead(ctx, in.MessageID, in.UserID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	data := message.ReadData{
		MessageID: in.MessageID,
		ReadBy:    in.UserID,
		ReadAt:    receipt.ReadAt,
	}
	if m.SenderID != in.UserID {
		uc.Emitter.ToUser(m.SenderID, message.EventMessageRead, data)
	}
	// The reader's other devices reconcile their unread state from this.
	uc.Emitter.ToUser(in.UserID, message.EventMessageRead, data)

	return &MarkReadResult{MessageID: in.MessageID, ReadAt: receipt.ReadAt}, nil
}
