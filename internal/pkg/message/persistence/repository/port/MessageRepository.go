package repository

import (
	"context"
	"time"

	message "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/message/application/domain"
)

// MessageRepository persists messages and their per-recipient receipts.
//
// Lookups return (nil, nil) when the row does not exist; use cases translate
// absence into their own domain errors.
type MessageRepository interface {
	// ActiveMembership reports whether the user currently belongs to the channel.
	ActiveMembership(ctx context.Context, channelID, userID int64) (bool, error)

	// SaveMessage inserts the message and bumps the channel's last activity
	// timestamp in the same transaction. The returned copy carries the
	// assigned id.
	SaveMessage(ctx context.Context, m message.Message) (message.Message, error)

	// ActiveParticipantIDs lists the user ids of all current channel members.
	ActiveParticipantIDs(ctx context.Context, channelID int64) ([]int64, error)

	// CreateReceipts inserts one receipt per user with the given delivered
	// timestamp and a null read timestamp.
	CreateReceipts(ctx context.Context, messageID int64, userIDs []int64, deliveredAt time.Time) error

	// FindMessageForMember fetches the message only when the user is an
	// active member of its channel.
	FindMessageForMember(ctx context.Context, messageID, userID int64) (*message.Message, error)

	// MarkRead upserts the user's receipt, setting delivered and read
	// timestamps where still null. Existing timestamps are never moved, so
	// repeated calls keep the first read time.
	MarkRead(ctx context.Context, messageID, userID int64, at time.Time) (*message.Receipt, error)

	// MarkDelivered upserts the user's receipt, setting the delivered
	// timestamp where still null.
	MarkDelivered(ctx context.Context, messageID, userID int64, at time.Time) (*message.Receipt, error)

	// FindSender loads the profile block embedded in message payloads.
	FindSender(ctx context.Context, userID int64) (*message.Sender, error)
}
