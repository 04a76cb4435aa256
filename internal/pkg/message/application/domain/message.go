package message

import (
	"errors"
	"strings"
	"time"
)

// Domain-level errors for the message pipeline.
var (
	ErrEmptyContent    = errors.New("message content required")
	ErrNotMember       = errors.New("not a member")
	ErrMessageNotFound = errors.New("message not found")
)

// Event types pushed to personal topics by the message pipeline.
const (
	EventNewMessage       = "new_message"
	EventMessageRead      = "message_read"
	EventMessageDelivered = "message_delivered"
)

// Message is an immutable log entry in a channel. Edits and deletion are not
// part of this pipeline.
type Message struct {
	ID        int64     `db:"id"`
	ChannelID int64     `db:"channel_id"`
	SenderID  int64     `db:"sender_id"`
	Content   string    `db:"content"`
	ReplyToID *int64    `db:"reply_to_id"`
	CreatedAt time.Time `db:"created_at"`
}

// NewMessage validates and normalizes an outbound message.
func NewMessage(channelID, senderID int64, content string, replyToID *int64) (Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, ErrEmptyContent
	}
	return Message{
		ChannelID: channelID,
		SenderID:  senderID,
		Content:   content,
		ReplyToID: replyToID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Receipt is the per-recipient delivered/read record of one message. One row
// exists per participant active at send time, the sender included, so a user's
// other devices reconcile state through the same rows. Read implies delivered.
type Receipt struct {
	UserID      int64      `db:"user_id"`
	MessageID   int64      `db:"message_id"`
	DeliveredAt *time.Time `db:"delivered_at"`
	ReadAt      *time.Time `db:"read_at"`
}

// Sender is the profile block embedded in the new_message payload.
type Sender struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	NickName string `json:"nickName"`
}

// DeliveryStatus summarizes the sender-side view of a freshly sent message.
type DeliveryStatus struct {
	Sent        bool       `json:"sent"`
	Delivered   bool       `json:"delivered"`
	Read        bool       `json:"read"`
	DeliveredAt *time.Time `json:"deliveredAt"`
	ReadAt      *time.Time `json:"readAt"`
}

// Payload is the wire shape of a message, used both as the send
// acknowledgement and as the new_message event body.
type Payload struct {
	ID        int64          `json:"id"`
	Content   string         `json:"content"`
	SenderID  int64          `json:"senderId"`
	Sender    Sender         `json:"sender"`
	ChannelID int64          `json:"channelId"`
	ReplyToID *int64         `json:"replyToId,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	Status    DeliveryStatus `json:"status"`
}

// ReadData notifies the sender (and the reader's other devices) of a read.
type ReadData struct {
	MessageID int64      `json:"messageId"`
	ReadBy    int64      `json:"readBy"`
	ReadAt    *time.Time `json:"readAt"`
}

// DeliveredData notifies the sender of a delivery confirmation.
type DeliveredData struct {
	MessageID   int64      `json:"messageId"`
	DeliveredTo int64      `json:"deliveredTo"`
	DeliveredAt *time.Time `json:"deliveredAt"`
}
