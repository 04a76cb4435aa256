package controller

import "encoding/json"

// frame is one client-issued operation. ID is the correlation id echoed in
// the single terminal response.
type frame struct {
	ID   string          `json:"id"`
	Op   string          `json:"op"`
	Data json.RawMessage `json:"data"`
}

// response is the terminal acknowledgement of one operation.
type response struct {
	ID      string `json:"id"`
	OK      bool   `json:"ok"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type createChannelPayload struct {
	Type        string  `json:"type" validate:"required,oneof=public private"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

type channelIDPayload struct {
	ChannelID int64 `json:"channelId" validate:"required"`
}

type joinByNamePayload struct {
	Name string `json:"name" validate:"required"`
}

type updateChannelPayload struct {
	ChannelID   int64   `json:"channelId" validate:"required"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type invitePayload struct {
	ChannelID int64 `json:"channelId" validate:"required"`
	UserID    int64 `json:"userId" validate:"required"`
}

type inviteByNamePayload struct {
	ChannelID int64  `json:"channelId" validate:"required"`
	Username  string `json:"username" validate:"required"`
}

type invitationIDPayload struct {
	InvitationID int64 `json:"invitationId" validate:"required"`
}

type targetUserPayload struct {
	ChannelID int64 `json:"channelId" validate:"required"`
	UserID    int64 `json:"userId" validate:"required"`
}

type kickPayload struct {
	ChannelID int64   `json:"channelId" validate:"required"`
	UserID    int64   `json:"userId" validate:"required"`
	Reason    *string `json:"reason"`
}

type sendMessagePayload struct {
	ChannelID int64  `json:"channelId" validate:"required"`
	Content   string `json:"content" validate:"required"`
	ReplyToID *int64 `json:"replyToId"`
}

type messageIDPayload struct {
	MessageID int64 `json:"messageId" validate:"required"`
}

type setStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=online dnd offline"`
}
