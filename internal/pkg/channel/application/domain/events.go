package channel

import "time"

// Event types pushed to personal topics by the membership and consensus engines.
const (
	EventMemberJoined       = "member_joined"
	EventMemberLeft         = "member_left"
	EventChannelDeleted     = "channel_deleted"
	EventChannelUpdated     = "channel_updated"
	EventUserJoinedChannel  = "user_joined_channel"
	EventUserLeftChannel    = "user_left_channel"
	EventInvitationReceived = "invitation_received"
	EventInvitationAccepted = "invitation_accepted"
	EventInvitationDeclined = "invitation_declined"
)

// Reasons carried on channel_deleted events.
const (
	TeardownNoMembers      = "no_members"
	TeardownNoAdmins       = "no_admins"
	TeardownDeletedByAdmin = "deleted_by_admin"
	TeardownInactivity     = "inactivity"
)

// MemberJoinedData fans out to every active member when someone joins.
type MemberJoinedData struct {
	ChannelID   int64 `json:"channelId"`
	User        User  `json:"user"`
	Role        Role  `json:"role"`
	MemberCount int   `json:"memberCount"`
}

// MemberLeftData fans out to remaining members on any departure, voluntary or not.
type MemberLeftData struct {
	ChannelID   int64 `json:"channelId"`
	UserID      int64 `json:"userId"`
	MemberCount int   `json:"memberCount"`
}

// ChannelDeletedData fans out when the teardown rule or an admin removes a channel.
type ChannelDeletedData struct {
	ChannelID   int64  `json:"channelId"`
	ChannelName string `json:"channelName,omitempty"`
	Reason      string `json:"reason"`
}

// ChannelUpdatedData fans out to active members after an admin edit.
type ChannelUpdatedData struct {
	Channel Channel `json:"channel"`
}

// UserJoinedChannelData is sent to the joiner itself so all their devices learn
// about the new membership.
type UserJoinedChannelData struct {
	UserID      int64  `json:"userId"`
	ChannelID   int64  `json:"channelId"`
	ChannelName string `json:"channelName"`
}

// UserLeftChannelData is sent to the departing user itself.
type UserLeftChannelData struct {
	UserID      int64  `json:"userId"`
	ChannelID   int64  `json:"channelId"`
	ChannelName string `json:"channelName"`
}

// InvitationReceivedData is sent to the invited user.
type InvitationReceivedData struct {
	InvitationID       int64      `json:"invitationId"`
	ChannelID          int64      `json:"channelId"`
	ChannelName        string     `json:"channelName"`
	ChannelType        Kind       `json:"channelType"`
	ChannelDescription *string    `json:"channelDescription"`
	InviterID          int64      `json:"inviterId"`
	InviterNickName    string     `json:"inviterNickName"`
	InviterFirstName   *string    `json:"inviterFirstName"`
	InviterLastName    *string    `json:"inviterLastName"`
	InviterEmail       string     `json:"inviterEmail"`
	CreatedAt          time.Time  `json:"createdAt"`
	ExpiresAt          *time.Time `json:"expiresAt"`
}

// InvitationAnsweredData notifies the inviter of an accept or decline.
type InvitationAnsweredData struct {
	InvitationID  int64   `json:"invitationId"`
	ChannelID     int64   `json:"channelId"`
	ChannelName   string  `json:"channelName"`
	UserID        int64   `json:"userId"`
	UserNickName  string  `json:"userNickName"`
	UserFirstName *string `json:"userFirstName"`
	UserLastName  *string `json:"userLastName"`
}
