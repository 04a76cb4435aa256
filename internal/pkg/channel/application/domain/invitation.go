package channel

import "time"

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

// DefaultInvitationTTL is how long a fresh invitation stays acceptable.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// Invitation is an offer to join a channel. The store keeps at most one
// pending invitation per (channel, invited user).
type Invitation struct {
	ID            int64            `db:"id"`
	ChannelID     int64            `db:"channel_id"`
	InvitedUserID int64            `db:"invited_user_id"`
	InvitedBy     int64            `db:"invited_by"`
	Status        InvitationStatus `db:"status"`
	ExpiresAt     *time.Time       `db:"expires_at"`
	RespondedAt   *time.Time       `db:"responded_at"`
	CreatedAt     time.Time        `db:"created_at"`
}
