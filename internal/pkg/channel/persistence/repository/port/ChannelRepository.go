package repository

import (
	"context"
	"time"

	channel "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/domain"
)

// ChannelRepository defines persistence operations for the membership and
// consensus engines.
//
// Conventions:
//   - Find/lookup methods return (nil, nil) when no row matches; use cases
//     translate absence into the matching domain error.
//   - Insert methods that can race past an existence check map the store's
//     uniqueness violation to the corresponding domain conflict error
//     (ErrNameTaken, ErrAlreadyMember, ErrPendingInvitationExists,
//     ErrDuplicateVote). The constraint, not the earlier read, is the
//     authoritative conflict signal.
type ChannelRepository interface {
	CreateChannel(ctx context.Context, c channel.Channel) (channel.Channel, error)
	FindChannel(ctx context.Context, id int64) (*channel.Channel, error)
	FindChannelByName(ctx context.Context, name string) (*channel.Channel, error)
	UpdateChannel(ctx context.Context, c channel.Channel) error
	DeleteChannel(ctx context.Context, id int64) error
	ChannelsInactiveSince(ctx context.Context, cutoff time.Time) ([]channel.Channel, error)

	ActiveMembership(ctx context.Context, channelID, userID int64) (*channel.Membership, error)
	InactiveMembership(ctx context.Context, channelID, userID int64) (*channel.Membership, error)
	InsertMembership(ctx context.Context, m channel.Membership) error
	ReactivateMembership(ctx context.Context, membershipID int64, joinedAt time.Time, addedBy *int64) error
	DeactivateMembership(ctx context.Context, membershipID int64, leftAt time.Time) error
	ActiveMembers(ctx context.Context, channelID int64) ([]channel.Membership, error)

	ActiveBan(ctx context.Context, channelID, userID int64) (*channel.Ban, error)
	UpsertBan(ctx context.Context, b channel.Ban) (channel.Ban, error)
	LiftBan(ctx context.Context, banID int64, liftedAt time.Time) error

	InsertKickVote(ctx context.Context, channelID, targetUserID, voterID int64) error
	CountKickVotes(ctx context.Context, channelID, targetUserID int64) (int, error)
	ClearKickVotes(ctx context.Context, channelID, targetUserID int64) error

	CreateInvitation(ctx context.Context, inv channel.Invitation) (channel.Invitation, error)

	// PendingInvitation fetches the invitation only while it is addressed to
	// the user, still pending and not past its expiry.
	PendingInvitation(ctx context.Context, invitationID, invitedUserID int64) (*channel.Invitation, error)
	MarkInvitation(ctx context.Context, invitationID int64, status channel.InvitationStatus, respondedAt time.Time) error

	FindUser(ctx context.Context, userID int64) (*channel.User, error)
	FindUserByNick(ctx context.Context, nickName string) (*channel.User, error)
}
