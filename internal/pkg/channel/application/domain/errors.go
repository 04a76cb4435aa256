package channel

import "errors"

// Domain-level errors for channel membership and consensus behaviors.
// Use cases return these unwrapped so callers can match with errors.Is;
// the socket layer forwards their text as the operation failure message.
var (
	ErrChannelNotFound    = errors.New("channel not found")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrUserNotFound       = errors.New("user does not exist")

	ErrNameRequired = errors.New("name is required")
	ErrInvalidKind  = errors.New("channel type must be public or private")
	ErrNameTaken    = errors.New("channel name already exists")

	ErrNotPublic     = errors.New("private channel requires invite")
	ErrNotPrivate    = errors.New("revoke only applies to private channels")
	ErrKickNotPublic = errors.New("kick only applies to public channels")

	ErrNotMember       = errors.New("not a member")
	ErrTargetNotMember = errors.New("user not a member")
	ErrAlreadyMember   = errors.New("already a member")
	ErrBanned          = errors.New("you are banned from this channel")
	ErrAlreadyBanned   = errors.New("user already banned")

	ErrSelfInvite              = errors.New("cannot invite yourself")
	ErrSelfKick                = errors.New("cannot kick yourself")
	ErrPendingInvitationExists = errors.New("pending invitation exists")

	ErrAdminOnly         = errors.New("only admins can perform this action")
	ErrBanLiftAdminOnly  = errors.New("only admins can re-invite banned users")
	ErrCannotRevokeAdmin = errors.New("cannot revoke another admin")
	ErrCannotKickAdmin   = errors.New("cannot kick an admin")
	ErrDuplicateVote     = errors.New("already voted")
)
