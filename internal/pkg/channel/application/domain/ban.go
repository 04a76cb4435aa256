package channel

import "time"

// VoteThreshold is the number of distinct kick votes that converts into a ban
// without admin intervention.
const VoteThreshold = 3

// ThresholdReason is the ban reason recorded when a vote quorum is reached and
// the kick request carried no reason of its own.
const ThresholdReason = "Reached vote threshold"

// Ban is an active or lifted exclusion from a public channel. BannedBy is nil
// for bans produced by the kick-vote quorum. The store keeps a single row per
// (channel, user); re-banning refreshes the existing row.
type Ban struct {
	ID        int64      `db:"id"`
	ChannelID int64      `db:"channel_id"`
	UserID    int64      `db:"user_id"`
	BannedBy  *int64     `db:"banned_by"`
	Reason    *string    `db:"reason"`
	BannedAt  time.Time  `db:"banned_at"`
	LiftedAt  *time.Time `db:"lifted_at"`
}

// Active reports whether the ban is currently in force.
func (b Ban) Active() bool { return b.LiftedAt == nil }

// KickVote is one member's vote to remove a target from a public channel.
// Uniqueness per (channel, target, voter) is enforced by the store.
type KickVote struct {
	ID           int64     `db:"id"`
	ChannelID    int64     `db:"channel_id"`
	TargetUserID int64     `db:"target_user_id"`
	VoterID      int64     `db:"voter_id"`
	CreatedAt    time.Time `db:"created_at"`
}
