package channel

import "time"

// Role expresses the role within a channel.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Membership captures one user's participation in one channel. The store
// enforces a single row per (channel, user); leaving marks LeftAt instead of
// deleting, and rejoining reactivates the historical row.
type Membership struct {
	ID        int64      `db:"id"`
	ChannelID int64      `db:"channel_id"`
	UserID    int64      `db:"user_id"`
	Role      Role       `db:"role"`
	AddedBy   *int64     `db:"added_by"`
	JoinedAt  time.Time  `db:"joined_at"`
	LeftAt    *time.Time `db:"left_at"`
}

// Active reports whether the membership is current (no recorded departure).
func (m Membership) Active() bool { return m.LeftAt == nil }

// User is the member profile attached to membership events.
type User struct {
	ID        int64   `json:"id"`
	NickName  string  `json:"nickName"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     string  `json:"email"`
	Status    string  `json:"status"`
}
