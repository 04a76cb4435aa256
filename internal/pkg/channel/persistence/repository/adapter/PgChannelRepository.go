package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MykhailoZinenko/irc-chat-app/internal/infrastructure/database"
	channel "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/persistence/repository/port"
)

// PgChannelRepository implements the channel repository port on Postgres.
// Uniqueness constraints back every conflict-sensitive insert; 23505 maps to
// the matching domain error.
type PgChannelRepository struct {
	pool *pgxpool.Pool
}

func NewPgChannelRepository(pool *pgxpool.Pool) *PgChannelRepository {
	return &PgChannelRepository{pool: pool}
}

var _ repository.ChannelRepository = (*PgChannelRepository)(nil)

const channelColumns = "id, type, name, description, created_by, last_activity_at, created_at"

func (r *PgChannelRepository) CreateChannel(ctx context.Context, c channel.Channel) (channel.Channel, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO channels (type, name, description, created_by, last_activity_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, c.Kind, c.Name, c.Description, c.CreatedBy, c.LastActivityAt, c.CreatedAt).Scan(&c.ID)
	if database.IsUniqueViolation(err) {
		return channel.Channel{}, channel.ErrNameTaken
	}
	if err != nil {
		return channel.Channel{}, err
	}
	return c, nil
}

func (r *PgChannelRepository) FindChannel(ctx context.Context, id int64) (*channel.Channel, error) {
	return r.scanChannel(r.pool.QueryRow(ctx,
		"SELECT "+channelColumns+" FROM channels WHERE id = $1", id))
}

func (r *PgChannelRepository) FindChannelByName(ctx context.Context, name string) (*channel.Channel, error) {
	return r.scanChannel(r.pool.QueryRow(ctx,
		"SELECT "+channelColumns+" FROM channels WHERE name = $1", name))
}

func (r *PgChannelRepository) UpdateChannel(ctx context.Context, c channel.Channel) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE channels SET name = $2, description = $3, last_activity_at = $4 WHERE id = $1
	`, c.ID, c.Name, c.Description, c.LastActivityAt)
	if database.IsUniqueViolation(err) {
		return channel.ErrNameTaken
	}
	return err
}

func (r *PgChannelRepository) DeleteChannel(ctx context.Context, id int64) error {
	// Participants, invitations, bans, votes, messages and receipts cascade.
	_, err := r.pool.Exec(ctx, "DELETE FROM channels WHERE id = $1", id)
	return err
}

func (r *PgChannelRepository) ChannelsInactiveSince(ctx context.Context, cutoff time.Time) ([]channel.Channel, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+channelColumns+" FROM channels WHERE last_activity_at < $1 OR last_activity_at IS NULL", cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []channel.Channel
	for rows.Next() {
		var c channel.Channel
		if err := rows.Scan(&c.ID, &c.Kind, &c.Name, &c.Description, &c.CreatedBy, &c.LastActivityAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}

const membershipColumns = "id, channel_id, user_id, role, added_by, joined_at, left_at"

func (r *PgChannelRepository) ActiveMembership(ctx context.Context, channelID, userID int64) (*channel.Membership, error) {
	return r.scanMembership(r.pool.QueryRow(ctx,
		"SELECT "+membershipColumns+" FROM channel_participants WHERE channel_id = $1 AND user_id = $2 AND left_at IS NULL",
		channelID, userID))
}

func (r *PgChannelRepository) InactiveMembership(ctx context.Context, channelID, userID int64) (*channel.Membership, error) {
	return r.scanMembership(r.pool.QueryRow(ctx,
		"SELECT "+membershipColumns+" FROM channel_participants WHERE channel_id = $1 AND user_id = $2 AND left_at IS NOT NULL",
		channelID, userID))
}

func (r *PgChannelRepository) InsertMembership(ctx context.Context, m channel.Membership) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO channel_participants (channel_id, user_id, role, added_by, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ChannelID, m.UserID, m.Role, m.AddedBy, m.JoinedAt)
	if database.IsUniqueViolation(err) {
		return channel.ErrAlreadyMember
	}
	return err
}

func (r *PgChannelRepository) ReactivateMembership(ctx context.Context, membershipID int64, joinedAt time.Time, addedBy *int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE channel_participants SET left_at = NULL, joined_at = $2, added_by = COALESCE($3, added_by)
		WHERE id = $1
	`, membershipID, joinedAt, addedBy)
	return err
}

func (r *PgChannelRepository) DeactivateMembership(ctx context.Context, membershipID int64, leftAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE channel_participants SET left_at = $2 WHERE id = $1 AND left_at IS NULL",
		membershipID, leftAt)
	return err
}

func (r *PgChannelRepository) ActiveMembers(ctx context.Context, channelID int64) ([]channel.Membership, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+membershipColumns+" FROM channel_participants WHERE channel_id = $1 AND left_at IS NULL",
		channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []channel.Membership
	for rows.Next() {
		var m channel.Membership
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.UserID, &m.Role, &m.AddedBy, &m.JoinedAt, &m.LeftAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *PgChannelRepository) ActiveBan(ctx context.Context, channelID, userID int64) (*channel.Ban, error) {
	var b channel.Ban
	err := r.pool.QueryRow(ctx, `
		SELECT id, channel_id, user_id, banned_by, reason, banned_at, lifted_at
		FROM channel_bans WHERE channel_id = $1 AND user_id = $2 AND lifted_at IS NULL
	`, channelID, userID).Scan(&b.ID, &b.ChannelID, &b.UserID, &b.BannedBy, &b.Reason, &b.BannedAt, &b.LiftedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PgChannelRepository) UpsertBan(ctx context.Context, b channel.Ban) (channel.Ban, error) {
	// A lifted ban row is refreshed in place; the old reason survives when the
	// new ban carries none.
	err := r.pool.QueryRow(ctx, `
		INSERT INTO channel_bans (channel_id, user_id, banned_by, reason, banned_at, lifted_at)
		VALUES ($1, $2, $3, $4, $5, NULL)
		ON CONFLICT (channel_id, user_id) DO UPDATE SET
			banned_by = EXCLUDED.banned_by,
			reason    = COALESCE(EXCLUDED.reason, channel_bans.reason),
			banned_at = EXCLUDED.banned_at,
			lifted_at = NULL
		RETURNING id
	`, b.ChannelID, b.UserID, b.BannedBy, b.Reason, b.BannedAt).Scan(&b.ID)
	if err != nil {
		return channel.Ban{}, err
	}
	return b, nil
}

func (r *PgChannelRepository) LiftBan(ctx context.Context, banID int64, liftedAt time.Time) error {
	_, err := r.pool.Exec(ctx, "UPDATE channel_bans SET lifted_at = $2 WHERE id = $1", banID, liftedAt)
	return err
}

func (r *PgChannelRepository) InsertKickVote(ctx context.Context, channelID, targetUserID, voterID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO kick_votes (channel_id, target_user_id, voter_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, channelID, targetUserID, voterID, time.Now().UTC())
	if database.IsUniqueViolation(err) {
		return channel.ErrDuplicateVote
	}
	return err
}

func (r *PgChannelRepository) CountKickVotes(ctx context.Context, channelID, targetUserID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM kick_votes WHERE channel_id = $1 AND target_user_id = $2",
		channelID, targetUserID).Scan(&count)
	return count, err
}

func (r *PgChannelRepository) ClearKickVotes(ctx context.Context, channelID, targetUserID int64) error {
	_, err := r.pool.Exec(ctx,
		"DELETE FROM kick_votes WHERE channel_id = $1 AND target_user_id = $2",
		channelID, targetUserID)
	return err
}

func (r *PgChannelRepository) CreateInvitation(ctx context.Context, inv channel.Invitation) (channel.Invitation, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO invitations (channel_id, invited_user_id, invited_by, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, inv.ChannelID, inv.InvitedUserID, inv.InvitedBy, inv.Status, inv.ExpiresAt, inv.CreatedAt).Scan(&inv.ID)
	if database.IsUniqueViolation(err) {
		return channel.Invitation{}, channel.ErrPendingInvitationExists
	}
	if err != nil {
		return channel.Invitation{}, err
	}
	return inv, nil
}

func (r *PgChannelRepository) PendingInvitation(ctx context.Context, invitationID, invitedUserID int64) (*channel.Invitation, error) {
	var inv channel.Invitation
	err := r.pool.QueryRow(ctx, `
		SELECT id, channel_id, invited_user_id, invited_by, status, expires_at, responded_at, created_at
		FROM invitations
		WHERE id = $1 AND invited_user_id = $2 AND status = 'pending'
		  AND (expires_at IS NULL OR expires_at > now())
	`, invitationID, invitedUserID).Scan(
		&inv.ID, &inv.ChannelID, &inv.InvitedUserID, &inv.InvitedBy,
		&inv.Status, &inv.ExpiresAt, &inv.RespondedAt, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *PgChannelRepository) MarkInvitation(ctx context.Context, invitationID int64, status channel.InvitationStatus, respondedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE invitations SET status = $2, responded_at = $3 WHERE id = $1",
		invitationID, status, respondedAt)
	return err
}

func (r *PgChannelRepository) FindUser(ctx context.Context, userID int64) (*channel.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		"SELECT id, nick_name, first_name, last_name, email, status FROM users WHERE id = $1", userID))
}

func (r *PgChannelRepository) FindUserByNick(ctx context.Context, nickName string) (*channel.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		"SELECT id, nick_name, first_name, last_name, email, status FROM users WHERE nick_name = $1", nickName))
}

func (r *PgChannelRepository) scanChannel(row pgx.Row) (*channel.Channel, error) {
	var c channel.Channel
	err := row.Scan(&c.ID, &c.Kind, &c.Name, &c.Description, &c.CreatedBy, &c.LastActivityAt, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgChannelRepository) scanMembership(row pgx.Row) (*channel.Membership, error) {
	var m channel.Membership
	err := row.Scan(&m.ID, &m.ChannelID, &m.UserID, &m.Role, &m.AddedBy, &m.JoinedAt, &m.LeftAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgChannelRepository) scanUser(row pgx.Row) (*channel.User, error) {
	var u channel.User
	err := row.Scan(&u.ID, &u.NickName, &u.FirstName, &u.LastName, &u.Email, &u.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
