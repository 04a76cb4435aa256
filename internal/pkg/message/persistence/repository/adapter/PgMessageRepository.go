package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	message "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/message/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/message/persistence/repository/port"
)

// PgMessageRepository implements the message repository port on Postgres.
type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

var _ repository.MessageRepository = (*PgMessageRepository)(nil)

func (r *PgMessageRepository) ActiveMembership(ctx context.Context, channelID, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM channel_participants
			WHERE channel_id = $1 AND user_id = $2 AND left_at IS NULL
		)
	`, channelID, userID).Scan(&exists)
	return exists, err
}

func (r *PgMessageRepository) SaveMessage(ctx context.Context, m message.Message) (message.Message, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return message.Message{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO messages (channel_id, sender_id, content, reply_to_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, m.ChannelID, m.SenderID, m.Content, m.ReplyToID, m.CreatedAt).Scan(&m.ID)
	if err != nil {
		return message.Message{}, err
	}

	_, err = tx.Exec(ctx,
		"UPDATE channels SET last_activity_at = $2 WHERE id = $1", m.ChannelID, m.CreatedAt)
	if err != nil {
		return message.Message{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return message.Message{}, err
	}
	return m, nil
}

func (r *PgMessageRepository) ActiveParticipantIDs(ctx context.Context, channelID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT user_id FROM channel_participants WHERE channel_id = $1 AND left_at IS NULL", channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PgMessageRepository) CreateReceipts(ctx context.Context, messageID int64, userIDs []int64, deliveredAt time.Time) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO message_reads (user_id, message_id, delivered_at)
		SELECT uid, $1, $2 FROM unnest($3::bigint[]) AS uid
		ON CONFLICT (user_id, message_id) DO NOTHING
	`, messageID, deliveredAt, userIDs)
	return err
}

func (r *PgMessageRepository) FindMessageForMember(ctx context.Context, messageID, userID int64) (*message.Message, error) {
	var m message.Message
	err := r.pool.QueryRow(ctx, `
		SELECT m.id, m.channel_id, m.sender_id, m.content, m.reply_to_id, m.created_at
		FROM messages m
		JOIN channel_participants p ON p.channel_id = m.channel_id
		WHERE m.id = $1 AND p.user_id = $2 AND p.left_at IS NULL
	`, messageID, userID).Scan(&m.ID, &m.ChannelID, &m.SenderID, &m.Content, &m.ReplyToID, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgMessageRepository) MarkRead(ctx context.Context, messageID, userID int64, at time.Time) (*message.Receipt, error) {
	// COALESCE keeps the earliest timestamps, so repeated reads are no-ops.
	return r.scanReceipt(r.pool.QueryRow(ctx, `
		INSERT INTO message_reads (user_id, message_id, delivered_at, read_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id, message_id) DO UPDATE SET
			delivered_at = COALESCE(message_reads.delivered_at, EXCLUDED.delivered_at),
			read_at      = COALESCE(message_reads.read_at, EXCLUDED.read_at)
		RETURNING user_id, message_id, delivered_at, read_at
	`, userID, messageID, at))
}

func (r *PgMessageRepository) MarkDelivered(ctx context.Context, messageID, userID int64, at time.Time) (*message.Receipt, error) {
	return r.scanReceipt(r.pool.QueryRow(ctx, `
		INSERT INTO message_reads (user_id, message_id, delivered_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, message_id) DO UPDATE SET
			delivered_at = COALESCE(message_reads.delivered_at, EXCLUDED.delivered_at)
		RETURNING user_id, message_id, delivered_at, read_at
	`, userID, messageID, at))
}

func (r *PgMessageRepository) FindSender(ctx context.Context, userID int64) (*message.Sender, error) {
	var (
		s         message.Sender
		firstName *string
		lastName  *string
	)
	err := r.pool.QueryRow(ctx,
		"SELECT id, nick_name, first_name, last_name FROM users WHERE id = $1", userID,
	).Scan(&s.ID, &s.NickName, &firstName, &lastName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.FullName = joinName(firstName, lastName)
	return &s, nil
}

func (r *PgMessageRepository) scanReceipt(row pgx.Row) (*message.Receipt, error) {
	var rec message.Receipt
	err := row.Scan(&rec.UserID, &rec.MessageID, &rec.DeliveredAt, &rec.ReadAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func joinName(first, last *string) string {
	switch {
	case first != nil && last != nil:
		return *first + " " + *last
	case first != nil:
		return *first
	case last != nil:
		return *last
	default:
		return ""
	}
}
