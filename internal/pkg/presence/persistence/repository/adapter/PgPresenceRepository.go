package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	presence "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/presence/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/presence/persistence/repository/port"
)

// PgPresenceRepository implements the presence repository port on Postgres.
type PgPresenceRepository struct {
	pool *pgxpool.Pool
}

func NewPgPresenceRepository(pool *pgxpool.Pool) *PgPresenceRepository {
	return &PgPresenceRepository{pool: pool}
}

var _ repository.PresenceRepository = (*PgPresenceRepository)(nil)

func (r *PgPresenceRepository) UserStatus(ctx context.Context, userID int64) (*presence.Status, error) {
	var status presence.Status
	err := r.pool.QueryRow(ctx, "SELECT status FROM users WHERE id = $1", userID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *PgPresenceRepository) SetUserStatus(ctx context.Context, userID int64, status presence.Status) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET status = $2 WHERE id = $1", userID, status)
	return err
}

func (r *PgPresenceRepository) AudienceFor(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT other.user_id
		FROM channel_participants own
		JOIN channel_participants other ON other.channel_id = own.channel_id
		WHERE own.user_id = $1 AND own.left_at IS NULL
		  AND other.user_id <> $1 AND other.left_at IS NULL
	`, userID)
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
