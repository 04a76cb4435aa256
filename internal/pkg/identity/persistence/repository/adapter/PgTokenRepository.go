package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	identity "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/identity/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/identity/persistence/repository/port"
)

// PgTokenRepository implements the token repository port on Postgres.
type PgTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPgTokenRepository(pool *pgxpool.Pool) *PgTokenRepository {
	return &PgTokenRepository{pool: pool}
}

var _ repository.TokenRepository = (*PgTokenRepository)(nil)

func (r *PgTokenRepository) IdentityByTokenHash(ctx context.Context, hash string, now time.Time) (*identity.Identity, error) {
	var id identity.Identity
	err := r.pool.QueryRow(ctx, `
		SELECT u.id, u.nick_name
		FROM access_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.hash = $1 AND (t.expires_at IS NULL OR t.expires_at > $2)
	`, hash, now).Scan(&id.UserID, &id.NickName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (r *PgTokenRepository) TouchToken(ctx context.Context, hash string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE access_tokens SET last_activity_at = $2 WHERE hash = $1", hash, at)
	return err
}
