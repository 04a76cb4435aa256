package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	cache "github.com/MykhailoZinenko/irc-chat-app/internal/infrastructure/cache/port"
	identity "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/identity/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/identity/persistence/repository/port"
)

const (
	cacheKeyPrefix = "auth:token:"
	cacheTTL       = time.Minute
	touchTimeout   = 5 * time.Second
)

// VerifyTokenUseCase resolves a raw credential to an identity. Successful
// lookups are cached for a short TTL keyed by the token hash; cache failures
// fall through to the store. Verified tokens get their activity stamped in
// the background.
type VerifyTokenUseCase struct {
	Repo  repository.TokenRepository
	Cache cache.Cache
	Log   *slog.Logger
}

func NewVerifyTokenUseCase(repo repository.TokenRepository, c cache.Cache, log *slog.Logger) *VerifyTokenUseCase {
	return &VerifyTokenUseCase{Repo: repo, Cache: c, Log: log}
}

func (uc *VerifyTokenUseCase) Verify(ctx context.Context, raw string) (identity.Identity, error) {
	token := identity.NormalizeToken(raw)
	if token == "" {
		return identity.Identity{}, identity.ErrUnauthorized
	}

	sum := sha256.Sum256([]byte(token))
	hash := hex.EncodeToString(sum[:])

	if id, ok := uc.fromCache(ctx, hash); ok {
		uc.touch(hash)
		return id, nil
	}

	id, err := uc.Repo.IdentityByTokenHash(ctx, hash, time.Now().UTC())
	if err != nil {
		return identity.Identity{}, err
	}
	if id == nil {
		return identity.Identity{}, identity.ErrUnauthorized
	}

	uc.toCache(ctx, hash, *id)
	uc.touch(hash)
	return *id, nil
}

func (uc *VerifyTokenUseCase) fromCache(ctx context.Context, hash string) (identity.Identity, bool) {
	if uc.Cache == nil {
		return identity.Identity{}, false
	}
	raw, err := uc.Cache.Get(ctx, cacheKeyPrefix+hash)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			uc.Log.Warn("token cache read failed", "error", err)
		}
		return identity.Identity{}, false
	}
	var id identity.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return identity.Identity{}, false
	}
	return id, true
}

func (uc *VerifyTokenUseCase) toCache(ctx context.Context, hash string, id identity.Identity) {
	if uc.Cache == nil {
		return
	}
	raw, err := json.Marshal(id)
	if err != nil {
		return
	}
	if err := uc.Cache.Set(ctx, cacheKeyPrefix+hash, string(raw), cacheTTL); err != nil {
		uc.Log.Warn("token cache write failed", "error", err)
	}
}

// touch stamps last activity without blocking verification.
func (uc *VerifyTokenUseCase) touch(hash string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
		defer cancel()
		if err := uc.Repo.TouchToken(ctx, hash, time.Now().UTC()); err != nil {
			uc.Log.Warn("token activity stamp failed", "error", err)
		}
	}()
}
