package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cache "github.com/MykhailoZinenko/irc-chat-app/internal/infrastructure/cache/port"
	identity "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/identity/application/domain"
)

type fakeTokenRepo struct {
	mu         sync.Mutex
	identities map[string]identity.Identity // hash -> identity
	lookups    int
	touched    []string
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{identities: make(map[string]identity.Identity)}
}

func (f *fakeTokenRepo) addToken(token string, id identity.Identity) string {
	sum := sha256.Sum256([]byte(token))
	hash := hex.EncodeToString(sum[:])
	f.identities[hash] = id
	return hash
}

func (f *fakeTokenRepo) IdentityByTokenHash(_ context.Context, hash string, _ time.Time) (*identity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if id, ok := f.identities[hash]; ok {
		return &id, nil
	}
	return nil, nil
}

func (f *fakeTokenRepo) TouchToken(_ context.Context, hash string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, hash)
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	values  map[string]string
	getErr  error
	setErr  error
	gets    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return "", f.getErr
	}
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", cache.ErrMiss
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	return nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }
func (f *fakeCache) Close() error               { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestVerifyToken(t *testing.T) {
	ctx := context.Background()
	alice := identity.Identity{UserID: 1, NickName: "alice"}

	t.Run("resolves a live token through the store", func(t *testing.T) {
		repo := newFakeTokenRepo()
		repo.addToken("tok-1", alice)
		uc := NewVerifyTokenUseCase(repo, newFakeCache(), testLogger())

		id, err := uc.Verify(ctx, "Bearer tok-1")
		require.NoError(t, err)
		require.Equal(t, alice, id)
		require.Equal(t, 1, repo.lookups)
	})

	t.Run("second verification is served from cache", func(t *testing.T) {
		repo := newFakeTokenRepo()
		repo.addToken("tok-1", alice)
		uc := NewVerifyTokenUseCase(repo, newFakeCache(), testLogger())

		_, err := uc.Verify(ctx, "tok-1")
		require.NoError(t, err)
		id, err := uc.Verify(ctx, "tok-1")
		require.NoError(t, err)
		require.Equal(t, alice, id)
		require.Equal(t, 1, repo.lookups)
	})

	t.Run("cache failure falls through to the store", func(t *testing.T) {
		repo := newFakeTokenRepo()
		repo.addToken("tok-1", alice)
		c := newFakeCache()
		c.getErr = errors.New("connection refused")
		c.setErr = errors.New("connection refused")
		uc := NewVerifyTokenUseCase(repo, c, testLogger())

		id, err := uc.Verify(ctx, "tok-1")
		require.NoError(t, err)
		require.Equal(t, alice, id)
		require.Equal(t, 1, repo.lookups)
	})

	t.Run("unknown token", func(t *testing.T) {
		uc := NewVerifyTokenUseCase(newFakeTokenRepo(), newFakeCache(), testLogger())
		_, err := uc.Verify(ctx, "no-such-token")
		require.ErrorIs(t, err, identity.ErrUnauthorized)
	})

	t.Run("blank credential never reaches cache or store", func(t *testing.T) {
		repo := newFakeTokenRepo()
		c := newFakeCache()
		uc := NewVerifyTokenUseCase(repo, c, testLogger())

		_, err := uc.Verify(ctx, `  ""  `)
		require.ErrorIs(t, err, identity.ErrUnauthorized)
		require.Zero(t, c.gets)
		require.Zero(t, repo.lookups)
	})
}
