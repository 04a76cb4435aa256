package controller

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/MykhailoZinenko/irc-chat-app/internal/infrastructure/realtime"
	presence "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/presence/application/domain"
	presenceuc "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/presence/application/usecase"
)

type fakeSocket struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (s *fakeSocket) SetWriteDeadline(time.Time) error { return nil }

func (s *fakeSocket) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if messageType == websocket.TextMessage {
		s.frames = append(s.frames, data)
	}
	return nil
}

func (s *fakeSocket) WriteControl(int, []byte, time.Time) error { return nil }

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSocket) waitResponses(t *testing.T, n int) []response {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		if len(s.frames) >= n {
			out := make([]response, len(s.frames))
			for i, raw := range s.frames {
				require.NoError(t, json.Unmarshal(raw, &out[i]))
			}
			s.mu.Unlock()
			return out
		}
		s.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.Fatalf("expected %d responses, got %d", n, len(s.frames))
	return nil
}

func (s *fakeSocket) waitClosed(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("socket was not closed")
}

type fakePresenceRepo struct {
	mu       sync.Mutex
	statuses map[int64]presence.Status
}

func (f *fakePresenceRepo) UserStatus(_ context.Context, userID int64) (*presence.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.statuses[userID]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakePresenceRepo) SetUserStatus(_ context.Context, userID int64, status presence.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[userID] = status
	return nil
}

func (f *fakePresenceRepo) AudienceFor(context.Context, int64) ([]int64, error) {
	return nil, nil
}

func newTestController(router *realtime.Router, repo *fakePresenceRepo) *SocketController {
	return &SocketController{
		router:    router,
		log:       slog.New(slog.DiscardHandler),
		setStatus: presenceuc.NewSetStatusUseCase(repo, router),
		validate:  validator.New(),
		opTimeout: time.Second,
	}
}

func gatewaySetup(t *testing.T) (*SocketController, *realtime.Connection, *fakeSocket) {
	t.Helper()
	router := realtime.NewRouter(slog.New(slog.DiscardHandler))
	repo := &fakePresenceRepo{statuses: map[int64]presence.Status{1: presence.StatusOnline}}
	ctl := newTestController(router, repo)

	sock := &fakeSocket{}
	conn := realtime.NewConnection(1, sock, 8)
	router.Attach(conn)
	t.Cleanup(func() { conn.Close(websocket.CloseNormalClosure, "test done") })
	return ctl, conn, sock
}

func TestDispatch(t *testing.T) {
	t.Run("success ack echoes the correlation id", func(t *testing.T) {
		ctl, conn, sock := gatewaySetup(t)

		ctl.dispatch(conn, frame{ID: "op-1", Op: "subscribe:channels", Data: json.RawMessage(`[4, 9]`)})

		resp := sock.waitResponses(t, 1)[0]
		require.Equal(t, "op-1", resp.ID)
		require.True(t, resp.OK)
		require.Empty(t, resp.Message)
		require.NotNil(t, resp.Data)

		require.Equal(t, 1, ctl.router.Publish(realtime.ChannelTopic(4), []byte("x")))
		require.Equal(t, 1, ctl.router.Publish(realtime.ChannelTopic(9), []byte("x")))
	})

	t.Run("unknown operation gets a terminal error response", func(t *testing.T) {
		ctl, conn, sock := gatewaySetup(t)

		ctl.dispatch(conn, frame{ID: "op-2", Op: "channel:destroy"})

		resp := sock.waitResponses(t, 1)[0]
		require.Equal(t, "op-2", resp.ID)
		require.False(t, resp.OK)
		require.Equal(t, "unknown operation", resp.Message)
	})

	t.Run("payload failing validation is rejected at the boundary", func(t *testing.T) {
		ctl, conn, sock := gatewaySetup(t)

		ctl.dispatch(conn, frame{ID: "op-3", Op: "channel:create", Data: json.RawMessage(`{"type":"shared","name":"general"}`)})

		resp := sock.waitResponses(t, 1)[0]
		require.Equal(t, "op-3", resp.ID)
		require.False(t, resp.OK)
		require.Equal(t, "invalid payload", resp.Message)
	})

	t.Run("missing payload is rejected before any use case runs", func(t *testing.T) {
		ctl, conn, sock := gatewaySetup(t)

		ctl.dispatch(conn, frame{ID: "op-4", Op: "message:send"})

		resp := sock.waitResponses(t, 1)[0]
		require.False(t, resp.OK)
		require.Equal(t, "invalid payload", resp.Message)
	})

	t.Run("unsubscribe stops topic delivery", func(t *testing.T) {
		ctl, conn, sock := gatewaySetup(t)

		ctl.dispatch(conn, frame{ID: "op-5", Op: "subscribe:channels", Data: json.RawMessage(`[4]`)})
		ctl.dispatch(conn, frame{ID: "op-6", Op: "unsubscribe:channels", Data: json.RawMessage(`[4]`)})

		responses := sock.waitResponses(t, 2)
		require.True(t, responses[0].OK)
		require.True(t, responses[1].OK)
		require.Zero(t, ctl.router.Publish(realtime.ChannelTopic(4), []byte("x")))
	})
}

func TestDispatchSetStatus(t *testing.T) {
	t.Run("dnd is acknowledged and the session stays up", func(t *testing.T) {
		ctl, conn, sock := gatewaySetup(t)

		ctl.dispatch(conn, frame{ID: "op-1", Op: "presence:setStatus", Data: json.RawMessage(`{"status":"dnd"}`)})

		resp := sock.waitResponses(t, 1)[0]
		require.Equal(t, "op-1", resp.ID)
		require.True(t, resp.OK)
		require.False(t, conn.Closed())
		require.Equal(t, 1, ctl.router.SessionCount(1))
	})

	t.Run("offline acknowledges before tearing the sessions down", func(t *testing.T) {
		ctl, conn, sock := gatewaySetup(t)

		ctl.dispatch(conn, frame{ID: "op-2", Op: "presence:setStatus", Data: json.RawMessage(`{"status":"offline"}`)})

		require.True(t, conn.Closed())
		require.Zero(t, ctl.router.SessionCount(1))

		sock.waitClosed(t)
		responses := sock.waitResponses(t, 1)
		require.Equal(t, "op-2", responses[0].ID)
		require.True(t, responses[0].OK)
	})

	t.Run("unsupported status is rejected", func(t *testing.T) {
		ctl, conn, sock := gatewaySetup(t)

		ctl.dispatch(conn, frame{ID: "op-3", Op: "presence:setStatus", Data: json.RawMessage(`{"status":"away"}`)})

		resp := sock.waitResponses(t, 1)[0]
		require.False(t, resp.OK)
		require.Equal(t, "invalid payload", resp.Message)
	})
}
