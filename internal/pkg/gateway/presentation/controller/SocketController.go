package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/MykhailoZinenko/irc-chat-app/internal/infrastructure/cache/port"
	"github.com/MykhailoZinenko/irc-chat-app/internal/infrastructure/realtime"
	channel "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/domain"
	channeluc "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/usecase"
	channeladapter "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/persistence/repository/adapter"
	identityuc "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/identity/application/usecase"
	identityadapter "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/identity/persistence/repository/adapter"
	messageuc "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/message/application/usecase"
	messageadapter "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/message/persistence/repository/adapter"
	presence "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/presence/application/domain"
	presenceuc "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/presence/application/usecase"
	presenceadapter "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/presence/persistence/repository/adapter"
)

const (
	defaultReadTimeout = 60 * time.Second
	defaultOpTimeout   = 5 * time.Second
	maxFrameBytes      = 1 << 20
)

var errInvalidPayload = errors.New("invalid payload")

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Auth happens through the bearer token, not the origin.
		return true
	},
}

// SocketController owns the websocket endpoint: it verifies the credential,
// attaches the connection to the router and dispatches operation frames until
// the client disconnects. Every operation gets exactly one terminal response
// carrying the frame's correlation id.
type SocketController struct {
	router *realtime.Router
	log    *slog.Logger

	verify    *identityuc.VerifyTokenUseCase
	lifecycle *presenceuc.ConnectionLifecycleUseCase
	setStatus *presenceuc.SetStatusUseCase

	createChannel *channeluc.CreateChannelUseCase
	joinChannel   *channeluc.JoinChannelUseCase
	joinByName    *channeluc.JoinByNameUseCase
	leaveChannel  *channeluc.LeaveChannelUseCase
	updateChannel *channeluc.UpdateChannelUseCase
	deleteChannel *channeluc.DeleteChannelUseCase
	invite        *channeluc.InviteUseCase
	acceptInvite  *channeluc.AcceptInvitationUseCase
	declineInvite *channeluc.DeclineInvitationUseCase
	revoke        *channeluc.RevokeMembershipUseCase
	kick          *channeluc.KickUseCase

	sendMessage   *messageuc.SendMessageUseCase
	markRead      *messageuc.MarkReadUseCase
	markDelivered *messageuc.MarkDeliveredUseCase

	validate  *validator.Validate
	opTimeout time.Duration
}

func NewSocketController(pool *pgxpool.Pool, cache cacheport.Cache, router *realtime.Router, log *slog.Logger) *SocketController {
	channelRepo := channeladapter.NewPgChannelRepository(pool)
	messageRepo := messageadapter.NewPgMessageRepository(pool)
	presenceRepo := presenceadapter.NewPgPresenceRepository(pool)
	tokenRepo := identityadapter.NewPgTokenRepository(pool)

	setStatus := presenceuc.NewSetStatusUseCase(presenceRepo, router)

	return &SocketController{
		router: router,
		log:    log,

		verify:    identityuc.NewVerifyTokenUseCase(tokenRepo, cache, log),
		lifecycle: presenceuc.NewConnectionLifecycleUseCase(presenceRepo, setStatus),
		setStatus: setStatus,

		createChannel: channeluc.NewCreateChannelUseCase(channelRepo),
		joinChannel:   channeluc.NewJoinChannelUseCase(channelRepo, router),
		joinByName:    channeluc.NewJoinByNameUseCase(channelRepo, router),
		leaveChannel:  channeluc.NewLeaveChannelUseCase(channelRepo, router),
		updateChannel: channeluc.NewUpdateChannelUseCase(channelRepo, router),
		deleteChannel: channeluc.NewDeleteChannelUseCase(channelRepo, router),
		invite:        channeluc.NewInviteUseCase(channelRepo, router),
		acceptInvite:  channeluc.NewAcceptInvitationUseCase(channelRepo, router),
		declineInvite: channeluc.NewDeclineInvitationUseCase(channelRepo, router),
		revoke:        channeluc.NewRevokeMembershipUseCase(channelRepo, router),
		kick:          channeluc.NewKickUseCase(channelRepo, router),

		sendMessage:   messageuc.NewSendMessageUseCase(messageRepo, router),
		markRead:      messageuc.NewMarkReadUseCase(messageRepo, router),
		markDelivered: messageuc.NewMarkDeliveredUseCase(messageRepo, router),

		validate:  validator.New(),
		opTimeout: defaultOpTimeout,
	}
}

// Handle upgrades the request to a websocket after the credential check and
// runs the read loop until the client goes away.
func (ctl *SocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			token = c.Query("token")
		}
		id, err := ctl.verify.Verify(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		conn := realtime.NewConnection(id.UserID, ws, 0)
		ctl.router.Attach(conn)
		if ctl.router.SessionCount(id.UserID) == 1 {
			ctl.presenceTransition(id.UserID, ctl.lifecycle.Connected)
		}
		defer func() {
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
			if ctl.router.SessionCount(id.UserID) == 0 {
				ctl.presenceTransition(id.UserID, ctl.lifecycle.Disconnected)
			}
		}()

		ws.SetReadLimit(maxFrameBytes)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}

			var f frame
			if err := json.Unmarshal(data, &f); err != nil || f.Op == "" {
				ctl.reply(conn, response{ID: f.ID, Message: "invalid frame"})
				continue
			}
			ctl.dispatch(conn, f)
		}
	}
}

// ackThen carries a success payload together with an action that must run
// only after the terminal response has been queued on the connection.
type ackThen struct {
	data  any
	after func()
}

// dispatch runs one operation under its own timeout. The context is detached
// from the socket: a dropped connection does not cancel in-flight work.
func (ctl *SocketController) dispatch(conn *realtime.Connection, f frame) {
	ctx, cancel := context.WithTimeout(context.Background(), ctl.opTimeout)
	defer cancel()

	data, err := ctl.handleOp(ctx, conn, f)
	if err != nil {
		ctl.reply(conn, response{ID: f.ID, Message: wireMessage(err)})
		return
	}
	if at, ok := data.(ackThen); ok {
		ctl.reply(conn, response{ID: f.ID, OK: true, Data: at.data})
		at.after()
		return
	}
	ctl.reply(conn, response{ID: f.ID, OK: true, Data: data})
}

func (ctl *SocketController) handleOp(ctx context.Context, conn *realtime.Connection, f frame) (any, error) {
	switch f.Op {
	case "channel:create":
		return ctl.handleCreate(ctx, conn.UserID, f.Data)
	case "channel:join":
		return ctl.handleJoin(ctx, conn.UserID, f.Data)
	case "channel:joinByName":
		return ctl.handleJoinByName(ctx, conn.UserID, f.Data)
	case "channel:leave":
		return ctl.handleLeave(ctx, conn.UserID, f.Data)
	case "channel:update":
		return ctl.handleUpdate(ctx, conn.UserID, f.Data)
	case "channel:delete":
		return ctl.handleDelete(ctx, conn.UserID, f.Data)
	case "channel:invite":
		return ctl.handleInvite(ctx, conn.UserID, f.Data)
	case "channel:inviteByName":
		return ctl.handleInviteByName(ctx, conn.UserID, f.Data)
	case "channel:acceptInvitation":
		return ctl.handleAcceptInvitation(ctx, conn.UserID, f.Data)
	case "channel:declineInvitation":
		return ctl.handleDeclineInvitation(ctx, conn.UserID, f.Data)
	case "channel:revoke":
		return ctl.handleRevoke(ctx, conn.UserID, f.Data)
	case "channel:kick":
		return ctl.handleKick(ctx, conn.UserID, f.Data)
	case "message:send":
		return ctl.handleSendMessage(ctx, conn.UserID, f.Data)
	case "message:markRead":
		return ctl.handleMarkRead(ctx, conn.UserID, f.Data)
	case "message:markDelivered":
		return ctl.handleMarkDelivered(ctx, conn.UserID, f.Data)
	case "subscribe:channels":
		return ctl.handleSubscribe(conn, f.Data)
	case "unsubscribe:channels":
		return ctl.handleUnsubscribe(conn, f.Data)
	case "presence:setStatus":
		return ctl.handleSetStatus(ctx, conn.UserID, f.Data)
	default:
		return nil, errors.New("unknown operation")
	}
}

func (ctl *SocketController) handleCreate(ctx context.Context, userID int64, raw json.RawMessage) (any, error) {
	var p createChannelPayload
	if err := ctl.decode(raw, &p); err != nil {
		return nil, err
	}
	return ctl.createChannel.Execute(ctx, channeluc.CreateChannelInput{
		ActorID:     userID,
		Kind:        channel.Kind(p.Type),
		Name:        p.Name,
		Description: p.Description,
	})
}

func (ctl *SocketController) handleJoin(ctx context.Context, userID int64, raw json.RawMessage) (any, error) {
	var p channelIDPayload
	if err := ctl.decode(raw, &p); err != nil {
		return nil, err
	}
	result, err := ctl.joinChannel.Execute(ctx, channeluc.JoinChannelInput{
		UserID:    userID,
		ChannelID: p.ChannelID,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"channelId": p.ChannelID, "memberCount": result.MemberCount}, nil
}

func (ctl *SocketController) handleJoinByName(ctx context.Context, userID int64, raw json.RawMessage) (any, error) {
	var p joinByNamePayload
	if err := ctl.decode(raw, &p); err != nil {
		return nil, err
	}
	result, err := ctl.joinByName.Execute(ctx, channeluc.JoinByNameInput{
		UserID: userID,
		Name:   p.Name,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"channel":       result.Channel,
		"created":       result.Created,
		"alreadyJoined": result.AlreadyJoined,
		"memberCount":   result.MemberCount,
	}, nil
}

func (ctl *SocketController) handleLeave(ctx context.Context, userID int64, raw json.RawMessage) (any, error) {
	var p channelIDPayload
	if err := ctl.decode(raw, &p); err != nil {
		return nil, err
	}
	result, err := ctl.leaveChannel.Execute(ctx, channeluc.LeaveChannelInput{
		UserID:    userID,
		ChannelID: p.ChannelID,
	})
	if err != nil {
		return nil, err
	}
	return departureAck(p.ChannelID, result), nil
}

func (ctl *SocketController) handleUpdate(ctx context.Context, userID int64, raw json.RawMessage) (any, error) {
	var p updateChannelPayload
	if err := ctl.decode(raw, &p); err != nil {
		return nil, err
	}
	return ctl.updateChannel.Execute(ctx, channeluc.UpdateChannelInput{
		ActorID:     userID,
		ChannelID:   p.ChannelID,
		Name:        p.Name,
		Description: p.Description,
	})
}

func (ctl *SocketController) handleDelete(ctx context.Context, userID int64, raw json.RawMessage) (any, error) {
	var p channelIDPayload
	if err := ctl.decode(raw, &p); err != nil {
		return nil, err
	}
	err := ctl.deleteChannel.Execute(ctx, channeluc.DeleteChannelInput{
		ActorID:   userID,
		ChannelID: p.ChannelID,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"channelId": p.ChannelID}, nil
}

func (ctl *SocketController) handleInvite(ctx context.Context, userID int64, raw json.RawMessage) (any, error) {
	var p invitePayload
	if err := ctl.decode(raw, &p); err != nil {
		return nil, err
	}
	inv, err := ctl.invite.Execute(ctx, channeluc.InviteInput{
		ActorID:      userID,
		ChannelID:    p.ChannelID,
		TargetUserID: p.UserID,
	})
	if err != nil {
		return nil, err
	}
	return invitationAck(inv), nil
}

func (ctl *SocketController) handleInviteByName(ctx context.Context, userID int64, raw json.RawMessage) (any, error) {
	var p inviteByNamePayload
	if err := ctl.decode(raw, &p); err != nil {
		return nil, err
	}
	inv, err := ctl.invite.ExecuteByName(ctx, userID, p.ChannelID, p.Username)
	if err != nil {
		return nil, err
	}
	return invitationAck(inv), nil
}

func (ctl *SocketController) handleAcceptInvitation(ctx context.Context, userID int64, raw json.RawMessage) (any, error) {
	var p invitationIDPayload
	if err := ctl.decode(raw, &p); err != nil {
		return nil, err
	}
	result, err := ctl.acceptInvite.Execute(ctx, channeluc.AcceptInvitationInput{
		UserID:       userID,
		InvitationID: p.InvitationID,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"invitationId": p.InvitationID, "memberCount": result.MemberCount}, nil
}

func (ctl *SocketController) handleDeclineInvitation(ctx context.Context, userID int64, raw json.RawMessage) (any, error) {
	var p invitationIDPayload
	if err := ctl.decode(raw, &p); err != nil {
		return nil, err
	}
	err := ctl.declineInvite.Execute(ctx, channeluc.DeclineInvitationInput{
		UserID:       userID,
		InvitationID: p.InvitationID,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"invitationId": p.InvitationID}, nil
}

func (ctl *SocketController) handleRevoke(ctx context.Context, userID int64, raw json.RawMessage) (any, error) {
	var p targetUserPayload
	if err := ctl.decode(raw, &p); err != nil {
		return nil, err
	}
	result, err := ctl.revoke.Execute(ctx, channeluc.RevokeMembershipInput{
		ActorID:      userID,
		ChannelID:    p.ChannelID,
		TargetUserID: p.UserID,
	})
	if err != nil {
		return nil, err
	}
	return departureAck(p.ChannelID, result), nil
}

func (ctl *SocketController) handleKick(ctx context.Context, userID int64, raw json.RawMessage) (any, error) {
	var p kickPayload
	if err := ctl.decode(raw, &p); err != nil {
		return nil, err
	}
	result, err := ctl.kick.Execute(ctx, channeluc.KickInput{
		ActorID:      userID,
		ChannelID:    p.ChannelID,
		TargetUserID: p.UserID,
		Reason:       p.Reason,
	})
	if err != nil {
		return nil, err
	}
	ack := map[string]any{"channelId": p.ChannelID, "banned": result.Banned, "votes": result.Votes}
	if result.Banned && result.ChannelDeleted {
		ack["channelDeleted"] = true
		ack["reason"] = result.Reason
	}
	return ack, nil
}

func (ctl *SocketController) handleSendMessage(ctx context.Context, userID int64, raw json.RawMessage) (any, error) {
	var p sendMessagePayload
	if err := ctl.decode(raw, &p); err != nil {
		return nil, err
	}
	return ctl.sendMessage.Execute(ctx, messageuc.SendMessageInput{
		SenderID:  userID,
		ChannelID: p.ChannelID,
		Content:   p.Content,
		ReplyToID: p.ReplyToID,
	})
}

func (ctl *SocketController) handleMarkRead(ctx context.Context, userID int64, raw json.RawMessage) (any, error) {
	var p messageIDPayload
	if err := ctl.decode(raw, &p); err != nil {
		return nil, err
	}
	return ctl.markRead.Execute(ctx, messageuc.MarkReadInput{
		UserID:    userID,
		MessageID: p.MessageID,
	})
}

func (ctl *SocketController) handleMarkDelivered(ctx context.Context, userID int64, raw json.RawMessage) (any, error) {
	var p messageIDPayload
	if err := ctl.decode(raw, &p); err != nil {
		return nil, err
	}
	return ctl.markDelivered.Execute(ctx, messageuc.MarkDeliveredInput{
		UserID:    userID,
		MessageID: p.MessageID,
	})
}

// handleSubscribe adds the connection to channel topics. Topic membership is
// routing only; it never touches data membership.
func (ctl *SocketController) handleSubscribe(conn *realtime.Connection, raw json.RawMessage) (any, error) {
	ids, err := decodeChannelIDs(raw)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		ctl.router.Subscribe(realtime.ChannelTopic(id), conn)
	}
	return map[string]any{"subscribed": ids}, nil
}

func (ctl *SocketController) handleUnsubscribe(conn *realtime.Connection, raw json.RawMessage) (any, error) {
	ids, err := decodeChannelIDs(raw)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		ctl.router.Unsubscribe(realtime.ChannelTopic(id), conn)
	}
	return map[string]any{"unsubscribed": ids}, nil
}

// handleSetStatus applies the transition. Going offline must still deliver
// the terminal response, so the session teardown is deferred until after the
// acknowledgement is queued.
func (ctl *SocketController) handleSetStatus(ctx context.Context, userID int64, raw json.RawMessage) (any, error) {
	var p setStatusPayload
	if err := ctl.decode(raw, &p); err != nil {
		return nil, err
	}
	result, err := ctl.setStatus.Execute(ctx, presenceuc.SetStatusInput{
		UserID:    userID,
		Status:    presence.Status(p.Status),
		Broadcast: true,
	})
	if err != nil {
		return nil, err
	}
	if result.Status == presence.StatusOffline {
		return ackThen{data: result, after: func() {
			ctl.router.DisconnectUser(userID, websocket.CloseNormalClosure, "went offline")
		}}, nil
	}
	return result, nil
}

func (ctl *SocketController) decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errInvalidPayload
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errInvalidPayload
	}
	if err := ctl.validate.Struct(v); err != nil {
		return errInvalidPayload
	}
	return nil
}

func decodeChannelIDs(raw json.RawMessage) ([]int64, error) {
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, errInvalidPayload
	}
	return ids, nil
}

func (ctl *SocketController) reply(conn *realtime.Connection, r response) {
	payload, err := json.Marshal(r)
	if err != nil {
		return
	}
	_ = conn.Send(payload)
}

func (ctl *SocketController) presenceTransition(userID int64, fn func(context.Context, int64) error) {
	ctx, cancel := context.WithTimeout(context.Background(), ctl.opTimeout)
	defer cancel()
	if err := fn(ctx, userID); err != nil {
		ctl.log.Warn("presence transition failed", "userId", userID, "error", err)
	}
}

func departureAck(channelID int64, result *channeluc.DepartureResult) map[string]any {
	ack := map[string]any{"channelId": channelID, "channelDeleted": result.ChannelDeleted}
	if result.ChannelDeleted {
		ack["reason"] = result.Reason
	} else {
		ack["memberCount"] = result.MemberCount
	}
	return ack
}

func invitationAck(inv *channel.Invitation) map[string]any {
	return map[string]any{
		"invitationId": inv.ID,
		"channelId":    inv.ChannelID,
		"userId":       inv.InvitedUserID,
		"expiresAt":    inv.ExpiresAt,
	}
}

func wireMessage(err error) string {
	switch {
	case errors.Is(err, channeluc.ErrPersistence),
		errors.Is(err, messageuc.ErrPersistence),
		errors.Is(err, presenceuc.ErrPersistence):
		return "internal error"
	case errors.Is(err, context.DeadlineExceeded):
		return "operation timed out"
	default:
		return err.Error()
	}
}
