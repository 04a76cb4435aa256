package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Event is the envelope pushed to subscribed clients. Operations acknowledge
// through their own response frame; Event is strictly server-initiated.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// UserTopic is the personal broadcast address of a user. Every authenticated
// connection is subscribed to its owner's topic for its whole lifetime.
func UserTopic(userID int64) string { return fmt.Sprintf("user:%d", userID) }

// ChannelTopic is the broadcast address of a channel.
func ChannelTopic(channelID int64) string { return fmt.Sprintf("channel:%d", channelID) }

// Router maintains the mapping from logical topics to live connections and
// performs fan-out. A topic has zero or more subscribers; a user may hold any
// number of concurrent connections. Delivery is best-effort: a send failure
// never propagates to the operation that triggered the broadcast.
type Router struct {
	mu            sync.RWMutex
	sessions      map[string]*Connection            // sessionID -> connection
	users         map[int64]map[string]*Connection  // userID -> sessionID -> connection
	topics        map[string]map[string]*Connection // topic -> sessionID -> connection
	sessionTopics map[string]map[string]struct{}    // sessionID -> subscribed topics

	log *slog.Logger
}

// NewRouter constructs an initialized Router.
func NewRouter(log *slog.Logger) *Router {
	return &Router{
		sessions:      make(map[string]*Connection),
		users:         make(map[int64]map[string]*Connection),
		topics:        make(map[string]map[string]*Connection),
		sessionTopics: make(map[string]map[string]struct{}),
		log:           log,
	}
}

// Attach registers a connection, starts its write loop and subscribes it to
// its owner's personal topic.
func (r *Router) Attach(conn *Connection) {
	r.mu.Lock()
	r.sessions[conn.ID] = conn
	byUser := r.users[conn.UserID]
	if byUser == nil {
		byUser = make(map[string]*Connection)
		r.users[conn.UserID] = byUser
	}
	byUser[conn.ID] = conn
	r.sessionTopics[conn.ID] = make(map[string]struct{})
	r.subscribeLocked(UserTopic(conn.UserID), conn)
	r.mu.Unlock()

	conn.Start()
}

// Detach removes a connection from all topics. It does not close the socket;
// callers own the connection lifecycle.
func (r *Router) Detach(conn *Connection) {
	r.mu.Lock()
	r.detachLocked(conn.ID)
	r.mu.Unlock()
}

// Subscribe adds the connection to a topic. Unknown sessions are ignored so a
// racing disconnect cannot resurrect state.
func (r *Router) Subscribe(topic string, conn *Connection) {
	r.mu.Lock()
	if _, ok := r.sessions[conn.ID]; ok {
		r.subscribeLocked(topic, conn)
	}
	r.mu.Unlock()
}

// Unsubscribe removes the connection from a topic.
func (r *Router) Unsubscribe(topic string, conn *Connection) {
	r.mu.Lock()
	r.unsubscribeLocked(topic, conn.ID)
	r.mu.Unlock()
}

// SessionCount reports how many live connections the user currently holds.
func (r *Router) SessionCount(userID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID])
}

// Publish writes payload to every subscriber of the topic and returns how many
// connections accepted it. Send errors are swallowed.
func (r *Router) Publish(topic string, payload []byte) int {
	r.mu.RLock()
	subscribers := r.topics[topic]
	conns := make([]*Connection, 0, len(subscribers))
	for _, conn := range subscribers {
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// ToUser marshals an event and publishes it to the user's personal topic.
func (r *Router) ToUser(userID int64, eventType string, data any) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		r.log.Warn("realtime: event marshal failed", "type", eventType, "err", err)
		return
	}
	r.Publish(UserTopic(userID), payload)
}

// ToUsers marshals an event once and publishes it to each user's personal topic.
func (r *Router) ToUsers(userIDs []int64, eventType string, data any) {
	if len(userIDs) == 0 {
		return
	}
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		r.log.Warn("realtime: event marshal failed", "type", eventType, "err", err)
		return
	}
	for _, id := range userIDs {
		r.Publish(UserTopic(id), payload)
	}
}

// DisconnectUser detaches and closes every live connection of the user.
func (r *Router) DisconnectUser(userID int64, code int, reason string) {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.users[userID]))
	for _, conn := range r.users[userID] {
		conns = append(conns, conn)
	}
	for _, conn := range conns {
		r.detachLocked(conn.ID)
	}
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close(code, reason)
	}
}

// Close terminates all tracked connections and clears router state.
func (r *Router) Close() {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.sessions))
	for _, conn := range r.sessions {
		conns = append(conns, conn)
	}
	r.sessions = make(map[string]*Connection)
	r.users = make(map[int64]map[string]*Connection)
	r.topics = make(map[string]map[string]*Connection)
	r.sessionTopics = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close(1001, "router shutdown")
	}
}

func (r *Router) subscribeLocked(topic string, conn *Connection) {
	subscribers := r.topics[topic]
	if subscribers == nil {
		subscribers = make(map[string]*Connection)
		r.topics[topic] = subscribers
	}
	subscribers[conn.ID] = conn
	r.sessionTopics[conn.ID][topic] = struct{}{}
}

func (r *Router) unsubscribeLocked(topic string, sessionID string) {
	subscribers := r.topics[topic]
	if subscribers == nil {
		return
	}
	delete(subscribers, sessionID)
	if len(subscribers) == 0 {
		delete(r.topics, topic)
	}
	if topics, ok := r.sessionTopics[sessionID]; ok {
		delete(topics, topic)
	}
}

func (r *Router) detachLocked(sessionID string) {
	conn, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(r.sessions, sessionID)

	if byUser, ok := r.users[conn.UserID]; ok {
		delete(byUser, sessionID)
		if len(byUser) == 0 {
			delete(r.users, conn.UserID)
		}
	}

	for topic := range r.sessionTopics[sessionID] {
		r.unsubscribeLocked(topic, sessionID)
	}
	delete(r.sessionTopics, sessionID)
}
