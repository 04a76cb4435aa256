package usecase

// Emitter fans events out to users' personal topics. Implementations are
// fire-and-forget: delivery failures must never surface to the caller.
// The realtime router satisfies this interface.
type Emitter interface {
	ToUser(userID int64, eventType string, data any)
	ToUsers(userIDs []int64, eventType string, data any)
}
