package usecase

// Emitter pushes events to users' personal topics.
type Emitter interface {
	ToUser(userID int64, eventType string, data any)
	ToUsers(userIDs []int64, eventType string, data any)
}
