package presence

import "errors"

// Status is a user's presence state. dnd is a sticky preference: reconnecting
// does not promote it to online.
type Status string

const (
	StatusOnline  Status = "online"
	StatusDnd     Status = "dnd"
	StatusOffline Status = "offline"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusDnd, StatusOffline:
		return true
	}
	return false
}

var ErrInvalidStatus = errors.New("invalid status")

// EventUserStatusChanged is pushed to co-members when a status transition is
// broadcast.
const EventUserStatusChanged = "user_status_changed"

// StatusChangedData is the user_status_changed payload.
type StatusChangedData struct {
	UserID int64  `json:"userId"`
	Status Status `json:"status"`
}
