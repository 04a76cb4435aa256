package channel

import (
	"strings"
	"time"
)

// Kind distinguishes open channels from admin-invite-only ones.
type Kind string

const (
	KindPublic  Kind = "public"
	KindPrivate Kind = "private"
)

// Valid reports whether k is one of the two supported channel kinds.
func (k Kind) Valid() bool { return k == KindPublic || k == KindPrivate }

// Channel is a named group conversation. Names are globally unique across both
// kinds. A channel is deleted automatically once it has no active members or
// no active admin.
type Channel struct {
	ID             int64      `json:"id" db:"id"`
	Kind           Kind       `json:"type" db:"type"`
	Name           string     `json:"name" db:"name"`
	Description    *string    `json:"description" db:"description"`
	CreatedBy      int64      `json:"createdBy" db:"created_by"`
	LastActivityAt *time.Time `json:"lastActivityAt" db:"last_activity_at"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
}

// NewChannel validates and normalizes the fields of a channel to create.
func NewChannel(kind Kind, name string, description *string, createdBy int64) (Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Channel{}, ErrNameRequired
	}
	if !kind.Valid() {
		return Channel{}, ErrInvalidKind
	}
	if description != nil && strings.TrimSpace(*description) == "" {
		description = nil
	}
	now := time.Now().UTC()
	return Channel{
		Kind:           kind,
		Name:           name,
		Description:    description,
		CreatedBy:      createdBy,
		LastActivityAt: &now,
		CreatedAt:      now,
	}, nil
}
