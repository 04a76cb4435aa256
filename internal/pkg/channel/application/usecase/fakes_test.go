package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	channel "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/persistence/repository/port"
)

// fakeRepo is an in-memory ChannelRepository that mirrors the store's
// uniqueness behavior: duplicate-sensitive inserts return the same domain
// conflict errors the Postgres adapter maps from 23505.
type fakeRepo struct {
	mu sync.Mutex

	nextID      int64
	channels    map[int64]channel.Channel
	memberships map[int64]channel.Membership
	bans        map[int64]channel.Ban
	votes       map[int64]channel.KickVote
	invitations map[int64]channel.Invitation
	users       map[int64]channel.User
}

var _ repository.ChannelRepository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		channels:    make(map[int64]channel.Channel),
		memberships: make(map[int64]channel.Membership),
		bans:        make(map[int64]channel.Ban),
		votes:       make(map[int64]channel.KickVote),
		invitations: make(map[int64]channel.Invitation),
		users:       make(map[int64]channel.User),
	}
}

func (f *fakeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) addUser(id int64, nick string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = channel.User{ID: id, NickName: nick, Email: nick + "@example.com", Status: "online"}
}

func (f *fakeRepo) addChannel(kind channel.Kind, name string, createdBy int64) channel.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := channel.Channel{ID: f.id(), Kind: kind, Name: name, CreatedBy: createdBy, CreatedAt: time.Now().UTC()}
	f.channels[ch.ID] = ch
	return ch
}

func (f *fakeRepo) addMember(channelID, userID int64, role channel.Role) channel.Membership {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := channel.Membership{ID: f.id(), ChannelID: channelID, UserID: userID, Role: role, JoinedAt: time.Now().UTC()}
	f.memberships[m.ID] = m
	return m
}

func (f *fakeRepo) CreateChannel(_ context.Context, c channel.Channel) (channel.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.channels {
		if existing.Name == c.Name {
			return channel.Channel{}, channel.ErrNameTaken
		}
	}
	c.ID = f.id()
	f.channels[c.ID] = c
	return c, nil
}

func (f *fakeRepo) FindChannel(_ context.Context, id int64) (*channel.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch, ok := f.channels[id]; ok {
		return &ch, nil
	}
	return nil, nil
}

func (f *fakeRepo) FindChannelByName(_ context.Context, name string) (*channel.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.channels {
		if ch.Name == name {
			ch := ch
			return &ch, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) UpdateChannel(_ context.Context, c channel.Channel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.channels {
		if id != c.ID && existing.Name == c.Name {
			return channel.ErrNameTaken
		}
	}
	f.channels[c.ID] = c
	return nil
}

func (f *fakeRepo) DeleteChannel(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.channels, id)
	for mid, m := range f.memberships {
		if m.ChannelID == id {
			delete(f.memberships, mid)
		}
	}
	return nil
}

func (f *fakeRepo) ChannelsInactiveSince(_ context.Context, cutoff time.Time) ([]channel.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stale []channel.Channel
	for _, ch := range f.channels {
		if ch.LastActivityAt == nil || ch.LastActivityAt.Before(cutoff) {
			stale = append(stale, ch)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].ID < stale[j].ID })
	return stale, nil
}

func (f *fakeRepo) ActiveMembership(_ context.Context, channelID, userID int64) (*channel.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.memberships {
		if m.ChannelID == channelID && m.UserID == userID && m.Active() {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) InactiveMembership(_ context.Context, channelID, userID int64) (*channel.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.memberships {
		if m.ChannelID == channelID && m.UserID == userID && !m.Active() {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) InsertMembership(_ context.Context, m channel.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.memberships {
		if existing.ChannelID == m.ChannelID && existing.UserID == m.UserID {
			return channel.ErrAlreadyMember
		}
	}
	m.ID = f.id()
	f.memberships[m.ID] = m
	return nil
}

func (f *fakeRepo) ReactivateMembership(_ context.Context, membershipID int64, joinedAt time.Time, addedBy *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.memberships[membershipID]
	m.JoinedAt = joinedAt
	m.LeftAt = nil
	if addedBy != nil {
		m.AddedBy = addedBy
	}
	f.memberships[membershipID] = m
	return nil
}

func (f *fakeRepo) DeactivateMembership(_ context.Context, membershipID int64, leftAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.memberships[membershipID]
	m.LeftAt = &leftAt
	f.memberships[membershipID] = m
	return nil
}

func (f *fakeRepo) ActiveMembers(_ context.Context, channelID int64) ([]channel.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var members []channel.Membership
	for _, m := range f.memberships {
		if m.ChannelID == channelID && m.Active() {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })
	return members, nil
}

func (f *fakeRepo) ActiveBan(_ context.Context, channelID, userID int64) (*channel.Ban, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bans {
		if b.ChannelID == channelID && b.UserID == userID && b.Active() {
			b := b
			return &b, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) UpsertBan(_ context.Context, b channel.Ban) (channel.Ban, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.bans {
		if existing.ChannelID == b.ChannelID && existing.UserID == b.UserID {
			existing.BannedBy = b.BannedBy
			existing.BannedAt = b.BannedAt
			if b.Reason != nil {
				existing.Reason = b.Reason
			}
			existing.LiftedAt = nil
			f.bans[id] = existing
			return existing, nil
		}
	}
	b.ID = f.id()
	f.bans[b.ID] = b
	return b, nil
}

func (f *fakeRepo) LiftBan(_ context.Context, banID int64, liftedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.bans[banID]
	b.LiftedAt = &liftedAt
	f.bans[banID] = b
	return nil
}

func (f *fakeRepo) InsertKickVote(_ context.Context, channelID, targetUserID, voterID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.votes {
		if v.ChannelID == channelID && v.TargetUserID == targetUserID && v.VoterID == voterID {
			return channel.ErrDuplicateVote
		}
	}
	v := channel.KickVote{ID: f.id(), ChannelID: channelID, TargetUserID: targetUserID, VoterID: voterID, CreatedAt: time.Now().UTC()}
	f.votes[v.ID] = v
	return nil
}

func (f *fakeRepo) CountKickVotes(_ context.Context, channelID, targetUserID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, v := range f.votes {
		if v.ChannelID == channelID && v.TargetUserID == targetUserID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) ClearKickVotes(_ context.Context, channelID, targetUserID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, v := range f.votes {
		if v.ChannelID == channelID && v.TargetUserID == targetUserID {
			delete(f.votes, id)
		}
	}
	return nil
}

func (f *fakeRepo) CreateInvitation(_ context.Context, inv channel.Invitation) (channel.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.invitations {
		if existing.ChannelID == inv.ChannelID && existing.InvitedUserID == inv.InvitedUserID &&
			existing.Status == channel.InvitationPending {
			return channel.Invitation{}, channel.ErrPendingInvitationExists
		}
	}
	inv.ID = f.id()
	f.invitations[inv.ID] = inv
	return inv, nil
}

func (f *fakeRepo) PendingInvitation(_ context.Context, invitationID, invitedUserID int64) (*channel.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[invitationID]
	if !ok || inv.InvitedUserID != invitedUserID || inv.Status != channel.InvitationPending {
		return nil, nil
	}
	if inv.ExpiresAt != nil && inv.ExpiresAt.Before(time.Now().UTC()) {
		return nil, nil
	}
	return &inv, nil
}

func (f *fakeRepo) MarkInvitation(_ context.Context, invitationID int64, status channel.InvitationStatus, respondedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv := f.invitations[invitationID]
	inv.Status = status
	inv.RespondedAt = &respondedAt
	f.invitations[invitationID] = inv
	return nil
}

func (f *fakeRepo) FindUser(_ context.Context, userID int64) (*channel.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeRepo) FindUserByNick(_ context.Context, nickName string) (*channel.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.NickName == nickName {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

// recordedEvent is one emitted (recipient, type, data) triple.
type recordedEvent struct {
	UserID int64
	Type   string
	Data   any
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeEmitter) ToUser(userID int64, eventType string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{UserID: userID, Type: eventType, Data: data})
}

func (f *fakeEmitter) ToUsers(userIDs []int64, eventType string, data any) {
	for _, id := range userIDs {
		f.ToUser(id, eventType, data)
	}
}

func (f *fakeEmitter) ofType(eventType string) []recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedEvent
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
