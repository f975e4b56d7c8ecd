package domain

import "time"

// Message is a directed or team-addressed internal message. Exactly one of
// DestinyID and TeamID is set. A message may reply to one parent and have
// many replies.
type Message struct {
	ID              string
	Body            string
	SenderID        string
	DestinyID       *string
	TeamID          *string
	ParentID        *string
	CreateNetworkID string
	CreatedAt       time.Time
}

// IsPrivate is derived from the destination: a message addressed to a single
// user is private. There is no way to set it directly; address the message
// to a user instead.
func (m *Message) IsPrivate() bool {
	return m.DestinyID != nil
}

// CanBeReadBy is the authorization check, not a query filter: true iff the
// user is the sender or belongs to the message's target team.
func (m *Message) CanBeReadBy(userID string, userTeamIDs []string) bool {
	if m.SenderID == userID {
		return true
	}
	if m.TeamID == nil {
		return false
	}
	for _, teamID := range userTeamIDs {
		if teamID == *m.TeamID {
			return true
		}
	}
	return false
}

// ReadReceipt records that a user read a message and when. One row per
// (message, user) pair; this is the single read-tracking mechanism.
type ReadReceipt struct {
	MessageID string
	UserID    string
	ReadedAt  time.Time
}
