package domain

import "time"

// LoginSession is one entry in a user's append-only login audit trail.
// Sessions are never mutated after creation.
type LoginSession struct {
	ID        string
	UserID    string
	NetworkID *string
	Location  string
	CreatedAt time.Time
}
