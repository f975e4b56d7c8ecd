package domain

import "time"

// Team groups users for team-addressed messaging.
type Team struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TeamMembership is one row of the team/user join table.
type TeamMembership struct {
	TeamID   string
	UserID   string
	JoinedAt time.Time
}
