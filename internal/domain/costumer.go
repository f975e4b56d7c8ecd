package domain

import "time"

// Costumer is the person or organization a ticket is opened for. Tickets and
// addresses reference it; it carries no behavior of its own.
type Costumer struct {
	ID        string
	Name      string
	AddressID *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Service is the catalog entry a ticket is filed under.
type Service struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
