package domain

import "time"

// Network records an observed caller address. Rows are created lazily on the
// first request from a new address and never updated or deleted.
type Network struct {
	ID        string
	IP        string
	CreatedAt time.Time
}
