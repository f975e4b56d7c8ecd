package domain

import (
	"fmt"
	"time"
)

// Ticket is a support request progressing through ordered stages. Its
// current stage and current assignee are never stored on the row; both are
// derived from the most recent TicketStageEvent.
//
// The closed flag and closed timestamp are kept unexported: closedAt can
// only be stamped as a side effect of Close, never assigned directly.
type Ticket struct {
	ID              string
	Name            string
	Title           string
	Info            string
	Deadline        time.Time
	closed          bool
	closedAt        *time.Time
	TypeID          string
	CreateNetworkID string
	CreateUserID    string
	CostumerID      *string
	ServiceID       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsClosed reports the orthogonal closed flag; a ticket may be closed at any
// stage.
func (t *Ticket) IsClosed() bool {
	return t.closed
}

// ClosedAt returns the close timestamp, nil while it was never closed.
func (t *Ticket) ClosedAt() *time.Time {
	return t.closedAt
}

// Close marks the ticket closed, stamping closedAt exactly once. Re-closing
// an already-closed ticket does not restamp.
func (t *Ticket) Close(now time.Time) {
	if t.closed {
		return
	}
	t.closed = true
	if t.closedAt == nil {
		stamped := now
		t.closedAt = &stamped
	}
}

// Reopen clears the closed flag. The historical closedAt value is retained
// as an audit mark of the last closure.
func (t *Ticket) Reopen() {
	t.closed = false
}

// DeadlineElapsed renders the distance to the deadline, e.g.
// "3 days overdue" or "2 hours remaining".
func (t *Ticket) DeadlineElapsed(now time.Time) string {
	if now.After(t.Deadline) {
		return fmt.Sprintf("%s overdue", FormatElapsed(t.Deadline, now))
	}
	return fmt.Sprintf("%s remaining", FormatElapsed(t.Deadline, now))
}

// ClosedAtElapsed renders how long ago the ticket was closed, empty while
// it never was.
func (t *Ticket) ClosedAtElapsed(now time.Time) string {
	if t.closedAt == nil {
		return ""
	}
	return FormatElapsed(*t.closedAt, now) + " ago"
}

// IsOverdue reports whether the deadline passed while the ticket stays open.
func (t *Ticket) IsOverdue(now time.Time) bool {
	return !t.closed && now.After(t.Deadline)
}

// TicketRecord is the persisted shape of a Ticket row.
type TicketRecord struct {
	ID              string
	Name            string
	Title           string
	Info            string
	Deadline        time.Time
	Closed          bool
	ClosedAt        *time.Time
	TypeID          string
	CreateNetworkID string
	CreateUserID    string
	CostumerID      *string
	ServiceID       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TicketFromRecord rehydrates a stored row into a Ticket.
func TicketFromRecord(rec TicketRecord) *Ticket {
	return &Ticket{
		ID:              rec.ID,
		Name:            rec.Name,
		Title:           rec.Title,
		Info:            rec.Info,
		Deadline:        rec.Deadline,
		closed:          rec.Closed,
		closedAt:        rec.ClosedAt,
		TypeID:          rec.TypeID,
		CreateNetworkID: rec.CreateNetworkID,
		CreateUserID:    rec.CreateUserID,
		CostumerID:      rec.CostumerID,
		ServiceID:       rec.ServiceID,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

// Record returns the persisted shape of the ticket.
func (t *Ticket) Record() TicketRecord {
	return TicketRecord{
		ID:              t.ID,
		Name:            t.Name,
		Title:           t.Title,
		Info:            t.Info,
		Deadline:        t.Deadline,
		Closed:          t.closed,
		ClosedAt:        t.closedAt,
		TypeID:          t.TypeID,
		CreateNetworkID: t.CreateNetworkID,
		CreateUserID:    t.CreateUserID,
		CostumerID:      t.CostumerID,
		ServiceID:       t.ServiceID,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// TicketType is a lookup entity categorizing tickets.
type TicketType struct {
	ID        string
	Type      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TicketStage is a named workflow step ranked by a unique level. The set of
// stages, ordered by level, defines the nominal stage sequence; transitions
// are nevertheless unrestricted by rank.
type TicketStage struct {
	ID        string
	Name      string
	Level     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TicketStageEvent records a ticket entering a stage: who acted, when and
// why. Events are immutable once created; the ordered history of events for
// a ticket is its audit trail. Seq is a store-assigned monotonic sequence
// breaking same-timestamp ties.
type TicketStageEvent struct {
	ID        string
	Seq       int64
	TicketID  string
	StageID   string
	UserID    string
	Info      string
	CreatedAt time.Time
}
