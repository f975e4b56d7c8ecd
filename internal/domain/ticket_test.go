package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketCloseStampsOnce(t *testing.T) {
	var ticket Ticket
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	require.False(t, ticket.IsClosed())
	require.Nil(t, ticket.ClosedAt())

	ticket.Close(first)
	assert.True(t, ticket.IsClosed())
	require.NotNil(t, ticket.ClosedAt())
	assert.Equal(t, first, *ticket.ClosedAt())

	ticket.Close(later)
	assert.Equal(t, first, *ticket.ClosedAt(), "re-closing must not restamp")
}

func TestTicketReopenRetainsClosedAt(t *testing.T) {
	var ticket Ticket
	closedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ticket.Close(closedAt)
	ticket.Reopen()

	assert.False(t, ticket.IsClosed())
	require.NotNil(t, ticket.ClosedAt())
	assert.Equal(t, closedAt, *ticket.ClosedAt())

	ticket.Close(closedAt.Add(time.Hour))
	assert.Equal(t, closedAt, *ticket.ClosedAt(), "closedAt records the first closure only")
}

func TestTicketIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	ticket := Ticket{Deadline: now.Add(-time.Hour)}

	assert.True(t, ticket.IsOverdue(now))

	ticket.Close(now)
	assert.False(t, ticket.IsOverdue(now), "closed tickets are never overdue")

	open := Ticket{Deadline: now.Add(time.Hour)}
	assert.False(t, open.IsOverdue(now))
}

func TestTicketDeadlineElapsed(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	overdue := Ticket{Deadline: now.Add(-72 * time.Hour)}
	assert.Equal(t, "3 days overdue", overdue.DeadlineElapsed(now))

	remaining := Ticket{Deadline: now.Add(2 * time.Hour)}
	assert.Equal(t, "2 hours remaining", remaining.DeadlineElapsed(now))
}

func TestTicketClosedAtElapsed(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	var open Ticket
	assert.Equal(t, "", open.ClosedAtElapsed(now))

	closed := Ticket{}
	closed.Close(now.Add(-30 * time.Minute))
	assert.Equal(t, "30 minutes ago", closed.ClosedAtElapsed(now))
}

func TestTicketRecordRoundTrip(t *testing.T) {
	closedAt := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	rec := TicketRecord{
		ID:       "t1",
		Title:    "printer on fire",
		Closed:   true,
		ClosedAt: &closedAt,
	}

	ticket := TicketFromRecord(rec)
	assert.True(t, ticket.IsClosed())
	require.NotNil(t, ticket.ClosedAt())
	assert.Equal(t, closedAt, *ticket.ClosedAt())

	back := ticket.Record()
	assert.Equal(t, rec.Closed, back.Closed)
	assert.Equal(t, rec.ClosedAt, back.ClosedAt)
}
