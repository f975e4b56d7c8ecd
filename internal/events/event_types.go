package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserLoggedIn       EventType = "user_logged_in"
	EventTicketCreated      EventType = "ticket_created"
	EventTicketStageAdvance EventType = "ticket_stage_advanced"
	EventTicketClosed       EventType = "ticket_closed"
	EventTicketReopened     EventType = "ticket_reopened"
	EventMessageSent        EventType = "message_sent"
	EventMessageRead        EventType = "message_read"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserLoggedInPayload payload.
type UserLoggedInPayload struct {
	UserID     string `json:"user_id"`
	NetworkID  string `json:"network_id"`
	LoginCount int    `json:"login_count"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID string `json:"ticket_id"`
	TypeID   string `json:"type_id"`
	Title    string `json:"title"`
	StageID  string `json:"stage_id"`
}

// TicketStageAdvancedPayload payload.
type TicketStageAdvancedPayload struct {
	TicketID string `json:"ticket_id"`
	StageID  string `json:"stage_id"`
	EventID  string `json:"event_id"`
	Info     string `json:"info,omitempty"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	TicketID string    `json:"ticket_id"`
	ClosedAt time.Time `json:"closed_at"`
}

// TicketReopenedPayload payload.
type TicketReopenedPayload struct {
	TicketID string `json:"ticket_id"`
}

// MessageSentPayload payload.
type MessageSentPayload struct {
	MessageID string  `json:"message_id"`
	DestinyID *string `json:"destiny_user_id,omitempty"`
	TeamID    *string `json:"team_id,omitempty"`
	ParentID  *string `json:"parent_id,omitempty"`
}

// MessageReadPayload payload.
type MessageReadPayload struct {
	MessageID string `json:"message_id"`
	ReaderID  string `json:"reader_id"`
}
