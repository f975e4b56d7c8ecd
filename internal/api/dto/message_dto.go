package dto

import (
	"time"

	"github.com/atendo-hq/atendo/internal/domain"
)

// SendMessageRequest payload. Exactly one of destiny_user_id and team_id is
// required; private is decoded only so direct writes can be rejected.
type SendMessageRequest struct {
	Body      string  `json:"body"`
	DestinyID *string `json:"destiny_user_id,omitempty"`
	TeamID    *string `json:"team_id,omitempty"`
	ParentID  *string `json:"parent_id,omitempty"`
	Private   *bool   `json:"private,omitempty"`
}

// MessageResponse is one message.
type MessageResponse struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	SenderID  string    `json:"sender_id"`
	DestinyID *string   `json:"destiny_user_id,omitempty"`
	TeamID    *string   `json:"team_id,omitempty"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Private   bool      `json:"private"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessageResponse maps a domain message.
func NewMessageResponse(message *domain.Message) MessageResponse {
	return MessageResponse{
		ID:        message.ID,
		Body:      message.Body,
		SenderID:  message.SenderID,
		DestinyID: message.DestinyID,
		TeamID:    message.TeamID,
		ParentID:  message.ParentID,
		Private:   message.IsPrivate(),
		CreatedAt: message.CreatedAt,
	}
}

// MessageDetailResponse is one message plus the caller's own read state.
type MessageDetailResponse struct {
	MessageResponse
	Read bool `json:"read"`
}

// NewMessageDetailResponse maps a message with the reader's receipt state.
func NewMessageDetailResponse(message *domain.Message, read bool) MessageDetailResponse {
	return MessageDetailResponse{MessageResponse: NewMessageResponse(message), Read: read}
}

// NewMessageResponses maps a slice of messages.
func NewMessageResponses(messages []domain.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, NewMessageResponse(&messages[i]))
	}
	return out
}

// UnreadCountResponse is the per-user unread counter.
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// TeamResponse is one team in the caller's messaging sidebar.
type TeamResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTeamResponses maps teams.
func NewTeamResponses(teams []domain.Team) []TeamResponse {
	out := make([]TeamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, TeamResponse{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt})
	}
	return out
}
