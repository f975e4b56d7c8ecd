package dto

import (
	"time"

	"github.com/atendo-hq/atendo/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Name       string    `json:"name"`
	Title      string    `json:"title"`
	Info       string    `json:"info"`
	Deadline   time.Time `json:"deadline"`
	TypeID     string    `json:"type_id"`
	ServiceID  string    `json:"service_id"`
	CostumerID *string   `json:"costumer_id,omitempty"`
}

// UpdateTicketRequest payload. ClosedAt is decoded so direct writes can be
// rejected with a contract error instead of silently ignored.
type UpdateTicketRequest struct {
	Name     *string    `json:"name,omitempty"`
	Title    *string    `json:"title,omitempty"`
	Info     *string    `json:"info,omitempty"`
	Deadline *time.Time `json:"deadline,omitempty"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`
}

// AdvanceStageRequest payload.
type AdvanceStageRequest struct {
	StageID string `json:"stage_id"`
	Info    string `json:"info"`
}

// CreateStageRequest payload.
type CreateStageRequest struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// TicketSummary response.
type TicketSummary struct {
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	Title      string     `json:"title"`
	Deadline   time.Time  `json:"deadline"`
	DeadlineIn string     `json:"deadline_in"`
	Closed     bool       `json:"closed"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	TypeID     string     `json:"type_id"`
	ServiceID  string     `json:"service_id"`
	CostumerID *string    `json:"costumer_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewTicketSummary maps a domain ticket.
func NewTicketSummary(ticket *domain.Ticket) TicketSummary {
	now := time.Now()
	return TicketSummary{
		ID:         ticket.ID,
		Name:       ticket.Name,
		Title:      ticket.Title,
		Deadline:   ticket.Deadline,
		DeadlineIn: ticket.DeadlineElapsed(now),
		Closed:     ticket.IsClosed(),
		ClosedAt:   ticket.ClosedAt(),
		TypeID:     ticket.TypeID,
		ServiceID:  ticket.ServiceID,
		CostumerID: ticket.CostumerID,
		CreatedAt:  ticket.CreatedAt,
		UpdatedAt:  ticket.UpdatedAt,
	}
}

// NewTicketSummaries maps a slice of tickets.
func NewTicketSummaries(tickets []domain.Ticket) []TicketSummary {
	out := make([]TicketSummary, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketSummary(&tickets[i]))
	}
	return out
}

// StageEventResponse is one history entry.
type StageEventResponse struct {
	ID        string    `json:"id"`
	Seq       int64     `json:"seq"`
	StageID   string    `json:"stage_id"`
	UserID    string    `json:"user_id"`
	Info      string    `json:"info,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewStageEventResponse maps one stage event.
func NewStageEventResponse(event *domain.TicketStageEvent) StageEventResponse {
	return StageEventResponse{
		ID:        event.ID,
		Seq:       event.Seq,
		StageID:   event.StageID,
		UserID:    event.UserID,
		Info:      event.Info,
		CreatedAt: event.CreatedAt,
	}
}

// StageResponse is a workflow stage.
type StageResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// TicketDetailResponse provides the ticket with its derived workflow state.
type TicketDetailResponse struct {
	Ticket       TicketSummary        `json:"ticket"`
	Info         string               `json:"info"`
	CurrentStage *StageResponse       `json:"current_stage,omitempty"`
	CurrentUser  *string              `json:"current_user_id,omitempty"`
	History      []StageEventResponse `json:"history"`
}

// TicketTypeResponse catalog entry.
type TicketTypeResponse struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}
