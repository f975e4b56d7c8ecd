package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/events"
	"github.com/atendo-hq/atendo/internal/persistence"
	"github.com/atendo-hq/atendo/internal/repository"
	"github.com/atendo-hq/atendo/pkg/util"
)

// TicketService coordinates the staged ticket workflow. A ticket's current
// stage is never stored; every transition appends an immutable stage event
// and the latest event is the derived state.
type TicketService struct {
	tickets    repository.TicketRepository
	stages     repository.TicketStageRepository
	stEvents   repository.StageEventRepository
	types      repository.TicketTypeRepository
	services   repository.ServiceRepository
	costumers  repository.CostumerRepository
	dispatcher events.Dispatcher
	db         persistence.Querier
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	StageRepo      repository.TicketStageRepository
	StageEventRepo repository.StageEventRepository
	TypeRepo       repository.TicketTypeRepository
	ServiceRepo    repository.ServiceRepository
	CostumerRepo   repository.CostumerRepository
	Dispatcher     events.Dispatcher
	DB             persistence.Querier
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		stages:     deps.StageRepo,
		stEvents:   deps.StageEventRepo,
		types:      deps.TypeRepo,
		services:   deps.ServiceRepo,
		costumers:  deps.CostumerRepo,
		dispatcher: deps.Dispatcher,
		db:         deps.DB,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Name       string
	Title      string
	Info       string
	Deadline   time.Time
	TypeID     string
	ServiceID  string
	CostumerID *string
}

// TicketUpdateInput describes mutable ticket fields. ClosedAt is present
// only to reject attempts to write it directly.
type TicketUpdateInput struct {
	Name     *string
	Title    *string
	Info     *string
	Deadline *time.Time
	ClosedAt *time.Time
}

// TicketDetail is a ticket with its derived workflow state.
type TicketDetail struct {
	Ticket       *domain.Ticket
	CurrentEvent *domain.TicketStageEvent
	CurrentStage *domain.TicketStage
	History      []domain.TicketStageEvent
}

// CreateTicket opens a ticket and records its first stage event atomically.
func (s *TicketService) CreateTicket(ctx context.Context, actorID, networkID string, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Info) == "" {
		return nil, util.NewValidationError("title and info required", nil)
	}
	if input.Deadline.IsZero() {
		return nil, util.NewValidationError("deadline required", nil)
	}
	if _, err := s.types.GetByID(ctx, input.TypeID); err != nil {
		if repository.IsNoRows(err) {
			return nil, util.NewNotFound("ticket type", nil)
		}
		return nil, err
	}
	if _, err := s.services.GetByID(ctx, input.ServiceID); err != nil {
		if repository.IsNoRows(err) {
			return nil, util.NewNotFound("service", nil)
		}
		return nil, err
	}
	if input.CostumerID != nil {
		if _, err := s.costumers.GetByID(ctx, *input.CostumerID); err != nil {
			if repository.IsNoRows(err) {
				return nil, util.NewNotFound("costumer", nil)
			}
			return nil, err
		}
	}

	initial, err := s.initialStage(ctx)
	if err != nil {
		return nil, err
	}

	ticket := domain.TicketFromRecord(domain.TicketRecord{
		Name:            strings.TrimSpace(input.Name),
		Title:           strings.TrimSpace(input.Title),
		Info:            strings.TrimSpace(input.Info),
		Deadline:        input.Deadline,
		TypeID:          input.TypeID,
		CreateNetworkID: networkID,
		CreateUserID:    actorID,
		CostumerID:      input.CostumerID,
		ServiceID:       input.ServiceID,
	})

	var event domain.TicketStageEvent
	err = persistence.WithTx(ctx, s.db, func(ctx context.Context) error {
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return err
		}
		event = domain.TicketStageEvent{
			TicketID: ticket.ID,
			StageID:  initial.ID,
			UserID:   actorID,
			Info:     "ticket created",
		}
		return s.stEvents.Create(ctx, &event)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventTicketCreated,
		ActorID: actorID,
		Payload: events.TicketCreatedPayload{
			TicketID: ticket.ID,
			TypeID:   ticket.TypeID,
			Title:    ticket.Title,
			StageID:  initial.ID,
		},
	})
	return ticket, nil
}

// AdvanceStage appends a transition event. Transitions are unrestricted by
// stage rank; re-entering a prior stage is allowed.
func (s *TicketService) AdvanceStage(ctx context.Context, ticketID, stageID, actorID, info string) (*domain.TicketStageEvent, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if repository.IsNoRows(err) {
			return nil, util.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if _, err := s.stages.GetByID(ctx, stageID); err != nil {
		if repository.IsNoRows(err) {
			return nil, util.NewNotFound("ticket stage", nil)
		}
		return nil, err
	}

	event := &domain.TicketStageEvent{
		TicketID: ticketID,
		StageID:  stageID,
		UserID:   actorID,
		Info:     info,
	}
	if err := s.stEvents.Create(ctx, event); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventTicketStageAdvance,
		ActorID: actorID,
		Payload: events.TicketStageAdvancedPayload{
			TicketID: ticketID,
			StageID:  stageID,
			EventID:  event.ID,
			Info:     info,
		},
	})
	return event, nil
}

// Close marks the ticket closed. Re-closing is a no-op; the close timestamp
// is stamped exactly once.
func (s *TicketService) Close(ctx context.Context, ticketID, actorID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, util.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if ticket.IsClosed() {
		return ticket, nil
	}

	ticket.Close(time.Now())
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventTicketClosed,
		ActorID: actorID,
		Payload: events.TicketClosedPayload{
			TicketID: ticket.ID,
			ClosedAt: *ticket.ClosedAt(),
		},
	})
	return ticket, nil
}

// Reopen clears the closed flag, keeping the historical close timestamp.
func (s *TicketService) Reopen(ctx context.Context, ticketID, actorID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, util.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if !ticket.IsClosed() {
		return ticket, nil
	}

	ticket.Reopen()
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventTicketReopened,
		ActorID: actorID,
		Payload: events.TicketReopenedPayload{TicketID: ticket.ID},
	})
	return ticket, nil
}

// Update edits a ticket's describable fields. The close timestamp is
// derived and any attempt to write it directly is a contract violation.
func (s *TicketService) Update(ctx context.Context, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	if input.ClosedAt != nil {
		return nil, util.NewNotAssignable("closed_at", "set closed instead")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, util.NewNotFound("ticket", nil)
		}
		return nil, err
	}

	if input.Name != nil {
		ticket.Name = strings.TrimSpace(*input.Name)
	}
	if input.Title != nil {
		ticket.Title = strings.TrimSpace(*input.Title)
	}
	if input.Info != nil {
		ticket.Info = strings.TrimSpace(*input.Info)
	}
	if input.Deadline != nil {
		ticket.Deadline = *input.Deadline
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Get returns a ticket with its derived current stage and full history.
func (s *TicketService) Get(ctx context.Context, ticketID string) (*TicketDetail, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, util.NewNotFound("ticket", nil)
		}
		return nil, err
	}

	detail := &TicketDetail{Ticket: ticket}

	current, err := s.stEvents.CurrentByTicket(ctx, ticketID)
	if err != nil && !repository.IsNoRows(err) {
		return nil, err
	}
	if current != nil {
		detail.CurrentEvent = current
		stage, err := s.stages.GetByID(ctx, current.StageID)
		if err != nil && !repository.IsNoRows(err) {
			return nil, err
		}
		detail.CurrentStage = stage
	}

	history, err := s.stEvents.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	detail.History = history
	return detail, nil
}

// CurrentStage derives only the stage of the latest event, nil for a
// ticket without history.
func (s *TicketService) CurrentStage(ctx context.Context, ticketID string) (*domain.TicketStage, error) {
	current, err := s.stEvents.CurrentByTicket(ctx, ticketID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	stage, err := s.stages.GetByID(ctx, current.StageID)
	if err != nil {
		return nil, err
	}
	return stage, nil
}

// ListByCurrentUser returns tickets currently in the user's hands.
func (s *TicketService) ListByCurrentUser(ctx context.Context, userID string, limit, offset int) ([]domain.Ticket, error) {
	return s.tickets.ListByCurrentUser(ctx, userID, limit, offset)
}

// ListOverdue returns open tickets past their deadline.
func (s *TicketService) ListOverdue(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	return s.tickets.ListOverdue(ctx, limit, offset)
}

// ListStages returns the workflow stages ordered by level.
func (s *TicketService) ListStages(ctx context.Context) ([]domain.TicketStage, error) {
	return s.stages.List(ctx)
}

// CreateStage registers a new workflow stage with a unique rank.
func (s *TicketService) CreateStage(ctx context.Context, name string, level int) (*domain.TicketStage, error) {
	if strings.TrimSpace(name) == "" {
		return nil, util.NewValidationError("stage name required", nil)
	}
	if existing, err := s.stages.GetByLevel(ctx, level); err == nil {
		return nil, util.NewConflict("stage level already in use",
			map[string]any{"stage": existing.Name, "level": level})
	} else if !repository.IsNoRows(err) {
		return nil, err
	}
	stage := &domain.TicketStage{Name: strings.TrimSpace(name), Level: level}
	if err := s.stages.Create(ctx, stage); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, util.NewConflict("stage name or level already in use", nil)
		}
		return nil, err
	}
	return stage, nil
}

// initialStage returns the lowest-ranked stage, where every new ticket's
// history begins.
func (s *TicketService) initialStage(ctx context.Context) (*domain.TicketStage, error) {
	stages, err := s.stages.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(stages) == 0 {
		return nil, util.NewValidationError("no ticket stages configured", nil)
	}
	return &stages[0], nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
