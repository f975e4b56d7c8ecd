package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/atendo-hq/atendo/internal/api/dto"
	"github.com/atendo-hq/atendo/internal/auth"
	"github.com/atendo-hq/atendo/internal/service"
	"github.com/atendo-hq/atendo/pkg/util"
)

// TicketsHandler exposes the staged ticket workflow.
type TicketsHandler struct {
	tickets   *service.TicketService
	networkID NetworkIDResolver
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, networkID NetworkIDResolver) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService, networkID: networkID}
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), user.ID, h.networkID(c), service.TicketCreateInput{
		Name:       req.Name,
		Title:      req.Title,
		Info:       req.Info,
		Deadline:   req.Deadline,
		TypeID:     req.TypeID,
		ServiceID:  req.ServiceID,
		CostumerID: req.CostumerID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	detail, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	resp := dto.TicketDetailResponse{
		Ticket:  dto.NewTicketSummary(detail.Ticket),
		Info:    detail.Ticket.Info,
		History: make([]dto.StageEventResponse, 0, len(detail.History)),
	}
	for i := range detail.History {
		resp.History = append(resp.History, dto.NewStageEventResponse(&detail.History[i]))
	}
	if detail.CurrentStage != nil {
		resp.CurrentStage = &dto.StageResponse{
			ID:    detail.CurrentStage.ID,
			Name:  detail.CurrentStage.Name,
			Level: detail.CurrentStage.Level,
		}
	}
	if detail.CurrentEvent != nil {
		resp.CurrentUser = &detail.CurrentEvent.UserID
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Update handles PATCH /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Update(c.UserContext(), c.Params("id"), service.TicketUpdateInput{
		Name:     req.Name,
		Title:    req.Title,
		Info:     req.Info,
		Deadline: req.Deadline,
		ClosedAt: req.ClosedAt,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// AdvanceStage handles POST /tickets/:id/stage.
func (h *TicketsHandler) AdvanceStage(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.AdvanceStageRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.StageID == "" {
		return util.NewValidationError("stage_id required", nil)
	}

	event, err := h.tickets.AdvanceStage(c.UserContext(), c.Params("id"), req.StageID, user.ID, req.Info)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewStageEventResponse(event)})
}

// Close handles POST /tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.Close(c.UserContext(), c.Params("id"), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Reopen handles POST /tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.Reopen(c.UserContext(), c.Params("id"), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// ListMine handles GET /tickets/mine.
func (h *TicketsHandler) ListMine(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	tickets, err := h.tickets.ListByCurrentUser(c.UserContext(), user.ID, c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummaries(tickets)})
}

// ListOverdue handles GET /tickets/overdue.
func (h *TicketsHandler) ListOverdue(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListOverdue(c.UserContext(), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummaries(tickets)})
}

// ListStages handles GET /tickets/stages.
func (h *TicketsHandler) ListStages(c *fiber.Ctx) error {
	stages, err := h.tickets.ListStages(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.StageResponse, 0, len(stages))
	for _, s := range stages {
		out = append(out, dto.StageResponse{ID: s.ID, Name: s.Name, Level: s.Level})
	}
	return c.JSON(fiber.Map{"data": out})
}

// CreateStage handles POST /tickets/stages.
func (h *TicketsHandler) CreateStage(c *fiber.Ctx) error {
	var req dto.CreateStageRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	stage, err := h.tickets.CreateStage(c.UserContext(), req.Name, req.Level)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.StageResponse{ID: stage.ID, Name: stage.Name, Level: stage.Level},
	})
}
