package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/atendo-hq/atendo/internal/api/dto"
	"github.com/atendo-hq/atendo/internal/service"
	"github.com/atendo-hq/atendo/pkg/util"
)

// DirectoryHandler exposes costumers, teams and lookup catalogs.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directoryService *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directoryService}
}

// CreateCostumer handles POST /costumers.
func (h *DirectoryHandler) CreateCostumer(c *fiber.Ctx) error {
	var req dto.CreateCostumerRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	input := service.CostumerInput{Name: req.Name}
	if req.Address != nil {
		input.Address = &service.AddressInput{
			Name:        req.Address.Name,
			Number:      req.Address.Number,
			Postcode:    req.Address.Postcode,
			AddressType: req.Address.AddressType,
			City:        req.Address.City,
			State:       req.Address.State,
			UF:          req.Address.UF,
		}
	}

	costumer, err := h.directory.CreateCostumer(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCostumerResponse(costumer)})
}

// GetCostumer handles GET /costumers/:id.
func (h *DirectoryHandler) GetCostumer(c *fiber.Ctx) error {
	costumer, err := h.directory.GetCostumer(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCostumerResponse(costumer)})
}

// CreateTeam handles POST /teams.
func (h *DirectoryHandler) CreateTeam(c *fiber.Ctx) error {
	var req dto.CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	team, err := h.directory.CreateTeam(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.TeamResponse{ID: team.ID, Name: team.Name, CreatedAt: team.CreatedAt},
	})
}

// AddTeamMember handles POST /teams/:id/members.
func (h *DirectoryHandler) AddTeamMember(c *fiber.Ctx) error {
	var req dto.TeamMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" {
		return util.NewValidationError("user_id required", nil)
	}
	if err := h.directory.AddTeamMember(c.UserContext(), c.Params("id"), req.UserID); err != nil {
		return err
	}
	return c.Status(http.StatusNoContent).Send(nil)
}

// RemoveTeamMember handles DELETE /teams/:id/members/:userId.
func (h *DirectoryHandler) RemoveTeamMember(c *fiber.Ctx) error {
	if err := h.directory.RemoveTeamMember(c.UserContext(), c.Params("id"), c.Params("userId")); err != nil {
		return err
	}
	return c.Status(http.StatusNoContent).Send(nil)
}

// EnsureTicketType handles POST /catalog/ticket-types.
func (h *DirectoryHandler) EnsureTicketType(c *fiber.Ctx) error {
	var req dto.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	ticketType, err := h.directory.EnsureTicketType(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.TicketTypeResponse{ID: ticketType.ID, Type: ticketType.Type},
	})
}

// ListTicketTypes handles GET /catalog/ticket-types.
func (h *DirectoryHandler) ListTicketTypes(c *fiber.Ctx) error {
	types, err := h.directory.ListTicketTypes(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.TicketTypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, dto.TicketTypeResponse{ID: t.ID, Type: t.Type})
	}
	return c.JSON(fiber.Map{"data": out})
}

// EnsureService handles POST /catalog/services.
func (h *DirectoryHandler) EnsureService(c *fiber.Ctx) error {
	var req dto.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	svc, err := h.directory.EnsureService(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": svc.ID, "name": svc.Name}})
}
