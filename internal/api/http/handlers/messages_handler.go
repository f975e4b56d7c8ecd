package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/atendo-hq/atendo/internal/api/dto"
	"github.com/atendo-hq/atendo/internal/auth"
	"github.com/atendo-hq/atendo/internal/service"
	"github.com/atendo-hq/atendo/pkg/util"
)

// MessagesHandler exposes direct and team messaging.
type MessagesHandler struct {
	messages  *service.MessageService
	networkID NetworkIDResolver
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messageService *service.MessageService, networkID NetworkIDResolver) *MessagesHandler {
	return &MessagesHandler{messages: messageService, networkID: networkID}
}

// Send handles POST /messages.
func (h *MessagesHandler) Send(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	message, err := h.messages.Send(c.UserContext(), user.ID, h.networkID(c), service.MessageSendInput{
		Body:      req.Body,
		DestinyID: req.DestinyID,
		TeamID:    req.TeamID,
		ParentID:  req.ParentID,
		Private:   req.Private,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewMessageResponse(message)})
}

// Get handles GET /messages/:id.
func (h *MessagesHandler) Get(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	detail, err := h.messages.Get(c.UserContext(), c.Params("id"), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMessageDetailResponse(detail.Message, detail.Read)})
}

// MarkRead handles POST /messages/:id/read.
func (h *MessagesHandler) MarkRead(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	if err := h.messages.MarkRead(c.UserContext(), c.Params("id"), user.ID); err != nil {
		return err
	}
	return c.Status(http.StatusNoContent).Send(nil)
}

// UnreadCount handles GET /messages/unread.
func (h *MessagesHandler) UnreadCount(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	count, err := h.messages.UnreadCount(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UnreadCountResponse{Unread: count}})
}

// ListReplies handles GET /messages/:id/replies.
func (h *MessagesHandler) ListReplies(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	replies, err := h.messages.ListReplies(c.UserContext(), c.Params("id"), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMessageResponses(replies)})
}

// ListConversation handles GET /messages/with/:userId.
func (h *MessagesHandler) ListConversation(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	messages, err := h.messages.ListConversation(c.UserContext(), user.ID, c.Params("userId"), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMessageResponses(messages)})
}

// ListTeamMessages handles GET /teams/:id/messages.
func (h *MessagesHandler) ListTeamMessages(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	messages, err := h.messages.ListTeamMessages(c.UserContext(), c.Params("id"), user.ID, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMessageResponses(messages)})
}

// ListTeams handles GET /teams/mine.
func (h *MessagesHandler) ListTeams(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	teams, err := h.messages.ListTeams(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTeamResponses(teams)})
}
