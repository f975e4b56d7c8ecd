package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/atendo-hq/atendo/internal/api/dto"
	"github.com/atendo-hq/atendo/internal/auth"
	"github.com/atendo-hq/atendo/internal/service"
	"github.com/atendo-hq/atendo/pkg/util"
)

// NetworkIDResolver extracts the caller's resolved network row id from the
// request.
type NetworkIDResolver func(c *fiber.Ctx) string

// UsersHandler exposes account and session endpoints.
type UsersHandler struct {
	auth      *service.AuthService
	networkID NetworkIDResolver
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, networkID NetworkIDResolver) *UsersHandler {
	return &UsersHandler{auth: authService, networkID: networkID}
}

// Register handles POST /auth/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		AboutMe:      req.AboutMe,
		Location:     req.Location,
		TempPassword: req.TempPassword,
	}, h.networkID(c))
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewUserResponse(user),
	})
}

// Login handles POST /auth/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.Login == "" || req.Password == "" {
		return util.NewValidationError("login and password required", nil)
	}

	user, token, exp, err := h.auth.Login(c.UserContext(), req.Login, req.Password, c.IP(), req.Location)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.AuthResponse{
			Token:     token,
			ExpiresAt: exp,
			User:      dto.NewUserResponse(user),
		},
	})
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Confirm handles POST /users/:id/confirm.
func (h *UsersHandler) Confirm(c *fiber.Ctx) error {
	user, err := h.auth.Confirm(c.UserContext(), c.Params("id"), h.networkID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Deactivate handles POST /users/:id/deactivate.
func (h *UsersHandler) Deactivate(c *fiber.Ctx) error {
	user, err := h.auth.Deactivate(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// ChangePassword handles POST /users/password/change.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.ChangePassword(c.UserContext(), user.ID, req.Current, req.Next); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}

// AssignRole handles POST /users/:id/roles.
func (h *UsersHandler) AssignRole(c *fiber.Ctx) error {
	var req dto.RoleChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.AssignRole(c.UserContext(), c.Params("id"), req.Role); err != nil {
		return err
	}
	return c.Status(http.StatusNoContent).Send(nil)
}

// RevokeRole handles DELETE /users/:id/roles/:role.
func (h *UsersHandler) RevokeRole(c *fiber.Ctx) error {
	if err := h.auth.RevokeRole(c.UserContext(), c.Params("id"), c.Params("role")); err != nil {
		return err
	}
	return c.Status(http.StatusNoContent).Send(nil)
}

// ListCreated handles GET /users, filtering accounts by registration window.
func (h *UsersHandler) ListCreated(c *fiber.Ctx) error {
	from, err := time.Parse(time.RFC3339, c.Query("created_from"))
	if err != nil {
		return util.NewValidationError("created_from must be RFC 3339", nil)
	}
	to, err := time.Parse(time.RFC3339, c.Query("created_to"))
	if err != nil {
		return util.NewValidationError("created_to must be RFC 3339", nil)
	}
	users, err := h.auth.ListUsersCreatedBetween(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

// Sessions handles GET /users/me/sessions.
func (h *UsersHandler) Sessions(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	sessions, err := h.auth.Sessions(c.UserContext(), user.ID, c.QueryInt("limit", 20))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLoginSessionResponses(sessions)})
}

// CurrentIP handles GET /users/me/current-ip.
func (h *UsersHandler) CurrentIP(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	ip, err := h.auth.CurrentLoginIP(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ip": ip}})
}
