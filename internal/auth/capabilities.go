package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/pkg/util"
)

// RequireAuthenticated ensures a user principal is present.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := UserFromContext(c); !ok {
			return util.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireCapability gates a route on a role-derived capability. The check
// runs before any mutating handler; a violation rejects the operation.
func RequireCapability(cap domain.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return util.NewUnauthorized("authentication required")
		}
		if !user.HasCapability(cap) {
			return util.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
