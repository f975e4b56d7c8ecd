package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/atendo-hq/atendo/internal/observability"
	"github.com/atendo-hq/atendo/internal/repository"
	"github.com/atendo-hq/atendo/pkg/util"
)

const networkKey = "request_network_id"

// RegisterMiddlewares attaches global middlewares such as error handling,
// logging and caller network resolution.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, networks repository.NetworkRepository, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(networkResolutionMiddleware(networks))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = util.NewInternalError(nil)
			}
			if err != nil {
				domainErr := util.ToDomainError(err)
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				}
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

// networkResolutionMiddleware resolves the caller IP to a network row
// before any handler runs. A resolution failure aborts the request; no
// handler executes without a recorded network.
func networkResolutionMiddleware(networks repository.NetworkRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		network, err := networks.LookupOrCreate(c.UserContext(), c.IP())
		if err != nil {
			return util.NewPersistenceError("resolve caller network", err)
		}
		c.Locals(networkKey, network.ID)
		return c.Next()
	}
}

// NetworkIDFromContext retrieves the caller's resolved network row id.
func NetworkIDFromContext(c *fiber.Ctx) string {
	if id, ok := c.Locals(networkKey).(string); ok {
		return id
	}
	return ""
}
