package restapi

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/errx"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

// mustAuth returns the AuthResult that a prior auth.Middleware.Authenticate()
// call stored on the request context. It does not authenticate anything
// itself and writes no response: it returns false when no result is present.
func mustAuth(c *fiber.Ctx) (*auth.AuthResult, bool) {
	result, ok := auth.FromContext(c)
	if ok {
		return result, true
	}
	return nil, false
}

// writeError renders any error as the JSON shape every Pierre error type
// (errx.Error, or a plain error from a layer that hasn't been converted)
// maps to, mirroring auth.Middleware's writeAuthError.
func writeError(c *fiber.Ctx, err error) error {
	if err == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "unknown error"})
	}
	if appErr, ok := err.(*errx.Error); ok {
		return c.Status(appErr.HTTPStatus).JSON(fiber.Map{"error": appErr.Message, "code": appErr.Code})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func marshalNotification(n store.OAuthNotification) ([]byte, error) {
	return json.Marshal(n)
}
