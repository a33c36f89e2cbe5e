package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pierre-fitness/pierre-server/internal/errx"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

const localsKey = "pierre_auth"

// Middleware adapts Authenticator to Fiber, grounded on the teacher's
// iam/auth.TokenMiddleware but authenticating every credential shape C2
// supports instead of only a user JWT.
type Middleware struct {
	authn *Authenticator
}

func NewMiddleware(authn *Authenticator) *Middleware {
	return &Middleware{authn: authn}
}

// Authenticate requires a valid credential and stores the resolved
// AuthResult under localsKey for downstream handlers (FromContext).
func (m *Middleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := m.authn.Authenticate(c.Context(), c.Get("Authorization"))
		if err != nil {
			return writeAuthError(c, err)
		}
		c.Locals(localsKey, result)
		return c.Next()
	}
}

// RequirePermission gates an admin-only route on a single permission bit
// (spec.md C8 "each admin endpoint is a thin call into C1/C2 guarded by a
// permission bit").
func (m *Middleware) RequirePermission(perm store.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, ok := FromContext(c)
		if !ok || result.Principal.Kind != PrincipalAdmin {
			return writeAuthError(c, ErrForbidden())
		}
		if !result.Principal.Permissions.Has(perm) {
			return writeAuthError(c, ErrForbidden())
		}
		return c.Next()
	}
}

// FromContext retrieves the AuthResult a prior Authenticate() call stored.
func FromContext(c *fiber.Ctx) (*AuthResult, bool) {
	result, ok := c.Locals(localsKey).(*AuthResult)
	return result, ok
}

func writeAuthError(c *fiber.Ctx, err error) error {
	if appErr, ok := err.(*errx.Error); ok {
		return c.Status(appErr.HTTPStatus).JSON(fiber.Map{"error": appErr.Message, "code": appErr.Code})
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
}
