package admin

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

type setupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type setupResponse struct {
	UserID    string `json:"user_id"`
	TokenID   string `json:"token_id"`
	AdminJWT  string `json:"admin_jwt"` // shown exactly once
}

// HandleSetup implements POST /admin/setup (spec.md §4.8): public and
// one-time, succeeding only while no admin user exists. Creates both the
// admin User row (so the dashboard login flow also works for this
// account) and a super-admin AdminToken.
func (d *Deps) HandleSetup(c *fiber.Ctx) error {
	count, err := d.Store.CountAdmins(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	if count > 0 {
		return writeError(c, errAlreadySetUp())
	}

	var req setupRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, errInvalidBody(err.Error()))
	}
	if req.Email == "" || req.Password == "" {
		return writeError(c, errInvalidBody("email and password are required"))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return writeError(c, err)
	}

	now := time.Now()
	user := store.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Tier:         store.TierEnterprise,
		Status:       store.UserStatusActive,
		Role:         store.RoleSuperAdmin,
		TenantID:     d.DefaultTenant,
		CreatedAt:    now,
		LastActive:   now,
		AuthProvider: store.AuthProviderEmail,
	}
	userID, err := d.Store.CreateUser(c.Context(), user)
	if err != nil {
		return writeError(c, err)
	}

	tokenID := uuid.NewString()
	jwtToken, err := d.AdminJWT.GenerateToken(tokenID, "bootstrap-admin", store.AllPermissions(), true)
	if err != nil {
		return writeError(c, err)
	}

	token := store.AdminToken{
		TokenID:      tokenID,
		ServiceName:  "bootstrap-admin",
		Permissions:  store.AllPermissions(),
		IsSuperAdmin: true,
		JWTTokenHash: d.APIKeys.Hash(jwtToken),
		TokenPrefix:  tokenID[:8],
		IssuedAt:     now,
		IsActive:     true,
	}
	if err := d.Store.CreateAdminToken(c.Context(), token); err != nil {
		return writeError(c, err)
	}

	d.audit(c, tokenID, "setup", userID, nil, token)
	return c.Status(fiber.StatusCreated).JSON(setupResponse{UserID: userID, TokenID: tokenID, AdminJWT: jwtToken})
}
