package admin

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pierre-fitness/pierre-server/internal/store"
)

type createTokenRequest struct {
	ServiceName        string          `json:"service_name"`
	ServiceDescription *string         `json:"service_description,omitempty"`
	Permissions        store.Permission `json:"permissions"`
	IsSuperAdmin       bool            `json:"is_super_admin"`
}

type createTokenResponse struct {
	TokenID  string `json:"token_id"`
	AdminJWT string `json:"admin_jwt"` // shown exactly once
}

// HandleCreateToken implements POST /admin/tokens (spec.md §4.8), gated on
// PermManageAdminTokens. A non-super-admin caller can mint any permission
// subset, including is_super_admin — the spec places no narrower
// restriction on PermManageAdminTokens than on the bit itself.
func (d *Deps) HandleCreateToken(c *fiber.Ctx) error {
	var req createTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, errInvalidBody(err.Error()))
	}
	if req.ServiceName == "" {
		return writeError(c, errInvalidBody("service_name is required"))
	}

	tokenID := uuid.NewString()
	jwtToken, err := d.AdminJWT.GenerateToken(tokenID, req.ServiceName, req.Permissions, req.IsSuperAdmin)
	if err != nil {
		return writeError(c, err)
	}

	token := store.AdminToken{
		TokenID:            tokenID,
		ServiceName:        req.ServiceName,
		ServiceDescription: req.ServiceDescription,
		Permissions:        req.Permissions,
		IsSuperAdmin:       req.IsSuperAdmin,
		JWTTokenHash:       d.APIKeys.Hash(jwtToken),
		TokenPrefix:        tokenID[:8],
		IssuedAt:           time.Now(),
		IsActive:           true,
	}
	if err := d.Store.CreateAdminToken(c.Context(), token); err != nil {
		return writeError(c, err)
	}

	d.audit(c, actorID(c), "create_admin_token", tokenID, nil, token)
	return c.Status(fiber.StatusCreated).JSON(createTokenResponse{TokenID: tokenID, AdminJWT: jwtToken})
}

// HandleListTokens implements GET /admin/tokens (spec.md §4.8); JWT hashes
// never serialized (AdminToken.JWTTokenHash is json:"-").
func (d *Deps) HandleListTokens(c *fiber.Ctx) error {
	tokens, err := d.Store.ListAdminTokens(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"tokens": tokens})
}

// HandleRevokeToken implements POST /admin/tokens/{id}/revoke (spec.md §4.8).
func (d *Deps) HandleRevokeToken(c *fiber.Ctx) error {
	id := c.Params("id")
	before, err := d.Store.GetAdminToken(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if err := d.Store.DeactivateAdminToken(c.Context(), id); err != nil {
		return writeError(c, err)
	}
	d.audit(c, actorID(c), "revoke_admin_token", id, before, nil)
	return c.SendStatus(fiber.StatusNoContent)
}

type rotateTokenResponse struct {
	TokenID  string `json:"token_id"`
	AdminJWT string `json:"admin_jwt"` // shown exactly once
}

// HandleRotateToken implements POST /admin/tokens/{id}/rotate (spec.md
// §4.8): deactivates the old token id and issues a new one preserving
// service_name/permissions (spec.md §8 S5: old id unusable immediately,
// new id usable immediately, net permission set unchanged).
func (d *Deps) HandleRotateToken(c *fiber.Ctx) error {
	oldID := c.Params("id")
	old, err := d.Store.GetAdminToken(c.Context(), oldID)
	if err != nil {
		return writeError(c, err)
	}

	newID := uuid.NewString()
	jwtToken, err := d.AdminJWT.GenerateToken(newID, old.ServiceName, old.Permissions, old.IsSuperAdmin)
	if err != nil {
		return writeError(c, err)
	}
	newToken := store.AdminToken{
		TokenID:            newID,
		ServiceName:        old.ServiceName,
		ServiceDescription: old.ServiceDescription,
		Permissions:        old.Permissions,
		IsSuperAdmin:       old.IsSuperAdmin,
		JWTTokenHash:       d.APIKeys.Hash(jwtToken),
		TokenPrefix:        newID[:8],
		IssuedAt:           time.Now(),
		IsActive:           true,
	}
	if err := d.Store.CreateAdminToken(c.Context(), newToken); err != nil {
		return writeError(c, err)
	}
	if err := d.Store.DeactivateAdminToken(c.Context(), oldID); err != nil {
		return writeError(c, err)
	}

	d.audit(c, actorID(c), "rotate_admin_token", oldID, old, newToken)
	return c.Status(fiber.StatusCreated).JSON(rotateTokenResponse{TokenID: newID, AdminJWT: jwtToken})
}
