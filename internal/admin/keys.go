package admin

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pierre-fitness/pierre-server/internal/ratelimit"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

type provisionRequest struct {
	UserID      string  `json:"user_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type provisionResponse struct {
	APIKey string       `json:"api_key"` // shown exactly once
	Key    store.APIKey `json:"key"`
}

// HandleProvision implements POST /admin/provision (spec.md §4.8):
// provisions a key for an existing, already-approved user — never
// auto-creates the user.
func (d *Deps) HandleProvision(c *fiber.Ctx) error {
	var req provisionRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, errInvalidBody(err.Error()))
	}
	if req.UserID == "" || req.Name == "" {
		return writeError(c, errInvalidBody("user_id and name are required"))
	}

	user, err := d.Store.GetUserByID(c.Context(), req.UserID)
	if err != nil {
		return writeError(c, err)
	}
	if !user.CanLogIn() {
		return writeError(c, errUserNotApproved())
	}

	fullKey, prefix, hash, err := d.APIKeys.GenerateAPIKey()
	if err != nil {
		return writeError(c, err)
	}

	limit, window := ratelimit.KeyLimits(&store.APIKey{Tier: user.Tier}, int(d.RateLimit.DefaultWindow.Seconds()), d.RateLimit.StarterLimit, d.RateLimit.ProfessionalLimit)
	key := store.APIKey{
		ID:                     uuid.NewString(),
		UserID:                 user.ID,
		Name:                   req.Name,
		Description:            req.Description,
		KeyHash:                hash,
		KeyPrefix:              prefix,
		Tier:                   user.Tier,
		RateLimitRequests:      limit,
		RateLimitWindowSeconds: window,
		IsActive:               true,
		CreatedAt:              time.Now(),
	}
	if err := d.Store.CreateAPIKey(c.Context(), key); err != nil {
		return writeError(c, err)
	}

	d.audit(c, actorID(c), "provision_key", key.ID, nil, key)
	return c.Status(fiber.StatusCreated).JSON(provisionResponse{APIKey: fullKey, Key: key})
}

type revokeRequest struct {
	KeyID string `json:"key_id"`
}

// HandleRevoke implements POST /admin/revoke (spec.md §4.8): soft-deletes
// an API key regardless of which user owns it.
func (d *Deps) HandleRevoke(c *fiber.Ctx) error {
	var req revokeRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, errInvalidBody(err.Error()))
	}
	if req.KeyID == "" {
		return writeError(c, errInvalidBody("key_id is required"))
	}

	before, err := d.Store.GetAPIKeyByID(c.Context(), req.KeyID)
	if err != nil {
		return writeError(c, err)
	}
	if err := d.Store.DeactivateAPIKey(c.Context(), req.KeyID); err != nil {
		return writeError(c, err)
	}

	d.audit(c, actorID(c), "revoke_key", req.KeyID, before, nil)
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleList implements GET /admin/list (spec.md §4.8): every API key for
// a user (?user_id=), hashes never serialized (APIKey.KeyHash is json:"-").
func (d *Deps) HandleList(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return writeError(c, errInvalidBody("user_id query parameter is required"))
	}
	keys, err := d.Store.ListAPIKeysByUser(c.Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"keys": keys})
}
