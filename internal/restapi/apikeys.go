package restapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pierre-fitness/pierre-server/internal/ratelimit"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

type createAPIKeyRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type createAPIKeyResponse struct {
	APIKey string       `json:"api_key"` // shown exactly once
	Key    store.APIKey `json:"key"`
}

// handleCreateAPIKey implements POST /api/keys (spec.md §6), minting a new
// pk_<prefix>_<secret> credential for the authenticated user.
func (d *Deps) handleCreateAPIKey(c *fiber.Ctx) error {
	result, ok := mustAuth(c)
	if !ok {
		return writeError(c, nil)
	}
	var req createAPIKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, errInvalidBody(err.Error()))
	}
	if req.Name == "" {
		return writeError(c, errInvalidBody("name is required"))
	}

	fullKey, prefix, hash, err := d.APIKeys.GenerateAPIKey()
	if err != nil {
		return writeError(c, err)
	}

	limit, window := ratelimit.KeyLimits(&store.APIKey{Tier: result.Tier}, int(d.RateLimit.DefaultWindow.Seconds()), d.RateLimit.StarterLimit, d.RateLimit.ProfessionalLimit)
	key := store.APIKey{
		ID:                     uuid.NewString(),
		UserID:                 result.Principal.UserID,
		Name:                   req.Name,
		Description:            req.Description,
		KeyHash:                hash,
		KeyPrefix:              prefix,
		Tier:                   result.Tier,
		RateLimitRequests:      limit,
		RateLimitWindowSeconds: window,
		IsActive:               true,
		CreatedAt:              time.Now(),
	}
	if err := d.Store.CreateAPIKey(c.Context(), key); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(createAPIKeyResponse{APIKey: fullKey, Key: key})
}

// handleListAPIKeys implements GET /api/keys (spec.md §6); hashes never
// leave store.APIKey's json tags (key_hash is json:"-").
func (d *Deps) handleListAPIKeys(c *fiber.Ctx) error {
	result, ok := mustAuth(c)
	if !ok {
		return writeError(c, nil)
	}
	keys, err := d.Store.ListAPIKeysByUser(c.Context(), result.Principal.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"keys": keys})
}

// handleDeleteAPIKey implements DELETE /api/keys/{id} (spec.md §6): a soft
// delete via deactivation, preserving APIKeyUsage rows for audit (spec.md
// §3 ownership note).
func (d *Deps) handleDeleteAPIKey(c *fiber.Ctx) error {
	result, ok := mustAuth(c)
	if !ok {
		return writeError(c, nil)
	}
	id := c.Params("id")
	key, err := d.Store.GetAPIKeyByID(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if key.UserID != result.Principal.UserID {
		return writeError(c, store.ErrAPIKeyNotFound())
	}
	if err := d.Store.DeactivateAPIKey(c.Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleAPIKeyUsage implements GET /api/keys/{id}/usage?start_date&end_date
// (spec.md §6).
func (d *Deps) handleAPIKeyUsage(c *fiber.Ctx) error {
	result, ok := mustAuth(c)
	if !ok {
		return writeError(c, nil)
	}
	id := c.Params("id")
	key, err := d.Store.GetAPIKeyByID(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if key.UserID != result.Principal.UserID {
		return writeError(c, store.ErrAPIKeyNotFound())
	}

	start, end := parseDateRange(c, 30*24*time.Hour)
	rows, err := d.Store.ListUsage(c.Context(), id, start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(paginate(c, rows))
}

// parseDateRange reads start_date/end_date query params (RFC 3339),
// defaulting to [now-window, now] when absent or unparsable.
func parseDateRange(c *fiber.Ctx, window time.Duration) (start, end time.Time) {
	end = time.Now()
	start = end.Add(-window)
	if raw := c.Query("start_date"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			start = t
		}
	}
	if raw := c.Query("end_date"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			end = t
		}
	}
	return start, end
}
