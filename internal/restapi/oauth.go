package restapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pierre-fitness/pierre-server/internal/sse"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

type oauthAuthResponse struct {
	AuthorizationURL  string `json:"authorization_url"`
	State             string `json:"state"`
	ExpiresInMinutes  int    `json:"expires_in_minutes"`
}

// handleOAuthAuth implements GET /oauth/auth/{provider}/{user_id}
// (spec.md §6): mints a CSRF state value good for C4's OAuthState TTL and
// returns the provider's authorization URL, matching the connect_*
// tool handlers' contract (internal/tools/handlers_connection.go) but for
// a browser-driven dashboard flow instead of an MCP/A2A tool call.
func (d *Deps) handleOAuthAuth(c *fiber.Ctx) error {
	result, ok := mustAuth(c)
	if !ok {
		return nil
	}
	providerName := c.Params("provider")
	userID := c.Params("user_id")
	if result.Principal.UserID != userID {
		return writeError(c, errInvalidBody("path user_id must match the authenticated caller"))
	}

	user, err := d.Store.GetUserByID(c.Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	state, err := d.OAuthState.Create(userID, user.TenantID, providerName)
	if err != nil {
		return writeError(c, errProviderError(err))
	}

	authURL, err := d.Providers.AuthorizationURL(c.Context(), user.TenantID, providerName, state)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(oauthAuthResponse{
		AuthorizationURL: authURL,
		State:            state,
		ExpiresInMinutes: int(d.OAuthState.TTL().Minutes()),
	})
}

// handleOAuthCallback implements GET /oauth/callback/{provider}
// (spec.md §6, §7 "successful callbacks return a JSON payload... also
// emit a notification through C7"). The upstream provider redirects the
// user's browser here with no Authorization header, so the CSRF state
// value is the only identity carrier.
func (d *Deps) handleOAuthCallback(c *fiber.Ctx) error {
	providerName := c.Params("provider")
	code := c.Query("code")
	state := c.Query("state")
	upstreamErr := c.Query("error")

	entry, ok := d.OAuthState.Consume(state)
	if !ok {
		return writeError(c, errInvalidState())
	}

	if upstreamErr != "" {
		d.notifyOAuthResult(entry.UserID, providerName, false, "provider denied authorization: "+upstreamErr, nil)
		return writeError(c, errProviderError(nil))
	}

	if err := d.Providers.ExchangeCode(c.Context(), entry.UserID, entry.TenantID, providerName, code); err != nil {
		d.notifyOAuthResult(entry.UserID, providerName, false, err.Error(), nil)
		return writeError(c, err)
	}

	tok, _ := d.Store.GetUserOAuthToken(c.Context(), entry.UserID, entry.TenantID, providerName)
	var expiresAt *time.Time
	if tok != nil {
		expiresAt = tok.ExpiresAt
	}
	d.notifyOAuthResult(entry.UserID, providerName, true, "connected", expiresAt)

	return c.JSON(fiber.Map{"provider": providerName, "success": true})
}

// notifyOAuthResult persists the OAuthNotification row and flushes it to
// any live notifications subscriber for the user (spec.md §3's "C7 reads
// and marks delivered once flushed to at least one subscriber, or after a
// grace window, whichever is first"). The row is marked delivered only
// here, when at least one live subscriber receives it; a row with no
// subscriber at publish time stays undelivered, and no grace-window
// sweep marks it.
func (d *Deps) notifyOAuthResult(userID, providerName string, success bool, message string, expiresAt *time.Time) {
	notification := store.OAuthNotification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Provider:  providerName,
		Success:   success,
		Message:   message,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	id, err := d.Store.CreateNotification(context.Background(), notification)
	if err != nil {
		return
	}
	payload, err := marshalNotification(notification)
	if err != nil {
		return
	}
	if delivered := d.Notifications.Publish(sse.FamilyNotifications, userID, "notification", payload); delivered > 0 {
		_ = d.Store.MarkDelivered(context.Background(), id, time.Now())
	}
}
