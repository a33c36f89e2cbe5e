package sse

import (
	"bufio"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/logx"
)

const keepaliveInterval = 15 * time.Second

// RegisterRoutes mounts the two hub-backed SSE endpoints spec.md §6 names:
// GET /notifications/sse/{user_id} and GET /mcp/sse/{session_id}.
// /a2a/tasks/{task_id}/stream is mounted separately by internal/a2a
// (task-scoped polling bridge, not a Hub channel).
func RegisterRoutes(app *fiber.App, hub *Hub, authn *auth.Authenticator) {
	app.Get("/notifications/sse/:user_id", handleNotifications(hub, authn))
	app.Get("/mcp/sse/:session_id", handleProtocol(hub, authn))
}

// handleNotifications requires a JWT whose subject matches :user_id
// (spec.md §4.7 "the authenticated subject must match the channel
// owner").
func handleNotifications(hub *Hub, authn *auth.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := authn.Authenticate(c.Context(), c.Get("Authorization"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).SendString("authentication failed")
		}
		userID := c.Params("user_id")
		if result.Principal.UserID != userID {
			return c.Status(fiber.StatusForbidden).SendString("subject does not match channel owner")
		}
		return stream(c, hub, FamilyNotifications, userID)
	}
}

// handleProtocol accepts a JWT for the connecting user; ownership of an
// MCP session beyond "some valid credential presented it" isn't tracked
// by this process (spec.md §6 describes the stdio transport as inherently
// single-tenant per process, and streamable-HTTP sessions are created
// per-request), so unlike notifications there is no stored session owner
// to compare against.
func handleProtocol(hub *Hub, authn *auth.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := authn.Authenticate(c.Context(), c.Get("Authorization")); err != nil {
			return c.Status(fiber.StatusUnauthorized).SendString("authentication failed")
		}
		sessionID := c.Params("session_id")
		return stream(c, hub, FamilyProtocol, sessionID)
	}
}

// stream subscribes to (family, key), writes each relayed event as a
// standard `id:`/`event:`/`data:` SSE frame, and runs the 15-second
// keepalive comment frame (spec.md §6, §4.7 step 4) until the client
// disconnects.
func stream(c *fiber.Ctx, hub *Hub, family, key string) error {
	sub := hub.Subscribe(family, key)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer sub.Close()
		keepalive := time.NewTicker(keepaliveInterval)
		defer keepalive.Stop()

		for {
			select {
			case ev, ok := <-sub.Events:
				if !ok {
					return
				}
				if err := writeEvent(w, ev); err != nil {
					logx.WithError(err).WithField("family", family).Warn("sse: write failed, dropping subscriber")
					return
				}
			case <-keepalive.C:
				if _, err := w.WriteString(": keepalive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
	return nil
}

func writeEvent(w *bufio.Writer, ev Event) error {
	if _, err := w.WriteString("id: "); err != nil {
		return err
	}
	if _, err := w.WriteString(strconv.FormatInt(ev.ID, 10)); err != nil {
		return err
	}
	if _, err := w.WriteString("\nevent: "); err != nil {
		return err
	}
	if _, err := w.WriteString(ev.Name); err != nil {
		return err
	}
	if _, err := w.WriteString("\ndata: "); err != nil {
		return err
	}
	if _, err := w.Write(ev.Data); err != nil {
		return err
	}
	if _, err := w.WriteString("\n\n"); err != nil {
		return err
	}
	return w.Flush()
}
