package admin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/errx"
	"github.com/pierre-fitness/pierre-server/internal/logx"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

func writeError(c *fiber.Ctx, err error) error {
	if err == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "unknown error"})
	}
	if appErr, ok := err.(*errx.Error); ok {
		return c.Status(appErr.HTTPStatus).JSON(fiber.Map{"error": appErr.Message, "code": appErr.Code})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// actorID reads the caller's admin token id from the AuthResult
// auth.Middleware.RequirePermission already validated for this route.
func actorID(c *fiber.Ctx) string {
	if result, ok := auth.FromContext(c); ok {
		return result.Principal.AdminTokenID
	}
	return ""
}

// audit writes one audit_log row per admin action (spec.md §4.8 "every
// admin action produces an audit row (who, when, what id, before/after)").
// Failure to write is logged here and not surfaced to the HTTP response —
// an admin action having already committed its primary effect should not
// be rolled back by an audit-write failure.
func (d *Deps) audit(c *fiber.Ctx, actor, action, targetID string, before, after any) {
	row := store.AuditRow{
		ID:        uuid.NewString(),
		ActorID:   actor,
		Action:    action,
		TargetID:  targetID,
		CreatedAt: time.Now(),
	}
	if before != nil {
		row.Before, _ = json.Marshal(before)
	}
	if after != nil {
		row.After, _ = json.Marshal(after)
	}
	if err := d.Store.CreateAuditRow(context.Background(), row); err != nil {
		logx.WithError(err).WithField("action", action).Warn("admin: failed to write audit row")
	}
}
