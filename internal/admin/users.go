package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pierre-fitness/pierre-server/internal/logx"
	"github.com/pierre-fitness/pierre-server/internal/notify"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

// HandlePendingUsers implements GET /admin/pending-users (spec.md §4.8).
func (d *Deps) HandlePendingUsers(c *fiber.Ctx) error {
	users, err := d.Store.GetUsersByStatus(c.Context(), store.UserStatusPending)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// HandleApproveUser implements POST /admin/approve-user/{id} (spec.md
// §4.8): transitions pending → active, stamping approved_by/approved_at.
func (d *Deps) HandleApproveUser(c *fiber.Ctx) error {
	id := c.Params("id")
	before, err := d.Store.GetUserByID(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	approver := actorID(c)
	if err := d.Store.UpdateUserStatus(c.Context(), id, store.UserStatusActive, &approver); err != nil {
		return writeError(c, err)
	}

	after, err := d.Store.GetUserByID(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	d.audit(c, approver, "approve_user", id, before, after)
	d.notifyApproved(c, after)
	return c.JSON(after)
}

// notifyApproved best-effort emails the user that their account is active.
// A failed send never fails the approval itself — the account transition
// already committed — matching the audit-write policy in helpers.go.
func (d *Deps) notifyApproved(c *fiber.Ctx, user *store.User) {
	if d.Notifier == nil {
		return
	}
	msg := notify.EmailMessage{
		To:       []string{user.Email},
		Subject:  "Your Pierre account is approved",
		TextBody: "Your account has been approved and is now active. You can connect a fitness provider and start making tool calls.",
	}
	if err := d.Notifier.SendEmail(c.Context(), msg); err != nil {
		logx.WithError(err).WithField("user_id", user.ID).Warn("admin: failed to send approval email")
	}
}
