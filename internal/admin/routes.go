package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

// RegisterRoutes mounts every /admin/* route (spec.md §4.8). POST
// /admin/setup is the one public route in this package; every other route
// requires an Admin principal (mw.Authenticate()) plus the named
// permission bit (mw.RequirePermission).
func RegisterRoutes(app *fiber.App, deps *Deps, mw *auth.Middleware) {
	app.Post("/admin/setup", deps.HandleSetup)

	authed := mw.Authenticate()
	app.Post("/admin/provision", authed, mw.RequirePermission(store.PermProvisionKeys), deps.HandleProvision)
	app.Post("/admin/revoke", authed, mw.RequirePermission(store.PermRevokeKeys), deps.HandleRevoke)
	app.Get("/admin/list", authed, mw.RequirePermission(store.PermListKeys), deps.HandleList)

	app.Post("/admin/tokens", authed, mw.RequirePermission(store.PermManageAdminTokens), deps.HandleCreateToken)
	app.Get("/admin/tokens", authed, mw.RequirePermission(store.PermManageAdminTokens), deps.HandleListTokens)
	app.Post("/admin/tokens/:id/revoke", authed, mw.RequirePermission(store.PermManageAdminTokens), deps.HandleRevokeToken)
	app.Post("/admin/tokens/:id/rotate", authed, mw.RequirePermission(store.PermManageAdminTokens), deps.HandleRotateToken)

	app.Get("/admin/pending-users", authed, mw.RequirePermission(store.PermManageUsers), deps.HandlePendingUsers)
	app.Post("/admin/approve-user/:id", authed, mw.RequirePermission(store.PermManageUsers), deps.HandleApproveUser)
}
