package restapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pierre-fitness/pierre-server/internal/auth"
)

// RegisterRoutes mounts every C6 endpoint onto app (spec.md §6), the
// composition root's single call site for this package. Rate limiting
// (internal/ratelimit) gates tool-execution routes, not these
// account-management endpoints, so no limiter middleware applies here.
func RegisterRoutes(app *fiber.App, deps *Deps, mw *auth.Middleware) {
	app.Get("/health", deps.handleHealth)
	app.Get("/.well-known/jwks.json", deps.handleJWKS)
	app.Get("/api-docs/openapi.json", deps.handleOpenAPISpec)
	app.Get("/swagger-ui", deps.handleSwaggerUI)

	app.Post("/api/auth/register", deps.handleRegister)
	app.Post("/api/auth/login", deps.handleLogin)
	app.Post("/api/auth/refresh", deps.handleRefresh)

	app.Get("/oauth/auth/:provider/:user_id", mw.Authenticate(), deps.handleOAuthAuth)
	app.Get("/oauth/callback/:provider", deps.handleOAuthCallback)

	authed := mw.Authenticate()
	app.Post("/api/keys", authed, deps.handleCreateAPIKey)
	app.Get("/api/keys", authed, deps.handleListAPIKeys)
	app.Delete("/api/keys/:id", authed, deps.handleDeleteAPIKey)
	app.Get("/api/keys/:id/usage", authed, deps.handleAPIKeyUsage)

	app.Get("/dashboard/overview", authed, deps.handleDashboardOverview)
	app.Get("/dashboard/analytics", authed, deps.handleDashboardAnalytics)
	app.Get("/dashboard/rate-limits", authed, deps.handleDashboardRateLimits)
	app.Get("/dashboard/request-logs", authed, deps.handleDashboardRequestLogs)
	app.Get("/dashboard/request-stats", authed, deps.handleDashboardRequestStats)
	app.Get("/dashboard/tool-usage", authed, deps.handleDashboardToolUsage)
}
