package restapi

import (
	"github.com/gofiber/fiber/v2"
)

// handleHealth implements GET /health: a liveness probe with no
// dependency checks, matching the teacher's shallow health endpoint.
func (d *Deps) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "service": d.ServiceName})
}

// handleJWKS implements GET /.well-known/jwks.json (spec.md §3, §6),
// publishing every admin signing key the rotation manager still tracks.
func (d *Deps) handleJWKS(c *fiber.Ctx) error {
	return c.JSON(d.AdminKeys.JWKS())
}

// openAPISpec is a minimal hand-maintained description of the REST
// surface. No ecosystem spec-generation library appears anywhere in the
// pack (DESIGN.md), so this is a plain Go literal rather than a
// swaggo-style annotation-driven build.
func (d *Deps) handleOpenAPISpec(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"openapi": "3.0.3",
		"info": fiber.Map{
			"title":   d.ServiceName,
			"version": "1.0",
		},
		"paths": fiber.Map{
			"/api/auth/register":      fiber.Map{"post": fiber.Map{"summary": "register a new user"}},
			"/api/auth/login":         fiber.Map{"post": fiber.Map{"summary": "exchange credentials for an access token"}},
			"/api/auth/refresh":       fiber.Map{"post": fiber.Map{"summary": "mint a fresh access token from a recently-expired one"}},
			"/oauth/auth/{provider}/{user_id}": fiber.Map{"get": fiber.Map{"summary": "start a provider OAuth authorization"}},
			"/oauth/callback/{provider}":       fiber.Map{"get": fiber.Map{"summary": "provider OAuth redirect target"}},
			"/api/keys":                fiber.Map{"post": fiber.Map{"summary": "create an API key"}, "get": fiber.Map{"summary": "list the caller's API keys"}},
			"/api/keys/{id}":           fiber.Map{"delete": fiber.Map{"summary": "deactivate an API key"}},
			"/api/keys/{id}/usage":     fiber.Map{"get": fiber.Map{"summary": "usage rows for an API key"}},
			"/dashboard/overview":      fiber.Map{"get": fiber.Map{"summary": "account overview"}},
			"/dashboard/analytics":     fiber.Map{"get": fiber.Map{"summary": "daily request volume"}},
			"/dashboard/rate-limits":   fiber.Map{"get": fiber.Map{"summary": "per-key rate limit status"}},
			"/dashboard/request-logs":  fiber.Map{"get": fiber.Map{"summary": "raw usage rows"}},
			"/dashboard/request-stats": fiber.Map{"get": fiber.Map{"summary": "status code and latency breakdown"}},
			"/dashboard/tool-usage":    fiber.Map{"get": fiber.Map{"summary": "calls grouped by tool name"}},
			"/health":                  fiber.Map{"get": fiber.Map{"summary": "liveness probe"}},
		},
	})
}

// handleSwaggerUI serves a minimal static page pointed at
// /api-docs/openapi.json, standing in for the dashboard frontend's own
// API explorer (out of scope per spec.md §1).
func (d *Deps) handleSwaggerUI(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(swaggerUIPage)
}

const swaggerUIPage = `<!doctype html>
<html>
<head><title>Pierre API</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
  window.onload = () => SwaggerUIBundle({url: "/api-docs/openapi.json", dom_id: "#swagger-ui"})
</script>
</body>
</html>`
