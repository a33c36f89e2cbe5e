package restapi

import (
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pierre-fitness/pierre-server/internal/kernel"
	"github.com/pierre-fitness/pierre-server/internal/ratelimit"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

// paginate slices items per page/page_size query params (defaults 1/50,
// capped at 200/page) and wraps the slice in kernel.Paginated's metadata.
func paginate[T any](c *fiber.Ctx, items []T) kernel.Paginated[T] {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.Query("page_size", strconv.Itoa(kernel.DefaultPageSize)))
	size = kernel.ClampPageSize(size)

	total := len(items)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return kernel.NewPaginated(items[start:end], page, size, total)
}

// dashboardKeys resolves the authenticated user's own API keys, the unit
// every /dashboard/* view is scoped to (spec.md §6 lists these as
// user-facing, not admin, endpoints).
func (d *Deps) dashboardKeys(c *fiber.Ctx) ([]store.APIKey, *store.User, bool) {
	result, ok := mustAuth(c)
	if !ok {
		return nil, nil, false
	}
	keys, err := d.Store.ListAPIKeysByUser(c.Context(), result.Principal.UserID)
	if err != nil {
		writeError(c, err)
		return nil, nil, false
	}
	user, err := d.Store.GetUserByID(c.Context(), result.Principal.UserID)
	if err != nil {
		writeError(c, err)
		return nil, nil, false
	}
	return keys, user, true
}

// handleDashboardOverview implements GET /dashboard/overview: account
// tier, active key count, and lifetime request totals across every key.
func (d *Deps) handleDashboardOverview(c *fiber.Ctx) error {
	keys, user, ok := d.dashboardKeys(c)
	if !ok {
		return nil
	}
	activeKeys := 0
	var totalRequests int
	window := 90 * 24 * time.Hour
	for _, k := range keys {
		if k.IsValid() {
			activeKeys++
		}
		rows, err := d.Store.ListUsage(c.Context(), k.ID, time.Now().Add(-window), time.Now())
		if err != nil {
			return writeError(c, err)
		}
		totalRequests += len(rows)
	}
	return c.JSON(fiber.Map{
		"tier":              user.Tier,
		"status":            user.Status,
		"total_keys":        len(keys),
		"active_keys":       activeKeys,
		"requests_last_90d": totalRequests,
	})
}

// handleDashboardAnalytics implements GET /dashboard/analytics: request
// volume bucketed by day over start_date/end_date.
func (d *Deps) handleDashboardAnalytics(c *fiber.Ctx) error {
	keys, _, ok := d.dashboardKeys(c)
	if !ok {
		return nil
	}
	start, end := parseDateRange(c, 30*24*time.Hour)

	perDay := make(map[string]int)
	for _, k := range keys {
		rows, err := d.Store.ListUsage(c.Context(), k.ID, start, end)
		if err != nil {
			return writeError(c, err)
		}
		for _, row := range rows {
			perDay[row.Timestamp.Format("2006-01-02")]++
		}
	}

	days := make([]string, 0, len(perDay))
	for day := range perDay {
		days = append(days, day)
	}
	sort.Strings(days)

	series := make([]fiber.Map, 0, len(days))
	for _, day := range days {
		series = append(series, fiber.Map{"date": day, "requests": perDay[day]})
	}
	return c.JSON(fiber.Map{"series": series})
}

// handleDashboardRateLimits implements GET /dashboard/rate-limits: each
// key's configured limit alongside its current-window remaining count
// (internal/ratelimit.Limiter.Remaining, spec.md §4.3).
func (d *Deps) handleDashboardRateLimits(c *fiber.Ctx) error {
	keys, _, ok := d.dashboardKeys(c)
	if !ok {
		return nil
	}
	out := make([]fiber.Map, 0, len(keys))
	for _, k := range keys {
		limit, window := ratelimit.KeyLimits(&k, int(d.RateLimit.DefaultWindow.Seconds()), d.RateLimit.StarterLimit, d.RateLimit.ProfessionalLimit)
		out = append(out, fiber.Map{
			"key_id":          k.ID,
			"name":            k.Name,
			"limit":           limit,
			"window_seconds":  window,
			"remaining":       d.Limiter.Remaining(k.ID, limit),
		})
	}
	return c.JSON(fiber.Map{"rate_limits": out})
}

// handleDashboardRequestLogs implements GET /dashboard/request-logs: raw
// per-call usage rows across all of the caller's keys, most recent first.
func (d *Deps) handleDashboardRequestLogs(c *fiber.Ctx) error {
	keys, _, ok := d.dashboardKeys(c)
	if !ok {
		return nil
	}
	start, end := parseDateRange(c, 7*24*time.Hour)

	var all []store.APIKeyUsage
	for _, k := range keys {
		rows, err := d.Store.ListUsage(c.Context(), k.ID, start, end)
		if err != nil {
			return writeError(c, err)
		}
		all = append(all, rows...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Timestamp.After(all[j].Timestamp) })
	return c.JSON(paginate(c, all))
}

// handleDashboardRequestStats implements GET /dashboard/request-stats:
// status-code breakdown and average response time across the window.
func (d *Deps) handleDashboardRequestStats(c *fiber.Ctx) error {
	keys, _, ok := d.dashboardKeys(c)
	if !ok {
		return nil
	}
	start, end := parseDateRange(c, 7*24*time.Hour)

	byStatus := make(map[int]int)
	var count, totalMs int
	for _, k := range keys {
		rows, err := d.Store.ListUsage(c.Context(), k.ID, start, end)
		if err != nil {
			return writeError(c, err)
		}
		for _, row := range rows {
			byStatus[row.StatusCode]++
			totalMs += row.ResponseTimeMs
			count++
		}
	}
	avgMs := 0
	if count > 0 {
		avgMs = totalMs / count
	}
	return c.JSON(fiber.Map{
		"total_requests":       count,
		"by_status_code":       byStatus,
		"avg_response_time_ms": avgMs,
	})
}

// handleDashboardToolUsage implements GET /dashboard/tool-usage: call
// counts grouped by tool name (spec.md §4.1's symbolic tool names).
func (d *Deps) handleDashboardToolUsage(c *fiber.Ctx) error {
	keys, _, ok := d.dashboardKeys(c)
	if !ok {
		return nil
	}
	start, end := parseDateRange(c, 30*24*time.Hour)

	byTool := make(map[string]int)
	for _, k := range keys {
		rows, err := d.Store.ListUsage(c.Context(), k.ID, start, end)
		if err != nil {
			return writeError(c, err)
		}
		for _, row := range rows {
			byTool[row.ToolName]++
		}
	}
	return c.JSON(fiber.Map{"tool_usage": byTool})
}
