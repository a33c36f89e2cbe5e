package tools

import (
	"time"

	"github.com/pierre-fitness/pierre-server/internal/provider"
)

// Provider-backed data handlers (spec.md §4.5): "resolve a provider via C4
// and forward."

type activitiesParams struct {
	Provider string     `json:"provider"`
	Limit    int        `json:"limit"`
	Before   *time.Time `json:"before"`
}

func handleGetActivities(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p activitiesParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	if p.Provider == "" {
		return nil, NewProtocolError(ErrInvalidParameters, "provider is required")
	}
	req.Progress.Report(PhaseAuthentication, 0.1, "resolving provider credentials")

	handle, perr := resolveProvider(cc, req, p.Provider)
	if perr != nil {
		return nil, perr
	}
	if req.Cancellation.IsCancelled() {
		return nil, NewProtocolError(ErrCancelled, "operation cancelled")
	}

	req.Progress.Report(PhaseFetch, 0.5, "fetching activities")
	activities, err := handle.GetActivities(cc.Ctx, provider.ListOptions{Limit: p.Limit, Before: p.Before})
	if err != nil {
		return nil, providerErrToProtocol(err)
	}
	req.Progress.Report(PhaseDone, 1.0, "done")
	return activities, nil
}

type activityParams struct {
	Provider   string `json:"provider"`
	ActivityID string `json:"activity_id"`
}

func handleGetActivity(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p activityParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	if p.Provider == "" || p.ActivityID == "" {
		return nil, NewProtocolError(ErrInvalidParameters, "provider and activity_id are required")
	}

	handle, perr := resolveProvider(cc, req, p.Provider)
	if perr != nil {
		return nil, perr
	}
	if req.Cancellation.IsCancelled() {
		return nil, NewProtocolError(ErrCancelled, "operation cancelled")
	}

	activity, err := handle.GetActivity(cc.Ctx, p.ActivityID)
	if err != nil {
		return nil, providerErrToProtocol(err)
	}
	return activity, nil
}

type providerOnlyParams struct {
	Provider string `json:"provider"`
}

func handleGetAthlete(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p providerOnlyParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	if p.Provider == "" {
		return nil, NewProtocolError(ErrInvalidParameters, "provider is required")
	}
	handle, perr := resolveProvider(cc, req, p.Provider)
	if perr != nil {
		return nil, perr
	}
	athlete, err := handle.GetAthlete(cc.Ctx)
	if err != nil {
		return nil, providerErrToProtocol(err)
	}
	return athlete, nil
}

func handleGetStats(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p providerOnlyParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	if p.Provider == "" {
		return nil, NewProtocolError(ErrInvalidParameters, "provider is required")
	}
	handle, perr := resolveProvider(cc, req, p.Provider)
	if perr != nil {
		return nil, perr
	}
	stats, err := handle.GetStats(cc.Ctx)
	if err != nil {
		return nil, providerErrToProtocol(err)
	}
	return stats, nil
}

type weatherParams struct {
	Provider   string `json:"provider"`
	ActivityID string `json:"activity_id"`
	Units      string `json:"units"` // metric | imperial | kelvin
}

type weatherResult struct {
	ActivityID    string  `json:"activity_id"`
	Units         string  `json:"units"`
	TemperatureC  float64 `json:"temperature_c,omitempty"`
	Conditions    string  `json:"conditions,omitempty"`
	Available     bool    `json:"available"`
	Limitation    string  `json:"limitation,omitempty"`
}

// handleGetWeatherForActivity annotates the activity with a weather
// reading from the configured WeatherService (which does not use the
// activity's location or time; see weather.go), degrading to Available=false when no
// weather API key is configured (spec.md §1 "weather API key (optional)").
func handleGetWeatherForActivity(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p weatherParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	if p.Provider == "" || p.ActivityID == "" {
		return nil, NewProtocolError(ErrInvalidParameters, "provider and activity_id are required")
	}
	if p.Units == "" {
		p.Units = "metric"
	}

	handle, perr := resolveProvider(cc, req, p.Provider)
	if perr != nil {
		return nil, perr
	}
	activity, err := handle.GetActivity(cc.Ctx, p.ActivityID)
	if err != nil {
		return nil, providerErrToProtocol(err)
	}

	if cc.Weather == nil || !cc.Weather.Enabled() {
		return weatherResult{
			ActivityID: activity.ID,
			Units:      p.Units,
			Available:  false,
			Limitation: "weather lookups are not configured for this deployment",
		}, nil
	}

	reading, werr := cc.Weather.ForActivity(cc.Ctx, *activity, p.Units)
	if werr != nil {
		return weatherResult{
			ActivityID: activity.ID,
			Units:      p.Units,
			Available:  false,
			Limitation: "weather lookup failed: " + werr.Error(),
		}, nil
	}
	return weatherResult{
		ActivityID:   activity.ID,
		Units:        p.Units,
		TemperatureC: reading.TemperatureC,
		Conditions:   reading.Conditions,
		Available:    true,
	}, nil
}

// resolveProvider centralizes the C4 lookup + uniform error surfacing
// every provider-backed handler needs (spec.md §4.4 "404/auth failures
// surfaced uniformly").
func resolveProvider(cc CallContext, req UniversalRequest, providerName string) (provider.ProviderHandle, *ProtocolError) {
	handle, err := cc.Providers.Get(cc.Ctx, req.UserID, providerName, req.TenantID)
	if err != nil {
		return nil, providerErrToProtocol(err)
	}
	return handle, nil
}
