package tools

// Registry is C5's static tool_name → Tool table (spec.md §4.5, §9:
// "the static tool registry is a match on the tool name at the point of
// dispatch", not a recursive handler-boxing indirection). Built once at
// composition-root time and never mutated afterward, so lookups need no
// locking.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry builds the fixed set of tools every C6 adapter's tools/list
// serves and tools/call dispatches against.
func NewRegistry() *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range allTools() {
		r.tools[t.Name] = t
	}
	return r
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	return out
}

func schema(properties map[string]any, required ...string) map[string]any {
	s := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func allTools() []Tool {
	return []Tool{
		// Provider-backed data
		{
			Name:        "get_activities",
			Description: "List recent activities for a connected provider.",
			InputSchema: schema(map[string]any{
				"provider": prop("string", "provider name, e.g. strava or fitbit"),
				"limit":    prop("integer", "maximum number of activities to return"),
				"before":   prop("string", "ISO-8601 timestamp; only return activities before this time"),
			}, "provider"),
			Handler: handleGetActivities,
		},
		{
			Name:        "get_activity",
			Description: "Fetch a single activity by id.",
			InputSchema: schema(map[string]any{
				"provider":    prop("string", "provider name"),
				"activity_id": prop("string", "provider-native activity id"),
			}, "provider", "activity_id"),
			Handler: handleGetActivity,
		},
		{
			Name:        "get_athlete",
			Description: "Fetch the connected provider's athlete profile.",
			InputSchema: schema(map[string]any{"provider": prop("string", "provider name")}, "provider"),
			Handler:     handleGetAthlete,
		},
		{
			Name:        "get_stats",
			Description: "Fetch aggregate lifetime stats from the provider.",
			InputSchema: schema(map[string]any{"provider": prop("string", "provider name")}, "provider"),
			Handler:     handleGetStats,
		},
		{
			Name:        "get_weather_for_activity",
			Description: "Annotate an activity with weather conditions at its start, when a weather lookup is configured.",
			InputSchema: schema(map[string]any{
				"provider":    prop("string", "provider name"),
				"activity_id": prop("string", "provider-native activity id"),
				"units":       prop("string", "metric, imperial, or kelvin"),
			}, "provider", "activity_id"),
			Handler: handleGetWeatherForActivity,
		},

		// Analytics
		{
			Name:        "get_activity_intelligence",
			Description: "Analyse an activity, auto-selecting the most recent one if the given id is not found.",
			InputSchema: schema(map[string]any{
				"provider":       prop("string", "provider name"),
				"activity_id":    prop("string", "provider-native activity id"),
				"sleep_provider": prop("string", "optional provider to source sleep data from"),
			}, "provider"),
			Handler: handleGetActivityIntelligence,
		},
		{
			Name:        "analyze_activity",
			Description: "Derive speed, pace, and effort metrics for one activity.",
			InputSchema: schema(map[string]any{
				"provider":    prop("string", "provider name"),
				"activity_id": prop("string", "provider-native activity id"),
			}, "provider", "activity_id"),
			Handler: handleAnalyzeActivity,
		},
		{
			Name:        "calculate_metrics",
			Description: "Alias of analyze_activity: derive speed, pace, and effort metrics for one activity.",
			InputSchema: schema(map[string]any{
				"provider":    prop("string", "provider name"),
				"activity_id": prop("string", "provider-native activity id"),
			}, "provider", "activity_id"),
			Handler: handleCalculateMetrics,
		},
		{
			Name:        "compare_activities",
			Description: "Compare two activities' distance, duration, and pace.",
			InputSchema: schema(map[string]any{
				"provider":      prop("string", "provider name"),
				"activity_id_1": prop("string", "first activity id"),
				"activity_id_2": prop("string", "second activity id"),
			}, "provider", "activity_id_1", "activity_id_2"),
			Handler: handleCompareActivities,
		},
		{
			Name:        "analyze_performance_trends",
			Description: "Compare early vs. recent pace over an activity history window.",
			InputSchema: schema(map[string]any{
				"provider": prop("string", "provider name"),
				"limit":    prop("integer", "how many recent activities to consider"),
			}, "provider"),
			Handler: handleAnalyzePerformanceTrends,
		},
		{
			Name:        "detect_patterns",
			Description: "Surface simple regularities such as a dominant training day or activity type.",
			InputSchema: schema(map[string]any{
				"provider": prop("string", "provider name"),
				"limit":    prop("integer", "how many recent activities to consider"),
			}, "provider"),
			Handler: handleDetectPatterns,
		},
		{
			Name:        "analyze_training_load",
			Description: "Compute CTL/ATL/TSB training load from an activity history window.",
			InputSchema: schema(map[string]any{
				"provider": prop("string", "provider name"),
				"limit":    prop("integer", "how many recent activities to consider"),
			}, "provider"),
			Handler: handleAnalyzeTrainingLoad,
		},
		{
			Name:        "calculate_fitness_score",
			Description: "Compute an overall fitness score, optionally recovery-adjusted with sleep data from a second provider.",
			InputSchema: schema(map[string]any{
				"provider":       prop("string", "provider name"),
				"limit":          prop("integer", "how many recent activities to consider"),
				"sleep_provider": prop("string", "optional provider to source one night of sleep data from"),
			}, "provider"),
			Handler: handleCalculateFitnessScore,
		},
		{
			Name:        "predict_performance",
			Description: "Extrapolate an expected pace for a target race distance from recent training.",
			InputSchema: schema(map[string]any{
				"provider":           prop("string", "provider name"),
				"limit":              prop("integer", "how many recent activities to consider"),
				"target_distance_km": prop("number", "target race distance in kilometers"),
			}, "provider", "target_distance_km"),
			Handler: handlePredictPerformance,
		},
		{
			Name:        "generate_recommendations",
			Description: "Produce short coaching recommendations from training load and pace trend.",
			InputSchema: schema(map[string]any{
				"provider": prop("string", "provider name"),
				"limit":    prop("integer", "how many recent activities to consider"),
			}, "provider"),
			Handler: handleGenerateRecommendations,
		},

		// Goals / configuration
		{
			Name:        "set_goal",
			Description: "Create a training goal.",
			InputSchema: schema(map[string]any{
				"provider":     prop("string", "optional provider this goal is scoped to"),
				"title":        prop("string", "short goal title"),
				"goal_type":    prop("string", "goal category, e.g. distance, pace, training_load"),
				"target_value": prop("number", "numeric target"),
				"unit":         prop("string", "unit the target is measured in"),
				"target_date":  prop("string", "ISO-8601 date by which to reach the goal"),
			}, "title", "goal_type", "target_value"),
			Handler: handleSetGoal,
		},
		{
			Name:        "get_goals",
			Description: "List the caller's goals.",
			InputSchema: schema(map[string]any{}),
			Handler:     handleGetGoals,
		},
		{
			Name:        "suggest_goals",
			Description: "Suggest starter goals derived from recent training load and pace.",
			InputSchema: schema(map[string]any{
				"provider": prop("string", "provider name"),
				"limit":    prop("integer", "how many recent activities to consider"),
			}, "provider"),
			Handler: handleSuggestGoals,
		},
		{
			Name:        "track_progress",
			Description: "Record a new current value against an existing goal.",
			InputSchema: schema(map[string]any{
				"goal_id":       prop("string", "goal id"),
				"current_value": prop("number", "new current value"),
			}, "goal_id", "current_value"),
			Handler: handleTrackProgress,
		},
		{
			Name:        "analyze_goal_feasibility",
			Description: "Assess whether a goal's remaining gap is achievable in the time remaining.",
			InputSchema: schema(map[string]any{
				"goal_id":  prop("string", "goal id"),
				"provider": prop("string", "optional provider to source a fresh trend from"),
			}, "goal_id"),
			Handler: handleAnalyzeGoalFeasibility,
		},

		// Connection lifecycle
		{
			Name:        "connect_strava",
			Description: "Begin the Strava OAuth connection flow, returning an authorization URL.",
			InputSchema: schema(map[string]any{}),
			Handler:     handleConnectStrava,
		},
		{
			Name:        "connect_fitbit",
			Description: "Begin the Fitbit OAuth connection flow, returning an authorization URL.",
			InputSchema: schema(map[string]any{}),
			Handler:     handleConnectFitbit,
		},
		{
			Name:        "connect_provider",
			Description: "Begin an OAuth connection flow for the named provider.",
			InputSchema: schema(map[string]any{"provider": prop("string", "provider name")}, "provider"),
			Handler:     handleConnectProvider,
		},
		{
			Name:        "disconnect_provider",
			Description: "Remove a connected provider's stored token.",
			InputSchema: schema(map[string]any{"provider": prop("string", "provider name")}, "provider"),
			Handler:     handleDisconnectProvider,
		},
		{
			Name:        "get_connection_status",
			Description: "Report connection and token-validity status for every known provider.",
			InputSchema: schema(map[string]any{}),
			Handler:     handleGetConnectionStatus,
		},
	}
}
