package a2a

// Card is the public Agent Card served at /.well-known/agent.json
// (spec.md §4.6), advertising every tool group C5's registry exposes so an
// A2A-speaking agent can decide whether to connect before authenticating.
func Card() AgentCard {
	return AgentCard{
		Name:               "pierre",
		Description:        "Fitness-data gateway exposing activity, analytics, goal, and connection-lifecycle tools over A2A",
		URL:                "/a2a/jsonrpc",
		Version:            "1.0.0",
		Capabilities:       []string{"streaming", "pushNotifications"},
		DefaultInputModes:  []string{"application/json"},
		DefaultOutputModes: []string{"application/json"},
		Skills: []Skill{
			{ID: "activity-data", Name: "Activity data", Description: "Fetch activities, athlete profile, stats, and weather from the connected fitness provider", Tags: []string{"strava", "fitbit"}},
			{ID: "analytics", Name: "Training analytics", Description: "Intelligence summaries, training load, fitness score, and performance trend analysis", Tags: []string{"ctl", "atl", "tsb"}},
			{ID: "goals", Name: "Goal tracking", Description: "Set, track, and suggest training goals with feasibility analysis", Tags: []string{"goals"}},
			{ID: "connections", Name: "Provider connections", Description: "Connect, disconnect, and inspect OAuth provider connections", Tags: []string{"oauth"}},
		},
	}
}
