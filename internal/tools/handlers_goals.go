package tools

import (
	"time"

	"github.com/pierre-fitness/pierre-server/internal/analytics"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

// Goals / configuration handlers (spec.md §4.5): database-only, no provider
// or network I/O beyond the optional feasibility analysis.

type setGoalParams struct {
	Provider    *string    `json:"provider"`
	Title       string     `json:"title"`
	GoalType    string     `json:"goal_type"`
	TargetValue float64    `json:"target_value"`
	Unit        string     `json:"unit"`
	TargetDate  *time.Time `json:"target_date"`
}

func handleSetGoal(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p setGoalParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	if p.Title == "" || p.GoalType == "" || p.TargetValue <= 0 {
		return nil, NewProtocolError(ErrInvalidParameters, "title, goal_type, and a positive target_value are required")
	}
	goal := store.Goal{
		UserID:      req.UserID,
		Provider:    p.Provider,
		Title:       p.Title,
		GoalType:    p.GoalType,
		TargetValue: p.TargetValue,
		Unit:        p.Unit,
		TargetDate:  p.TargetDate,
	}
	id, err := cc.Store.CreateGoal(cc.Ctx, goal)
	if err != nil {
		return nil, storeErrToProtocol(err)
	}
	goal.ID = id
	return goal, nil
}

func handleGetGoals(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	goals, err := cc.Store.ListGoalsByUser(cc.Ctx, req.UserID)
	if err != nil {
		return nil, storeErrToProtocol(err)
	}
	return goals, nil
}

type suggestGoalsParams struct {
	Provider string `json:"provider"`
	Limit    int    `json:"limit"`
}

type goalSuggestion struct {
	Title       string  `json:"title"`
	GoalType    string  `json:"goal_type"`
	TargetValue float64 `json:"target_value"`
	Unit        string  `json:"unit"`
	Rationale   string  `json:"rationale"`
}

// handleSuggestGoals derives starter goals from the observed training load
// and recent pace, rather than inventing arbitrary numbers.
func handleSuggestGoals(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p suggestGoalsParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	activities, perr := fetchHistory(cc, req, historyParams{Provider: p.Provider, Limit: p.Limit})
	if perr != nil {
		return nil, perr
	}
	if len(activities) == 0 {
		return []goalSuggestion{}, nil
	}

	load := analytics.AnalyzeTrainingLoad(activities)
	trend := analytics.AnalyzePerformanceTrends(activities)

	suggestions := []goalSuggestion{
		{
			Title:       "Grow chronic training load",
			GoalType:    "training_load",
			TargetValue: round1(load.CTL * 1.1),
			Unit:        "ctl",
			Rationale:   "a 10% increase over the current chronic training load is a sustainable progression",
		},
	}
	if trend.AveragePaceMin > 0 {
		suggestions = append(suggestions, goalSuggestion{
			Title:       "Improve average pace",
			GoalType:    "pace",
			TargetValue: round1(trend.AveragePaceMin * 0.97),
			Unit:        "min_per_km",
			Rationale:   "a 3% pace improvement over the recent average is a realistic short-term target",
		})
	}
	return suggestions, nil
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

type trackProgressParams struct {
	GoalID       string  `json:"goal_id"`
	CurrentValue float64 `json:"current_value"`
}

func handleTrackProgress(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p trackProgressParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	if p.GoalID == "" {
		return nil, NewProtocolError(ErrInvalidParameters, "goal_id is required")
	}
	goal, err := cc.Store.GetGoal(cc.Ctx, p.GoalID)
	if err != nil {
		return nil, storeErrToProtocol(err)
	}
	if goal.UserID != req.UserID {
		return nil, NewProtocolError(ErrNotFound, "goal not found")
	}
	if err := cc.Store.UpdateGoalProgress(cc.Ctx, p.GoalID, p.CurrentValue); err != nil {
		return nil, storeErrToProtocol(err)
	}
	goal.CurrentValue = p.CurrentValue
	return goal, nil
}

type feasibilityParams struct {
	GoalID   string `json:"goal_id"`
	Provider string `json:"provider"`
}

// handleAnalyzeGoalFeasibility resolves the Open Question on whether
// feasibility is DB-only or provider-backed by supporting both: when
// provider is supplied, the trend comes from fresh activity history;
// otherwise it falls back to the goal's own recorded progress trajectory.
// analytics.AnalyzeGoalFeasibility does not read the trend, so the verdict
// is the same either way.
func handleAnalyzeGoalFeasibility(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p feasibilityParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	if p.GoalID == "" {
		return nil, NewProtocolError(ErrInvalidParameters, "goal_id is required")
	}
	goal, err := cc.Store.GetGoal(cc.Ctx, p.GoalID)
	if err != nil {
		return nil, storeErrToProtocol(err)
	}
	if goal.UserID != req.UserID {
		return nil, NewProtocolError(ErrNotFound, "goal not found")
	}

	daysRemaining := 30
	if goal.TargetDate != nil {
		daysRemaining = int(time.Until(*goal.TargetDate).Hours() / 24)
	}

	var trend analytics.Trend
	if p.Provider != "" {
		activities, perr := fetchHistory(cc, req, historyParams{Provider: p.Provider, Limit: 30})
		if perr != nil {
			return nil, perr
		}
		trend = analytics.AnalyzePerformanceTrends(activities)
	} else {
		trend = trendFromGoalHistory(*goal)
	}

	return analytics.AnalyzeGoalFeasibility(goal.CurrentValue, goal.TargetValue, daysRemaining, trend), nil
}

// trendFromGoalHistory derives a coarse direction from a goal's own
// recorded current-vs-target gap when no provider history is requested.
func trendFromGoalHistory(g store.Goal) analytics.Trend {
	if g.TargetValue == 0 {
		return analytics.Trend{Direction: "stable"}
	}
	gap := (g.TargetValue - g.CurrentValue) / g.TargetValue * 100
	switch {
	case gap < -2:
		return analytics.Trend{Direction: "improving", PaceDeltaPct: gap}
	case gap > 2:
		return analytics.Trend{Direction: "declining", PaceDeltaPct: gap}
	default:
		return analytics.Trend{Direction: "stable"}
	}
}
