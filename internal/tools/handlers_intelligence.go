package tools

import (
	"fmt"
	"math"

	"github.com/pierre-fitness/pierre-server/internal/analytics"
	"github.com/pierre-fitness/pierre-server/internal/logx"
	"github.com/pierre-fitness/pierre-server/internal/provider"
)

// Analytics handlers (spec.md §4.5): call the analytics library, an
// external collaborator that touches no store and no network itself.

type activityIDParams struct {
	Provider     string `json:"provider"`
	ActivityID   string `json:"activity_id"`
	SleepProvider string `json:"sleep_provider"`
}

type autoSelected struct {
	Reason              string   `json:"reason"`
	SelectedActivityID  string   `json:"selected_activity_id"`
	AvailableActivities []string `json:"available_activities"`
}

// resolveActivityWithFallback implements the auto-fallback §4.5 requires:
// on a missing activity_id, fetch the five most recent, select the most
// recent, and annotate the response so a caller never silently receives a
// substituted activity.
func resolveActivityWithFallback(cc CallContext, handle provider.ProviderHandle, activityID string) (*provider.Activity, *autoSelected, *ProtocolError) {
	activity, err := handle.GetActivity(cc.Ctx, activityID)
	if err == nil {
		return activity, nil, nil
	}
	perr := providerErrToProtocol(err)
	if perr.Code != ErrNotFound {
		return nil, nil, perr
	}

	recent, rerr := handle.GetActivities(cc.Ctx, provider.ListOptions{Limit: 5})
	if rerr != nil {
		return nil, nil, providerErrToProtocol(rerr)
	}
	if len(recent) == 0 {
		return nil, nil, NewProtocolError(ErrNotFound, "activity not found and no recent activities available")
	}

	ids := make([]string, len(recent))
	for i, a := range recent {
		ids[i] = a.ID
	}
	selected := recent[0]
	for _, a := range recent {
		if a.StartDate.After(selected.StartDate) {
			selected = a
		}
	}
	return &selected, &autoSelected{
		Reason:              fmt.Sprintf("activity_id %q was not found; substituted the most recent activity", activityID),
		SelectedActivityID:  selected.ID,
		AvailableActivities: ids,
	}, nil
}

type intelligenceResult struct {
	Activity     provider.Activity    `json:"activity"`
	Metrics      analytics.Metrics    `json:"metrics"`
	AutoSelected *autoSelected        `json:"auto_selected,omitempty"`
	Narrative    string               `json:"narrative,omitempty"`
}

func handleGetActivityIntelligence(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p activityIDParams
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

	activity, auto, perr := resolveActivityWithFallback(cc, handle, p.ActivityID)
	if perr != nil {
		return nil, perr
	}
	if req.Cancellation.IsCancelled() {
		return nil, NewProtocolError(ErrCancelled, "operation cancelled")
	}

	req.Progress.Report(PhaseAnalyse, 0.7, "analysing activity")
	metrics := analytics.CalculateMetrics(*activity)
	result := intelligenceResult{Activity: *activity, Metrics: metrics, AutoSelected: auto}

	if req.SamplingPeer != nil {
		prompt := fmt.Sprintf("Summarize this training activity in two sentences: type=%s distance_km=%.1f effort_score=%.0f",
			activity.Type, activity.DistanceMeters/1000, metrics.EffortScore)
		if text, serr := req.SamplingPeer.Sample(cc, prompt); serr == nil {
			result.Narrative = text
		}
		// sampling failure falls back to the deterministic analysis above silently
	}
	return result, nil
}

func handleAnalyzeActivity(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p activityIDParams
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
	activity, err := handle.GetActivity(cc.Ctx, p.ActivityID)
	if err != nil {
		return nil, providerErrToProtocol(err)
	}
	return analytics.CalculateMetrics(*activity), nil
}

func handleCalculateMetrics(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	return handleAnalyzeActivity(cc, req)
}

type compareParams struct {
	Provider    string `json:"provider"`
	ActivityID1 string `json:"activity_id_1"`
	ActivityID2 string `json:"activity_id_2"`
}

func handleCompareActivities(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p compareParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	if p.Provider == "" || p.ActivityID1 == "" || p.ActivityID2 == "" {
		return nil, NewProtocolError(ErrInvalidParameters, "provider, activity_id_1, and activity_id_2 are required")
	}
	handle, perr := resolveProvider(cc, req, p.Provider)
	if perr != nil {
		return nil, perr
	}
	a1, err := handle.GetActivity(cc.Ctx, p.ActivityID1)
	if err != nil {
		return nil, providerErrToProtocol(err)
	}
	a2, err := handle.GetActivity(cc.Ctx, p.ActivityID2)
	if err != nil {
		return nil, providerErrToProtocol(err)
	}
	return analytics.CompareActivities(*a1, *a2), nil
}

type historyParams struct {
	Provider string `json:"provider"`
	Limit    int    `json:"limit"`
}

func fetchHistory(cc CallContext, req UniversalRequest, p historyParams) ([]provider.Activity, *ProtocolError) {
	if p.Provider == "" {
		return nil, NewProtocolError(ErrInvalidParameters, "provider is required")
	}
	if p.Limit <= 0 {
		p.Limit = 30
	}
	handle, perr := resolveProvider(cc, req, p.Provider)
	if perr != nil {
		return nil, perr
	}
	activities, err := handle.GetActivities(cc.Ctx, provider.ListOptions{Limit: p.Limit})
	if err != nil {
		return nil, providerErrToProtocol(err)
	}
	return activities, nil
}

func handleAnalyzePerformanceTrends(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p historyParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	activities, perr := fetchHistory(cc, req, p)
	if perr != nil {
		return nil, perr
	}
	return analytics.AnalyzePerformanceTrends(activities), nil
}

func handleDetectPatterns(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p historyParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	activities, perr := fetchHistory(cc, req, p)
	if perr != nil {
		return nil, perr
	}
	return analytics.DetectPatterns(activities), nil
}

func handleAnalyzeTrainingLoad(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p historyParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	activities, perr := fetchHistory(cc, req, p)
	if perr != nil {
		return nil, perr
	}
	return analytics.AnalyzeTrainingLoad(activities), nil
}

type fitnessScoreParams struct {
	Provider      string `json:"provider"`
	Limit         int    `json:"limit"`
	SleepProvider string `json:"sleep_provider"`
}

type recoveryAdjustment struct {
	SleepQualityScore float64 `json:"sleep_quality_score"`
	AdjustmentFactor  float64 `json:"adjustment_factor"`
}

type fitnessScoreResult struct {
	FitnessScore           float64              `json:"fitness_score"`
	FitnessScoreUnadjusted *float64             `json:"fitness_score_unadjusted,omitempty"`
	TrainingLoad           analytics.TrainingLoad `json:"training_load"`
	ActivityCount          int                  `json:"activity_count"`
	RecoveryAdjustment     *recoveryAdjustment  `json:"recovery_adjustment,omitempty"`
	ProvidersUsed          map[string]string    `json:"providers_used"`
	Limitations            []string             `json:"limitations,omitempty"`
}

// handleCalculateFitnessScore implements spec.md §4.5's cross-provider
// recovery adjustment: an optional sleep_provider enriches the unadjusted
// fitness score with a multiplicative factor derived from sleep quality;
// a failed sleep fetch degrades to the unadjusted score plus a limitation
// instead of failing the whole call.
func handleCalculateFitnessScore(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p fitnessScoreParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	activities, perr := fetchHistory(cc, req, historyParams{Provider: p.Provider, Limit: p.Limit})
	if perr != nil {
		return nil, perr
	}

	fitness := analytics.CalculateFitnessScore(activities)
	result := fitnessScoreResult{
		FitnessScore:  fitness.Score,
		TrainingLoad:  fitness.TrainingLoad,
		ActivityCount: fitness.ActivityCount,
		ProvidersUsed: map[string]string{"provider": p.Provider},
	}

	if p.SleepProvider == "" {
		return result, nil
	}
	result.ProvidersUsed["sleep_provider"] = p.SleepProvider

	sleepHandle, serr := cc.Providers.Get(cc.Ctx, req.UserID, p.SleepProvider, req.TenantID)
	if serr != nil {
		logx.WithError(serr).WithField("sleep_provider", p.SleepProvider).Warn("tools: sleep provider unavailable, returning unadjusted fitness score")
		result.Limitations = append(result.Limitations, "sleep data unavailable: "+serr.Error())
		return result, nil
	}
	samples, serr := sleepHandle.GetSleep(cc.Ctx)
	if serr != nil || len(samples) == 0 {
		logx.WithField("sleep_provider", p.SleepProvider).WithField("error", fmt.Sprint(serr)).Warn("tools: sleep data unavailable, returning unadjusted fitness score")
		result.Limitations = append(result.Limitations, "sleep data unavailable from "+p.SleepProvider)
		return result, nil
	}

	sleepScore := analytics.SleepQualityScore(samples[0])
	factor := analytics.RecoveryAdjustmentFactor(sleepScore)
	unadjusted := fitness.Score
	result.FitnessScoreUnadjusted = &unadjusted
	result.FitnessScore = math.Round(unadjusted*factor*10) / 10
	result.RecoveryAdjustment = &recoveryAdjustment{SleepQualityScore: sleepScore, AdjustmentFactor: factor}
	return result, nil
}

type predictParams struct {
	Provider         string  `json:"provider"`
	Limit            int     `json:"limit"`
	TargetDistanceKM float64 `json:"target_distance_km"`
}

func handlePredictPerformance(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p predictParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	if p.TargetDistanceKM <= 0 {
		return nil, NewProtocolError(ErrInvalidParameters, "target_distance_km must be positive")
	}
	activities, perr := fetchHistory(cc, req, historyParams{Provider: p.Provider, Limit: p.Limit})
	if perr != nil {
		return nil, perr
	}
	return analytics.PredictPerformance(activities, p.TargetDistanceKM), nil
}

type recommendationsResult struct {
	Recommendations []analytics.Recommendation `json:"recommendations"`
	Source          string                     `json:"source"` // "sampling" | "deterministic"
}

func handleGenerateRecommendations(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p historyParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	activities, perr := fetchHistory(cc, req, p)
	if perr != nil {
		return nil, perr
	}
	load := analytics.AnalyzeTrainingLoad(activities)
	trend := analytics.AnalyzePerformanceTrends(activities)

	if req.SamplingPeer != nil {
		prompt := fmt.Sprintf("Given training stress balance %.1f and a %s pace trend, suggest two short, actionable coaching recommendations.", load.TSB, trend.Direction)
		if text, serr := req.SamplingPeer.Sample(cc, prompt); serr == nil {
			return recommendationsResult{
				Recommendations: []analytics.Recommendation{{Title: "Coaching note", Detail: text}},
				Source:          "sampling",
			}, nil
		}
		// sampling failure falls back to the deterministic generator below
	}
	return recommendationsResult{Recommendations: analytics.GenerateRecommendations(load, trend), Source: "deterministic"}, nil
}
