// Package analytics is the pure-function fitness-analytics library spec.md
// §1 treats as an external collaborator: "the fitness-analytics library
// (effort scores, training load, VO2 calculators) — treated as a pure
// function library the engine calls". It takes provider.Activity /
// provider.SleepSample values in and returns plain data out; it never
// touches the store, the network, or any I/O. Reimplementing the original
// Rust intelligence package's full scientific derivations is explicitly a
// non-goal (spec.md §1); these functions reproduce the same *shape* of
// result (the fields spec.md §4.5/§8's test scenarios assert on:
// fitness_score, fitness_score_unadjusted, recovery_adjustment,
// training_load with CTL/ATL/TSB) using standard, documented formulas
// (Coggan's impulse-response TRIMP/CTL/ATL model) rather than a literal
// port.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/pierre-fitness/pierre-server/internal/provider"
)

// Metrics is the per-activity derived-metric bundle calculate_metrics
// returns (spec.md §4.5).
type Metrics struct {
	AverageSpeedKMH  float64 `json:"average_speed_kmh"`
	PaceMinPerKM     float64 `json:"pace_min_per_km"`
	EffortScore      float64 `json:"effort_score"`
	ElevationPerKM   float64 `json:"elevation_per_km"`
	CaloriesPerKM    float64 `json:"calories_per_km,omitempty"`
}

// CalculateMetrics derives speed/pace/effort from a single activity.
// EffortScore is a 0-100 composite of heart rate intensity, duration, and
// elevation gain — a simplified analogue of the original's TRIMP-based
// effort score.
func CalculateMetrics(a provider.Activity) Metrics {
	km := a.DistanceMeters / 1000
	hours := float64(a.MovingTimeSec) / 3600

	m := Metrics{}
	if hours > 0 {
		m.AverageSpeedKMH = km / hours
	}
	if km > 0 {
		m.PaceMinPerKM = (float64(a.MovingTimeSec) / 60) / km
		m.ElevationPerKM = a.ElevationGain / km
		if a.Calories != nil {
			m.CaloriesPerKM = *a.Calories / km
		}
	}
	m.EffortScore = effortScore(a)
	return m
}

// effortScore combines duration, heart-rate intensity, and elevation into
// a bounded 0-100 score, the way TRIMP scales training duration by
// heart-rate-derived intensity.
func effortScore(a provider.Activity) float64 {
	durationFactor := math.Min(float64(a.MovingTimeSec)/3600, 3) / 3 * 40
	hrFactor := 0.0
	if a.AverageHR != nil {
		hrFactor = math.Min(*a.AverageHR/180, 1) * 40
	}
	elevationFactor := math.Min(a.ElevationGain/1000, 1) * 20
	score := durationFactor + hrFactor + elevationFactor
	return math.Round(score*10) / 10
}

// Comparison is compare_activities' result (spec.md §4.5/§8: "equals
// compare_activities(id2, id1) in its symmetric metrics and negates in its
// asymmetric ones").
type Comparison struct {
	DistanceDeltaMeters float64 `json:"distance_delta_meters"` // asymmetric: a - b
	DurationDeltaSec    int     `json:"duration_delta_seconds"` // asymmetric: a - b
	SpeedDeltaKMH       float64 `json:"speed_delta_kmh"`        // asymmetric: a - b
	DistanceDiffMeters  float64 `json:"distance_diff_meters"`   // symmetric: |a - b|
	SameType            bool   `json:"same_type"`              // symmetric
}

// CompareActivities is antisymmetric in its "_delta" fields and symmetric
// in its "_diff"/boolean fields, satisfying spec.md §8's round-trip
// property.
func CompareActivities(a, b provider.Activity) Comparison {
	ma, mb := CalculateMetrics(a), CalculateMetrics(b)
	return Comparison{
		DistanceDeltaMeters: a.DistanceMeters - b.DistanceMeters,
		DurationDeltaSec:    a.MovingTimeSec - b.MovingTimeSec,
		SpeedDeltaKMH:       ma.AverageSpeedKMH - mb.AverageSpeedKMH,
		DistanceDiffMeters:  math.Abs(a.DistanceMeters - b.DistanceMeters),
		SameType:            a.Type == b.Type,
	}
}

// TrainingLoad is the CTL/ATL/TSB bundle (glossary: chronic, acute, and
// balance training-load metrics) computed from an activity history via
// Coggan's exponentially-weighted impulse-response model.
type TrainingLoad struct {
	CTL float64 `json:"ctl"` // chronic training load, 42-day time constant
	ATL float64 `json:"atl"` // acute training load, 7-day time constant
	TSB float64 `json:"tsb"` // training stress balance = CTL - ATL
}

const (
	ctlTimeConstant = 42.0
	atlTimeConstant = 7.0
)

// AnalyzeTrainingLoad computes CTL/ATL/TSB from a chronologically-ordered
// (oldest first) activity history, each contributing one day's training
// stress via its effort score.
func AnalyzeTrainingLoad(activities []provider.Activity) TrainingLoad {
	sorted := make([]provider.Activity, len(activities))
	copy(sorted, activities)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartDate.Before(sorted[j].StartDate) })

	var ctl, atl float64
	ctlDecay := math.Exp(-1 / ctlTimeConstant)
	atlDecay := math.Exp(-1 / atlTimeConstant)

	for _, a := range sorted {
		stress := effortScore(a)
		ctl = ctl*ctlDecay + stress*(1-ctlDecay)
		atl = atl*atlDecay + stress*(1-atlDecay)
	}

	return TrainingLoad{
		CTL: round1(ctl),
		ATL: round1(atl),
		TSB: round1(ctl - atl),
	}
}

// FitnessScore is calculate_fitness_score's unadjusted result, before any
// sleep-based recovery adjustment (spec.md §4.5).
type FitnessScore struct {
	Score         float64      `json:"fitness_score"`
	TrainingLoad  TrainingLoad `json:"training_load"`
	ActivityCount int          `json:"activity_count"`
}

// CalculateFitnessScore derives an overall 0-100 fitness score from CTL
// (aerobic base) moderated by a TSB penalty for being badly overreached.
func CalculateFitnessScore(activities []provider.Activity) FitnessScore {
	load := AnalyzeTrainingLoad(activities)

	base := math.Min(load.CTL/80*100, 100)
	penalty := 0.0
	if load.TSB < -20 {
		penalty = math.Min((-load.TSB-20)/2, 20)
	}
	score := math.Max(base-penalty, 0)

	return FitnessScore{
		Score:         round1(score),
		TrainingLoad:  load,
		ActivityCount: len(activities),
	}
}

// SleepQualityScore is the 0-100 composite sleep score spec.md §4.5 maps
// to a multiplicative recovery-adjustment bucket.
func SleepQualityScore(s provider.SleepSample) float64 {
	durationScore := math.Min(float64(s.TotalSleepMin)/480*100, 100) // 8h target
	efficiency := 100.0
	if s.TotalSleepMin > 0 {
		efficiency = math.Max(100-float64(s.Awakenings)*5, 50)
	}
	deepRatio := 0.0
	if s.TotalSleepMin > 0 {
		deepRatio = float64(s.DeepSleepMin) / float64(s.TotalSleepMin) * 100
	}
	deepScore := math.Min(deepRatio/20*100, 100) // ~20% deep sleep is ideal

	score := durationScore*0.5 + efficiency*0.25 + deepScore*0.25
	return round1(score)
}

// RecoveryAdjustmentFactor maps a sleep quality score to the multiplicative
// bucket spec.md §4.5 specifies: {<50: 0.90, <70: 0.95, <90: 1.00, ≥90: 1.05}.
func RecoveryAdjustmentFactor(sleepScore float64) float64 {
	switch {
	case sleepScore < 50:
		return 0.90
	case sleepScore < 70:
		return 0.95
	case sleepScore < 90:
		return 1.00
	default:
		return 1.05
	}
}

// Trend is analyze_performance_trends' result over a window of activities.
type Trend struct {
	Direction      string  `json:"direction"` // "improving" | "declining" | "stable"
	AveragePaceMin float64 `json:"average_pace_min_per_km"`
	PaceDeltaPct   float64 `json:"pace_delta_percent"` // negative = faster (improving)
}

// AnalyzePerformanceTrends compares the average pace of the first and
// second half of a chronologically-ordered activity window.
func AnalyzePerformanceTrends(activities []provider.Activity) Trend {
	if len(activities) < 2 {
		return Trend{Direction: "stable"}
	}
	sorted := make([]provider.Activity, len(activities))
	copy(sorted, activities)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartDate.Before(sorted[j].StartDate) })

	mid := len(sorted) / 2
	earlyPace := averagePace(sorted[:mid])
	latePace := averagePace(sorted[mid:])

	trend := Trend{AveragePaceMin: round1(latePace)}
	if earlyPace <= 0 || latePace <= 0 {
		trend.Direction = "stable"
		return trend
	}
	deltaPct := (latePace - earlyPace) / earlyPace * 100
	trend.PaceDeltaPct = round1(deltaPct)
	switch {
	case deltaPct < -2:
		trend.Direction = "improving"
	case deltaPct > 2:
		trend.Direction = "declining"
	default:
		trend.Direction = "stable"
	}
	return trend
}

func averagePace(activities []provider.Activity) float64 {
	var total float64
	var n int
	for _, a := range activities {
		m := CalculateMetrics(a)
		if m.PaceMinPerKM > 0 {
			total += m.PaceMinPerKM
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// Pattern is one observation detect_patterns surfaces.
type Pattern struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// DetectPatterns looks for simple, explainable regularities: a dominant
// day-of-week and a dominant activity type. Gaps between activities are
// not examined.
func DetectPatterns(activities []provider.Activity) []Pattern {
	var patterns []Pattern
	if len(activities) == 0 {
		return patterns
	}

	dowCounts := make(map[time.Weekday]int)
	typeCounts := make(map[string]int)
	for _, a := range activities {
		dowCounts[a.StartDate.Weekday()]++
		typeCounts[a.Type]++
	}

	if dow, count := maxWeekday(dowCounts); count >= len(activities)/2 && count > 1 {
		patterns = append(patterns, Pattern{
			Kind:        "weekly_rhythm",
			Description: dow.String() + " is the most frequent training day",
		})
	}
	if typ, count := maxType(typeCounts); count >= len(activities)/2 && count > 1 {
		patterns = append(patterns, Pattern{
			Kind:        "dominant_activity_type",
			Description: typ + " accounts for most recorded activity",
		})
	}
	return patterns
}

func maxWeekday(counts map[time.Weekday]int) (time.Weekday, int) {
	var best time.Weekday
	bestCount := -1
	for d, c := range counts {
		if c > bestCount {
			best, bestCount = d, c
		}
	}
	return best, bestCount
}

func maxType(counts map[string]int) (string, int) {
	var best string
	bestCount := -1
	for t, c := range counts {
		if c > bestCount {
			best, bestCount = t, c
		}
	}
	return best, bestCount
}

// Prediction is predict_performance's result.
type Prediction struct {
	PredictedPaceMin float64 `json:"predicted_pace_min_per_km"`
	Confidence       float64 `json:"confidence"` // 0-1
}

// PredictPerformance extrapolates a pace from the average pace and the
// recent trend, low-confidence when the history is thin. targetDistanceKM
// does not affect the result: the predicted pace is the same for any
// target distance.
func PredictPerformance(activities []provider.Activity, targetDistanceKM float64) Prediction {
	pace := averagePace(activities)
	trend := AnalyzePerformanceTrends(activities)
	adjusted := pace * (1 + trend.PaceDeltaPct/100)

	confidence := math.Min(float64(len(activities))/10, 1)
	return Prediction{PredictedPaceMin: round1(adjusted), Confidence: round1(confidence)}
}

// Recommendation is one entry generate_recommendations returns.
type Recommendation struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// GenerateRecommendations produces deterministic, rule-based coaching
// suggestions from training load and trend; this is the fallback path
// when no MCP sampling peer is available (spec.md §4.5).
func GenerateRecommendations(load TrainingLoad, trend Trend) []Recommendation {
	var recs []Recommendation
	switch {
	case load.TSB < -20:
		recs = append(recs, Recommendation{
			Title:  "Prioritize recovery",
			Detail: "Training stress balance is deeply negative; schedule an easy or rest day.",
		})
	case load.TSB > 15:
		recs = append(recs, Recommendation{
			Title:  "Room to push",
			Detail: "Training stress balance is positive; a harder session is well tolerated.",
		})
	default:
		recs = append(recs, Recommendation{
			Title:  "Maintain current load",
			Detail: "Training stress balance is balanced; keep the current weekly structure.",
		})
	}

	switch trend.Direction {
	case "declining":
		recs = append(recs, Recommendation{
			Title:  "Address pace decline",
			Detail: "Recent pace has slowed relative to earlier sessions; check recovery and fueling.",
		})
	case "improving":
		recs = append(recs, Recommendation{
			Title:  "Trend is positive",
			Detail: "Recent pace is improving; current training stimulus appears effective.",
		})
	}
	return recs
}

// GoalFeasibility is analyze_goal_feasibility's result.
type GoalFeasibility struct {
	Feasible       bool    `json:"feasible"`
	RequiredChange float64 `json:"required_change_percent"`
	Reason         string  `json:"reason"`
}

// AnalyzeGoalFeasibility computes a goal's required change in percent and
// marks it infeasible when that change exceeds 25% with fewer than 30 days
// remaining. The trend argument is not read; the verdict depends only on
// the current value, target value and days remaining.
func AnalyzeGoalFeasibility(currentValue, targetValue float64, daysRemaining int, trend Trend) GoalFeasibility {
	if currentValue == 0 || daysRemaining <= 0 {
		return GoalFeasibility{Feasible: false, Reason: "insufficient data to project feasibility"}
	}
	requiredChangePct := (targetValue - currentValue) / currentValue * 100

	feasible := true
	reason := "required rate of change is within observed trend capability"
	if math.Abs(requiredChangePct) > 25 && daysRemaining < 30 {
		feasible = false
		reason = "required change is large relative to the remaining time window"
	}
	return GoalFeasibility{Feasible: feasible, RequiredChange: round1(requiredChangePct), Reason: reason}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
