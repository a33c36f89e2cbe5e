// Package provider implements C4's provider registry & token manager
// (spec.md §4.4): given (user_id, provider, tenant_id) it resolves a
// refreshed OAuth token and hands back a typed ProviderHandle, the way
// the teacher's iam container wires infra clients behind small domain
// interfaces.
package provider

import (
	"context"
	"time"
)

// Activity is the provider-agnostic shape C5's provider-backed handlers
// consume; concrete clients translate Strava/Fitbit payloads into this.
type Activity struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	StartDate     time.Time `json:"start_date"`
	DistanceMeters float64  `json:"distance_meters"`
	MovingTimeSec int       `json:"moving_time_seconds"`
	ElapsedTimeSec int      `json:"elapsed_time_seconds"`
	ElevationGain float64   `json:"elevation_gain_meters"`
	AverageHR     *float64  `json:"average_heart_rate,omitempty"`
	MaxHR         *float64  `json:"max_heart_rate,omitempty"`
	Calories      *float64  `json:"calories,omitempty"`
}

type Athlete struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Stats struct {
	TotalActivities int     `json:"total_activities"`
	TotalDistanceM  float64 `json:"total_distance_meters"`
	TotalTimeSec    int     `json:"total_time_seconds"`
}

// SleepSample is the one-night sleep reading C5's recovery-adjusted
// fitness score (spec.md §4.5) fetches via a sleep_provider.
type SleepSample struct {
	Date            time.Time `json:"date"`
	TotalSleepMin   int       `json:"total_sleep_minutes"`
	DeepSleepMin    int       `json:"deep_sleep_minutes"`
	RemSleepMin     int       `json:"rem_sleep_minutes"`
	Awakenings      int       `json:"awakenings"`
	RestingHeartRate *float64 `json:"resting_heart_rate,omitempty"`
}

// ListOptions mirrors get_activities(limit?, before?) (spec.md §4.4).
type ListOptions struct {
	Limit  int
	Before *time.Time
}

// ProviderHandle is the capability interface every concrete provider
// client implements; C5 holds one per (user, provider) call.
type ProviderHandle interface {
	Name() string
	GetActivities(ctx context.Context, opts ListOptions) ([]Activity, error)
	GetActivity(ctx context.Context, id string) (*Activity, error)
	GetAthlete(ctx context.Context) (*Athlete, error)
	GetStats(ctx context.Context) (*Stats, error)
	GetSleep(ctx context.Context) ([]SleepSample, error)
}
