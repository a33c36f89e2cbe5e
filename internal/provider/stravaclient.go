package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// stravaBaseURL is Strava's v3 REST API. spec.md §1 treats provider HTTP
// clients as typed RPC stubs out of scope for deep coverage; this client
// implements just the ProviderHandle surface C5's provider-backed handlers
// need.
const stravaBaseURL = "https://www.strava.com/api/v3"

type StravaClient struct {
	accessToken string
	httpClient  *http.Client
	baseURL     string
}

func NewStravaClient(accessToken string) ProviderHandle {
	return &StravaClient{accessToken: accessToken, httpClient: http.DefaultClient, baseURL: stravaBaseURL}
}

func (s *StravaClient) Name() string { return "strava" }

type stravaActivity struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Type               string  `json:"type"`
	StartDate          string  `json:"start_date"`
	Distance           float64 `json:"distance"`
	MovingTime         int     `json:"moving_time"`
	ElapsedTime        int     `json:"elapsed_time"`
	TotalElevationGain float64 `json:"total_elevation_gain"`
	AverageHeartrate   float64 `json:"average_heartrate"`
	MaxHeartrate       float64 `json:"max_heartrate"`
	Calories           float64 `json:"calories"`
}

func (a stravaActivity) toActivity() Activity {
	started, _ := time.Parse(time.RFC3339, a.StartDate)
	act := Activity{
		ID:             strconv.FormatInt(a.ID, 10),
		Name:           a.Name,
		Type:           a.Type,
		StartDate:      started,
		DistanceMeters: a.Distance,
		MovingTimeSec:  a.MovingTime,
		ElapsedTimeSec: a.ElapsedTime,
		ElevationGain:  a.TotalElevationGain,
	}
	if a.AverageHeartrate > 0 {
		act.AverageHR = &a.AverageHeartrate
	}
	if a.MaxHeartrate > 0 {
		act.MaxHR = &a.MaxHeartrate
	}
	if a.Calories > 0 {
		act.Calories = &a.Calories
	}
	return act
}

func (s *StravaClient) GetActivities(ctx context.Context, opts ListOptions) ([]Activity, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("per_page", strconv.Itoa(opts.Limit))
	}
	if opts.Before != nil {
		q.Set("before", strconv.FormatInt(opts.Before.Unix(), 10))
	}
	var raw []stravaActivity
	if err := s.get(ctx, "/athlete/activities?"+q.Encode(), &raw); err != nil {
		return nil, err
	}
	out := make([]Activity, 0, len(raw))
	for _, a := range raw {
		out = append(out, a.toActivity())
	}
	return out, nil
}

func (s *StravaClient) GetActivity(ctx context.Context, id string) (*Activity, error) {
	var raw stravaActivity
	if err := s.get(ctx, "/activities/"+id, &raw); err != nil {
		return nil, err
	}
	act := raw.toActivity()
	return &act, nil
}

type stravaAthlete struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

func (s *StravaClient) GetAthlete(ctx context.Context) (*Athlete, error) {
	var raw stravaAthlete
	if err := s.get(ctx, "/athlete", &raw); err != nil {
		return nil, err
	}
	return &Athlete{
		ID:        strconv.FormatInt(raw.ID, 10),
		Username:  raw.Username,
		FirstName: raw.FirstName,
		LastName:  raw.LastName,
	}, nil
}

type stravaStats struct {
	AllRideTotals struct {
		Count    int     `json:"count"`
		Distance float64 `json:"distance"`
		MovingTime int   `json:"moving_time"`
	} `json:"all_ride_totals"`
	AllRunTotals struct {
		Count    int     `json:"count"`
		Distance float64 `json:"distance"`
		MovingTime int   `json:"moving_time"`
	} `json:"all_run_totals"`
}

func (s *StravaClient) GetStats(ctx context.Context) (*Stats, error) {
	athlete, err := s.GetAthlete(ctx)
	if err != nil {
		return nil, err
	}
	var raw stravaStats
	if err := s.get(ctx, "/athletes/"+athlete.ID+"/stats", &raw); err != nil {
		return nil, err
	}
	return &Stats{
		TotalActivities: raw.AllRideTotals.Count + raw.AllRunTotals.Count,
		TotalDistanceM:  raw.AllRideTotals.Distance + raw.AllRunTotals.Distance,
		TotalTimeSec:    raw.AllRideTotals.MovingTime + raw.AllRunTotals.MovingTime,
	}, nil
}

// GetSleep is not a Strava capability; Strava never exposes sleep data, so
// this always returns ResourceNotFound, matching spec.md §4.4's uniform
// 404 surfacing and letting the recovery-adjusted fitness score handler
// (spec.md §4.5) degrade gracefully when sleep_provider="strava" is
// mistakenly requested.
func (s *StravaClient) GetSleep(ctx context.Context) ([]SleepSample, error) {
	return nil, ErrResourceNotFound()
}

func (s *StravaClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return errUpstream(err)
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errUpstream(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrResourceNotFound()
	case http.StatusUnauthorized:
		return ErrAuthExpired()
	default:
		return errUpstream(fmt.Errorf("strava: unexpected status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errUpstream(err)
	}
	return nil
}
