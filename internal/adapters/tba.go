package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/scoutbase/reefscout/internal/errors"
	"github.com/scoutbase/reefscout/internal/resilience"
	"github.com/scoutbase/reefscout/internal/types"
)

const tbaBaseURL = "https://www.thebluealliance.com/api/v3"

// tbaMatch is the wire shape of a match from The Blue Alliance API.
type tbaMatch struct {
	Key             string `json:"key"`
	CompLevel       string `json:"comp_level"`
	MatchNumber     int    `json:"match_number"`
	WinningAlliance string `json:"winning_alliance"`
	EventKey        string `json:"event_key"`
	Time            int64  `json:"time"`
	PredictedTime   int64  `json:"predicted_time"`
	ActualTime      int64  `json:"actual_time"`
	Alliances       struct {
		Red  tbaAlliance `json:"red"`
		Blue tbaAlliance `json:"blue"`
	} `json:"alliances"`
}

type tbaAlliance struct {
	Score    *int     `json:"score"`
	TeamKeys []string `json:"team_keys"`
}

// tbaTeam is the wire shape of a team from The Blue Alliance API.
type tbaTeam struct {
	Key        string `json:"key"`
	TeamNumber int    `json:"team_number"`
	Nickname   string `json:"nickname"`
	City       string `json:"city"`
	Country    string `json:"country"`
	RookieYear int    `json:"rookie_year"`
}

// tbaOPRs is the wire shape of the event OPRs endpoint. Keys are team keys
// ("frc254"), values are the computed contribution metrics.
type tbaOPRs struct {
	OPRs  map[string]float64 `json:"oprs"`
	DPRs  map[string]float64 `json:"dprs"`
	CCWMs map[string]float64 `json:"ccwms"`
}

// TBAAdapter fetches event schedules, rosters, and statistics from The
// Blue Alliance API.
type TBAAdapter struct {
	apiKey  string
	baseURL string
	client  *resilience.HTTPClient
	limiter *rate.Limiter
}

// NewTBAAdapter creates a new Blue Alliance adapter with connection reuse,
// circuit breaker protection, and client-side rate limiting.
func NewTBAAdapter(apiKey string) *TBAAdapter {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 3,
	})

	return &TBAAdapter{
		apiKey:  apiKey,
		baseURL: tbaBaseURL,
		client:  resilience.NewHTTPClient(20, 30*time.Second, 15*time.Second, cb),
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
}

// NewTBAAdapterWithBaseURL creates an adapter pointed at an alternate API
// endpoint, used for proxies and tests.
func NewTBAAdapterWithBaseURL(apiKey, baseURL string) *TBAAdapter {
	a := NewTBAAdapter(apiKey)
	a.baseURL = baseURL
	return a
}

// FetchEventMatches fetches the match schedule and results for an event.
func (a *TBAAdapter) FetchEventMatches(ctx context.Context, eventKey string) ([]types.Match, error) {
	body, err := a.get(ctx, fmt.Sprintf("/event/%s/matches", eventKey))
	if err != nil {
		return nil, err
	}

	var raw []tbaMatch
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewExternalAPIError("failed to decode match data", err)
	}

	matches := make([]types.Match, 0, len(raw))
	for _, m := range raw {
		matches = append(matches, convertMatch(m, time.Now()))
	}
	return matches, nil
}

// FetchEventTeams fetches the team roster for an event.
func (a *TBAAdapter) FetchEventTeams(ctx context.Context, eventKey string) ([]types.Team, error) {
	body, err := a.get(ctx, fmt.Sprintf("/event/%s/teams", eventKey))
	if err != nil {
		return nil, err
	}

	var raw []tbaTeam
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewExternalAPIError("failed to decode team data", err)
	}

	teams := make([]types.Team, 0, len(raw))
	for _, t := range raw {
		teams = append(teams, convertTeam(t))
	}
	return teams, nil
}

// FetchEventInsights fetches per-team OPR, DPR, and CCWM for an event and
// fills in the game-specific estimates that the API does not publish.
func (a *TBAAdapter) FetchEventInsights(ctx context.Context, eventKey string) (map[int]TeamInsights, error) {
	body, err := a.get(ctx, fmt.Sprintf("/event/%s/oprs", eventKey))
	if err != nil {
		return nil, err
	}

	var raw tbaOPRs
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewExternalAPIError("failed to decode event statistics", err)
	}
	if len(raw.OPRs) == 0 {
		return nil, apperrors.NewExternalAPIError(fmt.Sprintf("no statistics published for event %s", eventKey), nil)
	}

	insights := make(map[int]TeamInsights, len(raw.OPRs))
	for teamKey, opr := range raw.OPRs {
		number, ok := parseTeamKey(teamKey)
		if !ok {
			continue
		}
		insights[number] = TeamInsights{OPR: opr}
	}
	for teamKey, dpr := range raw.DPRs {
		if number, ok := parseTeamKey(teamKey); ok {
			ti := insights[number]
			ti.DPR = dpr
			insights[number] = ti
		}
	}
	for teamKey, ccwm := range raw.CCWMs {
		if number, ok := parseTeamKey(teamKey); ok {
			ti := insights[number]
			ti.CCWM = ccwm
			insights[number] = ti
		}
	}

	FillEstimates(insights, seedForEvent(eventKey))
	return insights, nil
}

// Stats returns client statistics for the monitoring endpoints.
func (a *TBAAdapter) Stats() map[string]interface{} {
	stats := a.client.Stats()
	stats["rate_limit"] = a.limiter.Limit()
	return stats
}

// Close releases idle connections held by the adapter.
func (a *TBAAdapter) Close() {
	a.client.Close()
}

func (a *TBAAdapter) get(ctx context.Context, path string) ([]byte, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewTimeoutError("rate limiter wait cancelled", err)
	}

	headers := map[string]string{
		"Accept":         "application/json",
		"X-TBA-Auth-Key": a.apiKey,
		"User-Agent":     "ReefScout/1.0",
	}

	resp, err := a.client.Do(ctx, http.MethodGet, a.baseURL+path, headers)
	if err != nil {
		return nil, apperrors.NewNetworkError("request to The Blue Alliance failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalAPIError(
			fmt.Sprintf("TBA API error: status %d, body: %s", resp.StatusCode, string(body)), nil)
	}
	return body, nil
}

// convertMatch maps a wire match into the app's match model. A match
// counts as completed once it has an actual start time, or once both
// scores are posted and the scheduled time has passed; practice matches
// never complete on scores alone.
func convertMatch(m tbaMatch, now time.Time) types.Match {
	match := types.Match{
		ID:           m.Key,
		MatchNumber:  m.MatchNumber,
		MatchType:    matchTypeFromCompLevel(m.CompLevel),
		RedAlliance:  teamNumbers(m.Alliances.Red.TeamKeys),
		BlueAlliance: teamNumbers(m.Alliances.Blue.TeamKeys),
		EventKey:     m.EventKey,
	}
	if match.ID == "" {
		match.ID = fmt.Sprintf("match_%d", m.MatchNumber)
	}

	if m.Time > 0 {
		match.ScheduledAt = time.Unix(m.Time, 0).UTC()
	}
	if m.PredictedTime > 0 {
		match.ScheduledAt = time.Unix(m.PredictedTime, 0).UTC()
	}
	if m.ActualTime > 0 {
		match.ActualAt = time.Unix(m.ActualTime, 0).UTC()
	}

	hasActualTime := m.ActualTime > 0
	hasScores := m.Alliances.Red.Score != nil && m.Alliances.Blue.Score != nil
	inFuture := m.Time > 0 && time.Unix(m.Time, 0).After(now)
	completed := hasActualTime || (hasScores && !inFuture && m.CompLevel != "pr")
	match.Completed = completed

	if !completed {
		return match
	}

	if hasScores {
		red, blue := *m.Alliances.Red.Score, *m.Alliances.Blue.Score
		match.RedScore = &red
		match.BlueScore = &blue
	}

	switch m.WinningAlliance {
	case "red", "blue":
		match.Winner = m.WinningAlliance
	default:
		if hasScores {
			switch {
			case *m.Alliances.Red.Score > *m.Alliances.Blue.Score:
				match.Winner = "red"
			case *m.Alliances.Blue.Score > *m.Alliances.Red.Score:
				match.Winner = "blue"
			default:
				match.Winner = "tie"
			}
		}
	}
	return match
}

func convertTeam(t tbaTeam) types.Team {
	number := t.TeamNumber
	if number == 0 {
		number, _ = parseTeamKey(t.Key)
	}

	name := t.Nickname
	if name == "" {
		name = fmt.Sprintf("Team %d", number)
	}

	return types.Team{
		Number:     number,
		Key:        t.Key,
		Name:       name,
		City:       t.City,
		Country:    t.Country,
		RookieYear: t.RookieYear,
	}
}

func matchTypeFromCompLevel(level string) types.MatchType {
	switch level {
	case "qf":
		return types.MatchQuarterfinal
	case "sf":
		return types.MatchSemifinal
	case "f":
		return types.MatchFinal
	case "pr":
		return types.MatchPractice
	default:
		return types.MatchQualification
	}
}

// parseTeamKey extracts the team number from a "frc254" style key.
func parseTeamKey(key string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(key, "frc"))
	if err != nil {
		return 0, false
	}
	return n, true
}

func teamNumbers(keys []string) []int {
	numbers := make([]int, 0, len(keys))
	for _, key := range keys {
		if n, ok := parseTeamKey(key); ok {
			numbers = append(numbers, n)
		}
	}
	return numbers
}

// seedForEvent derives a stable seed from the event key so estimate fills
// are reproducible across fetches of the same event.
func seedForEvent(eventKey string) int64 {
	var seed int64
	for _, r := range eventKey {
		seed = seed*31 + int64(r)
	}
	return seed
}
