package rankings

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/scoutbase/reefscout/internal/database"
	"github.com/scoutbase/reefscout/internal/scouting"
)

// Entry represents one team's position in the event rankings
type Entry struct {
	ID         string    `json:"id"`
	Rank       int       `json:"rank"`
	TeamNumber int       `json:"team_number"`
	TeamName   string    `json:"team_name,omitempty"`
	Rating     float64   `json:"rating"`
	Records    int       `json:"records"`
	CreatedAt  time.Time `json:"created_at"`
}

// Response represents the response for rankings queries
type Response struct {
	Entries     []Entry   `json:"entries"`
	Total       int       `json:"total"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Service handles team ranking operations
type Service struct {
	repo  *database.Repository
	cache *RankingsCache
}

// NewService creates a new rankings service
func NewService(repo *database.Repository) *Service {
	return &Service{
		repo:  repo,
		cache: NewRankingsCache(15 * time.Minute), // 15 minute cache TTL
	}
}

// NewServiceWithCache creates a new rankings service with custom cache
func NewServiceWithCache(repo *database.Repository, cache *RankingsCache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

// Refresh recomputes every team's rating from stored observations,
// persists the results, and invalidates cached rankings.
func (s *Service) Refresh() (int, error) {
	teams, err := s.repo.ListTeams()
	if err != nil {
		return 0, fmt.Errorf("failed to load teams: %w", err)
	}
	records, err := s.repo.ListObservations()
	if err != nil {
		return 0, fmt.Errorf("failed to load observations: %w", err)
	}

	rated := scouting.RecomputeAllRatings(teams, records)
	if err := s.repo.SaveTeamRatings(rated); err != nil {
		return 0, fmt.Errorf("failed to save ratings: %w", err)
	}

	s.cache.InvalidateAll()
	slog.Info("Rankings refreshed", "teams", len(rated), "observations", len(records))
	return len(rated), nil
}

// GetRankings returns teams ordered by rating, best first. Ties keep
// team number order so rankings are stable between refreshes.
func (s *Service) GetRankings(limit int) (*Response, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	// Try cache first
	if cached, found := s.cache.GetRankings(limit); found {
		return cached, nil
	}

	teams, err := s.repo.ListTeams()
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	records, err := s.repo.ListObservations()
	if err != nil {
		return nil, fmt.Errorf("failed to load observations: %w", err)
	}

	recordCounts := make(map[int]int)
	for _, rec := range records {
		if rec.TeamID.Valid {
			recordCounts[rec.TeamID.Number]++
		}
	}

	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].Rating != teams[j].Rating {
			return teams[i].Rating > teams[j].Rating
		}
		return teams[i].Number < teams[j].Number
	})

	now := time.Now()
	entries := make([]Entry, 0, len(teams))
	for i, team := range teams {
		if i >= limit {
			break
		}
		entries = append(entries, Entry{
			ID:         uuid.New().String(),
			Rank:       i + 1,
			TeamNumber: team.Number,
			TeamName:   team.Name,
			Rating:     team.Rating,
			Records:    recordCounts[team.Number],
			CreatedAt:  now,
		})
	}

	response := &Response{
		Entries:     entries,
		Total:       len(teams),
		GeneratedAt: now,
	}

	// Cache the response for future requests
	s.cache.SetRankings(limit, response)

	return response, nil
}

// GetTeamRank returns one team's current ranking entry, or false when
// the team is unknown.
func (s *Service) GetTeamRank(teamNumber int) (*Entry, bool, error) {
	response, err := s.GetRankings(100)
	if err != nil {
		return nil, false, err
	}

	for _, entry := range response.Entries {
		if entry.TeamNumber == teamNumber {
			return &entry, true, nil
		}
	}
	return nil, false, nil
}

// GetCacheStats returns rankings cache statistics
func (s *Service) GetCacheStats() map[string]interface{} {
	return s.cache.GetStats()
}

// StartAutoRefresh periodically recomputes ratings in the background.
func (s *Service) StartAutoRefresh(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			if _, err := s.Refresh(); err != nil {
				slog.Error("Auto refresh failed", "error", err)
			}
		}
	}()
}
