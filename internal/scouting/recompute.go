package scouting

import "github.com/scoutbase/reefscout/internal/types"

// RecomputeAllRatings recomputes the cached rating for every team from the
// given records and returns updated copies. The inputs are never mutated;
// callers decide what to do with the result (typically persist it after a
// data import).
func RecomputeAllRatings(teams []types.Team, records []types.ScoutingRecord) []types.Team {
	updated := make([]types.Team, len(teams))
	for i, team := range teams {
		team.Rating = TeamRating(team.Number, records)
		updated[i] = team
	}
	return updated
}
