package scouting

import (
	"fmt"
	"log/slog"

	"github.com/scoutbase/reefscout/internal/types"
)

// ObservationStore is the persistence collaborator for scouting records.
// The (match, team, alliance) uniqueness of derived records is enforced
// here, by the synthesis path, before upserting; the store only keys by id.
type ObservationStore interface {
	ListObservations() ([]types.ScoutingRecord, error)
	UpsertObservation(rec types.ScoutingRecord) error
}

// Roster is the read-only team directory collaborator.
type Roster interface {
	ListTeams() ([]types.Team, error)
}

// Service wires the pure engines to their collaborators.
type Service struct {
	store  ObservationStore
	roster Roster
}

// NewService creates a scouting service over the given collaborators.
func NewService(store ObservationStore, roster Roster) *Service {
	return &Service{store: store, roster: roster}
}

// ImportMatches backfills derived scouting records for every completed
// match lacking one and persists them. It returns only the count of newly
// created records: skipped teams and already-covered triples are a normal
// partial-success outcome, not errors.
func (s *Service) ImportMatches(matches []types.Match, myTeamNumber int) (int, error) {
	existing, err := s.store.ListObservations()
	if err != nil {
		return 0, fmt.Errorf("failed to list observations: %w", err)
	}
	teams, err := s.roster.ListTeams()
	if err != nil {
		return 0, fmt.Errorf("failed to list teams: %w", err)
	}

	created := SynthesizeRecords(matches, teams, existing, myTeamNumber)
	for _, rec := range created {
		if err := s.store.UpsertObservation(rec); err != nil {
			return 0, fmt.Errorf("failed to store derived record: %w", err)
		}
	}

	slog.Info("Match import completed",
		"matches", len(matches),
		"created_records", len(created),
	)
	return len(created), nil
}

// Rating computes a team's current rating from stored records.
func (s *Service) Rating(teamNumber int) (float64, error) {
	records, err := s.store.ListObservations()
	if err != nil {
		return 0, fmt.Errorf("failed to list observations: %w", err)
	}
	return TeamRating(teamNumber, records), nil
}

// Strengths computes a team's current strength profile from stored records.
func (s *Service) Strengths(teamNumber int) (StrengthProfile, error) {
	records, err := s.store.ListObservations()
	if err != nil {
		return StrengthProfile{}, fmt.Errorf("failed to list observations: %w", err)
	}
	return TeamStrengths(teamNumber, records), nil
}

// Partners recommends an alliance for the given team from stored data.
func (s *Service) Partners(myTeamNumber int) ([]int, error) {
	records, err := s.store.ListObservations()
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}
	teams, err := s.roster.ListTeams()
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return RecommendPartners(myTeamNumber, teams, records), nil
}
