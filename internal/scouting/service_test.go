package scouting

import (
	"testing"

	"github.com/scoutbase/reefscout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory ObservationStore and Roster for service tests.
type memStore struct {
	records []types.ScoutingRecord
	teams   []types.Team
}

func (m *memStore) ListObservations() ([]types.ScoutingRecord, error) {
	return m.records, nil
}

func (m *memStore) UpsertObservation(rec types.ScoutingRecord) error {
	for i, existing := range m.records {
		if existing.ID == rec.ID {
			m.records[i] = rec
			return nil
		}
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) ListTeams() ([]types.Team, error) {
	return m.teams, nil
}

func TestServiceImportMatches(t *testing.T) {
	store := &memStore{teams: synthTeams(254, 1114, 118, 2056, 971, 1678)}
	svc := NewService(store, store)

	matches := []types.Match{
		{
			ID:           "m1",
			MatchNumber:  1,
			RedAlliance:  []int{254, 1114, 118},
			BlueAlliance: []int{2056, 971, 1678},
			RedScore:     intPtr(90),
			BlueScore:    intPtr(75),
			Completed:    true,
		},
	}

	created, err := svc.ImportMatches(matches, 254)
	require.NoError(t, err)
	assert.Equal(t, 6, created)
	assert.Len(t, store.records, 6)

	// Re-running the import against the persisted records creates nothing.
	created, err = svc.ImportMatches(matches, 254)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Len(t, store.records, 6)
}

func TestServiceRatingAndPartners(t *testing.T) {
	store := &memStore{
		teams: synthTeams(254, 1114, 118),
		records: []types.ScoutingRecord{
			{TeamID: types.NewTeamID(1114), TeleopCoralL4: 10},
			{TeamID: types.NewTeamID(118), TeleopCoralL1: 1},
		},
	}
	svc := NewService(store, store)

	rating, err := svc.Rating(1114)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, rating, 1e-9)

	profile, err := svc.Strengths(1114)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, profile.Teleop, 1e-9)

	alliance, err := svc.Partners(254)
	require.NoError(t, err)
	require.NotEmpty(t, alliance)
	assert.Equal(t, 254, alliance[0])
	assert.LessOrEqual(t, len(alliance), 3)
}
