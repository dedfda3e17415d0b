package scouting

import (
	"encoding/json"
	"testing"

	"github.com/scoutbase/reefscout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamRating(t *testing.T) {
	tests := []struct {
		name     string
		team     int
		records  []types.ScoutingRecord
		expected float64
	}{
		{
			name:     "no records rates zero",
			team:     254,
			records:  nil,
			expected: 0,
		},
		{
			name: "records for other teams rate zero",
			team: 254,
			records: []types.ScoutingRecord{
				{TeamID: types.NewTeamID(1114), TeleopCoralL4: 5},
			},
			expected: 0,
		},
		{
			name: "frequency-weighted auto scoring",
			team: 254,
			records: []types.ScoutingRecord{
				// weighted auto = 2*1 + 1*2 = 4, no discount, no defense
				{TeamID: types.NewTeamID(254), AutoCoralL1: 2, AutoCoralL2: 1},
			},
			expected: 0.4,
		},
		{
			name: "defense rating added undiscounted",
			team: 254,
			records: []types.ScoutingRecord{
				// (4 + 4 + 2) * 0.5 + 5 = 10 -> rating 1.0
				{
					TeamID:        types.NewTeamID(254),
					AutoCoralL4:   1,
					TeleopCoralL4: 1,
					EndgameStatus: types.EndgameParked,
					MinorFaults:   2,
					MajorFaults:   1,
					DefenseRating: 5,
				},
			},
			expected: 1.0,
		},
		{
			name: "reliability factor bottoms out at zero",
			team: 254,
			records: []types.ScoutingRecord{
				// 4 major faults push the factor below zero; only defense survives
				{
					TeamID:        types.NewTeamID(254),
					TeleopCoralL4: 10,
					MajorFaults:   4,
					DefenseRating: 2,
				},
			},
			expected: 0.2,
		},
		{
			name: "averages across multiple matches",
			team: 254,
			records: []types.ScoutingRecord{
				{TeamID: types.NewTeamID(254), TeleopCoralL2: 5}, // 10
				{TeamID: types.NewTeamID(254), TeleopCoralL2: 10}, // 20
			},
			expected: 1.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, TeamRating(tt.team, tt.records), 1e-9)
		})
	}
}

func TestTeamRatingClampsToTen(t *testing.T) {
	records := []types.ScoutingRecord{
		{TeamID: types.NewTeamID(254), TeleopCoralL4: 100}, // weighted 400
	}
	assert.Equal(t, 10.0, TeamRating(254, records))
}

// Team ids arrive as JSON numbers from the app and as strings from some
// imports; both representations must rate identically.
func TestTeamRatingTeamIDCoercion(t *testing.T) {
	asNumber := []byte(`{"teamId": 254, "teleopCoralL2": 5}`)
	asString := []byte(`{"teamId": "254", "teleopCoralL2": 5}`)

	var recNumber, recString types.ScoutingRecord
	require.NoError(t, json.Unmarshal(asNumber, &recNumber))
	require.NoError(t, json.Unmarshal(asString, &recString))

	assert.Equal(t, TeamRating(254, []types.ScoutingRecord{recNumber}),
		TeamRating(254, []types.ScoutingRecord{recString}))
	assert.Equal(t, 1.0, TeamRating(254, []types.ScoutingRecord{recString}))
}

func TestTeamRatingExcludesUncoercibleIDs(t *testing.T) {
	var rec types.ScoutingRecord
	require.NoError(t, json.Unmarshal([]byte(`{"teamId": "frc254", "teleopCoralL2": 5}`), &rec))

	// A non-numeric id never matches any team, and is not an error.
	assert.Equal(t, 0.0, TeamRating(254, []types.ScoutingRecord{rec}))
}

func TestRecomputeAllRatings(t *testing.T) {
	teams := []types.Team{
		{Number: 254, Name: "The Cheesy Poofs"},
		{Number: 1114, Name: "Simbotics"},
		{Number: 9999},
	}
	records := []types.ScoutingRecord{
		{TeamID: types.NewTeamID(254), TeleopCoralL2: 5},
		{TeamID: types.NewTeamID(1114), TeleopCoralL2: 10},
	}

	updated := RecomputeAllRatings(teams, records)

	require.Len(t, updated, 3)
	assert.InDelta(t, 1.0, updated[0].Rating, 1e-9)
	assert.InDelta(t, 2.0, updated[1].Rating, 1e-9)
	assert.Zero(t, updated[2].Rating)

	// Inputs stay untouched; the caller owns persistence.
	assert.Zero(t, teams[0].Rating)
}
