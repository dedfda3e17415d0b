package scouting

import (
	"testing"

	"github.com/scoutbase/reefscout/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestScorePoints(t *testing.T) {
	tests := []struct {
		name     string
		record   types.ScoutingRecord
		expected PointsBreakdown
	}{
		{
			name:     "all-zero record scores zero everywhere",
			record:   types.ScoutingRecord{},
			expected: PointsBreakdown{},
		},
		{
			name: "auto coral with a minor foul",
			record: types.ScoutingRecord{
				AutoCoralL1: 2,
				AutoCoralL2: 1,
				MinorFaults: 1,
			},
			expected: PointsBreakdown{
				Auto:     10, // 2*3 + 1*4
				Penalty:  2,
				TotalNet: 8,
			},
		},
		{
			name: "full breakdown across phases",
			record: types.ScoutingRecord{
				AutoCoralL3:          1,
				AutoCoralL4:          1,
				AutoAlgaeProcessor:   1,
				TeleopCoralL1:        3,
				TeleopCoralL2:        2,
				TeleopAlgaeNet:       2,
				EndgameStatus:        types.EndgameDeepCage,
				MajorFaults:          1,
			},
			expected: PointsBreakdown{
				Auto:     19, // 6 + 7 + 6
				Teleop:   20, // 3*2 + 2*3 + 2*4
				Endgame:  12,
				Penalty:  6,
				TotalNet: 45,
			},
		},
		{
			name: "algae uses official processor and net values",
			record: types.ScoutingRecord{
				AutoAlgaeProcessor:   2,
				AutoAlgaeNet:         1,
				TeleopAlgaeProcessor: 1,
				TeleopAlgaeNet:       3,
			},
			expected: PointsBreakdown{
				Auto:     16, // 2*6 + 1*4
				Teleop:   18, // 1*6 + 3*4
				TotalNet: 34,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ScorePoints(tt.record))
		})
	}
}

func TestEndgamePoints(t *testing.T) {
	tests := []struct {
		name     string
		status   types.EndgameStatus
		expected int
	}{
		{name: "none scores nothing", status: types.EndgameNone, expected: 0},
		{name: "parked scores 2", status: types.EndgameParked, expected: 2},
		{name: "shallow cage scores 6", status: types.EndgameShallowCage, expected: 6},
		{name: "deep cage scores 12", status: types.EndgameDeepCage, expected: 12},
		{name: "unknown status scores nothing", status: types.EndgameStatus("hovering"), expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EndgamePoints(tt.status))
		})
	}
}
