package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillEstimatesBounds(t *testing.T) {
	insights := map[int]TeamInsights{
		254: {OPR: 50},
	}
	FillEstimates(insights, 1)

	ti := insights[254]
	assert.True(t, ti.Estimated)
	assert.GreaterOrEqual(t, ti.AutoCoralSuccess, 50*0.3)
	assert.Less(t, ti.AutoCoralSuccess, 50*0.5)
	assert.GreaterOrEqual(t, ti.TeleopAlgaeAvg, 50*0.4)
	assert.Less(t, ti.TeleopAlgaeAvg, 50*0.7)
	assert.GreaterOrEqual(t, ti.EndgameDeepCage, 50*0.1)
	assert.Less(t, ti.EndgameDeepCage, 50*0.3)
}

func TestFillEstimatesDeterministic(t *testing.T) {
	first := map[int]TeamInsights{254: {OPR: 50}, 1678: {OPR: 40}}
	second := map[int]TeamInsights{254: {OPR: 50}, 1678: {OPR: 40}}

	FillEstimates(first, 42)
	FillEstimates(second, 42)
	assert.Equal(t, first, second)

	third := map[int]TeamInsights{254: {OPR: 50}, 1678: {OPR: 40}}
	FillEstimates(third, 43)
	assert.NotEqual(t, first[254].AutoCoralSuccess, third[254].AutoCoralSuccess)
}

func TestFillEstimatesKeepsPublishedValues(t *testing.T) {
	insights := map[int]TeamInsights{
		254: {OPR: 50, AutoCoralSuccess: 18, TeleopAlgaeAvg: 22, EndgameDeepCage: 9},
	}
	FillEstimates(insights, 1)

	ti := insights[254]
	assert.False(t, ti.Estimated)
	assert.Equal(t, 18.0, ti.AutoCoralSuccess)
	assert.Equal(t, 22.0, ti.TeleopAlgaeAvg)
	assert.Equal(t, 9.0, ti.EndgameDeepCage)
}

func TestInsightsCompatibility(t *testing.T) {
	insights := map[int]TeamInsights{
		1: {AutoCoralSuccess: 10, TeleopAlgaeAvg: 10, DPR: 10, PenaltyFrequency: 2},
		2: {AutoCoralSuccess: 5, TeleopAlgaeAvg: 5, DPR: 5, PenaltyFrequency: 0},
	}

	// Candidate at half the event maximum on each metric but with a
	// clean penalty record: 0.5*0.4 + 0.5*0.3 + (0.5*0.6+1*0.4)*0.3.
	assert.Equal(t, 56, InsightsCompatibility(1, 2, insights))

	// The event leader with no penalties hits the ceiling.
	insights[2] = TeamInsights{AutoCoralSuccess: 20, TeleopAlgaeAvg: 20, DPR: 20, PenaltyFrequency: 0}
	assert.Equal(t, 100, InsightsCompatibility(1, 2, insights))
}

func TestInsightsCompatibilityMissingTeams(t *testing.T) {
	insights := map[int]TeamInsights{
		1: {AutoCoralSuccess: 10, TeleopAlgaeAvg: 10, DPR: 10},
	}

	assert.Zero(t, InsightsCompatibility(1, 2, insights))
	assert.Zero(t, InsightsCompatibility(3, 1, insights))
	assert.Zero(t, InsightsCompatibility(1, 2, map[int]TeamInsights{}))
}

func TestInsightsCompatibilityZeroMaxima(t *testing.T) {
	insights := map[int]TeamInsights{
		1: {},
		2: {},
	}

	// All-zero event statistics degrade to the penalty default alone.
	score := InsightsCompatibility(1, 2, insights)
	require.Equal(t, 12, score)
}
