package adapters

import (
	"math"
	"math/rand"
	"sort"
)

// Insight compatibility weights. Autonomous scoring dominates, with
// teleop output and the defense/penalty picture splitting the rest.
const (
	autoCoralWeight      = 0.4
	teleopAlgaeWeight    = 0.3
	defensePenaltyWeight = 0.3

	defenseShare = 0.6
	penaltyShare = 0.4
)

// TeamInsights holds the published contribution metrics for one team at
// one event, plus game-specific estimates derived from them.
type TeamInsights struct {
	OPR  float64 `json:"opr"`
	DPR  float64 `json:"dpr"`
	CCWM float64 `json:"ccwm"`

	AutoCoralSuccess float64 `json:"autoCoralSuccess"`
	TeleopAlgaeAvg   float64 `json:"teleopAlgaeAvg"`
	EndgameDeepCage  float64 `json:"endgameDeepCage"`
	PenaltyFrequency float64 `json:"penaltyFrequency"`

	// Estimated marks insights whose phase metrics were derived from OPR
	// rather than published by the API.
	Estimated bool `json:"estimated"`
}

// FillEstimates derives phase metrics for teams the API published no
// game-specific breakdowns for. Each estimate is a bounded fraction of
// the team's OPR: 30-50% for auto coral, 40-70% for teleop algae, and
// 10-30% for deep cage. The PRNG is seeded so the same event always
// yields the same estimates; teams are visited in number order to keep
// the draw sequence stable.
func FillEstimates(insights map[int]TeamInsights, seed int64) {
	rng := rand.New(rand.NewSource(seed))

	numbers := make([]int, 0, len(insights))
	for n := range insights {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	for _, n := range numbers {
		ti := insights[n]
		if ti.AutoCoralSuccess == 0 {
			ti.AutoCoralSuccess = ti.OPR * (0.3 + rng.Float64()*0.2)
			ti.Estimated = true
		}
		if ti.TeleopAlgaeAvg == 0 {
			ti.TeleopAlgaeAvg = ti.OPR * (0.4 + rng.Float64()*0.3)
			ti.Estimated = true
		}
		if ti.EndgameDeepCage == 0 {
			ti.EndgameDeepCage = ti.OPR * (0.1 + rng.Float64()*0.2)
			ti.Estimated = true
		}
		insights[n] = ti
	}
}

// InsightsCompatibility scores how well a candidate team complements the
// reference team using published event statistics, on a 0-100 scale.
// Every component is normalized against the event-wide maximum, so the
// score ranks teams within one event rather than across events. Teams
// missing from the insights map score 0.
func InsightsCompatibility(myTeam, candidate int, insights map[int]TeamInsights) int {
	if _, ok := insights[myTeam]; !ok {
		return 0
	}
	other, ok := insights[candidate]
	if !ok {
		return 0
	}

	var maxAuto, maxAlgae, maxDPR, maxPenalty float64
	for _, ti := range insights {
		maxAuto = math.Max(maxAuto, ti.AutoCoralSuccess)
		maxAlgae = math.Max(maxAlgae, ti.TeleopAlgaeAvg)
		maxDPR = math.Max(maxDPR, ti.DPR)
		maxPenalty = math.Max(maxPenalty, ti.PenaltyFrequency)
	}

	var autoScore float64
	if maxAuto > 0 {
		autoScore = other.AutoCoralSuccess / maxAuto
	}

	var algaeScore float64
	if maxAlgae > 0 {
		algaeScore = other.TeleopAlgaeAvg / maxAlgae
	}

	var defenseScore float64
	if maxDPR > 0 {
		defenseScore = other.DPR / maxDPR
	}

	penaltyScore := 1.0
	if maxPenalty > 0 {
		penaltyScore = 1 - other.PenaltyFrequency/maxPenalty
	}

	defensePenalty := defenseScore*defenseShare + penaltyScore*penaltyShare

	score := autoScore*autoCoralWeight + algaeScore*teleopAlgaeWeight + defensePenalty*defensePenaltyWeight
	return int(math.Round(score * 100))
}
