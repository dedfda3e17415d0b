package scouting

import (
	"math"

	"github.com/scoutbase/reefscout/internal/types"
)

// Normalization divisors for the strength profile. These are fixed
// empirical constants calibrated to plausible per-match maxima; they are
// not derived from observed data and must stay stable so profiles remain
// comparable across data sets.
const (
	autoNorm        = 20.0
	teleopNorm      = 50.0
	endgameNorm     = 12.0
	defenseNorm     = 5.0
	reliabilityNorm = 10.0
)

// StrengthProfile summarizes a team's demonstrated capability as five
// phase-normalized components, each in [0,1].
type StrengthProfile struct {
	Auto        float64 `json:"auto"`
	Teleop      float64 `json:"teleop"`
	Endgame     float64 `json:"endgame"`
	Defense     float64 `json:"defense"`
	Reliability float64 `json:"reliability"`
}

// TeamStrengths builds a team's strength profile from its scouting records.
// A team with no records gets an all-zero profile.
func TeamStrengths(teamNumber int, records []types.ScoutingRecord) StrengthProfile {
	matched := teamRecords(teamNumber, records)
	if len(matched) == 0 {
		return StrengthProfile{}
	}

	var auto, teleop, endgame, defense, reliability float64
	for _, rec := range matched {
		auto += float64(weightedAuto(rec))
		teleop += float64(weightedTeleop(rec))
		endgame += float64(EndgamePoints(rec.EndgameStatus))
		defense += float64(rec.DefenseRating)
		reliability += math.Max(0, 10-(float64(rec.MinorFaults)+float64(rec.MajorFaults)*3))
	}

	n := float64(len(matched))
	return StrengthProfile{
		Auto:        auto / n / autoNorm,
		Teleop:      teleop / n / teleopNorm,
		Endgame:     endgame / n / endgameNorm,
		Defense:     defense / n / defenseNorm,
		Reliability: reliability / n / reliabilityNorm,
	}
}
