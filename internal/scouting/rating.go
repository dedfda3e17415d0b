package scouting

import (
	"math"

	"github.com/scoutbase/reefscout/internal/types"
)

// The rating engine weights scoring actions by how often a robot performs
// them (1/2/3/4 per coral level, 2 per processor, 3 per net) rather than by
// official point values. This emphasizes frequency of action over raw point
// totals and is deliberately different from the display table in points.go.
// Downstream fixtures depend on these values; do not unify the two tables.

func weightedAuto(rec types.ScoutingRecord) int {
	return rec.AutoCoralL1 +
		rec.AutoCoralL2*2 +
		rec.AutoCoralL3*3 +
		rec.AutoCoralL4*4 +
		rec.AutoAlgaeProcessor*2 +
		rec.AutoAlgaeNet*3
}

func weightedTeleop(rec types.ScoutingRecord) int {
	return rec.TeleopCoralL1 +
		rec.TeleopCoralL2*2 +
		rec.TeleopCoralL3*3 +
		rec.TeleopCoralL4*4 +
		rec.TeleopAlgaeProcessor*2 +
		rec.TeleopAlgaeNet*3
}

// reliabilityFactor discounts a match score for faults. Three major faults
// (or ten minor ones) zero the score entirely.
func reliabilityFactor(rec types.ScoutingRecord) float64 {
	return math.Max(0, 1-(float64(rec.MinorFaults)*0.1+float64(rec.MajorFaults)*0.3))
}

// matchScore is the rating engine's per-match score: phase sums discounted
// by reliability, with the defense rating added undiscounted on top.
func matchScore(rec types.ScoutingRecord) float64 {
	points := weightedAuto(rec) + weightedTeleop(rec) + EndgamePoints(rec.EndgameStatus)
	return float64(points)*reliabilityFactor(rec) + float64(rec.DefenseRating)
}

// teamRecords filters records down to those belonging to the given team
// number. Records whose team id failed numeric coercion never match.
func teamRecords(teamNumber int, records []types.ScoutingRecord) []types.ScoutingRecord {
	var out []types.ScoutingRecord
	for _, rec := range records {
		if rec.TeamID.Equals(teamNumber) {
			out = append(out, rec)
		}
	}
	return out
}

// TeamRating aggregates all of a team's scouting records into a single
// 0-10 performance rating. A team with no records rates exactly 0.
func TeamRating(teamNumber int, records []types.ScoutingRecord) float64 {
	matched := teamRecords(teamNumber, records)
	if len(matched) == 0 {
		return 0
	}

	total := 0.0
	for _, rec := range matched {
		total += matchScore(rec)
	}
	average := total / float64(len(matched))

	return clamp(average/10, 0, 10)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
