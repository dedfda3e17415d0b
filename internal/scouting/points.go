package scouting

import "github.com/scoutbase/reefscout/internal/types"

// Official REEFSCAPE point values used for display and match synthesis.
// The rating engine intentionally uses a different weighting, see rating.go.
const (
	autoCoralL1Points = 3
	autoCoralL2Points = 4
	autoCoralL3Points = 6
	autoCoralL4Points = 7

	teleopCoralL1Points = 2
	teleopCoralL2Points = 3
	teleopCoralL3Points = 4
	teleopCoralL4Points = 5

	algaeProcessorPoints = 6
	algaeNetPoints       = 4

	parkPoints        = 2
	shallowCagePoints = 6
	deepCagePoints    = 12

	minorFoulPoints = 2
	majorFoulPoints = 6
)

// PointsBreakdown is the official score a single record is worth, split by
// match phase. Penalty points are awarded to the opposing alliance, so
// TotalNet subtracts them.
type PointsBreakdown struct {
	Auto     int `json:"auto"`
	Teleop   int `json:"teleop"`
	Endgame  int `json:"endgame"`
	Penalty  int `json:"penalty"`
	TotalNet int `json:"totalNet"`
}

// ScorePoints computes the official point value of one scouting record.
func ScorePoints(rec types.ScoutingRecord) PointsBreakdown {
	auto := rec.AutoCoralL1*autoCoralL1Points +
		rec.AutoCoralL2*autoCoralL2Points +
		rec.AutoCoralL3*autoCoralL3Points +
		rec.AutoCoralL4*autoCoralL4Points +
		rec.AutoAlgaeProcessor*algaeProcessorPoints +
		rec.AutoAlgaeNet*algaeNetPoints

	teleop := rec.TeleopCoralL1*teleopCoralL1Points +
		rec.TeleopCoralL2*teleopCoralL2Points +
		rec.TeleopCoralL3*teleopCoralL3Points +
		rec.TeleopCoralL4*teleopCoralL4Points +
		rec.TeleopAlgaeProcessor*algaeProcessorPoints +
		rec.TeleopAlgaeNet*algaeNetPoints

	endgame := EndgamePoints(rec.EndgameStatus)

	penalty := rec.MinorFaults*minorFoulPoints + rec.MajorFaults*majorFoulPoints

	return PointsBreakdown{
		Auto:     auto,
		Teleop:   teleop,
		Endgame:  endgame,
		Penalty:  penalty,
		TotalNet: auto + teleop + endgame - penalty,
	}
}

// EndgamePoints returns the official point value of an endgame status.
func EndgamePoints(status types.EndgameStatus) int {
	switch status {
	case types.EndgameParked:
		return parkPoints
	case types.EndgameShallowCage:
		return shallowCagePoints
	case types.EndgameDeepCage:
		return deepCagePoints
	default:
		return 0
	}
}
