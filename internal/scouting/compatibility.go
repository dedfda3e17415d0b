package scouting

import (
	"math"
	"sort"

	"github.com/scoutbase/reefscout/internal/types"
)

// Compatibility term weights. Auto uses the absolute difference between the
// two profiles: complementary autonomous roles (one team leads, one
// supports) beat two equally strong autos. Teleop, endgame, and reliability
// use the minimum since a weak partner drags the alliance down in those
// phases. Defense uses the maximum: one strong defender is enough.
const (
	autoWeight        = 2.0
	teleopWeight      = 3.0
	endgameWeight     = 2.0
	defenseWeight     = 1.5
	reliabilityWeight = 1.5
)

// How much compatibility vs. overall rating counts when ranking partners.
const (
	compatibilityShare = 0.7
	ratingShare        = 0.3
)

// allianceSize includes the team doing the picking.
const allianceSize = 3

// Compatibility scores how well two strength profiles complement each
// other for alliance formation, on a 0-10 scale.
func Compatibility(a, b StrengthProfile) float64 {
	raw := math.Abs(a.Auto-b.Auto)*autoWeight +
		math.Min(a.Teleop, b.Teleop)*teleopWeight +
		math.Min(a.Endgame, b.Endgame)*endgameWeight +
		math.Max(a.Defense, b.Defense)*defenseWeight +
		math.Min(a.Reliability, b.Reliability)*reliabilityWeight

	return clamp(raw*10, 0, 10)
}

// RecommendPartners ranks candidate teams by a blend of compatibility with
// myTeamNumber and their own overall rating, and returns the recommended
// alliance: myTeamNumber first, then the top two candidates. Ties keep the
// candidates' input order, so repeated calls over the same data are
// deterministic.
func RecommendPartners(myTeamNumber int, teams []types.Team, records []types.ScoutingRecord) []int {
	if len(teams) == 0 {
		return nil
	}

	myProfile := TeamStrengths(myTeamNumber, records)

	type candidate struct {
		number int
		score  float64
	}
	candidates := make([]candidate, 0, len(teams))
	for _, team := range teams {
		if team.Number == 0 || team.Number == myTeamNumber {
			continue
		}
		profile := TeamStrengths(team.Number, records)
		combined := Compatibility(myProfile, profile)*compatibilityShare +
			TeamRating(team.Number, records)*ratingShare
		candidates = append(candidates, candidate{number: team.Number, score: combined})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	alliance := []int{myTeamNumber}
	for _, c := range candidates {
		if len(alliance) == allianceSize {
			break
		}
		alliance = append(alliance, c.number)
	}
	return alliance
}
