package scouting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scoutbase/reefscout/internal/types"
)

// Phase split applied when apportioning an alliance's final score across
// its teams: 30% auto, 50% teleop, 20% endgame, then 20/30/30/20 across
// the four coral levels and 10% to each algae target. Every split floors;
// remainders are dropped on purpose, so the buckets can sum to less than
// the share. Existing expectations depend on this truncation.
func synthKey(matchID string, teamNumber int, alliance types.Alliance) string {
	return fmt.Sprintf("%s-%d-%s", matchID, teamNumber, alliance)
}

// matchNumberKey identifies a triple by match number instead of match key.
// Manual observations usually carry only the number, so duplicate
// suppression must work on both.
func matchNumberKey(matchNumber, teamNumber int, alliance types.Alliance) string {
	return fmt.Sprintf("%d-%d-%s", matchNumber, teamNumber, alliance)
}

// SynthesizeRecords fabricates an estimated scouting record for every team
// in every completed match that lacks one, by apportioning the alliance's
// final score heuristically. Matches without scores, teams not present in
// the roster, and already-covered (match, team, alliance) triples are
// silently skipped; partial output is the normal outcome. Matches are
// processed in input order so duplicate suppression is deterministic.
func SynthesizeRecords(matches []types.Match, teams []types.Team, existing []types.ScoutingRecord, myTeamNumber int) []types.ScoutingRecord {
	if len(matches) == 0 {
		return nil
	}

	byNumber := make(map[int]types.Team, len(teams))
	for _, team := range teams {
		if team.Number != 0 {
			byNumber[team.Number] = team
		}
	}

	seen := make(map[string]struct{}, len(existing)*2)
	for _, rec := range existing {
		if !rec.TeamID.Valid {
			continue
		}
		if rec.MatchKey != "" {
			seen[synthKey(rec.MatchKey, rec.TeamID.Number, rec.Alliance)] = struct{}{}
		}
		seen[matchNumberKey(rec.MatchNumber, rec.TeamID.Number, rec.Alliance)] = struct{}{}
	}

	var out []types.ScoutingRecord
	for _, match := range matches {
		if !match.Completed {
			continue
		}
		if match.RedScore == nil || match.BlueScore == nil {
			continue
		}

		for _, alliance := range []types.Alliance{types.AllianceRed, types.AllianceBlue} {
			roster := match.AllianceTeams(alliance)
			score, _ := match.AllianceScore(alliance)
			opponentScore, _ := match.AllianceScore(opposing(alliance))

			for _, teamNumber := range roster {
				if teamNumber == 0 {
					continue
				}
				key := synthKey(match.ID, teamNumber, alliance)
				numberKey := matchNumberKey(match.MatchNumber, teamNumber, alliance)
				if _, dup := seen[key]; dup {
					continue
				}
				if _, dup := seen[numberKey]; dup {
					continue
				}
				if _, known := byNumber[teamNumber]; !known {
					continue
				}

				rec := derivedRecord(match, teamNumber, alliance, score, opponentScore, len(roster), myTeamNumber)
				out = append(out, rec)
				seen[key] = struct{}{}
				seen[numberKey] = struct{}{}
			}
		}
	}
	return out
}

func opposing(a types.Alliance) types.Alliance {
	if a == types.AllianceRed {
		return types.AllianceBlue
	}
	return types.AllianceRed
}

func derivedRecord(match types.Match, teamNumber int, alliance types.Alliance, allianceScore, opponentScore, rosterSize, myTeamNumber int) types.ScoutingRecord {
	if rosterSize == 0 {
		rosterSize = allianceSize
	}
	perTeamShare := allianceScore / rosterSize

	estimatedAuto := int(float64(perTeamShare) * 0.3)
	estimatedTeleop := int(float64(perTeamShare) * 0.5)
	estimatedEndgame := int(float64(perTeamShare) * 0.2)

	endgame := types.EndgameNone
	switch {
	case estimatedEndgame >= 12:
		endgame = types.EndgameDeepCage
	case estimatedEndgame >= 6:
		endgame = types.EndgameShallowCage
	case estimatedEndgame >= 2:
		endgame = types.EndgameParked
	}

	outcome := "Loss"
	switch {
	case allianceScore > opponentScore:
		outcome = "Win"
	case allianceScore == opponentScore:
		outcome = "Tie"
	}

	scoutName := "Match Import"
	if myTeamNumber != 0 {
		scoutName = fmt.Sprintf("Match Import (Team %d)", myTeamNumber)
	}

	now := time.Now()
	return types.ScoutingRecord{
		ID:          uuid.New().String(),
		TeamID:      types.NewTeamID(teamNumber),
		MatchKey:    match.ID,
		MatchNumber: match.MatchNumber,
		ScoutName:   scoutName,

		AutoLeavesBarge:    true,
		AutoCoralL1:        int(float64(estimatedAuto) * 0.2),
		AutoCoralL2:        int(float64(estimatedAuto) * 0.3),
		AutoCoralL3:        int(float64(estimatedAuto) * 0.3),
		AutoCoralL4:        int(float64(estimatedAuto) * 0.2),
		AutoAlgaeProcessor: int(float64(estimatedAuto) * 0.1),
		AutoAlgaeNet:       int(float64(estimatedAuto) * 0.1),

		TeleopCoralL1:        int(float64(estimatedTeleop) * 0.2),
		TeleopCoralL2:        int(float64(estimatedTeleop) * 0.3),
		TeleopCoralL3:        int(float64(estimatedTeleop) * 0.3),
		TeleopCoralL4:        int(float64(estimatedTeleop) * 0.2),
		TeleopAlgaeProcessor: int(float64(estimatedTeleop) * 0.1),
		TeleopAlgaeNet:       int(float64(estimatedTeleop) * 0.1),

		EndgameStatus: endgame,

		// No defense signal in an aggregate score, so assume the midpoint.
		DefenseRating: 3,

		Comments: fmt.Sprintf("Derived from match results. Match %d, %s alliance. Final score: %d-%d (%s)",
			match.MatchNumber, alliance, allianceScore, opponentScore, outcome),

		Source:    types.SourceDerived,
		Alliance:  alliance,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
