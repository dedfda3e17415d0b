package types

import (
	"bytes"
	"strconv"
	"time"
)

// Alliance identifies one of the two three-team coalitions in a match.
type Alliance string

const (
	AllianceRed  Alliance = "red"
	AllianceBlue Alliance = "blue"
)

// EndgameStatus describes how a robot finished the match.
type EndgameStatus string

const (
	EndgameNone        EndgameStatus = "none"
	EndgameParked      EndgameStatus = "parked"
	EndgameShallowCage EndgameStatus = "shallowCage"
	EndgameDeepCage    EndgameStatus = "deepCage"
)

// RecordSource tags where a scouting record came from.
type RecordSource string

const (
	SourceManual  RecordSource = "manual"
	SourceDerived RecordSource = "derived"
)

// TeamID is a team number that different data sources serialize either as a
// JSON number or as a quoted string. A value that cannot be coerced to a
// number decodes as invalid rather than failing the whole document; invalid
// ids are excluded from aggregation downstream.
type TeamID struct {
	Number int
	Valid  bool
}

// NewTeamID returns a valid TeamID for a known team number.
func NewTeamID(n int) TeamID {
	return TeamID{Number: n, Valid: true}
}

// Equals reports whether the id resolves to the given team number.
func (t TeamID) Equals(n int) bool {
	return t.Valid && t.Number == n
}

func (t TeamID) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(t.Number)), nil
}

func (t *TeamID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = TeamID{}
		return nil
	}
	raw := string(bytes.Trim(data, `"`))
	n, err := strconv.Atoi(raw)
	if err != nil {
		// Non-numeric ids are tolerated but never match any team.
		*t = TeamID{}
		return nil
	}
	*t = TeamID{Number: n, Valid: true}
	return nil
}

// ScoutingRecord is one team's recorded or synthesized performance in one
// match. All count fields default to zero when absent from the source
// document; consumers treat missing as zero, never as an error.
type ScoutingRecord struct {
	ID          string `json:"id"`
	TeamID      TeamID `json:"teamId"`
	MatchKey    string `json:"matchKey,omitempty"`
	MatchNumber int    `json:"matchNumber"`
	ScoutName   string `json:"scoutName,omitempty"`

	// Auto
	AutoLeavesBarge    bool `json:"autoLeavesBarge,omitempty"`
	AutoCoralL1        int  `json:"autoCoralL1,omitempty"`
	AutoCoralL2        int  `json:"autoCoralL2,omitempty"`
	AutoCoralL3        int  `json:"autoCoralL3,omitempty"`
	AutoCoralL4        int  `json:"autoCoralL4,omitempty"`
	AutoAlgaeProcessor int  `json:"autoAlgaeProcessor,omitempty"`
	AutoAlgaeNet       int  `json:"autoAlgaeNet,omitempty"`

	// Teleop
	TeleopCoralL1        int `json:"teleopCoralL1,omitempty"`
	TeleopCoralL2        int `json:"teleopCoralL2,omitempty"`
	TeleopCoralL3        int `json:"teleopCoralL3,omitempty"`
	TeleopCoralL4        int `json:"teleopCoralL4,omitempty"`
	TeleopAlgaeProcessor int `json:"teleopAlgaeProcessor,omitempty"`
	TeleopAlgaeNet       int `json:"teleopAlgaeNet,omitempty"`

	// Endgame
	EndgameStatus EndgameStatus `json:"endgameStatus,omitempty"`

	// Performance
	DefenseRating int `json:"defenseRating,omitempty"`
	MinorFaults   int `json:"minorFaults,omitempty"`
	MajorFaults   int `json:"majorFaults,omitempty"`

	// Penalty cards
	YellowCard bool `json:"yellowCard,omitempty"`
	RedCard    bool `json:"redCard,omitempty"`

	Comments string `json:"comments,omitempty"`

	Source    RecordSource `json:"source,omitempty"`
	Alliance  Alliance     `json:"alliance,omitempty"`
	CreatedAt time.Time    `json:"createdAt,omitempty"`
	UpdatedAt time.Time    `json:"updatedAt,omitempty"`
}

// Team is a competing team known to the app. Rating is a convenience cache
// of the last computed performance rating; it is derived data and gets
// overwritten whenever ratings are recomputed.
type Team struct {
	Number     int     `json:"number"`
	Key        string  `json:"key,omitempty"`
	Name       string  `json:"name,omitempty"`
	City       string  `json:"city,omitempty"`
	Country    string  `json:"country,omitempty"`
	RookieYear int     `json:"rookieYear,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
}

// MatchType mirrors the competition levels used by event schedules.
type MatchType string

const (
	MatchQualification MatchType = "qualification"
	MatchQuarterfinal  MatchType = "quarterfinal"
	MatchSemifinal     MatchType = "semifinal"
	MatchFinal         MatchType = "final"
	MatchPractice      MatchType = "practice"
)

// Match is a scheduled or completed match with alliance rosters and final
// scores. Scores are pointers so an unplayed match is distinguishable from
// a 0-0 result.
type Match struct {
	ID           string    `json:"id"`
	MatchNumber  int       `json:"matchNumber"`
	MatchType    MatchType `json:"matchType,omitempty"`
	RedAlliance  []int     `json:"redAlliance"`
	BlueAlliance []int     `json:"blueAlliance"`
	RedScore     *int      `json:"redScore,omitempty"`
	BlueScore    *int      `json:"blueScore,omitempty"`
	Winner       string    `json:"winner,omitempty"`
	Completed    bool      `json:"completed"`
	EventKey     string    `json:"eventKey,omitempty"`
	ScheduledAt  time.Time `json:"scheduledAt,omitempty"`
	ActualAt     time.Time `json:"actualAt,omitempty"`
}

// AllianceScore returns the final score for the given alliance color, or
// false when the match has no score recorded for it.
func (m Match) AllianceScore(a Alliance) (int, bool) {
	switch a {
	case AllianceRed:
		if m.RedScore == nil {
			return 0, false
		}
		return *m.RedScore, true
	case AllianceBlue:
		if m.BlueScore == nil {
			return 0, false
		}
		return *m.BlueScore, true
	}
	return 0, false
}

// AllianceTeams returns the roster for the given alliance color.
func (m Match) AllianceTeams(a Alliance) []int {
	if a == AllianceRed {
		return m.RedAlliance
	}
	return m.BlueAlliance
}
