package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/scoutbase/reefscout/internal/types"
)

// Repository handles database operations for scouting data. It implements
// the scouting package's ObservationStore and Roster collaborators.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

const observationColumns = `id, team_number, match_key, match_number, scout_name,
	auto_leaves_barge, auto_coral_l1, auto_coral_l2, auto_coral_l3, auto_coral_l4,
	auto_algae_processor, auto_algae_net,
	teleop_coral_l1, teleop_coral_l2, teleop_coral_l3, teleop_coral_l4,
	teleop_algae_processor, teleop_algae_net,
	endgame_status, defense_rating, minor_faults, major_faults,
	yellow_card, red_card, comments, source, alliance, created_at, updated_at`

// ListObservations returns all stored scouting records
func (r *Repository) ListObservations() ([]types.ScoutingRecord, error) {
	rows, err := r.db.Query(`SELECT ` + observationColumns + ` FROM observations ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var records []types.ScoutingRecord
	for rows.Next() {
		rec, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanObservation(rows *sql.Rows) (types.ScoutingRecord, error) {
	var rec types.ScoutingRecord
	var teamNumber int
	var matchKey sql.NullString
	err := rows.Scan(
		&rec.ID, &teamNumber, &matchKey, &rec.MatchNumber, &rec.ScoutName,
		&rec.AutoLeavesBarge, &rec.AutoCoralL1, &rec.AutoCoralL2, &rec.AutoCoralL3, &rec.AutoCoralL4,
		&rec.AutoAlgaeProcessor, &rec.AutoAlgaeNet,
		&rec.TeleopCoralL1, &rec.TeleopCoralL2, &rec.TeleopCoralL3, &rec.TeleopCoralL4,
		&rec.TeleopAlgaeProcessor, &rec.TeleopAlgaeNet,
		&rec.EndgameStatus, &rec.DefenseRating, &rec.MinorFaults, &rec.MajorFaults,
		&rec.YellowCard, &rec.RedCard, &rec.Comments, &rec.Source, &rec.Alliance,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to scan observation: %w", err)
	}
	rec.TeamID = types.NewTeamID(teamNumber)
	rec.MatchKey = matchKey.String
	return rec, nil
}

// UpsertObservation stores a scouting record, replacing any existing row
// with the same id.
func (r *Repository) UpsertObservation(rec types.ScoutingRecord) error {
	if !rec.TeamID.Valid {
		return fmt.Errorf("observation %s has no resolvable team id", rec.ID)
	}

	var matchKey interface{}
	if rec.MatchKey != "" {
		matchKey = rec.MatchKey
	}

	_, err := r.db.Exec(`
		INSERT INTO observations (`+observationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			team_number = excluded.team_number,
			match_key = excluded.match_key,
			match_number = excluded.match_number,
			scout_name = excluded.scout_name,
			auto_leaves_barge = excluded.auto_leaves_barge,
			auto_coral_l1 = excluded.auto_coral_l1,
			auto_coral_l2 = excluded.auto_coral_l2,
			auto_coral_l3 = excluded.auto_coral_l3,
			auto_coral_l4 = excluded.auto_coral_l4,
			auto_algae_processor = excluded.auto_algae_processor,
			auto_algae_net = excluded.auto_algae_net,
			teleop_coral_l1 = excluded.teleop_coral_l1,
			teleop_coral_l2 = excluded.teleop_coral_l2,
			teleop_coral_l3 = excluded.teleop_coral_l3,
			teleop_coral_l4 = excluded.teleop_coral_l4,
			teleop_algae_processor = excluded.teleop_algae_processor,
			teleop_algae_net = excluded.teleop_algae_net,
			endgame_status = excluded.endgame_status,
			defense_rating = excluded.defense_rating,
			minor_faults = excluded.minor_faults,
			major_faults = excluded.major_faults,
			yellow_card = excluded.yellow_card,
			red_card = excluded.red_card,
			comments = excluded.comments,
			source = excluded.source,
			alliance = excluded.alliance,
			updated_at = excluded.updated_at
	`,
		rec.ID, rec.TeamID.Number, matchKey, rec.MatchNumber, rec.ScoutName,
		rec.AutoLeavesBarge, rec.AutoCoralL1, rec.AutoCoralL2, rec.AutoCoralL3, rec.AutoCoralL4,
		rec.AutoAlgaeProcessor, rec.AutoAlgaeNet,
		rec.TeleopCoralL1, rec.TeleopCoralL2, rec.TeleopCoralL3, rec.TeleopCoralL4,
		rec.TeleopAlgaeProcessor, rec.TeleopAlgaeNet,
		rec.EndgameStatus, rec.DefenseRating, rec.MinorFaults, rec.MajorFaults,
		rec.YellowCard, rec.RedCard, rec.Comments, rec.Source, rec.Alliance,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert observation: %w", err)
	}
	return nil
}

// ListTeams returns all known teams
func (r *Repository) ListTeams() ([]types.Team, error) {
	rows, err := r.db.Query(`SELECT number, key, name, city, country, rookie_year, rating FROM teams ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []types.Team
	for rows.Next() {
		var team types.Team
		if err := rows.Scan(&team.Number, &team.Key, &team.Name, &team.City, &team.Country, &team.RookieYear, &team.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// TeamByNumber looks up one team by its team number
func (r *Repository) TeamByNumber(n int) (types.Team, bool, error) {
	var team types.Team
	err := r.db.QueryRow(`SELECT number, key, name, city, country, rookie_year, rating FROM teams WHERE number = ?`, n).
		Scan(&team.Number, &team.Key, &team.Name, &team.City, &team.Country, &team.RookieYear, &team.Rating)
	if err == sql.ErrNoRows {
		return types.Team{}, false, nil
	}
	if err != nil {
		return types.Team{}, false, fmt.Errorf("failed to query team: %w", err)
	}
	return team, true, nil
}

// UpsertTeam stores a team keyed by its team number
func (r *Repository) UpsertTeam(team types.Team) error {
	_, err := r.db.Exec(`
		INSERT INTO teams (number, key, name, city, country, rookie_year, rating)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(number) DO UPDATE SET
			key = excluded.key,
			name = excluded.name,
			city = excluded.city,
			country = excluded.country,
			rookie_year = excluded.rookie_year
	`, team.Number, team.Key, team.Name, team.City, team.Country, team.RookieYear, team.Rating)
	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}
	return nil
}

// SaveTeamRatings overwrites the cached rating for each given team
func (r *Repository) SaveTeamRatings(teams []types.Team) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, team := range teams {
		if _, err := tx.Exec(`UPDATE teams SET rating = ? WHERE number = ?`, team.Rating, team.Number); err != nil {
			return fmt.Errorf("failed to update rating for team %d: %w", team.Number, err)
		}
	}
	return tx.Commit()
}

// ListMatches returns all stored matches
func (r *Repository) ListMatches() ([]types.Match, error) {
	rows, err := r.db.Query(`SELECT id, match_number, match_type, red_alliance, blue_alliance, red_score, blue_score, winner, completed, event_key FROM matches ORDER BY match_number, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []types.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func scanMatch(rows *sql.Rows) (types.Match, error) {
	var match types.Match
	var redJSON, blueJSON string
	var redScore, blueScore sql.NullInt64
	err := rows.Scan(&match.ID, &match.MatchNumber, &match.MatchType, &redJSON, &blueJSON,
		&redScore, &blueScore, &match.Winner, &match.Completed, &match.EventKey)
	if err != nil {
		return match, fmt.Errorf("failed to scan match: %w", err)
	}

	if err := json.Unmarshal([]byte(redJSON), &match.RedAlliance); err != nil {
		return match, fmt.Errorf("failed to decode red alliance: %w", err)
	}
	if err := json.Unmarshal([]byte(blueJSON), &match.BlueAlliance); err != nil {
		return match, fmt.Errorf("failed to decode blue alliance: %w", err)
	}
	if redScore.Valid {
		v := int(redScore.Int64)
		match.RedScore = &v
	}
	if blueScore.Valid {
		v := int(blueScore.Int64)
		match.BlueScore = &v
	}
	return match, nil
}

// UpsertMatch stores a match keyed by its id
func (r *Repository) UpsertMatch(match types.Match) error {
	redJSON, err := json.Marshal(match.RedAlliance)
	if err != nil {
		return fmt.Errorf("failed to encode red alliance: %w", err)
	}
	blueJSON, err := json.Marshal(match.BlueAlliance)
	if err != nil {
		return fmt.Errorf("failed to encode blue alliance: %w", err)
	}

	var redScore, blueScore interface{}
	if match.RedScore != nil {
		redScore = *match.RedScore
	}
	if match.BlueScore != nil {
		blueScore = *match.BlueScore
	}

	_, err = r.db.Exec(`
		INSERT INTO matches (id, match_number, match_type, red_alliance, blue_alliance, red_score, blue_score, winner, completed, event_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			match_number = excluded.match_number,
			match_type = excluded.match_type,
			red_alliance = excluded.red_alliance,
			blue_alliance = excluded.blue_alliance,
			red_score = excluded.red_score,
			blue_score = excluded.blue_score,
			winner = excluded.winner,
			completed = excluded.completed,
			event_key = excluded.event_key
	`, match.ID, match.MatchNumber, match.MatchType, string(redJSON), string(blueJSON),
		redScore, blueScore, match.Winner, match.Completed, match.EventKey)
	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}
	return nil
}
