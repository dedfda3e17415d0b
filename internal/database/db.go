package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB represents the database connection with pooling
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection with pooling and runs schema
// migrations.
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "reefscout.db")
	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	database := &DB{DB: db}
	if err := database.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Database initialized", "path", dbPath)
	return database, nil
}

// migrate creates the schema if it does not exist yet.
func (db *DB) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS observations (
			id TEXT PRIMARY KEY,
			team_number INTEGER NOT NULL,
			match_key TEXT,
			match_number INTEGER NOT NULL DEFAULT 0,
			scout_name TEXT NOT NULL DEFAULT '',
			auto_leaves_barge INTEGER NOT NULL DEFAULT 0,
			auto_coral_l1 INTEGER NOT NULL DEFAULT 0,
			auto_coral_l2 INTEGER NOT NULL DEFAULT 0,
			auto_coral_l3 INTEGER NOT NULL DEFAULT 0,
			auto_coral_l4 INTEGER NOT NULL DEFAULT 0,
			auto_algae_processor INTEGER NOT NULL DEFAULT 0,
			auto_algae_net INTEGER NOT NULL DEFAULT 0,
			teleop_coral_l1 INTEGER NOT NULL DEFAULT 0,
			teleop_coral_l2 INTEGER NOT NULL DEFAULT 0,
			teleop_coral_l3 INTEGER NOT NULL DEFAULT 0,
			teleop_coral_l4 INTEGER NOT NULL DEFAULT 0,
			teleop_algae_processor INTEGER NOT NULL DEFAULT 0,
			teleop_algae_net INTEGER NOT NULL DEFAULT 0,
			endgame_status TEXT NOT NULL DEFAULT 'none',
			defense_rating INTEGER NOT NULL DEFAULT 0,
			minor_faults INTEGER NOT NULL DEFAULT 0,
			major_faults INTEGER NOT NULL DEFAULT 0,
			yellow_card INTEGER NOT NULL DEFAULT 0,
			red_card INTEGER NOT NULL DEFAULT 0,
			comments TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT 'manual',
			alliance TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		// Derived records are unique per (match, team, alliance); manual
		// records have no match key and are exempt.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_observations_triple
			ON observations(match_key, team_number, alliance)
			WHERE match_key IS NOT NULL AND match_key != ''`,
		`CREATE INDEX IF NOT EXISTS idx_observations_team ON observations(team_number)`,
		`CREATE TABLE IF NOT EXISTS teams (
			number INTEGER PRIMARY KEY,
			key TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			rookie_year INTEGER NOT NULL DEFAULT 0,
			rating REAL NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			match_number INTEGER NOT NULL DEFAULT 0,
			match_type TEXT NOT NULL DEFAULT 'qualification',
			red_alliance TEXT NOT NULL DEFAULT '[]',
			blue_alliance TEXT NOT NULL DEFAULT '[]',
			red_score INTEGER,
			blue_score INTEGER,
			winner TEXT NOT NULL DEFAULT '',
			completed INTEGER NOT NULL DEFAULT 0,
			event_key TEXT NOT NULL DEFAULT ''
		)`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}
