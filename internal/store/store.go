// Package store archives match records in a local SQLite database. Archive
// failures are reported to the caller for logging and never block game
// flow.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/ajmarsh/hexfront/internal/protocol"
)

// Store wraps the SQLite connection.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates the database at the given path and applies the
// schema. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.conn.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		lobby_id TEXT NOT NULL,
		seed INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER,
		turns INTEGER,
		end_reason TEXT,
		settings_json TEXT NOT NULL,
		roster_json TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_matches_lobby ON matches(lobby_id);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// RecordMatchStart inserts a match row when a lobby transitions to
// in-game.
func (s *Store) RecordMatchStart(lobbyID string, seed int64, settings protocol.SettingsInfo, roster []protocol.PlayerInfo) error {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	rosterJSON, err := json.Marshal(roster)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	_, err = s.conn.Exec(
		`INSERT INTO matches (lobby_id, seed, started_at, settings_json, roster_json) VALUES (?, ?, ?, ?, ?)`,
		lobbyID, seed, time.Now().Unix(), string(settingsJSON), string(rosterJSON),
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

// RecordMatchEnd closes out the most recent match row for the lobby.
func (s *Store) RecordMatchEnd(lobbyID string, turns int, reason string) error {
	_, err := s.conn.Exec(
		`UPDATE matches SET ended_at = ?, turns = ?, end_reason = ?
		 WHERE id = (SELECT id FROM matches WHERE lobby_id = ? AND ended_at IS NULL ORDER BY id DESC LIMIT 1)`,
		time.Now().Unix(), turns, reason, lobbyID,
	)
	if err != nil {
		return fmt.Errorf("close match: %w", err)
	}
	return nil
}

// MatchRecord is one archived match.
type MatchRecord struct {
	ID        int64   `db:"id"`
	LobbyID   string  `db:"lobby_id"`
	Seed      int64   `db:"seed"`
	StartedAt int64   `db:"started_at"`
	EndedAt   *int64  `db:"ended_at"`
	Turns     *int64  `db:"turns"`
	EndReason *string `db:"end_reason"`
	Settings  string  `db:"settings_json"`
	Roster    string  `db:"roster_json"`
}

// MatchesForLobby lists the archived matches for one lobby, newest first.
func (s *Store) MatchesForLobby(lobbyID string) ([]MatchRecord, error) {
	var out []MatchRecord
	err := s.conn.Select(&out, `SELECT * FROM matches WHERE lobby_id = ? ORDER BY id DESC`, lobbyID)
	if err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}
	return out, nil
}
