package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SelfplayStore persists self-play results in a local SQLite database.
type SelfplayStore struct {
	db *sql.DB
}

type SelfplayResult struct {
	ID          int64
	GameID      string
	Variant     Variant
	BlackPreset string
	WhitePreset string
	Winner      int // 1 black, 2 white, 0 draw
	Plies       int
	DurationMs  int64
}

type SelfplaySummary struct {
	Games     int
	BlackWins int
	WhiteWins int
	Draws     int
	AvgPlies  float64
}

func OpenSelfplayStore(dbPath string) (*SelfplayStore, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}
	store := &SelfplayStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

func (s *SelfplayStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS selfplay_games (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL UNIQUE,
			variant TEXT NOT NULL,
			black_preset TEXT NOT NULL,
			white_preset TEXT NOT NULL,
			winner INTEGER NOT NULL,
			plies INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_selfplay_variant ON selfplay_games(variant);
		CREATE INDEX IF NOT EXISTS idx_selfplay_presets ON selfplay_games(black_preset, white_preset);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SelfplayStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveResult records one finished self-play game and returns its row id.
func (s *SelfplayStore) SaveResult(result SelfplayResult) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO selfplay_games
		 (game_id, variant, black_preset, white_preset, winner, plies, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.GameID,
		string(result.Variant),
		result.BlackPreset,
		result.WhitePreset,
		result.Winner,
		result.Plies,
		result.DurationMs,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save result: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// Summary aggregates the recorded games for a variant and preset pairing.
// Empty preset arguments match every pairing.
func (s *SelfplayStore) Summary(variant Variant, blackPreset, whitePreset string) (SelfplaySummary, error) {
	query := `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN winner = 1 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN winner = 2 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN winner = 0 THEN 1 ELSE 0 END), 0),
		COALESCE(AVG(plies), 0)
		FROM selfplay_games WHERE variant = ?`
	args := []any{string(variant)}
	if blackPreset != "" {
		query += " AND black_preset = ?"
		args = append(args, blackPreset)
	}
	if whitePreset != "" {
		query += " AND white_preset = ?"
		args = append(args, whitePreset)
	}
	var summary SelfplaySummary
	err := s.db.QueryRow(query, args...).Scan(
		&summary.Games,
		&summary.BlackWins,
		&summary.WhiteWins,
		&summary.Draws,
		&summary.AvgPlies,
	)
	if err != nil {
		return SelfplaySummary{}, fmt.Errorf("storage: cannot query summary: %w", err)
	}
	return summary, nil
}

// Results returns the most recent games, newest first.
func (s *SelfplayStore) Results(limit int) ([]SelfplayResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, game_id, variant, black_preset, white_preset, winner, plies, duration_ms
		 FROM selfplay_games
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	defer rows.Close()

	var results []SelfplayResult
	for rows.Next() {
		var result SelfplayResult
		var variant string
		if err := rows.Scan(
			&result.ID,
			&result.GameID,
			&variant,
			&result.BlackPreset,
			&result.WhitePreset,
			&result.Winner,
			&result.Plies,
			&result.DurationMs,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		result.Variant = Variant(variant)
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return results, nil
}
