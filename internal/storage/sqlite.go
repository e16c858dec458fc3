// Package storage provides SQLite-based persistence for finished matches.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/warzone/internal/multiplayer"
)

// Store manages the SQLite database connection for match history.
type Store struct {
	db *sql.DB
}

// MatchRecord is one finished match.
type MatchRecord struct {
	ID        int64
	MatchID   string
	Winner    string // winning team
	Reason    string // "elimination" or "timeout"
	Ticks     uint64
	Duration  int // Duration in seconds
	CreatedAt time.Time
	Players   []PlayerRecord
}

// PlayerRecord is one player's line in a finished match.
type PlayerRecord struct {
	PlayerID string
	Name     string
	Team     string
	Kills    int
	Alive    bool
}

// TeamStats aggregates results per team across all matches.
type TeamStats struct {
	Team         string
	Wins         int
	Eliminations int
	Timeouts     int
	Kills        int
	LastWinAt    time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
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

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			winner TEXT NOT NULL,
			reason TEXT NOT NULL,
			ticks INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_created ON matches(created_at DESC);

		CREATE TABLE IF NOT EXISTS match_players (
			match_id TEXT NOT NULL REFERENCES matches(match_id) ON DELETE CASCADE,
			player_id TEXT NOT NULL,
			name TEXT NOT NULL,
			team TEXT NOT NULL,
			kills INTEGER NOT NULL DEFAULT 0,
			alive INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (match_id, player_id)
		);
		CREATE INDEX IF NOT EXISTS idx_match_players_name ON match_players(name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMatch records a finished match and its players in one transaction.
// Returns the ID of the inserted match row.
func (s *Store) SaveMatch(rec MatchRecord) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.Exec(
		`INSERT INTO matches (match_id, winner, reason, ticks, duration_secs)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.MatchID, rec.Winner, rec.Reason, int64(rec.Ticks), rec.Duration, //nolint:gosec // tick counts fit
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	for _, p := range rec.Players {
		_, err := tx.Exec(
			`INSERT INTO match_players (match_id, player_id, name, team, kills, alive)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rec.MatchID, p.PlayerID, p.Name, p.Team, p.Kills, p.Alive,
		)
		if err != nil {
			return 0, fmt.Errorf("storage: cannot save player %s: %w", p.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit match: %w", err)
	}
	return id, nil
}

// MatchByID retrieves a match with its players. Returns nil if not found.
func (s *Store) MatchByID(matchID string) (*MatchRecord, error) {
	var rec MatchRecord
	var ticks int64
	var createdAt any

	err := s.db.QueryRow(
		`SELECT id, match_id, winner, reason, ticks, duration_secs, created_at
		 FROM matches
		 WHERE match_id = ?`,
		matchID,
	).Scan(&rec.ID, &rec.MatchID, &rec.Winner, &rec.Reason, &ticks, &rec.Duration, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}
	rec.Ticks = uint64(ticks) //nolint:gosec // stored from a uint64
	rec.CreatedAt = parseTime(createdAt)

	if rec.Players, err = s.players(rec.MatchID); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ErrAmbiguousMatch is returned when a short id fits more than one match.
var ErrAmbiguousMatch = errors.New("storage: ambiguous match id")

// ResolveMatchID expands a match id prefix, as printed in listings, to the
// full id. Returns "" if nothing matches.
func (s *Store) ResolveMatchID(prefix string) (string, error) {
	if prefix == "" {
		return "", nil
	}
	rows, err := s.db.Query(
		`SELECT match_id FROM matches
		 WHERE substr(match_id, 1, ?) = ?
		 ORDER BY match_id = ? DESC, id
		 LIMIT 2`,
		len(prefix), prefix, prefix,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot resolve match id: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("storage: cannot scan match id: %w", err)
		}
		if id == prefix {
			return id, nil
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("storage: row iteration error: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", nil
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w %q", ErrAmbiguousMatch, prefix)
	}
}

// RecentMatches retrieves the most recent matches, newest first.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryMatches(
		`SELECT id, match_id, winner, reason, ticks, duration_secs, created_at
		 FROM matches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
}

// PlayerHistory retrieves the matches a player name took part in, newest first.
func (s *Store) PlayerHistory(name string, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryMatches(
		`SELECT m.id, m.match_id, m.winner, m.reason, m.ticks, m.duration_secs, m.created_at
		 FROM matches m
		 JOIN match_players p ON p.match_id = m.match_id
		 WHERE p.name = ?
		 ORDER BY m.created_at DESC, m.id DESC
		 LIMIT ?`,
		name, limit,
	)
}

func (s *Store) queryMatches(query string, args ...any) ([]MatchRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}

	var results []MatchRecord
	for rows.Next() {
		var rec MatchRecord
		var ticks int64
		var createdAt any
		if err := rows.Scan(&rec.ID, &rec.MatchID, &rec.Winner, &rec.Reason, &ticks, &rec.Duration, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		rec.Ticks = uint64(ticks) //nolint:gosec // stored from a uint64
		rec.CreatedAt = parseTime(createdAt)
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	rows.Close()

	// players are loaded after the match cursor is closed
	for i := range results {
		if results[i].Players, err = s.players(results[i].MatchID); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (s *Store) players(matchID string) ([]PlayerRecord, error) {
	rows, err := s.db.Query(
		`SELECT player_id, name, team, kills, alive
		 FROM match_players
		 WHERE match_id = ?
		 ORDER BY kills DESC, player_id`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query players: %w", err)
	}
	defer rows.Close()

	var out []PlayerRecord
	for rows.Next() {
		var p PlayerRecord
		if err := rows.Scan(&p.PlayerID, &p.Name, &p.Team, &p.Kills, &p.Alive); err != nil {
			return nil, fmt.Errorf("storage: cannot scan player row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// TeamStats retrieves win counts per team across all matches.
func (s *Store) TeamStats() (map[string]*TeamStats, error) {
	rows, err := s.db.Query(
		`SELECT winner, COUNT(*),
		        SUM(CASE WHEN reason = 'timeout' THEN 1 ELSE 0 END),
		        SUM(CASE WHEN reason = 'elimination' THEN 1 ELSE 0 END),
		        MAX(created_at)
		 FROM matches
		 GROUP BY winner`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get team stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*TeamStats)
	for rows.Next() {
		var ts TeamStats
		var lastWin any
		if err := rows.Scan(&ts.Team, &ts.Wins, &ts.Timeouts, &ts.Eliminations, &lastWin); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		ts.LastWinAt = parseTime(lastWin)
		stats[ts.Team] = &ts
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	kills, err := s.db.Query(`SELECT team, SUM(kills) FROM match_players GROUP BY team`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get team kills: %w", err)
	}
	defer kills.Close()
	for kills.Next() {
		var team string
		var n int
		if err := kills.Scan(&team, &n); err != nil {
			return nil, fmt.Errorf("storage: cannot scan kills row: %w", err)
		}
		ts, ok := stats[team]
		if !ok {
			ts = &TeamStats{Team: team}
			stats[team] = ts
		}
		ts.Kills = n
	}
	return stats, kills.Err()
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
// This adapter allows the coordinator to save match results without direct storage dependency.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	rec := MatchRecord{
		MatchID:  data.MatchID,
		Winner:   data.Winner,
		Reason:   data.Reason,
		Ticks:    data.Ticks,
		Duration: data.DurationSecs,
	}
	for _, p := range data.Players {
		rec.Players = append(rec.Players, PlayerRecord{
			PlayerID: p.PlayerID,
			Name:     p.Name,
			Team:     p.Team,
			Kills:    p.Kills,
			Alive:    p.Alive,
		})
	}
	_, err := s.SaveMatch(rec)
	return err
}

// Ensure Store implements MatchResultSaver
var _ multiplayer.MatchResultSaver = (*Store)(nil)
