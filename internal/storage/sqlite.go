package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/KhaledO7/Discordbot/internal/roster"
)

type sqliteStore struct {
	db *sql.DB
}

func openSqlite(path string) (Store, error) {
	if path == "" {
		path = filepath.Join("data", "roster.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	store := &sqliteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *sqliteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS availability (
			community VARCHAR(20) NOT NULL,
			player VARCHAR(20) NOT NULL,
			name TEXT NOT NULL,
			team VARCHAR(1) NOT NULL DEFAULT '',
			days TEXT NOT NULL,
			PRIMARY KEY (community, player)
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			community VARCHAR(20) PRIMARY KEY,
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_availability_community ON availability(community)`,
	}
	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("%w: migration failed: %v", ErrUnavailable, err)
		}
	}
	return nil
}

func (s *sqliteStore) LoadCommunities(ctx context.Context) (map[string]roster.Snapshot, error) {
	snapshots := map[string]roster.Snapshot{}

	rows, err := s.db.QueryContext(ctx, `SELECT community, player, name, team, days FROM availability`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()
	for rows.Next() {
		var communityID, player, name, team, days string
		if err := rows.Scan(&communityID, &player, &name, &team, &days); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		record := roster.Record{Player: player, Name: name, Team: roster.Team(team)}
		if days != "" {
			parsed, err := roster.ParseDays(days)
			if err != nil {
				return nil, fmt.Errorf("%w: bad days for player %s: %v", ErrUnavailable, player, err)
			}
			record.Days = parsed
		}
		snap := snapshots[communityID]
		snap.Records = append(snap.Records, record)
		snapshots[communityID] = snap
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	settingsRows, err := s.db.QueryContext(ctx, `SELECT community, data FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer settingsRows.Close()
	for settingsRows.Next() {
		var communityID, data string
		if err := settingsRows.Scan(&communityID, &data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		var settings roster.Settings
		if err := json.Unmarshal([]byte(data), &settings); err != nil {
			return nil, fmt.Errorf("%w: bad settings for community %s: %v", ErrUnavailable, communityID, err)
		}
		snap := snapshots[communityID]
		snap.Settings = settings
		snapshots[communityID] = snap
	}
	if err := settingsRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return snapshots, nil
}

// SaveRoster replaces the community's rows in one transaction
func (s *sqliteStore) SaveRoster(ctx context.Context, communityID string, records []roster.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM availability WHERE community = ?`, communityID); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	for _, record := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO availability (community, player, name, team, days) VALUES (?, ?, ?, ?, ?)`,
			communityID, record.Player, record.Name, string(record.Team), joinDays(record.Days),
		); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *sqliteStore) SaveSettings(ctx context.Context, communityID string, settings roster.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (community, data) VALUES (?, ?)
		 ON CONFLICT(community) DO UPDATE SET data = excluded.data`,
		communityID, string(data),
	); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func joinDays(days []roster.Weekday) string {
	names := make([]string, len(days))
	for i, day := range days {
		names[i] = day.String()
	}
	return strings.Join(names, ",")
}
