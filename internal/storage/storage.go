// Package storage persists community rosters and settings.
//
// Two drivers are available behind the same interface:
//   - "file": a single JSON file, written atomically
//   - "sqlite": a SQLite database file
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KhaledO7/Discordbot/internal/roster"
)

// ErrUnavailable wraps every driver failure so callers can treat a broken
// disk or database uniformly: log it, fail the one operation, carry on
var ErrUnavailable = errors.New("persistence unavailable")

// Config selects and locates the storage driver
type Config struct {
	Driver string
	Path   string
}

// Store is the persistence surface the roster manager writes through.
// LoadCommunities is only called once, at startup
type Store interface {
	LoadCommunities(ctx context.Context) (map[string]roster.Snapshot, error)
	SaveRoster(ctx context.Context, communityID string, records []roster.Record) error
	SaveSettings(ctx context.Context, communityID string, settings roster.Settings) error
	Close() error
}

// Open initialises the configured driver
func Open(cfg Config) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "file":
		return openFile(cfg.Path)
	case "sqlite", "sqlite3":
		return openSqlite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
