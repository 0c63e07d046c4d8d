package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/KhaledO7/Discordbot/internal/roster"
)

// fileStore keeps everything in one JSON file. The full document lives in
// memory and every save rewrites the file through a temp file and a rename,
// so a crash mid-write can never leave a half document behind
type fileStore struct {
	mu   sync.Mutex
	path string
	data fileDocument
}

type fileDocument struct {
	Communities map[string]communityDocument `json:"communities"`
}

type communityDocument struct {
	Availability map[string]roster.Record `json:"availability"`
	Settings     roster.Settings          `json:"settings"`
}

func openFile(path string) (Store, error) {
	if path == "" {
		path = filepath.Join("data", "roster.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	store := &fileStore{path: path, data: fileDocument{Communities: map[string]communityDocument{}}}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := json.Unmarshal(raw, &store.data); err != nil {
		return nil, fmt.Errorf("%w: corrupt file %s: %v", ErrUnavailable, path, err)
	}
	if store.data.Communities == nil {
		store.data.Communities = map[string]communityDocument{}
	}
	return store, nil
}

func (s *fileStore) LoadCommunities(ctx context.Context) (map[string]roster.Snapshot, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshots := map[string]roster.Snapshot{}
	for communityID, doc := range s.data.Communities {
		snap := roster.Snapshot{Settings: doc.Settings}
		for player, record := range doc.Availability {
			record.Player = player
			snap.Records = append(snap.Records, record)
		}
		snapshots[communityID] = snap
	}
	return snapshots, nil
}

func (s *fileStore) SaveRoster(ctx context.Context, communityID string, records []roster.Record) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.data.Communities[communityID]
	doc.Availability = map[string]roster.Record{}
	for _, record := range records {
		doc.Availability[record.Player] = record
	}
	s.data.Communities[communityID] = doc
	return s.writeLocked()
}

func (s *fileStore) SaveSettings(ctx context.Context, communityID string, settings roster.Settings) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.data.Communities[communityID]
	doc.Settings = settings
	if doc.Availability == nil {
		doc.Availability = map[string]roster.Record{}
	}
	s.data.Communities[communityID] = doc
	return s.writeLocked()
}

func (s *fileStore) writeLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *fileStore) Close() error {
	return nil
}
