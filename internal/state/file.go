package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// fileState is the on-disk layout. It stays a flat JSON document so operators
// can inspect and hand-edit it; unknown or duplicate entries are tolerated.
type fileState struct {
	SeenVideos []string  `json:"seen_videos"`
	LastCheck  time.Time `json:"last_check"`
}

// FileStore keeps the seen set in a JSON file, rewritten atomically
// (write-temp-then-rename) on every mutation. Single-writer by design.
type FileStore struct {
	path       string
	maxEntries int
	logger     *slog.Logger

	ids       []string // insertion order, oldest first
	index     map[string]struct{}
	lastCheck time.Time
}

// NewFileStore loads existing state from path. A missing or corrupt file is
// logged and treated as an empty set; it must never block the loop.
func NewFileStore(path string, maxEntries int, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileStore{
		path:       path,
		maxEntries: maxEntries,
		logger:     logger,
		index:      map[string]struct{}{},
	}
	s.load()
	return s
}

func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no existing state file, starting fresh", "path", s.path)
		} else {
			s.logger.Warn("state file unreadable, starting fresh", "path", s.path, "error", err)
		}
		return
	}
	var persisted fileState
	if err := json.Unmarshal(data, &persisted); err != nil {
		s.logger.Warn("state file corrupt, starting fresh", "path", s.path, "error", err)
		return
	}
	for _, id := range persisted.SeenVideos {
		if id == "" {
			continue
		}
		if _, dup := s.index[id]; dup {
			continue
		}
		s.ids = append(s.ids, id)
		s.index[id] = struct{}{}
	}
	s.lastCheck = persisted.LastCheck
	s.logger.Info("loaded state", "path", s.path, "tracked", len(s.ids))
}

func (s *FileStore) HasSeen(_ context.Context, id string) (bool, error) {
	_, ok := s.index[id]
	return ok, nil
}

// MarkSeen records id and persists synchronously. On a persist failure the
// in-memory set is left untouched, so the id stays unseen and the action will
// be re-attempted next cycle (at-least-once).
func (s *FileStore) MarkSeen(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, ok := s.index[id]; ok {
		return nil
	}

	ids := append(append([]string(nil), s.ids...), id)
	if s.maxEntries > 0 && len(ids) > s.maxEntries {
		ids = ids[len(ids)-s.maxEntries:]
	}
	now := time.Now().UTC()
	if err := s.persist(fileState{SeenVideos: ids, LastCheck: now}); err != nil {
		return err
	}

	s.ids = ids
	s.lastCheck = now
	index := make(map[string]struct{}, len(ids))
	for _, kept := range ids {
		index[kept] = struct{}{}
	}
	s.index = index
	return nil
}

func (s *FileStore) persist(persisted fileState) error {
	data, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Len reports how many identifiers are tracked.
func (s *FileStore) Len() int {
	return len(s.ids)
}

// LastCheck returns the timestamp of the most recent recorded action.
func (s *FileStore) LastCheck() time.Time {
	return s.lastCheck
}

func (s *FileStore) Close() error {
	return nil
}
