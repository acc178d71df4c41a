package feature

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/neutrobox/automaker/pkg/logging"
)

const storeFileName = "feature_list.json"

// Store persists the ordered feature collection for one project as a single
// JSON file. Every status update is a read-modify-write of the whole file,
// serialized through the store's mutex so in-process writers never race.
// Cross-process coordination is the caller's responsibility: the engine
// never runs two attempts against the same feature concurrently.
type Store struct {
	path string
	log  *logging.Logger
	mu   sync.Mutex
}

// NewStore creates a store rooted at the given project directory. The
// feature list lives at <projectDir>/feature_list.json.
func NewStore(projectDir string) *Store {
	logger, err := logging.NewLogger("feature-store")
	if err != nil {
		logger.Warnf("feature store logger fell back to stderr: %v", err)
	}
	return &Store{
		path: filepath.Join(projectDir, storeFileName),
		log:  logger,
	}
}

// Path returns the file path of the store.
func (s *Store) Path() string {
	return s.path
}

// Load reads the durable collection in stored order. It fails soft: any
// read or parse error yields an empty slice plus a diagnostic, since an
// empty backlog is a safe degraded state.
//
// Every returned feature carries an ID. Records missing one get a synthetic
// ID derived from their position and the load-time clock; such IDs are only
// self-consistent for this run and are not stable across reloads until the
// file is rewritten by an update.
func (s *Store) Load() []*Feature {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() []*Feature {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warnf("failed to read feature list %s: %v", s.path, err)
		}
		return []*Feature{}
	}

	var features []*Feature
	if err := json.Unmarshal(data, &features); err != nil {
		s.log.Warnf("failed to parse feature list %s: %v", s.path, err)
		return []*Feature{}
	}

	loadedAt := time.Now().UnixMilli()
	for i, f := range features {
		if f.ID == "" {
			f.ID = fmt.Sprintf("feature-%d-%d", i+1, loadedAt)
		}
	}

	return features
}

// UpdateStatus locates a feature by ID, mutates its status and, when
// non-empty, its summary, then rewrites the entire collection. A missing
// feature is a logged no-op, not a fault. All fields other than status and
// summary pass through the merge untouched, and record order is preserved.
func (s *Store) UpdateStatus(id string, status Status, summary string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("invalid feature status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	features := s.loadLocked()

	var target *Feature
	for _, f := range features {
		if f.ID == id {
			target = f
			break
		}
	}
	if target == nil {
		s.log.Warnf("update for unknown feature %q ignored", id)
		return nil
	}

	target.Status = status
	if summary != "" {
		target.Summary = summary
	}

	return s.writeLocked(features)
}

// writeLocked rewrites the whole collection atomically (temp file + rename).
// Marshaling through the Feature struct applies the allow-listed projection:
// unknown or legacy fields present in the on-disk records are dropped.
func (s *Store) writeLocked(features []*Feature) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := json.MarshalIndent(features, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode feature list: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp feature list: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace feature list: %w", err)
	}

	return nil
}

// Find returns the feature with the given ID from a fresh load, or nil.
func (s *Store) Find(id string) *Feature {
	for _, f := range s.Load() {
		if f.ID == id {
			return f
		}
	}
	return nil
}
