package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidRecord is returned when a record is missing a required field
// (identifier or basics.name). Such records never enter the store.
var ErrInvalidRecord = errors.New("invalid profile record")

// ErrNotFound is returned when a requested profile does not exist on disk.
var ErrNotFound = errors.New("profile not found")

const reloadParallelism = 8

// Store holds the loaded profile records, keyed by identifier, backed by one
// JSON document per profile in a directory. Reads are lock-free of writers:
// every update swaps in a fully parsed record, never mutating a live one.
type Store struct {
	dir    string
	logger *slog.Logger

	mu      sync.RWMutex
	records map[string]Record
	order   []string // identifiers in load order, for deterministic iteration
}

// NewStore creates a Store over the given profiles directory. The directory
// is created if missing. Call Reload to populate the store.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating profiles directory: %w", err)
	}
	return &Store{
		dir:     dir,
		logger:  slog.Default(),
		records: make(map[string]Record),
	}, nil
}

// Validate checks the required fields of a record.
func Validate(rec Record) error {
	if strings.TrimSpace(rec.Identifier) == "" {
		return fmt.Errorf("%w: profile_id is required", ErrInvalidRecord)
	}
	if strings.TrimSpace(rec.Basics.Name) == "" {
		return fmt.Errorf("%w: basics.name is required", ErrInvalidRecord)
	}
	return nil
}

// Reload scans the profiles directory and replaces the in-memory set with
// the parsed contents. Files are parsed outside the lock, in parallel; the
// map is swapped in one write so readers never observe a partial reload.
// Malformed files are skipped with a warning rather than failing the reload.
func (s *Store) Reload() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading profiles directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}

	parsed := make([]*Record, len(names))
	var g errgroup.Group
	g.SetLimit(reloadParallelism)
	for i, name := range names {
		g.Go(func() error {
			rec, err := s.parseFile(filepath.Join(s.dir, name))
			if err != nil {
				s.logger.Warn("skipping profile file", "file", name, "error", err)
				return nil
			}
			parsed[i] = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	records := make(map[string]Record, len(parsed))
	order := make([]string, 0, len(parsed))
	for _, rec := range parsed {
		if rec == nil {
			continue
		}
		if _, seen := records[rec.Identifier]; !seen {
			order = append(order, rec.Identifier)
		}
		records[rec.Identifier] = *rec
	}

	s.mu.Lock()
	s.records = records
	s.order = order
	s.mu.Unlock()

	s.logger.Info("profiles loaded", "count", len(records), "dir", s.dir)
	return nil
}

// Load reads a single profile file and swaps it into the store. Loading the
// same identifier twice replaces the record in place without duplication.
func (s *Store) Load(id string) error {
	path := filepath.Join(s.dir, id+".json")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("checking profile file: %w", err)
	}

	rec, err := s.parseFile(path)
	if err != nil {
		return err
	}
	s.swapIn(rec)
	return nil
}

// Put validates a record, persists it to disk, and swaps it into memory.
// The write is atomic: a temp file is renamed over the target so a crashed
// write never leaves a half-written document behind.
func (s *Store) Put(rec Record) error {
	if err := Validate(rec); err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling profile %q: %w", rec.Identifier, err)
	}

	path := filepath.Join(s.dir, rec.Identifier+".json")
	tmp, err := os.CreateTemp(s.dir, rec.Identifier+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing profile %q: %w", rec.Identifier, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("saving profile %q: %w", rec.Identifier, err)
	}

	s.swapIn(rec)
	return nil
}

// Get returns the record for id, if loaded.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// All returns the loaded records in stable load order.
func (s *Store) All() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}

// Identifiers returns the loaded identifiers in stable load order.
func (s *Store) Identifiers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of loaded profiles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) parseFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if rec.Identifier == "" {
		// Fall back to the filename, matching how records are saved.
		rec.Identifier = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	if err := Validate(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Store) swapIn(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.records[rec.Identifier]; !seen {
		s.order = append(s.order, rec.Identifier)
	}
	s.records[rec.Identifier] = rec
}
