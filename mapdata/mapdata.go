// Package mapdata reads persisted map data from files and serves it as a maprender.MapSource.
package mapdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/c3nav/maprender"
	"github.com/cespare/xxhash/v2"
)

// Store is an immutable snapshot of map data. Its version is derived from the content it was parsed from.
type Store struct {
	version uint64
	levels  []maprender.LevelRecord
}

// NewStore returns a store holding the given levels.
func NewStore(version uint64, levels []maprender.LevelRecord) *Store {
	return &Store{version, levels}
}

func (s *Store) Version(context.Context) (uint64, error) {
	return s.version, nil
}

func (s *Store) Levels(context.Context) ([]maprender.LevelRecord, error) {
	return append([]maprender.LevelRecord{}, s.levels...), nil
}

// Parse parses map data in the given format, "yaml" or "geojson".
func Parse(format string, b []byte) (*Store, error) {
	var levels []maprender.LevelRecord
	var err error
	switch format {
	case "yaml", "yml":
		levels, err = parseYAML(b)
	case "geojson", "json":
		levels, err = parseGeoJSON(b)
	default:
		return nil, fmt.Errorf("unknown map data format: %s", format)
	}
	if err != nil {
		return nil, err
	}
	return NewStore(xxhash.Sum64(b), levels), nil
}

// Load parses a map data file, the format follows from the file extension.
func Load(filename string) (*Store, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	store, err := Parse(formatOf(filename), b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return store, nil
}

func formatOf(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// File is a map source backed by a file. The file is parsed again when its modification time or size changes, which changes the version.
type File struct {
	filename string

	mu      sync.Mutex
	modTime time.Time
	size    int64
	store   *Store
}

// NewFile returns a map source for the file, it is read on first use.
func NewFile(filename string) *File {
	return &File{filename: filename}
}

func (f *File) current() (*Store, error) {
	info, err := os.Stat(f.filename)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.store != nil && info.ModTime().Equal(f.modTime) && info.Size() == f.size {
		return f.store, nil
	}
	store, err := Load(f.filename)
	if err != nil {
		return nil, err
	}
	f.store, f.modTime, f.size = store, info.ModTime(), info.Size()
	return store, nil
}

func (f *File) Version(ctx context.Context) (uint64, error) {
	store, err := f.current()
	if err != nil {
		return 0, err
	}
	return store.Version(ctx)
}

func (f *File) Levels(ctx context.Context) ([]maprender.LevelRecord, error) {
	store, err := f.current()
	if err != nil {
		return nil, err
	}
	return store.Levels(ctx)
}
