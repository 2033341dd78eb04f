// Package cache stores analysis profiles keyed by content fingerprint so
// repeated runs over the same asset skip the signal layer.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DaisyQuest/Transcriberator/internal/signal"
	"github.com/DaisyQuest/Transcriberator/internal/symbolic"
)

// ProfileCache manages cached analysis results under the repository's
// .cache directory.
type ProfileCache struct {
	dir string
}

// Entry wraps a cached profile with its provenance.
type Entry struct {
	Profile      *signal.AudioAnalysisProfile `json:"profile"`
	ModelVersion string                       `json:"model_version"`
	CreatedAt    time.Time                    `json:"created_at"`
}

// New creates a profile cache in the repository's .cache directory, walking
// up from the working directory to the go.mod root.
func New() (*ProfileCache, error) {
	dir, err := findRepoCacheDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &ProfileCache{dir: dir}, nil
}

// findRepoCacheDir finds .cache/profiles under the repository root.
func findRepoCacheDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working dir: %w", err)
	}
	for {
		if fileExists(filepath.Join(dir, "go.mod")) {
			return filepath.Join(dir, ".cache", "profiles"), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			cwd, _ := os.Getwd()
			return filepath.Join(cwd, ".cache", "profiles"), nil
		}
		dir = parent
	}
}

// KeyForBytes generates a cache key from the content fingerprint.
func KeyForBytes(raw []byte) string {
	return "asset_" + signal.Fingerprint(raw)
}

// Get retrieves a cached profile; a model-version mismatch invalidates the
// entry.
func (c *ProfileCache) Get(key string) (*Entry, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if entry.ModelVersion != symbolic.ModelVersion || entry.Profile == nil {
		return nil, false
	}
	return &entry, true
}

// Put stores a profile under the given key.
func (c *ProfileCache) Put(key string, profile *signal.AudioAnalysisProfile) error {
	entry := Entry{
		Profile:      profile,
		ModelVersion: symbolic.ModelVersion,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := os.WriteFile(c.path(key), data, 0644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Clear removes all cached profiles.
func (c *ProfileCache) Clear() error {
	return os.RemoveAll(c.dir)
}

// Size returns the total byte size and entry count of the cache.
func (c *ProfileCache) Size() (int64, int, error) {
	var total int64
	var count int
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
		count++
	}
	return total, count, nil
}

func (c *ProfileCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
