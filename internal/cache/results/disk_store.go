// Package results persists completed pipeline results to disk for replay.
// One JSON document per entry, named from the document id (or a demo name),
// written once after a successful run and never updated.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vantage/internal/types"
)

// DiskStore writes each PipelineResult to <root>/<key>.json. Reads that hit
// a missing or corrupt file report a miss, never a fatal error; the caller
// recomputes and overwrites.
type DiskStore struct {
	root string
}

// NewDiskStore creates the cache directory if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("cache root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{root: root}, nil
}

// Write persists the result under key. The write goes through a temp file
// and rename so a crash cannot leave a half-written entry behind.
func (s *DiskStore) Write(key string, result *types.PipelineResult) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Read returns the cached result for key. ok=false covers both "never
// written" and "file unreadable or corrupt".
func (s *DiskStore) Read(key string) (*types.PipelineResult, bool) {
	path, err := s.pathFor(key)
	if err != nil {
		return nil, false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var result types.PipelineResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (s *DiskStore) pathFor(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("cache key is required")
	}
	if strings.Contains(key, "..") || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid cache key: %s", key)
	}
	return filepath.Join(s.root, key+".json"), nil
}
