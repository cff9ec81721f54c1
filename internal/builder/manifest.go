package builder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	manifestFilename = "manifest.json"
	manifestVersion  = 2
)

// Manifest describes a built evaluation database.
type Manifest struct {
	Version     int       `json:"version"`
	TotalShards int       `json:"total_shards"`
	Strategy    string    `json:"strategy"`
	RecordCount int64     `json:"record_count"`
	ShardCount  int       `json:"shard_count"` // non-empty shards
	Skipped     int64     `json:"skipped,omitempty"`
	BuiltAt     time.Time `json:"built_at"`
	Source      string    `json:"source,omitempty"`
	Codec       string    `json:"codec"`
}

// WriteManifest writes m to dir/manifest.json.
func WriteManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFilename), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest reads dir/manifest.json.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFilename))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.TotalShards < 1 {
		return nil, fmt.Errorf("manifest: invalid total_shards %d", m.TotalShards)
	}
	return &m, nil
}
