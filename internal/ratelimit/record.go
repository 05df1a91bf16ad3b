package ratelimit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Record is the persisted list of accepted send attempts, in seconds since epoch.
type Record struct {
	Timestamps []float64 `json:"timestamps"`
}

// LoadRecord reads the record at path. A missing file yields an empty record.
func LoadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Record{Timestamps: []float64{}}, nil
		}
		return nil, fmt.Errorf("failed to read rate limit file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse rate limit file: %w", err)
	}
	if rec.Timestamps == nil {
		rec.Timestamps = []float64{}
	}
	return &rec, nil
}

// SaveRecord writes rec to a temp file next to path and renames it into place.
func SaveRecord(path string, rec *Record) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create rate limit directory: %w", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode rate limit record: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write rate limit file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close rate limit file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace rate limit file: %w", err)
	}
	return nil
}

// Prune drops timestamps at or before cutoff.
func (r *Record) Prune(cutoff float64) {
	kept := make([]float64, 0, len(r.Timestamps))
	for _, ts := range r.Timestamps {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	r.Timestamps = kept
}

// Oldest returns the earliest timestamp, or 0 for an empty record.
func (r *Record) Oldest() float64 {
	if len(r.Timestamps) == 0 {
		return 0
	}
	oldest := r.Timestamps[0]
	for _, ts := range r.Timestamps[1:] {
		if ts < oldest {
			oldest = ts
		}
	}
	return oldest
}

func toSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
