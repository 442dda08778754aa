package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ammcore/internal/model"
)

// FileStateStore stores the pool state in a local JSON file. Saves replace the
// file atomically.
type FileStateStore struct {
	Path string
}

var _ StateStore = (*FileStateStore)(nil)

func (s *FileStateStore) Load(ctx context.Context) (model.PoolState, bool, error) {
	if s == nil || s.Path == "" {
		return model.PoolState{}, false, nil
	}

	stat, err := os.Stat(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.PoolState{}, false, nil
		}
		return model.PoolState{}, false, fmt.Errorf("stat state: %w", err)
	}
	if stat.IsDir() {
		return model.PoolState{}, false, fmt.Errorf("state path is a directory")
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return model.PoolState{}, false, fmt.Errorf("read state: %w", err)
	}

	var st model.PoolState
	if err := json.Unmarshal(data, &st); err != nil {
		return model.PoolState{}, false, fmt.Errorf("parse state: %w", err)
	}
	return st, true, nil
}

func (s *FileStateStore) Save(ctx context.Context, st model.PoolState) error {
	if s == nil || s.Path == "" {
		return nil
	}
	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	st.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}
	return nil
}
