package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ammcore/internal/model"
)

func TestFileStateStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := &FileStateStore{Path: filepath.Join(t.TempDir(), "nested", "pool.json")}

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	st := model.PoolState{
		Name:        "x-y",
		ReserveX:    "100000000",
		ReserveY:    "200000000",
		TotalShares: "78125000000083",
		Shares:      map[string]string{"0x00000000000000000000000000000000000000A1": "78125000000083"},
		Sequence:    3,
	}
	require.NoError(t, store.Save(ctx, st))

	_, err = os.Stat(store.Path + ".tmp")
	require.True(t, os.IsNotExist(err))

	got, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, got.UpdatedAt)
	got.UpdatedAt = ""
	require.Equal(t, st, got)
}

func TestFileStateStoreRejectsDirectory(t *testing.T) {
	store := &FileStateStore{Path: t.TempDir()}
	_, _, err := store.Load(context.Background())
	require.Error(t, err)

	var nilStore *FileStateStore
	_, ok, err := nilStore.Load(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestJsonlStorageAppends(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	sink := NewJsonlStorage(path)

	require.NoError(t, sink.PutLogBatch(ctx, []model.LogRecord{{TxHash: "0x01", LogIndex: 0}, {TxHash: "0x01", LogIndex: 1}}))
	require.NoError(t, sink.PutLogBatch(ctx, nil))
	require.NoError(t, sink.PutLogBatch(ctx, []model.LogRecord{{TxHash: "0x02", Topics: []string{"0xaa"}}}))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var records []model.LogRecord
	require.NoError(t, ScanLines(file, func(line []byte) error {
		var rec model.LogRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	}))
	require.Len(t, records, 3)
	require.Equal(t, uint64(1), records[1].LogIndex)
	require.Equal(t, []string{"0xaa"}, records[2].Topics)
}

func TestScanLinesStopsOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines")
	require.NoError(t, os.WriteFile(path, []byte("a\n\n  \nb\nc\n"), 0o644))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	stop := errors.New("stop")
	var seen []string
	err = ScanLines(file, func(line []byte) error {
		seen = append(seen, string(line))
		if string(line) == "b" {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, []string{"a", "b"}, seen)
}
