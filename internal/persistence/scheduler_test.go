package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"trainlog/internal/providers"
	"trainlog/internal/structures"
	"trainlog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(filePath string) *structures.Config {
	return &structures.Config{
		Persistence: structures.Persistence{
			FilePath:     filePath,
			SaveInterval: 1 * time.Second,
		},
	}
}

func TestScheduler_PersistAndRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.dat")
	metrics := &testutil.MockMetrics{}
	logger := &testutil.MockLogger{}

	s := NewScheduler(testConfig(path), logger, seededStore(t), &testutil.MockCompressor{}, metrics)
	require.NoError(t, s.Persist())

	assert.Equal(t, 1, metrics.PersistCalls)
	assert.Equal(t, map[string]int{"questions": 1, "entries": 1, "responses": 1}, metrics.Records)

	restored := newEmptyStore()
	fresh := NewScheduler(testConfig(path), logger, restored, &testutil.MockCompressor{}, metrics)
	require.NoError(t, fresh.Restore())
	assert.Equal(t, 1, restored.Len())
}

func TestScheduler_Restore_FileNotExist(t *testing.T) {
	s := NewScheduler(testConfig("/nonexistent/journal.dat"), &testutil.MockLogger{}, newEmptyStore(), &testutil.MockCompressor{}, &testutil.MockMetrics{})
	assert.NoError(t, s.Restore())
}

func TestScheduler_Restore_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.dat")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	s := NewScheduler(testConfig(path), &testutil.MockLogger{}, newEmptyStore(), &testutil.MockCompressor{}, &testutil.MockMetrics{})
	assert.Error(t, s.Restore())
}

func TestScheduler_Persist_WriteError(t *testing.T) {
	comp := &testutil.MockCompressor{
		CompressFn: func(b []byte) ([]byte, error) {
			return nil, errors.New("compress error")
		},
	}
	metrics := &testutil.MockMetrics{}
	logger := &testutil.MockLogger{}
	s := NewScheduler(testConfig(filepath.Join(t.TempDir(), "journal.dat")), logger, seededStore(t), comp, metrics)

	assert.Error(t, s.Persist())
	assert.Equal(t, 0, metrics.PersistCalls)
	assert.Equal(t, 1, logger.Count("error", providers.TypeApp))
}

func TestScheduler_NonSnapshotStoreIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.dat")
	metrics := &testutil.MockMetrics{}
	s := NewScheduler(testConfig(path), &testutil.MockLogger{}, &testutil.MockRecordStore{}, &testutil.MockCompressor{}, metrics)

	s.Init()
	assert.NoError(t, s.Persist())
	assert.NoError(t, s.Restore())
	s.Stop()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 0, metrics.PersistCalls)
}

func TestScheduler_StopNilCron(t *testing.T) {
	s := NewScheduler(testConfig("/tmp/journal.dat"), &testutil.MockLogger{}, newEmptyStore(), &testutil.MockCompressor{}, &testutil.MockMetrics{})
	s.Stop()
}

func TestScheduler_InitAndStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifecycle.dat")

	s := NewScheduler(testConfig(path), &testutil.MockLogger{}, newEmptyStore(), &testutil.MockCompressor{}, &testutil.MockMetrics{})
	s.Init()
	time.Sleep(50 * time.Millisecond)
	s.Stop()
}
