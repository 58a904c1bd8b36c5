package persistence

import (
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"trainlog/internal/models"
	"trainlog/internal/persistence/interfaces"
	"trainlog/internal/providers"
	"trainlog/internal/storage"
)

var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// FileManager writes and reads whole-store snapshots as zstd-compressed JSON.
type FileManager struct {
	store      storage.Snapshotter
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, store storage.Snapshotter, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		store:      store,
		logger:     logger,
	}
}

// SaveToFile writes through a temp file and renames it into place.
func (f *FileManager) SaveToFile(fileName string) (*models.JournalSnapshot, error) {
	snapshot := f.store.Snapshot()

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return nil, err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return nil, err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return nil, err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return nil, err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return nil, err
	}

	if err = os.Rename(tmpFile, fileName); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile restores the store from fileName. A missing file leaves the
// store untouched and is not an error.
func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			f.logger.Infof(providers.TypeApp, "No snapshot at %s, starting empty", fileName)
			return nil
		}
		return err
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var snapshot models.JournalSnapshot
	if err := json.Unmarshal(decompressed, &snapshot); err != nil {
		return err
	}
	if snapshot.Version != models.SnapshotVersion {
		return fmt.Errorf("%w: %d", ErrSnapshotVersion, snapshot.Version)
	}

	f.store.Restore(&snapshot)
	f.logger.Infof(providers.TypeApp, "Restored %d questions, %d entries, %d responses from %s",
		len(snapshot.Questions), len(snapshot.Entries), len(snapshot.Responses), fileName)
	return nil
}
