package persistence

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"trainlog/internal/models"
	"trainlog/internal/persistence/interfaces"
	"trainlog/internal/providers"
	"trainlog/internal/storage"
	"trainlog/internal/structures"
)

// Scheduler periodically snapshots a file-backed store. SQL stores persist
// on write, so for them every operation is a no-op.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	fileManager *FileManager
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	if s.fileManager == nil {
		return
	}
	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		if err := s.persist(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting journal: %s", err)
			return
		}
		s.logger.Debugf(providers.TypeApp, "Persisted journal to %s", s.config.Persistence.FilePath)
	})
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	if s.fileManager == nil {
		return nil
	}
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	return s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
}

func (s *Scheduler) Persist() error {
	if s.fileManager == nil {
		return nil
	}
	s.logger.Infof(providers.TypeApp, "Persisting journal to file...")
	err := s.persist()
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting journal: %s", err)
	}
	return err
}

func (s *Scheduler) persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	snapshot, err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	if err != nil {
		return err
	}
	s.metrics.ObservePersistenceDuration(time.Since(start))
	s.recordGauges(snapshot)
	return nil
}

func (s *Scheduler) recordGauges(snapshot *models.JournalSnapshot) {
	s.metrics.SetRecordsTotal("questions", len(snapshot.Questions))
	s.metrics.SetRecordsTotal("entries", len(snapshot.Entries))
	s.metrics.SetRecordsTotal("responses", len(snapshot.Responses))
}

func NewScheduler(config *structures.Config, logger providers.Logger, store storage.RecordStore, compressor interfaces.CompressorInterface, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	s := &Scheduler{
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
	if snapshotter, ok := store.(storage.Snapshotter); ok {
		s.fileManager = NewFileManager(compressor, snapshotter, logger)
	} else {
		logger.Infof(providers.TypeApp, "Store persists on write, snapshot scheduler disabled")
	}
	return s
}
