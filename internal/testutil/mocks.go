package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"trainlog/internal/models"
	"trainlog/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many calls were made at level into log t.
func (m *MockLogger) Count(level string, t providers.TypeEnum) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level && l.Type == t {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       bool
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() { m.Closed = true }

// MockMetrics implements providers.MetricsProviderInterface and keeps totals.
type MockMetrics struct {
	mu                sync.Mutex
	Requests          int
	LastEndpoint      string
	CacheHits         int
	CacheMisses       int
	PersistCalls      int
	Records           map[string]int
	DashboardPeriods  []string
	Skipped           map[string]int
	DashboardFailures int
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
	m.LastEndpoint = endpoint
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistCalls++
}
func (m *MockMetrics) SetRecordsTotal(kind string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Records == nil {
		m.Records = make(map[string]int)
	}
	m.Records[kind] = count
}
func (m *MockMetrics) ObserveDashboardDuration(period string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DashboardPeriods = append(m.DashboardPeriods, period)
}
func (m *MockMetrics) IncSkippedResponses(reason string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Skipped == nil {
		m.Skipped = make(map[string]int)
	}
	m.Skipped[reason] += count
}
func (m *MockMetrics) IncDashboardFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DashboardFailures++
}

var ErrMockStore = errors.New("mock store failure")

// MockRecordStore implements storage.RecordStore. Setting Err makes every
// call fail with it; PanicOnList makes reads panic.
type MockRecordStore struct {
	mu          sync.Mutex
	Questions   []models.Question
	Entries     []models.Entry
	Responses   []models.Response
	Deleted     []string
	Err         error
	PanicOnList bool
}

func (m *MockRecordStore) ListQuestions(_ context.Context) ([]models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PanicOnList {
		panic("mock store panic")
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Question(nil), m.Questions...), nil
}

func (m *MockRecordStore) SaveQuestion(_ context.Context, q *models.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Questions = append(m.Questions, *q)
	return nil
}

func (m *MockRecordStore) DeleteQuestion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Deleted = append(m.Deleted, id)
	return nil
}

func (m *MockRecordStore) ListEntries(_ context.Context, userID string) ([]models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.Entry
	for _, e := range m.Entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockRecordStore) ListResponses(_ context.Context, _ string) ([]models.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Response(nil), m.Responses...), nil
}

func (m *MockRecordStore) SaveEntry(_ context.Context, entry *models.Entry, responses []models.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Entries = append(m.Entries, *entry)
	for _, r := range responses {
		r.EntryID = entry.ID
		m.Responses = append(m.Responses, r)
	}
	return nil
}

// UpdateEntry replaces the entry with the same ID and all of its responses.
func (m *MockRecordStore) UpdateEntry(_ context.Context, entry *models.Entry, responses []models.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i := range m.Entries {
		if m.Entries[i].ID == entry.ID {
			m.Entries[i] = *entry
		}
	}
	m.dropResponses(entry.ID)
	for _, r := range responses {
		r.EntryID = entry.ID
		m.Responses = append(m.Responses, r)
	}
	return nil
}

func (m *MockRecordStore) DeleteEntry(_ context.Context, _ string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	kept := m.Entries[:0]
	for _, e := range m.Entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	m.Entries = kept
	m.dropResponses(id)
	m.Deleted = append(m.Deleted, id)
	return nil
}

func (m *MockRecordStore) dropResponses(entryID string) {
	kept := m.Responses[:0]
	for _, r := range m.Responses {
		if r.EntryID != entryID {
			kept = append(kept, r)
		}
	}
	m.Responses = kept
}

func (m *MockRecordStore) Close() error { return nil }
