package storage

import (
	"context"
	"sort"
	"sync"

	"trainlog/internal/models"
)

type MemoryStore struct {
	mu        sync.RWMutex
	questions map[string]*models.Question
	entries   map[string]*models.Entry
	responses map[string][]*models.Response // entry ID → responses
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		questions: make(map[string]*models.Question),
		entries:   make(map[string]*models.Entry),
		responses: make(map[string][]*models.Response),
	}
}

func (s *MemoryStore) ListQuestions(_ context.Context) ([]models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Question, 0, len(s.questions))
	for _, q := range s.questions {
		result = append(result, *q)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].OrderIndex != result[j].OrderIndex {
			return result[i].OrderIndex < result[j].OrderIndex
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *MemoryStore) SaveQuestion(_ context.Context, q *models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	qc := *q
	s.questions[q.ID] = &qc
	return nil
}

// DeleteQuestion removes the question only; its responses stay and become
// detached.
func (s *MemoryStore) DeleteQuestion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return ErrNotFound
	}
	delete(s.questions, id)
	return nil
}

func (s *MemoryStore) ListEntries(_ context.Context, userID string) ([]models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Entry, 0)
	for _, e := range s.entries {
		if e.UserID == userID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (s *MemoryStore) ListResponses(_ context.Context, userID string) ([]models.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Response, 0)
	for entryID, rs := range s.responses {
		e, ok := s.entries[entryID]
		if !ok || e.UserID != userID {
			continue
		}
		for _, r := range rs {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (s *MemoryStore) SaveEntry(_ context.Context, entry *models.Entry, responses []models.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putEntry(entry, responses)
	return nil
}

// putEntry expects s.mu to be held for writing.
func (s *MemoryStore) putEntry(entry *models.Entry, responses []models.Response) {
	ec := *entry
	s.entries[ec.ID] = &ec
	rs := make([]*models.Response, 0, len(responses))
	for i := range responses {
		r := responses[i]
		r.EntryID = ec.ID
		rs = append(rs, &r)
	}
	s.responses[ec.ID] = rs
}

func (s *MemoryStore) UpdateEntry(_ context.Context, entry *models.Entry, responses []models.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.entries[entry.ID]
	if !ok || existing.UserID != entry.UserID {
		return ErrNotFound
	}
	s.putEntry(entry, responses)
	return nil
}

func (s *MemoryStore) DeleteEntry(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.entries[id]
	if !ok || existing.UserID != userID {
		return ErrNotFound
	}
	delete(s.entries, id)
	delete(s.responses, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) Snapshot() *models.JournalSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := models.NewJournalSnapshot()
	for _, q := range s.questions {
		qc := *q
		snap.Questions = append(snap.Questions, &qc)
	}
	for id, e := range s.entries {
		ec := *e
		snap.Entries = append(snap.Entries, &ec)
		for _, r := range s.responses[id] {
			rc := *r
			snap.Responses = append(snap.Responses, &rc)
		}
	}
	return snap
}

func (s *MemoryStore) Restore(snapshot *models.JournalSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.questions = make(map[string]*models.Question, len(snapshot.Questions))
	s.entries = make(map[string]*models.Entry, len(snapshot.Entries))
	s.responses = make(map[string][]*models.Response, len(snapshot.Entries))
	for _, q := range snapshot.Questions {
		if q == nil {
			continue
		}
		s.questions[q.ID] = q
	}
	for _, e := range snapshot.Entries {
		if e == nil {
			continue
		}
		s.entries[e.ID] = e
	}
	for _, r := range snapshot.Responses {
		if r == nil {
			continue
		}
		s.responses[r.EntryID] = append(s.responses[r.EntryID], r)
	}
}
