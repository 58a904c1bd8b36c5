package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"trainlog/internal/analytics"
	"trainlog/internal/models"
	"trainlog/internal/providers"
	"trainlog/internal/storage"
)

var (
	ErrInvalidQuestion = errors.New("invalid question")
	ErrInvalidEntry    = errors.New("invalid entry")
)

// Answer is one submitted response of a new entry.
type Answer struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// NewEntry is a session as submitted by a client.
type NewEntry struct {
	Date        time.Time
	SessionType string
	Answers     []Answer
}

// Activity is a workout reported by a watch. It becomes a pending entry
// that the athlete completes later.
type Activity struct {
	ActivityID      string
	Timestamp       time.Time
	DurationMinutes int
	Calories        int
	AvgHeartRate    int
	MaxHeartRate    int
}

// EntryDetail is an entry with its responses.
type EntryDetail struct {
	models.Entry
	Responses []models.Response `json:"responses"`
}

type JournalServiceInterface interface {
	CreateQuestion(ctx context.Context, q models.Question) (*models.Question, error)
	ListQuestions(ctx context.Context) ([]models.Question, error)
	DeleteQuestion(ctx context.Context, id string) error
	LogEntry(ctx context.Context, userID string, input NewEntry) (*models.Entry, error)
	ListEntries(ctx context.Context, userID string) ([]EntryDetail, error)
	ListPending(ctx context.Context, userID string) ([]EntryDetail, error)
	GetEntry(ctx context.Context, userID, id string) (*EntryDetail, error)
	UpdateEntry(ctx context.Context, userID, id string, input NewEntry) (*EntryDetail, error)
	CompleteEntry(ctx context.Context, userID, id string, input NewEntry) (*EntryDetail, error)
	DeleteEntry(ctx context.Context, userID, id string) error
	RecordActivity(ctx context.Context, userID string, activity Activity) (*models.Entry, bool, error)
	Revision() uint64
}

// JournalService is the write side of the journal. Every successful write
// bumps Revision so cached dashboards go stale.
type JournalService struct {
	store    storage.RecordStore
	logger   providers.Logger
	revision atomic.Uint64
	now      func() time.Time
}

func NewJournalService(store storage.RecordStore, logger providers.Logger) JournalServiceInterface {
	return &JournalService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (s *JournalService) Revision() uint64 {
	return s.revision.Load()
}

// CreateQuestion stores a new active question. A missing role is derived from
// the label; a missing order index places the question last.
func (s *JournalService) CreateQuestion(ctx context.Context, q models.Question) (*models.Question, error) {
	q.Label = strings.TrimSpace(q.Label)
	if q.Label == "" {
		return nil, fmt.Errorf("%w: question_text is required", ErrInvalidQuestion)
	}
	if !q.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %s", ErrInvalidQuestion, q.Role)
	}
	if q.Role == models.RoleNone {
		q.Role = analytics.RoleForLabel(q.Label)
	}
	if q.Kind == "" {
		q.Kind = "text"
	}
	if q.OrderIndex <= 0 {
		existing, err := s.store.ListQuestions(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range existing {
			q.OrderIndex = max(q.OrderIndex, e.OrderIndex)
		}
		q.OrderIndex++
	}
	q.ID = uuid.NewString()
	q.Active = true

	if err := s.store.SaveQuestion(ctx, &q); err != nil {
		return nil, err
	}
	s.revision.Inc()
	s.logger.Infof(providers.TypePost, "question %s created with role %q", q.ID, q.Role)
	return &q, nil
}

// ListQuestions returns the active questions in display order.
func (s *JournalService) ListQuestions(ctx context.Context) ([]models.Question, error) {
	all, err := s.store.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]models.Question, 0, len(all))
	for _, q := range all {
		if q.Active {
			active = append(active, q)
		}
	}
	return active, nil
}

func (s *JournalService) DeleteQuestion(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidQuestion)
	}
	if err := s.store.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	s.revision.Inc()
	s.logger.Infof(providers.TypePost, "question %s deleted", id)
	return nil
}

// LogEntry stores a session with its answers. Blank answers are dropped.
func (s *JournalService) LogEntry(ctx context.Context, userID string, input NewEntry) (*models.Entry, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", ErrInvalidEntry)
	}
	now := s.now()
	entry := &models.Entry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        input.Date,
		SessionType: strings.TrimSpace(input.SessionType),
		CreatedAt:   now,
	}
	if entry.Date.IsZero() {
		entry.Date = now
	}
	if entry.SessionType == "" {
		entry.SessionType = models.DefaultSessionKind
	}

	responses := newResponses(entry.ID, input.Answers)
	if err := s.store.SaveEntry(ctx, entry, responses); err != nil {
		return nil, err
	}
	s.revision.Inc()
	s.logger.Debugf(providers.TypePost, "entry %s logged for user %s with %d responses", entry.ID, userID, len(responses))
	return entry, nil
}

// newResponses drops blank answers and answers without a question.
func newResponses(entryID string, answers []Answer) []models.Response {
	responses := make([]models.Response, 0, len(answers))
	for _, a := range answers {
		if a.QuestionID == "" || strings.TrimSpace(a.Answer) == "" {
			continue
		}
		responses = append(responses, models.Response{
			ID:         uuid.NewString(),
			EntryID:    entryID,
			QuestionID: a.QuestionID,
			Answer:     a.Answer,
		})
	}
	return responses
}

// ListEntries returns the user's entries with their responses, newest first.
func (s *JournalService) ListEntries(ctx context.Context, userID string) ([]EntryDetail, error) {
	return s.details(ctx, userID, func(models.Entry) bool { return true })
}

// ListPending returns the entries still waiting for a journal, newest first.
func (s *JournalService) ListPending(ctx context.Context, userID string) ([]EntryDetail, error) {
	return s.details(ctx, userID, func(e models.Entry) bool { return e.Pending })
}

func (s *JournalService) GetEntry(ctx context.Context, userID, id string) (*EntryDetail, error) {
	all, err := s.details(ctx, userID, func(e models.Entry) bool { return e.ID == id })
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, storage.ErrNotFound
	}
	return &all[0], nil
}

func (s *JournalService) details(ctx context.Context, userID string, keep func(models.Entry) bool) ([]EntryDetail, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", ErrInvalidEntry)
	}
	entries, err := s.store.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	responses, err := s.store.ListResponses(ctx, userID)
	if err != nil {
		return nil, err
	}
	byEntry := make(map[string][]models.Response, len(entries))
	for _, r := range responses {
		byEntry[r.EntryID] = append(byEntry[r.EntryID], r)
	}

	result := make([]EntryDetail, 0, len(entries))
	for _, e := range entries {
		if !keep(e) {
			continue
		}
		rs := byEntry[e.ID]
		if rs == nil {
			rs = make([]models.Response, 0)
		}
		result = append(result, EntryDetail{Entry: e, Responses: rs})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

// UpdateEntry replaces the session type and answers of an entry. A zero date
// keeps the stored one. The pending flag is left as it is.
func (s *JournalService) UpdateEntry(ctx context.Context, userID, id string, input NewEntry) (*EntryDetail, error) {
	current, err := s.GetEntry(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	entry := current.Entry
	if !input.Date.IsZero() {
		entry.Date = input.Date
	}
	return s.rewrite(ctx, entry, input, "updated")
}

// CompleteEntry turns a pending entry into a regular one. The date and the
// activity figures of the pending entry are kept.
func (s *JournalService) CompleteEntry(ctx context.Context, userID, id string, input NewEntry) (*EntryDetail, error) {
	current, err := s.GetEntry(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !current.Pending {
		return nil, storage.ErrNotFound
	}
	entry := current.Entry
	entry.Pending = false
	return s.rewrite(ctx, entry, input, "completed")
}

func (s *JournalService) rewrite(ctx context.Context, entry models.Entry, input NewEntry, action string) (*EntryDetail, error) {
	entry.SessionType = strings.TrimSpace(input.SessionType)
	if entry.SessionType == "" {
		entry.SessionType = models.DefaultSessionKind
	}
	responses := newResponses(entry.ID, input.Answers)
	if err := s.store.UpdateEntry(ctx, &entry, responses); err != nil {
		return nil, err
	}
	s.revision.Inc()
	s.logger.Debugf(providers.TypePost, "entry %s %s for user %s with %d responses", entry.ID, action, entry.UserID, len(responses))
	return &EntryDetail{Entry: entry, Responses: responses}, nil
}

func (s *JournalService) DeleteEntry(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return fmt.Errorf("%w: user and id are required", ErrInvalidEntry)
	}
	if err := s.store.DeleteEntry(ctx, userID, id); err != nil {
		return err
	}
	s.revision.Inc()
	s.logger.Infof(providers.TypePost, "entry %s deleted for user %s", id, userID)
	return nil
}

// RecordActivity stores a watch activity as a pending entry. A repeated
// ActivityID returns the entry created the first time and created=false.
func (s *JournalService) RecordActivity(ctx context.Context, userID string, activity Activity) (*models.Entry, bool, error) {
	if userID == "" {
		return nil, false, fmt.Errorf("%w: user is required", ErrInvalidEntry)
	}
	if activity.DurationMinutes < 0 || activity.Calories < 0 || activity.AvgHeartRate < 0 || activity.MaxHeartRate < 0 {
		return nil, false, fmt.Errorf("%w: activity figures must not be negative", ErrInvalidEntry)
	}

	activity.ActivityID = strings.TrimSpace(activity.ActivityID)
	if activity.ActivityID != "" {
		entries, err := s.store.ListEntries(ctx, userID)
		if err != nil {
			return nil, false, err
		}
		for i := range entries {
			if entries[i].ActivityID == activity.ActivityID {
				return &entries[i], false, nil
			}
		}
	}

	now := s.now()
	entry := &models.Entry{
		ID:              uuid.NewString(),
		UserID:          userID,
		Date:            activity.Timestamp,
		SessionType:     models.DefaultSessionKind,
		CreatedAt:       now,
		Pending:         true,
		ActivityID:      activity.ActivityID,
		DurationMinutes: activity.DurationMinutes,
		Calories:        activity.Calories,
		AvgHeartRate:    activity.AvgHeartRate,
		MaxHeartRate:    activity.MaxHeartRate,
	}
	if entry.Date.IsZero() {
		entry.Date = now
	}
	if err := s.store.SaveEntry(ctx, entry, nil); err != nil {
		return nil, false, err
	}
	s.revision.Inc()
	s.logger.Infof(providers.TypePost, "pending entry %s created from activity %q for user %s", entry.ID, activity.ActivityID, userID)
	return entry, true, nil
}
