package storage

import (
	"context"
	"errors"

	"trainlog/internal/models"
)

var ErrNotFound = errors.New("record not found")

// RecordStore supplies and accepts journal records. Reads return copies the
// caller may keep.
type RecordStore interface {
	ListQuestions(ctx context.Context) ([]models.Question, error)
	SaveQuestion(ctx context.Context, q *models.Question) error
	DeleteQuestion(ctx context.Context, id string) error
	ListEntries(ctx context.Context, userID string) ([]models.Entry, error)
	ListResponses(ctx context.Context, userID string) ([]models.Response, error)
	SaveEntry(ctx context.Context, entry *models.Entry, responses []models.Response) error
	// UpdateEntry overwrites an existing entry of entry.UserID and replaces
	// all of its responses. ErrNotFound when the user has no such entry.
	UpdateEntry(ctx context.Context, entry *models.Entry, responses []models.Response) error
	// DeleteEntry removes an entry of userID together with its responses.
	DeleteEntry(ctx context.Context, userID, id string) error
	Close() error
}

// Snapshotter is implemented by stores that are persisted as a whole file.
type Snapshotter interface {
	Snapshot() *models.JournalSnapshot
	Restore(snapshot *models.JournalSnapshot)
}
