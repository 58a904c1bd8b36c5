package storage

import (
	"context"
	"fmt"
	"time"

	"trainlog/internal/models"
	"trainlog/internal/providers"
	"trainlog/internal/structures"

	"github.com/google/uuid"
)

const openTimeout = 10 * time.Second

// NewRecordStore opens the store selected by store.driver and seeds the
// default question set into an empty journal.
func NewRecordStore(conf *structures.Config, logger providers.Logger) (RecordStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	var store RecordStore
	switch conf.Store.Driver {
	case "", "memory":
		store = NewMemoryStore()
	default:
		sqlStore, err := OpenSQLStore(ctx, conf.Store.Driver, conf.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		store = sqlStore
	}
	logger.Infof(providers.TypeApp, "Record store initialized: %s", driverName(conf.Store.Driver))

	if err := SeedQuestions(ctx, store); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("unable to seed questions: %w", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Errorf(providers.TypeApp, "Record store close error: %s", err)
		}
	}
	return store, cleanup, nil
}

// SeedQuestions stores the default questions when the store has none.
func SeedQuestions(ctx context.Context, store RecordStore) error {
	existing, err := store.ListQuestions(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, q := range models.DefaultQuestions() {
		q.ID = uuid.NewString()
		if err := store.SaveQuestion(ctx, &q); err != nil {
			return err
		}
	}
	return nil
}

func driverName(driver string) string {
	if driver == "" {
		return "memory"
	}
	return driver
}
