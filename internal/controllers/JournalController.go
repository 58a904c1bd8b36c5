package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"trainlog/internal/models"
	"trainlog/internal/providers"
	"trainlog/internal/services"
	"trainlog/internal/storage"
	"trainlog/internal/structures"
)

const dateLayout = "2006-01-02"

type JournalController struct {
	logger   providers.Logger
	journal  services.JournalServiceInterface
	location *time.Location
}

type entryRequest struct {
	Date        string            `json:"date"`
	SessionType string            `json:"session_type"`
	Responses   []services.Answer `json:"responses"`
}

type activityRequest struct {
	ActivityID      string `json:"activity_id"`
	Timestamp       string `json:"timestamp"`
	DurationMinutes int    `json:"duration_minutes"`
	Calories        int    `json:"calories"`
	AvgHeartRate    int    `json:"avg_heart_rate"`
	MaxHeartRate    int    `json:"max_heart_rate"`
}

func NewJournalController(conf *structures.Config, logger providers.Logger, journal services.JournalServiceInterface) *JournalController {
	return &JournalController{
		logger:   logger,
		journal:  journal,
		location: providers.Location(conf),
	}
}

func (jc *JournalController) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := jc.journal.ListQuestions(r.Context())
	if err != nil {
		jc.logger.Errorf(providers.TypeGet, "list questions: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, jc.logger, http.StatusOK, questions)
}

func (jc *JournalController) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var payload models.Question
	if err := decodeBody(w, r, &payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	q, err := jc.journal.CreateQuestion(r.Context(), payload)
	if err != nil {
		jc.writeServiceError(w, err)
		return
	}
	writeJSON(w, jc.logger, http.StatusCreated, q)
}

func (jc *JournalController) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := jc.journal.DeleteQuestion(r.Context(), id); err != nil {
		jc.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (jc *JournalController) LogEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	input, ok := jc.readEntry(w, r)
	if !ok {
		return
	}
	entry, err := jc.journal.LogEntry(r.Context(), user, input)
	if err != nil {
		jc.writeServiceError(w, err)
		return
	}
	writeJSON(w, jc.logger, http.StatusCreated, entry)
}

func (jc *JournalController) ListEntries(w http.ResponseWriter, r *http.Request) {
	jc.listEntries(w, r, jc.journal.ListEntries)
}

func (jc *JournalController) ListPending(w http.ResponseWriter, r *http.Request) {
	jc.listEntries(w, r, jc.journal.ListPending)
}

func (jc *JournalController) listEntries(w http.ResponseWriter, r *http.Request, list func(context.Context, string) ([]services.EntryDetail, error)) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	entries, err := list(r.Context(), user)
	if err != nil {
		jc.logger.Errorf(providers.TypeGet, "list entries for %s: %s", user, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, jc.logger, http.StatusOK, entries)
}

func (jc *JournalController) GetEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	entry, err := jc.journal.GetEntry(r.Context(), user, r.PathValue("id"))
	if err != nil {
		jc.writeServiceError(w, err)
		return
	}
	writeJSON(w, jc.logger, http.StatusOK, entry)
}

func (jc *JournalController) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	jc.rewriteEntry(w, r, jc.journal.UpdateEntry)
}

// CompleteEntry fills in the journal of a pending entry.
func (jc *JournalController) CompleteEntry(w http.ResponseWriter, r *http.Request) {
	jc.rewriteEntry(w, r, jc.journal.CompleteEntry)
}

func (jc *JournalController) rewriteEntry(w http.ResponseWriter, r *http.Request, write func(context.Context, string, string, services.NewEntry) (*services.EntryDetail, error)) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	input, ok := jc.readEntry(w, r)
	if !ok {
		return
	}
	entry, err := write(r.Context(), user, r.PathValue("id"), input)
	if err != nil {
		jc.writeServiceError(w, err)
		return
	}
	writeJSON(w, jc.logger, http.StatusOK, entry)
}

func (jc *JournalController) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := jc.journal.DeleteEntry(r.Context(), user, r.PathValue("id")); err != nil {
		jc.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordActivity answers 201 for a new pending entry and 200 when the
// activity was already recorded.
func (jc *JournalController) RecordActivity(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var payload activityRequest
	if err := decodeBody(w, r, &payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	var ts time.Time
	if strings.TrimSpace(payload.Timestamp) != "" {
		var err error
		if ts, err = time.Parse(time.RFC3339, strings.TrimSpace(payload.Timestamp)); err != nil {
			http.Error(w, "Bad Request: timestamp must be RFC 3339", http.StatusBadRequest)
			return
		}
	}

	entry, created, err := jc.journal.RecordActivity(r.Context(), user, services.Activity{
		ActivityID:      payload.ActivityID,
		Timestamp:       ts,
		DurationMinutes: payload.DurationMinutes,
		Calories:        payload.Calories,
		AvgHeartRate:    payload.AvgHeartRate,
		MaxHeartRate:    payload.MaxHeartRate,
	})
	if err != nil {
		jc.writeServiceError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, jc.logger, status, entry)
}

func (jc *JournalController) readEntry(w http.ResponseWriter, r *http.Request) (services.NewEntry, bool) {
	var payload entryRequest
	if err := decodeBody(w, r, &payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return services.NewEntry{}, false
	}
	date, err := jc.parseDate(payload.Date)
	if err != nil {
		http.Error(w, "Bad Request: date must be YYYY-MM-DD or RFC 3339", http.StatusBadRequest)
		return services.NewEntry{}, false
	}
	return services.NewEntry{
		Date:        date,
		SessionType: payload.SessionType,
		Answers:     payload.Responses,
	}, true
}

// parseDate accepts a calendar day in the analytics timezone or a full
// timestamp. An empty value means now.
func (jc *JournalController) parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(dateLayout, value, jc.location); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func (jc *JournalController) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidQuestion), errors.Is(err, services.ErrInvalidEntry):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	default:
		jc.logger.Errorf(providers.TypePost, "journal write failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
