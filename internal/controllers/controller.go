package controllers

import (
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"trainlog/internal/providers"
)

const maxRequestBodySize = 1 << 20 // 1 MB

const userHeader = "X-User-ID"

// userFromRequest reads the journal owner from the X-User-ID header, falling
// back to the user query parameter.
func userFromRequest(r *http.Request) string {
	if u := strings.TrimSpace(r.Header.Get(userHeader)); u != "" {
		return u
	}
	return strings.TrimSpace(r.URL.Query().Get("user"))
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	user := userFromRequest(r)
	if user == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return user, true
}

func writeJSON(w http.ResponseWriter, logger providers.Logger, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		logger.Errorf(providers.TypeApp, "encode response: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, gson)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	return json.NewDecoder(r.Body).Decode(dst)
}
