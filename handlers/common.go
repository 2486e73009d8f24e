// Package handlers exposes the catalog and interaction services over HTTP.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"cinehub/models"
)

// userHeader carries the acting user's ID. Absent means the default profile.
const userHeader = "X-User-Id"

func requestUserID(r *http.Request) string {
	if id := r.Header.Get(userHeader); id != "" {
		return id
	}
	return models.DefaultUserID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func queryBool(r *http.Request, name string) bool {
	return r.URL.Query().Get(name) == "true"
}
