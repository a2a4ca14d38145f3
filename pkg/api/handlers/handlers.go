package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cbodonnell/deacoudre/pkg/log"
	"github.com/cbodonnell/deacoudre/pkg/repositories"
	"github.com/cbodonnell/deacoudre/pkg/state"
	"github.com/gorilla/mux"
)

// MaxListLimit caps the number of results a single request may ask for
const MaxListLimit = 100

func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	}
}

func HandleGetStatus(stateManager state.StateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := stateManager.Get(r.Context())
		if err != nil {
			log.Error("failed to get status: %v", err)
			http.Error(w, "Failed to get status", http.StatusInternalServerError)
			return
		}

		writeJSON(w, status)
	}
}

func HandleListResults(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > MaxListLimit {
				http.Error(w, "Limit must be a number between 1 and 100", http.StatusBadRequest)
				return
			}
			limit = n
		}

		results, err := repository.ListMatchResults(r.Context(), limit)
		if err != nil {
			log.Error("failed to list match results: %v", err)
			http.Error(w, "Failed to list results", http.StatusInternalServerError)
			return
		}

		writeJSON(w, results)
	}
}

func HandleGetResult(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["resultID"], 10, 64)
		if err != nil {
			http.Error(w, "Invalid result ID", http.StatusBadRequest)
			return
		}

		result, err := repository.GetMatchResult(r.Context(), id)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Result not found", http.StatusNotFound)
				return
			}
			log.Error("failed to get match result %d: %v", id, err)
			http.Error(w, "Failed to get result", http.StatusInternalServerError)
			return
		}

		writeJSON(w, result)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
