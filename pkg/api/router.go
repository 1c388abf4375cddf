package api

import (
	"encoding/json"
	"net/http"
	"time"

	"traintracker/pkg/sensor"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// States is the read side of a sensor registry.
type States interface {
	States() []sensor.State
	State(id string) (sensor.State, bool)
}

// NewRouter serves the sensor states as JSON:
//
//	GET /health
//	GET /api/states
//	GET /api/states/{id}
func NewRouter(states States) http.Handler {
	r := mux.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/states", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, states.States())
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/states/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		state, ok := states.State(id)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown sensor "+id)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed")
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Origin"},
		MaxAge:         86400,
	})
	return c.Handler(r)
}

// NewServer wraps the router with the timeouts used for the state endpoint.
func NewServer(addr string, states States) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(states),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg, "code": status})
}
