package api

import (
	"encoding/json"
	"net/http"

	"dziennik-obecnosci/internal/attendance"
	"dziennik-obecnosci/internal/config"
	"dziennik-obecnosci/internal/database"
	"dziennik-obecnosci/internal/storage"
	"dziennik-obecnosci/internal/websocket"
)

type Server struct {
	config   *config.Config
	store    *database.PostgresStore
	sessions *attendance.Manager
	recorder *attendance.Recorder
	storage  *storage.LocalStorage
	wsHub    *websocket.Hub
}

func NewServer(cfg *config.Config, store *database.PostgresStore, sessions *attendance.Manager, recorder *attendance.Recorder, storage *storage.LocalStorage, wsHub *websocket.Hub) *Server {
	return &Server{
		config:   cfg,
		store:    store,
		sessions: sessions,
		recorder: recorder,
		storage:  storage,
		wsHub:    wsHub,
	}
}

// StatusResponse is the envelope every mutating endpoint answers with.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, StatusResponse{Success: false, Message: message})
}

// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.GetPool().Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Message: "ok"})
}
