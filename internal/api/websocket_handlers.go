package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"dziennik-obecnosci/internal/attendance"
	"dziennik-obecnosci/internal/auth"
	"dziennik-obecnosci/internal/countdown"
	"dziennik-obecnosci/internal/websocket"

	"github.com/google/uuid"
)

type countdownMessage struct {
	Type    string `json:"type"`
	Minutes int    `json:"minutes"`
	Seconds int    `json:"seconds"`
	Expired bool   `json:"expired"`
}

// ServeWsHandler upgrades the connection for a session presenter. The client
// receives countdown ticks for the session plus every event published to the
// hub for that session (attendance_marked, session_created). Browsers cannot
// set an Authorization header on the WebSocket handshake, so the JWT travels
// in the query string.
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		writeError(w, http.StatusUnauthorized, "Missing token")
		return
	}
	if _, err := auth.VerifyJWT(tokenString, s.config.JWT.Secret); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	sessionID, err := uuid.Parse(r.URL.Query().Get("session_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session_id")
		return
	}

	session, err := s.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, attendance.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to retrieve session")
		return
	}

	conn, err := websocket.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR: WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(s.wsHub, conn, sessionID)
	s.wsHub.Register <- client

	// The countdown lives only as long as the connection does.
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		client.ReadPump()
		cancel()
	}()
	go client.WritePump()

	go func() {
		for tick := range countdown.NewWatcher().Watch(ctx, session.ExpiresAt) {
			msg, err := json.Marshal(countdownMessage{
				Type:    "countdown",
				Minutes: tick.Minutes,
				Seconds: tick.Seconds,
				Expired: tick.Expired,
			})
			if err != nil {
				continue
			}
			if !client.Send(msg) {
				return
			}
		}
	}()
}
