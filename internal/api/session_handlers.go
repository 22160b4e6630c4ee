package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"dziennik-obecnosci/internal/attendance"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

type CreateSessionRequest struct {
	Subject         string `json:"subject" example:"Matematyka"`
	LectureTime     string `json:"lecture_time" example:"10:00"`
	Location        string `json:"location" example:"Sala 5"`
	DurationMinutes int    `json:"duration_minutes" example:"5"`
}

type CreateSessionResponse struct {
	Success   bool      `json:"success"`
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	QRCode    string    `json:"qr_code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// @Summary      Create an attendance session
// @Description  Creates a time-bounded attendance session and returns its token rendered as a QR code (base64 PNG data URI).
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        createSessionRequest  body      CreateSessionRequest  true  "Session parameters"
// @Success      201                   {object}  CreateSessionResponse
// @Failure      400                   {object}  StatusResponse
// @Failure      500                   {object}  StatusResponse
// @Router       /sessions [post]
func (s *Server) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.sessions.CreateSession(r.Context(), attendance.CreateSessionParams{
		Subject:         req.Subject,
		LectureTime:     req.LectureTime,
		Location:        req.Location,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("ERROR: Failed to create attendance session: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	png, err := qrcode.Encode(session.Token, qrcode.Medium, 256)
	if err != nil {
		log.Printf("ERROR: Failed to render QR code for session %s: %v", session.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to render QR code")
		return
	}

	sessionsCreatedTotal.Inc()

	if err := s.store.LogEvent(r.Context(), &session.ID, "session_created", session); err != nil {
		log.Printf("WARN: Failed to journal session_created for %s: %v", session.ID, err)
	}

	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		Success:   true,
		SessionID: session.ID,
		Token:     session.Token,
		QRCode:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		ExpiresAt: session.ExpiresAt,
	})
}

// @Summary      Get a session
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        sessionId  path      string  true  "Session ID"
// @Success      200        {object}  models.AttendanceSession
// @Failure      404        {object}  StatusResponse
// @Router       /sessions/{sessionId} [get]
func (s *Server) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session ID")
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

	writeJSON(w, http.StatusOK, session)
}
