package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"dziennik-obecnosci/internal/attendance"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type MarkAttendanceRequest struct {
	StudentID string `json:"student_id" example:"S123"`
	QRData    string `json:"qr_data"`
}

type MarkAttendanceResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	SessionID uuid.UUID `json:"session_id"`
	MarkedAt  time.Time `json:"marked_at"`
}

// @Summary      Mark attendance
// @Description  Records attendance for a student against the session encoded in the scanned QR data. A student can be recorded at most once per session.
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        markAttendanceRequest  body      MarkAttendanceRequest  true  "Scan payload"
// @Success      200                    {object}  MarkAttendanceResponse
// @Failure      400                    {object}  StatusResponse
// @Failure      404                    {object}  StatusResponse
// @Failure      409                    {object}  StatusResponse
// @Failure      410                    {object}  StatusResponse
// @Router       /attendance [post]
func (s *Server) MarkAttendanceHandler(w http.ResponseWriter, r *http.Request) {
	var req MarkAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		scansTotal.WithLabelValues(scanResultInvalid).Inc()
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	studentID := strings.TrimSpace(req.StudentID)
	if studentID == "" || strings.TrimSpace(req.QRData) == "" {
		scansTotal.WithLabelValues(scanResultInvalid).Inc()
		writeError(w, http.StatusBadRequest, "student_id and qr_data are required")
		return
	}

	student, err := s.store.GetStudent(r.Context(), studentID)
	if err != nil {
		scansTotal.WithLabelValues(scanResultError).Inc()
		log.Printf("ERROR: Failed to look up student %s: %v", studentID, err)
		writeError(w, http.StatusInternalServerError, "Failed to verify student")
		return
	}
	if student == nil {
		scansTotal.WithLabelValues(scanResultNotFound).Inc()
		writeError(w, http.StatusNotFound, "Student not found")
		return
	}

	record, err := s.recorder.RecordAttendance(r.Context(), student.StudentID, student.Name, req.QRData)
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrSessionNotFound):
			scansTotal.WithLabelValues(scanResultNotFound).Inc()
			writeError(w, http.StatusNotFound, "Session not found")
		case errors.Is(err, attendance.ErrSessionExpired):
			scansTotal.WithLabelValues(scanResultExpired).Inc()
			writeError(w, http.StatusGone, err.Error())
		case errors.Is(err, attendance.ErrDuplicateAttendance):
			scansTotal.WithLabelValues(scanResultDuplicate).Inc()
			writeError(w, http.StatusConflict, "Already marked attendance")
		case errors.Is(err, attendance.ErrValidation):
			scansTotal.WithLabelValues(scanResultInvalid).Inc()
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			scansTotal.WithLabelValues(scanResultError).Inc()
			log.Printf("ERROR: Failed to record attendance for %s: %v", studentID, err)
			writeError(w, http.StatusInternalServerError, "Failed to record attendance")
		}
		return
	}

	scansTotal.WithLabelValues(scanResultAccepted).Inc()

	if err := s.store.LogEvent(r.Context(), &record.SessionID, "attendance_marked", record); err != nil {
		log.Printf("WARN: Failed to journal attendance_marked for %s: %v", record.SessionID, err)
	}

	writeJSON(w, http.StatusOK, MarkAttendanceResponse{
		Success:   true,
		Message:   "Attendance marked",
		SessionID: record.SessionID,
		MarkedAt:  record.MarkedAt,
	})
}

// @Summary      List attendance records
// @Description  Lists attendance records, optionally filtered by session and by date (YYYY-MM-DD).
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        session_id  query     string  false  "Session ID filter"
// @Param        date        query     string  false  "Date filter (YYYY-MM-DD)"
// @Success      200         {array}   models.AttendanceRecord
// @Failure      400         {object}  StatusResponse
// @Router       /attendance [get]
func (s *Server) ListAttendanceHandler(w http.ResponseWriter, r *http.Request) {
	params, err := parseListRecordsParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.recorder.ListAttendance(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: Failed to list attendance records: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list attendance")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// @Summary      Export session attendance as CSV
// @Tags         attendance
// @Produce      text/csv
// @Security     BearerAuth
// @Param        sessionId  path  string  true  "Session ID"
// @Success      200
// @Failure      404  {object}  StatusResponse
// @Router       /sessions/{sessionId}/attendance.csv [get]
func (s *Server) SessionAttendanceCSVHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	if _, err := s.sessions.GetSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, attendance.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to retrieve session")
		return
	}

	records, err := s.recorder.ListAttendance(r.Context(), attendance.ListRecordsParams{SessionID: &sessionID})
	if err != nil {
		log.Printf("ERROR: Failed to list attendance for CSV export: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to export attendance")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=attendance_%s.csv", sessionID))
	if err := attendance.WriteCSV(w, records); err != nil {
		log.Printf("ERROR: Failed to write attendance CSV: %v", err)
	}
}

func parseListRecordsParams(r *http.Request) (attendance.ListRecordsParams, error) {
	var params attendance.ListRecordsParams

	if raw := r.URL.Query().Get("session_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return params, fmt.Errorf("invalid session_id")
		}
		params.SessionID = &id
	}
	if raw := r.URL.Query().Get("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return params, fmt.Errorf("invalid date, expected YYYY-MM-DD")
		}
		params.Date = &day
	}

	return params, nil
}
