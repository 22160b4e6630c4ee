package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dziennik-obecnosci/internal/attendance"
	"dziennik-obecnosci/internal/database"
	"dziennik-obecnosci/internal/models"

	"github.com/go-chi/chi/v5"
)

type CreateSubjectRequest struct {
	Name      string `json:"name" example:"Matematyka"`
	DayOfWeek string `json:"day_of_week" example:"Monday"`
	TimeSlot  string `json:"time_slot" example:"10:00-11:30"`
}

// @Summary      Create a subject
// @Tags         subjects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        createSubjectRequest  body      CreateSubjectRequest  true  "Subject"
// @Success      201                   {object}  models.Subject
// @Failure      400                   {object}  StatusResponse
// @Failure      409                   {object}  StatusResponse
// @Router       /subjects [post]
func (s *Server) CreateSubjectHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var req CreateSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Subject name is required")
		return
	}

	subject, err := s.store.CreateSubject(r.Context(), database.CreateSubjectParams{
		TeacherID: claims.UserID,
		Name:      strings.TrimSpace(req.Name),
		DayOfWeek: req.DayOfWeek,
		TimeSlot:  req.TimeSlot,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicateSubject) {
			writeError(w, http.StatusConflict, "Subject already exists")
			return
		}
		log.Printf("ERROR: Failed to create subject: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create subject")
		return
	}

	writeJSON(w, http.StatusCreated, subject)
}

// @Summary      List the caller's subjects
// @Tags         subjects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.Subject
// @Router       /subjects [get]
func (s *Server) ListSubjectsHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	subjects, err := s.store.ListSubjectsForTeacher(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: Failed to list subjects: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list subjects")
		return
	}

	writeJSON(w, http.StatusOK, subjects)
}

// @Summary      Delete a subject
// @Tags         subjects
// @Produce      json
// @Security     BearerAuth
// @Param        subjectId  path      int  true  "Subject ID"
// @Success      200        {object}  StatusResponse
// @Failure      404        {object}  StatusResponse
// @Router       /subjects/{subjectId} [delete]
func (s *Server) DeleteSubjectHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	subjectID, err := strconv.ParseInt(chi.URLParam(r, "subjectId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid subject ID")
		return
	}

	deleted, err := s.store.DeleteSubject(r.Context(), subjectID, claims.UserID)
	if err != nil {
		log.Printf("ERROR: Failed to delete subject %d: %v", subjectID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete subject")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Subject not found")
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Message: "Subject deleted"})
}

// @Summary      Subject attendance report
// @Description  Lists attendance records across all sessions of a subject, optionally filtered by date (YYYY-MM-DD).
// @Tags         subjects
// @Produce      json
// @Security     BearerAuth
// @Param        subjectId  path      int     true   "Subject ID"
// @Param        date       query     string  false  "Date filter (YYYY-MM-DD)"
// @Success      200        {array}   models.AttendanceRecord
// @Failure      404        {object}  StatusResponse
// @Router       /subjects/{subjectId}/attendance [get]
func (s *Server) SubjectAttendanceHandler(w http.ResponseWriter, r *http.Request) {
	subject, date, ok := s.resolveSubjectRequest(w, r)
	if !ok {
		return
	}

	records, err := s.store.ListRecordsForSubject(r.Context(), subject.Name, date)
	if err != nil {
		log.Printf("ERROR: Failed to list attendance for subject %s: %v", subject.Name, err)
		writeError(w, http.StatusInternalServerError, "Failed to list attendance")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// @Summary      Export subject attendance as CSV
// @Tags         subjects
// @Produce      text/csv
// @Security     BearerAuth
// @Param        subjectId  path   int     true   "Subject ID"
// @Param        date       query  string  false  "Date filter (YYYY-MM-DD)"
// @Success      200
// @Failure      404  {object}  StatusResponse
// @Router       /subjects/{subjectId}/attendance.csv [get]
func (s *Server) SubjectAttendanceCSVHandler(w http.ResponseWriter, r *http.Request) {
	subject, date, ok := s.resolveSubjectRequest(w, r)
	if !ok {
		return
	}

	records, err := s.store.ListRecordsForSubject(r.Context(), subject.Name, date)
	if err != nil {
		log.Printf("ERROR: Failed to list attendance for subject CSV export: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to export attendance")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_attendance.csv", strings.ReplaceAll(subject.Name, " ", "_")))
	if err := attendance.WriteCSV(w, records); err != nil {
		log.Printf("ERROR: Failed to write subject attendance CSV: %v", err)
	}
}

// @Summary      Leave applications overlapping a subject's roster
// @Tags         subjects
// @Produce      json
// @Security     BearerAuth
// @Param        subjectId  path      int  true  "Subject ID"
// @Success      200        {array}   models.LeaveApplication
// @Failure      404        {object}  StatusResponse
// @Router       /subjects/{subjectId}/leave [get]
func (s *Server) SubjectLeaveApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.resolveSubjectRequest(w, r); !ok {
		return
	}

	applications, err := s.store.ListLeaveApplications(r.Context())
	if err != nil {
		log.Printf("ERROR: Failed to list leave applications: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list leave applications")
		return
	}

	writeJSON(w, http.StatusOK, applications)
}

// resolveSubjectRequest parses the subject path param, enforces ownership and
// validates an optional date filter. On failure the response is already written.
func (s *Server) resolveSubjectRequest(w http.ResponseWriter, r *http.Request) (*models.Subject, *string, bool) {
	claims := GetUserFromContext(r.Context())

	subjectID, err := strconv.ParseInt(chi.URLParam(r, "subjectId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid subject ID")
		return nil, nil, false
	}

	subject, err := s.store.GetSubjectIfOwned(r.Context(), subjectID, claims.UserID)
	if err != nil {
		log.Printf("ERROR: Failed to look up subject %d: %v", subjectID, err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve subject")
		return nil, nil, false
	}
	if subject == nil {
		writeError(w, http.StatusNotFound, "Subject not found")
		return nil, nil, false
	}

	var date *string
	if raw := r.URL.Query().Get("date"); raw != "" {
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return nil, nil, false
		}
		date = &raw
	}

	return subject, date, true
}
