package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"dziennik-obecnosci/internal/database"
	"dziennik-obecnosci/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
)

const maxAttachmentSize = 10 << 20 // 10 MiB

// @Summary      Submit a leave application
// @Description  Submits a leave application for the authenticated student. Accepts multipart form data with an optional attachment (e.g. a medical certificate).
// @Tags         leave
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        leaveType   formData  string  true   "Leave type (medical, personal, other)"
// @Param        startDate   formData  string  true   "Start date (YYYY-MM-DD)"
// @Param        endDate     formData  string  true   "End date (YYYY-MM-DD)"
// @Param        reason      formData  string  true   "Reason"
// @Param        attachment  formData  file    false  "Supporting document"
// @Success      201         {object}  models.LeaveApplication
// @Failure      400         {object}  StatusResponse
// @Router       /leave [post]
func (s *Server) SubmitLeaveHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	student, err := s.store.GetStudentByUserID(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: Failed to resolve student for user %d: %v", claims.UserID, err)
		writeError(w, http.StatusInternalServerError, "Failed to resolve student record")
		return
	}
	if student == nil {
		writeError(w, http.StatusForbidden, "No student record linked to this account")
		return
	}

	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	leaveType := strings.TrimSpace(r.FormValue("leaveType"))
	startDate := strings.TrimSpace(r.FormValue("startDate"))
	endDate := strings.TrimSpace(r.FormValue("endDate"))
	reason := strings.TrimSpace(r.FormValue("reason"))
	if leaveType == "" || startDate == "" || endDate == "" || reason == "" {
		writeError(w, http.StatusBadRequest, "leaveType, startDate, endDate and reason are required")
		return
	}

	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid startDate, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid endDate, expected YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "endDate cannot be before startDate")
		return
	}

	var attachmentID *string
	if file, _, err := r.FormFile("attachment"); err == nil {
		defer file.Close()

		generateID, err := nanoid.Standard(21)
		if err != nil {
			log.Printf("ERROR: Failed to initialize attachment ID generator: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to store attachment")
			return
		}
		id := generateID()

		if err := s.storage.Save(id, file); err != nil {
			log.Printf("ERROR: Failed to store attachment %s: %v", id, err)
			writeError(w, http.StatusInternalServerError, "Failed to store attachment")
			return
		}
		attachmentID = &id
	}

	application, err := s.store.CreateLeaveApplication(r.Context(), database.CreateLeaveApplicationParams{
		StudentID:    student.StudentID,
		StudentName:  student.Name,
		LeaveType:    leaveType,
		StartDate:    startDate,
		EndDate:      endDate,
		Reason:       reason,
		AttachmentID: attachmentID,
	})
	if err != nil {
		log.Printf("ERROR: Failed to create leave application: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to submit leave application")
		return
	}

	if err := s.store.LogEvent(r.Context(), nil, "leave_submitted", application); err != nil {
		log.Printf("WARN: Failed to journal leave_submitted for %d: %v", application.ID, err)
	}

	writeJSON(w, http.StatusCreated, application)
}

// @Summary      List leave applications
// @Description  Teachers and admins see all applications. Students see only their own.
// @Tags         leave
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.LeaveApplication
// @Router       /leave [get]
func (s *Server) ListLeaveHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	if claims.Role == models.RoleStudent {
		student, err := s.store.GetStudentByUserID(r.Context(), claims.UserID)
		if err != nil {
			log.Printf("ERROR: Failed to resolve student for user %d: %v", claims.UserID, err)
			writeError(w, http.StatusInternalServerError, "Failed to resolve student record")
			return
		}
		if student == nil {
			writeJSON(w, http.StatusOK, []models.LeaveApplication{})
			return
		}

		applications, err := s.store.ListLeaveApplicationsForStudent(r.Context(), student.StudentID)
		if err != nil {
			log.Printf("ERROR: Failed to list leave applications for %s: %v", student.StudentID, err)
			writeError(w, http.StatusInternalServerError, "Failed to list leave applications")
			return
		}
		writeJSON(w, http.StatusOK, applications)
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

type UpdateLeaveStatusRequest struct {
	Status string `json:"status" example:"approved"`
}

// @Summary      Review a leave application
// @Description  Approves or rejects a pending leave application. Applications that were already reviewed cannot be changed.
// @Tags         leave
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        leaveId                   path      int                       true  "Leave application ID"
// @Param        updateLeaveStatusRequest  body      UpdateLeaveStatusRequest  true  "New status"
// @Success      200                       {object}  StatusResponse
// @Failure      400                       {object}  StatusResponse
// @Failure      404                       {object}  StatusResponse
// @Failure      409                       {object}  StatusResponse
// @Router       /leave/{leaveId} [patch]
func (s *Server) UpdateLeaveStatusHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	leaveID, err := strconv.ParseInt(chi.URLParam(r, "leaveId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave application ID")
		return
	}

	var req UpdateLeaveStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status != models.LeaveStatusApproved && req.Status != models.LeaveStatusRejected {
		writeError(w, http.StatusBadRequest, "status must be approved or rejected")
		return
	}

	updated, err := s.store.UpdateLeaveStatus(r.Context(), leaveID, req.Status, claims.UserID)
	if err != nil {
		log.Printf("ERROR: Failed to update leave application %d: %v", leaveID, err)
		writeError(w, http.StatusInternalServerError, "Failed to update leave application")
		return
	}
	if !updated {
		application, err := s.store.GetLeaveApplication(r.Context(), leaveID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update leave application")
			return
		}
		if application == nil {
			writeError(w, http.StatusNotFound, "Leave application not found")
			return
		}
		writeError(w, http.StatusConflict, "Leave application was already reviewed")
		return
	}

	if err := s.store.LogEvent(r.Context(), nil, "leave_reviewed", map[string]interface{}{
		"leave_id":    leaveID,
		"status":      req.Status,
		"reviewed_by": claims.UserID,
	}); err != nil {
		log.Printf("WARN: Failed to journal leave_reviewed for %d: %v", leaveID, err)
	}

	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Message: "Leave application " + req.Status})
}

// @Summary      Download a leave attachment
// @Tags         leave
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Param        leaveId  path  int  true  "Leave application ID"
// @Success      200
// @Failure      404  {object}  StatusResponse
// @Router       /leave/{leaveId}/attachment [get]
func (s *Server) DownloadAttachmentHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	leaveID, err := strconv.ParseInt(chi.URLParam(r, "leaveId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave application ID")
		return
	}

	application, err := s.store.GetLeaveApplication(r.Context(), leaveID)
	if err != nil {
		log.Printf("ERROR: Failed to look up leave application %d: %v", leaveID, err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve leave application")
		return
	}
	if application == nil || application.AttachmentID == nil {
		writeError(w, http.StatusNotFound, "Attachment not found")
		return
	}

	// Students can only fetch attachments from their own applications.
	if claims.Role == models.RoleStudent {
		student, err := s.store.GetStudentByUserID(r.Context(), claims.UserID)
		if err != nil || student == nil || student.StudentID != application.StudentID {
			writeError(w, http.StatusForbidden, "Access denied")
			return
		}
	}

	reader, err := s.storage.Get(*application.AttachmentID)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "Attachment not found")
			return
		}
		log.Printf("ERROR: Failed to open attachment %s: %v", *application.AttachmentID, err)
		writeError(w, http.StatusInternalServerError, "Failed to read attachment")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename="+*application.AttachmentID)
	if _, err := io.Copy(w, reader); err != nil {
		log.Printf("ERROR: Failed to stream attachment %s: %v", *application.AttachmentID, err)
	}
}
