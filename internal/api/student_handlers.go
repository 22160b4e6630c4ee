package api

import (
	"log"
	"net/http"
)

// @Summary      List enrolled students
// @Tags         students
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Student
// @Failure      500  {object}  StatusResponse
// @Router       /students [get]
func (s *Server) ListStudentsHandler(w http.ResponseWriter, r *http.Request) {
	students, err := s.store.ListStudents(r.Context())
	if err != nil {
		log.Printf("ERROR: Failed to list students: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list students")
		return
	}

	writeJSON(w, http.StatusOK, students)
}
