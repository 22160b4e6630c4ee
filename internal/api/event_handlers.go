package api

import (
	"log"
	"net/http"
	"strconv"
)

// @Summary      Read the activity journal
// @Description  Returns journal entries with an ID greater than since, oldest first. Clients poll with the last ID they have seen.
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        since  query     int  false  "Last seen event ID"
// @Success      200    {array}   database.Event
// @Failure      400    {object}  StatusResponse
// @Router       /events [get]
func (s *Server) GetEventsHandler(w http.ResponseWriter, r *http.Request) {
	var sinceID int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "Invalid since parameter")
			return
		}
		sinceID = parsed
	}

	events, err := s.store.GetEventsSince(r.Context(), sinceID)
	if err != nil {
		log.Printf("ERROR: Failed to read event journal: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to read events")
		return
	}

	writeJSON(w, http.StatusOK, events)
}
