package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func markAttendanceAPI(t *testing.T, studentID, qrData string) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(MarkAttendanceRequest{StudentID: studentID, QRData: qrData})
	req := httptest.NewRequest("POST", "/api/v1/attendance", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	req = req.WithContext(context.WithValue(req.Context(), userContextKey, testStudentClaims))
	http.HandlerFunc(testServer.MarkAttendanceHandler).ServeHTTP(rr, req)
	return rr
}

func TestAPI_MarkAttendance_Success(t *testing.T) {
	// Arrange
	session := createTestSessionAPI(t, CreateSessionRequest{
		Subject:         "Matematyka",
		LectureTime:     "10:00",
		Location:        "Sala 5",
		DurationMinutes: 5,
	})

	// Act
	rr := markAttendanceAPI(t, "S001", session.Token)

	// Assert
	require.Equal(t, http.StatusOK, rr.Code, "Response body: %s", rr.Body.String())
	var resp MarkAttendanceResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, session.SessionID, resp.SessionID)
}

func TestAPI_MarkAttendance_Duplicate(t *testing.T) {
	// Arrange
	session := createTestSessionAPI(t, CreateSessionRequest{
		Subject:         "Fizyka",
		LectureTime:     "11:00",
		Location:        "Sala 2",
		DurationMinutes: 5,
	})
	first := markAttendanceAPI(t, "S002", session.Token)
	require.Equal(t, http.StatusOK, first.Code)

	// Act: drugi skan tego samego studenta
	second := markAttendanceAPI(t, "S002", session.Token)

	// Assert
	require.Equal(t, http.StatusConflict, second.Code)
	var resp StatusResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	require.Equal(t, "Already marked attendance", resp.Message)

	// W bazie nadal dokładnie jeden rekord.
	var count int
	err := testServer.store.GetPool().QueryRow(context.Background(),
		"SELECT count(*) FROM attendance_records WHERE session_id=$1 AND student_id='S002'",
		session.SessionID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestAPI_MarkAttendance_UnknownStudent(t *testing.T) {
	session := createTestSessionAPI(t, CreateSessionRequest{
		Subject:         "Chemia",
		LectureTime:     "09:00",
		Location:        "Lab 1",
		DurationMinutes: 5,
	})

	rr := markAttendanceAPI(t, "S999", session.Token)

	require.Equal(t, http.StatusNotFound, rr.Code)
	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "Student not found", resp.Message)
}

func TestAPI_MarkAttendance_BadToken(t *testing.T) {
	rr := markAttendanceAPI(t, "S001", "not-a-real-token")

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_MarkAttendance_MissingFields(t *testing.T) {
	rr := markAttendanceAPI(t, "  ", "")

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_ListAttendance_FilterBySession(t *testing.T) {
	// Arrange: dwie sesje, po jednym skanie w każdej
	sessionA := createTestSessionAPI(t, CreateSessionRequest{
		Subject:         "Historia",
		LectureTime:     "08:00",
		Location:        "Sala 7",
		DurationMinutes: 10,
	})
	sessionB := createTestSessionAPI(t, CreateSessionRequest{
		Subject:         "Historia",
		LectureTime:     "09:00",
		Location:        "Sala 7",
		DurationMinutes: 10,
	})
	require.Equal(t, http.StatusOK, markAttendanceAPI(t, "S001", sessionA.Token).Code)
	require.Equal(t, http.StatusOK, markAttendanceAPI(t, "S002", sessionB.Token).Code)

	// Act
	req := httptest.NewRequest("GET", fmt.Sprintf("/api/v1/attendance?session_id=%s", sessionA.SessionID), nil)
	rr := httptest.NewRecorder()
	req = req.WithContext(context.WithValue(req.Context(), userContextKey, testTeacherClaims))
	http.HandlerFunc(testServer.ListAttendanceHandler).ServeHTTP(rr, req)

	// Assert
	require.Equal(t, http.StatusOK, rr.Code)
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &records))
	require.Len(t, records, 1)
	require.Equal(t, "S001", records[0]["student_id"])
}

func TestAPI_ListAttendance_InvalidDate(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/attendance?date=10-03-2025", nil)
	rr := httptest.NewRecorder()

	req = req.WithContext(context.WithValue(req.Context(), userContextKey, testTeacherClaims))
	http.HandlerFunc(testServer.ListAttendanceHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_SessionAttendanceCSV(t *testing.T) {
	// Arrange
	session := createTestSessionAPI(t, CreateSessionRequest{
		Subject:         "Biologia",
		LectureTime:     "13:00",
		Location:        "Sala 3",
		DurationMinutes: 5,
	})
	require.Equal(t, http.StatusOK, markAttendanceAPI(t, "S001", session.Token).Code)

	// Act
	req := httptest.NewRequest("GET", "/api/v1/sessions/"+session.SessionID.String()+"/attendance.csv", nil)
	rr := httptest.NewRecorder()
	req = req.WithContext(context.WithValue(req.Context(), userContextKey, testTeacherClaims))
	req = withURLParam(req, "sessionId", session.SessionID.String())
	http.HandlerFunc(testServer.SessionAttendanceCSVHandler).ServeHTTP(rr, req)

	// Assert
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "Student Name,Student ID,Session ID,Marked At", strings.TrimSpace(lines[0]))
	require.Contains(t, lines[1], "S001")
	require.Contains(t, lines[1], "Anna Kowalska")
}
