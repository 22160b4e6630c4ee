package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"dziennik-obecnosci/internal/models"

	"github.com/stretchr/testify/require"
)

func submitLeaveAPI(t *testing.T, withAttachment bool) models.LeaveApplication {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("leaveType", "medical"))
	require.NoError(t, writer.WriteField("startDate", "2026-09-01"))
	require.NoError(t, writer.WriteField("endDate", "2026-09-03"))
	require.NoError(t, writer.WriteField("reason", "Zwolnienie lekarskie"))
	if withAttachment {
		part, err := writer.CreateFormFile("attachment", "zaswiadczenie.pdf")
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 test"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/leave", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()

	req = req.WithContext(context.WithValue(req.Context(), userContextKey, testStudentClaims))
	http.HandlerFunc(testServer.SubmitLeaveHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, "Response body: %s", rr.Body.String())

	var application models.LeaveApplication
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &application))
	return application
}

func TestAPI_SubmitLeave_Success(t *testing.T) {
	application := submitLeaveAPI(t, false)

	require.Equal(t, "S001", application.StudentID)
	require.Equal(t, models.LeaveStatusPending, application.Status)
	require.Nil(t, application.AttachmentID)
}

func TestAPI_SubmitLeave_WithAttachment(t *testing.T) {
	// Arrange + Act
	application := submitLeaveAPI(t, true)
	require.NotNil(t, application.AttachmentID)

	// Assert: załącznik da się pobrać z powrotem
	req := httptest.NewRequest("GET", "/api/v1/leave/"+strconv.FormatInt(application.ID, 10)+"/attachment", nil)
	rr := httptest.NewRecorder()
	req = req.WithContext(context.WithValue(req.Context(), userContextKey, testStudentClaims))
	req = withURLParam(req, "leaveId", strconv.FormatInt(application.ID, 10))
	http.HandlerFunc(testServer.DownloadAttachmentHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 test", string(body))
}

func TestAPI_SubmitLeave_EndBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("leaveType", "personal"))
	require.NoError(t, writer.WriteField("startDate", "2026-09-05"))
	require.NoError(t, writer.WriteField("endDate", "2026-09-01"))
	require.NoError(t, writer.WriteField("reason", "test"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/leave", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()

	req = req.WithContext(context.WithValue(req.Context(), userContextKey, testStudentClaims))
	http.HandlerFunc(testServer.SubmitLeaveHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_UpdateLeaveStatus_Lifecycle(t *testing.T) {
	// Arrange
	application := submitLeaveAPI(t, false)

	review := func(status string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(UpdateLeaveStatusRequest{Status: status})
		req := httptest.NewRequest("PATCH", "/api/v1/leave/"+strconv.FormatInt(application.ID, 10), bytes.NewReader(body))
		rr := httptest.NewRecorder()
		req = req.WithContext(context.WithValue(req.Context(), userContextKey, testTeacherClaims))
		req = withURLParam(req, "leaveId", strconv.FormatInt(application.ID, 10))
		http.HandlerFunc(testServer.UpdateLeaveStatusHandler).ServeHTTP(rr, req)
		return rr
	}

	// Act: zatwierdzenie przechodzi
	first := review(models.LeaveStatusApproved)
	require.Equal(t, http.StatusOK, first.Code)

	// Assert: ponowna recenzja jest odrzucana
	second := review(models.LeaveStatusRejected)
	require.Equal(t, http.StatusConflict, second.Code)

	updated, err := testServer.store.GetLeaveApplication(context.Background(), application.ID)
	require.NoError(t, err)
	require.Equal(t, models.LeaveStatusApproved, updated.Status)
	require.NotNil(t, updated.ReviewedAt)
}

func TestAPI_ListLeave_StudentSeesOnlyOwn(t *testing.T) {
	submitLeaveAPI(t, false)

	req := httptest.NewRequest("GET", "/api/v1/leave", nil)
	rr := httptest.NewRecorder()
	req = req.WithContext(context.WithValue(req.Context(), userContextKey, testStudentClaims))
	http.HandlerFunc(testServer.ListLeaveHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var applications []models.LeaveApplication
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &applications))
	require.NotEmpty(t, applications)
	for _, a := range applications {
		require.Equal(t, "S001", a.StudentID)
	}
}
