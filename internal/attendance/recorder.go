package attendance

import (
	"context"
	"fmt"
	"strings"

	"dziennik-obecnosci/internal/models"
)

// Recorder validates scans against the session lifecycle and appends
// attendance records. It never mutates a record after creation.
type Recorder struct {
	manager *Manager
	store   Store
}

func NewRecorder(manager *Manager, store Store) *Recorder {
	return &Recorder{manager: manager, store: store}
}

// RecordAttendance resolves the token, checks the validity window and appends
// a record. The pre-check via HasRecord gives a clean error on the common
// double-scan path; the store's AppendRecord stays the authority when two
// scans race.
func (r *Recorder) RecordAttendance(ctx context.Context, studentID, studentName, token string) (*models.AttendanceRecord, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, fmt.Errorf("%w: student id is required", ErrValidation)
	}

	session, err := r.manager.GetSessionByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := r.manager.Now()
	if !IsActive(session, now) {
		return nil, fmt.Errorf("%w at %s", ErrSessionExpired, session.ExpiresAt.Format("15:04:05"))
	}

	exists, err := r.store.HasRecord(ctx, session.ID, studentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateAttendance
	}

	record := &models.AttendanceRecord{
		SessionID:   session.ID,
		StudentID:   studentID,
		StudentName: studentName,
		MarkedAt:    now,
	}

	if err := r.store.AppendRecord(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// ListAttendance returns records ordered by marked_at ascending, optionally
// filtered by session and/or calendar date. Read-only.
func (r *Recorder) ListAttendance(ctx context.Context, arg ListRecordsParams) ([]models.AttendanceRecord, error) {
	return r.store.ListRecords(ctx, arg)
}
