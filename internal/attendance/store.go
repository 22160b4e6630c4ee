package attendance

import (
	"context"
	"errors"
	"time"

	"dziennik-obecnosci/internal/models"

	"github.com/google/uuid"
)

var ErrValidation = errors.New("invalid session parameters")
var ErrSessionNotFound = errors.New("session not found")
var ErrSessionExpired = errors.New("session expired")
var ErrDuplicateAttendance = errors.New("attendance already recorded for this student and session")

// ListRecordsParams filters the attendance listing. Both filters are optional;
// the zero value lists everything, ordered by marked_at ascending.
type ListRecordsParams struct {
	SessionID *uuid.UUID
	// Date restricts results to records marked on the given calendar day (UTC).
	Date *time.Time
}

// Store is the persistence boundary for sessions and attendance records.
// AppendRecord must be atomic with respect to the duplicate check: when two
// scans for the same (session, student) race, exactly one may succeed and the
// other must get ErrDuplicateAttendance.
type Store interface {
	PutSession(ctx context.Context, session *models.AttendanceSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.AttendanceSession, error)
	GetSessionByToken(ctx context.Context, token string) (*models.AttendanceSession, error)
	AppendRecord(ctx context.Context, record *models.AttendanceRecord) error
	RecordsFor(ctx context.Context, sessionID uuid.UUID) ([]models.AttendanceRecord, error)
	HasRecord(ctx context.Context, sessionID uuid.UUID, studentID string) (bool, error)
	ListRecords(ctx context.Context, arg ListRecordsParams) ([]models.AttendanceRecord, error)
	DeleteSessionsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
