package models

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceRecord is immutable proof that a student scanned a session.
// At most one record exists per (SessionID, StudentID) pair.
type AttendanceRecord struct {
	SessionID   uuid.UUID `json:"session_id"`
	StudentID   string    `json:"student_id" example:"S0042"`
	StudentName string    `json:"student_name" example:"Anna Kowalska"`
	MarkedAt    time.Time `json:"timestamp"`
}
