package models

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceSession is a time-bounded collection window for one lecture.
// The validity window is half-open: scans are accepted for
// CreatedAt <= now < ExpiresAt.
type AttendanceSession struct {
	ID          uuid.UUID `json:"id" example:"a1b2c3d4-e5f6-7890-1234-567890abcdef"`
	Subject     string    `json:"subject" example:"Matematyka"`
	LectureTime string    `json:"lecture_time" example:"10:00"`
	Location    string    `json:"location" example:"Sala 5"`
	Token       string    `json:"token"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type UserSession struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"user_id"`
	UserAgent string    `json:"user_agent"`
	ClientIP  string    `json:"client_ip"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
