package models

import "time"

type LeaveApplication struct {
	ID           int64      `json:"id"`
	StudentID    string     `json:"student_id"`
	StudentName  string     `json:"student_name"`
	LeaveType    string     `json:"leave_type" example:"medical"`
	StartDate    string     `json:"start_date" example:"2025-03-10"`
	EndDate      string     `json:"end_date" example:"2025-03-12"`
	Reason       string     `json:"reason"`
	Status       string     `json:"status" example:"pending"`
	AttachmentID *string    `json:"attachment_id,omitempty"`
	AppliedAt    time.Time  `json:"applied_at"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy   *int64     `json:"reviewed_by,omitempty"`
}

const (
	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusRejected = "rejected"
)
