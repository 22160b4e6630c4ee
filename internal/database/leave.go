package database

import (
	"context"
	"errors"

	"dziennik-obecnosci/internal/models"

	"github.com/jackc/pgx/v5"
)

type CreateLeaveApplicationParams struct {
	StudentID    string
	StudentName  string
	LeaveType    string
	StartDate    string
	EndDate      string
	Reason       string
	AttachmentID *string
}

func (s *PostgresStore) CreateLeaveApplication(ctx context.Context, arg CreateLeaveApplicationParams) (*models.LeaveApplication, error) {
	query := `
		INSERT INTO leave_applications (student_id, student_name, leave_type, start_date, end_date, reason, attachment_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
		RETURNING id, student_id, student_name, leave_type, start_date, end_date, reason, status, attachment_id, applied_at, reviewed_at, reviewed_by
	`
	row := s.pool.QueryRow(ctx, query,
		arg.StudentID,
		arg.StudentName,
		arg.LeaveType,
		arg.StartDate,
		arg.EndDate,
		arg.Reason,
		arg.AttachmentID,
	)

	return scanLeaveApplication(row)
}

func (s *PostgresStore) GetLeaveApplication(ctx context.Context, id int64) (*models.LeaveApplication, error) {
	query := `
		SELECT id, student_id, student_name, leave_type, start_date, end_date, reason, status, attachment_id, applied_at, reviewed_at, reviewed_by
		FROM leave_applications
		WHERE id = $1
	`
	app, err := scanLeaveApplication(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return app, nil
}

func (s *PostgresStore) ListLeaveApplications(ctx context.Context) ([]models.LeaveApplication, error) {
	query := `
		SELECT id, student_id, student_name, leave_type, start_date, end_date, reason, status, attachment_id, applied_at, reviewed_at, reviewed_by
		FROM leave_applications
		ORDER BY applied_at DESC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeaveApplications(rows)
}

// ListLeaveApplicationsForStudent backs the student's own view.
func (s *PostgresStore) ListLeaveApplicationsForStudent(ctx context.Context, studentID string) ([]models.LeaveApplication, error) {
	query := `
		SELECT id, student_id, student_name, leave_type, start_date, end_date, reason, status, attachment_id, applied_at, reviewed_at, reviewed_by
		FROM leave_applications
		WHERE student_id = $1
		ORDER BY applied_at DESC
	`
	rows, err := s.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeaveApplications(rows)
}

func (s *PostgresStore) UpdateLeaveStatus(ctx context.Context, id int64, status string, reviewerID int64) (bool, error) {
	query := `
		UPDATE leave_applications
		SET status = $1, reviewed_at = now(), reviewed_by = $2
		WHERE id = $3 AND status = 'pending'
	`
	res, err := s.pool.Exec(ctx, query, status, reviewerID, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func scanLeaveApplication(row pgx.Row) (*models.LeaveApplication, error) {
	var app models.LeaveApplication
	err := row.Scan(
		&app.ID,
		&app.StudentID,
		&app.StudentName,
		&app.LeaveType,
		&app.StartDate,
		&app.EndDate,
		&app.Reason,
		&app.Status,
		&app.AttachmentID,
		&app.AppliedAt,
		&app.ReviewedAt,
		&app.ReviewedBy,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func collectLeaveApplications(rows pgx.Rows) ([]models.LeaveApplication, error) {
	var apps []models.LeaveApplication
	for rows.Next() {
		app, err := scanLeaveApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if apps == nil {
		return []models.LeaveApplication{}, nil
	}

	return apps, nil
}
