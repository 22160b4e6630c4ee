package database

import (
	"context"
	"errors"

	"dziennik-obecnosci/internal/attendance"
	"dziennik-obecnosci/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// AppendRecord inserts an attendance record. The unique index on
// (session_id, student_id) makes the insert the atomic insert-if-absent the
// recorder relies on; a violation surfaces as ErrDuplicateAttendance.
func (s *PostgresStore) AppendRecord(ctx context.Context, record *models.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (session_id, student_id, student_name, marked_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.pool.Exec(ctx, query,
		record.SessionID,
		record.StudentID,
		record.StudentName,
		record.MarkedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return attendance.ErrDuplicateAttendance
		}
		return err
	}

	return nil
}

func (s *PostgresStore) RecordsFor(ctx context.Context, sessionID uuid.UUID) ([]models.AttendanceRecord, error) {
	id := sessionID
	return s.ListRecords(ctx, attendance.ListRecordsParams{SessionID: &id})
}

func (s *PostgresStore) HasRecord(ctx context.Context, sessionID uuid.UUID, studentID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM attendance_records WHERE session_id = $1 AND student_id = $2)`
	err := s.pool.QueryRow(ctx, query, sessionID, studentID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *PostgresStore) ListRecords(ctx context.Context, arg attendance.ListRecordsParams) ([]models.AttendanceRecord, error) {
	query := `
		SELECT session_id, student_id, student_name, marked_at
		FROM attendance_records
		WHERE ($1::uuid IS NULL OR session_id = $1)
		  AND ($2::date IS NULL OR marked_at::date = $2)
		ORDER BY marked_at ASC
	`

	var sessionID interface{}
	if arg.SessionID != nil {
		sessionID = *arg.SessionID
	}
	var date interface{}
	if arg.Date != nil {
		date = arg.Date.Format("2006-01-02")
	}

	rows, err := s.pool.Query(ctx, query, sessionID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListRecordsForSubject joins records to their sessions by subject name,
// oldest scan first. Backs the per-subject report and CSV export.
func (s *PostgresStore) ListRecordsForSubject(ctx context.Context, subject string, date *string) ([]models.AttendanceRecord, error) {
	query := `
		SELECT r.session_id, r.student_id, r.student_name, r.marked_at
		FROM attendance_records r
		JOIN attendance_sessions s ON r.session_id = s.id
		WHERE s.subject = $1
		  AND ($2::date IS NULL OR r.marked_at::date = $2)
		ORDER BY r.marked_at ASC
	`
	rows, err := s.pool.Query(ctx, query, subject, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	for rows.Next() {
		var record models.AttendanceRecord
		err := rows.Scan(
			&record.SessionID,
			&record.StudentID,
			&record.StudentName,
			&record.MarkedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if records == nil {
		return []models.AttendanceRecord{}, nil
	}

	return records, nil
}
