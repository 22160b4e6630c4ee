package database

import (
	"context"
	"errors"
	"time"

	"dziennik-obecnosci/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *PostgresStore) PutSession(ctx context.Context, session *models.AttendanceSession) error {
	query := `
		INSERT INTO attendance_sessions (id, subject, lecture_time, location, token, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.pool.Exec(ctx, query,
		session.ID,
		session.Subject,
		session.LectureTime,
		session.Location,
		session.Token,
		session.CreatedAt,
		session.ExpiresAt,
	)
	return err
}

func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (*models.AttendanceSession, error) {
	query := `
		SELECT id, subject, lecture_time, location, token, created_at, expires_at
		FROM attendance_sessions
		WHERE id = $1
	`
	return s.scanSession(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresStore) GetSessionByToken(ctx context.Context, token string) (*models.AttendanceSession, error) {
	query := `
		SELECT id, subject, lecture_time, location, token, created_at, expires_at
		FROM attendance_sessions
		WHERE token = $1
	`
	return s.scanSession(s.pool.QueryRow(ctx, query, token))
}

func (s *PostgresStore) scanSession(row pgx.Row) (*models.AttendanceSession, error) {
	var session models.AttendanceSession
	err := row.Scan(
		&session.ID,
		&session.Subject,
		&session.LectureTime,
		&session.Location,
		&session.Token,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// DeleteSessionsExpiredBefore sweeps inert sessions past the retention
// window. Attendance records reference sessions by value and stay behind as
// the audit trail.
func (s *PostgresStore) DeleteSessionsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM attendance_sessions WHERE expires_at < $1`
	res, err := s.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

// ListSessionsForSubject returns the sessions created for one subject name,
// newest first. Used by the per-subject attendance views.
func (s *PostgresStore) ListSessionsForSubject(ctx context.Context, subject string) ([]models.AttendanceSession, error) {
	query := `
		SELECT id, subject, lecture_time, location, token, created_at, expires_at
		FROM attendance_sessions
		WHERE subject = $1
		ORDER BY created_at DESC
	`
	rows, err := s.pool.Query(ctx, query, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.AttendanceSession
	for rows.Next() {
		var session models.AttendanceSession
		err := rows.Scan(
			&session.ID,
			&session.Subject,
			&session.LectureTime,
			&session.Location,
			&session.Token,
			&session.CreatedAt,
			&session.ExpiresAt,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if sessions == nil {
		return []models.AttendanceSession{}, nil
	}

	return sessions, nil
}
