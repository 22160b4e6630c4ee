package database

import (
	"context"
	"errors"

	"dziennik-obecnosci/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrDuplicateSubject = errors.New("a subject with this name already exists for the teacher")

type CreateSubjectParams struct {
	TeacherID int64
	Name      string
	DayOfWeek string
	TimeSlot  string
}

func (s *PostgresStore) CreateSubject(ctx context.Context, arg CreateSubjectParams) (*models.Subject, error) {
	query := `
		INSERT INTO subjects (teacher_id, name, day_of_week, time_slot)
		VALUES ($1, $2, $3, $4)
		RETURNING id, teacher_id, name, day_of_week, time_slot
	`
	row := s.pool.QueryRow(ctx, query, arg.TeacherID, arg.Name, arg.DayOfWeek, arg.TimeSlot)

	var subject models.Subject
	err := row.Scan(&subject.ID, &subject.TeacherID, &subject.Name, &subject.DayOfWeek, &subject.TimeSlot)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateSubject
		}
		return nil, err
	}

	return &subject, nil
}

func (s *PostgresStore) ListSubjectsForTeacher(ctx context.Context, teacherID int64) ([]models.Subject, error) {
	query := `
		SELECT id, teacher_id, name, day_of_week, time_slot
		FROM subjects
		WHERE teacher_id = $1
		ORDER BY name
	`
	rows, err := s.pool.Query(ctx, query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		var subject models.Subject
		if err := rows.Scan(&subject.ID, &subject.TeacherID, &subject.Name, &subject.DayOfWeek, &subject.TimeSlot); err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if subjects == nil {
		return []models.Subject{}, nil
	}

	return subjects, nil
}

// GetSubjectIfOwned returns the subject only when it belongs to the teacher,
// mirroring the ownership checks of the per-subject endpoints.
func (s *PostgresStore) GetSubjectIfOwned(ctx context.Context, subjectID, teacherID int64) (*models.Subject, error) {
	query := `
		SELECT id, teacher_id, name, day_of_week, time_slot
		FROM subjects
		WHERE id = $1 AND teacher_id = $2
	`
	var subject models.Subject
	err := s.pool.QueryRow(ctx, query, subjectID, teacherID).Scan(
		&subject.ID, &subject.TeacherID, &subject.Name, &subject.DayOfWeek, &subject.TimeSlot,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &subject, nil
}

func (s *PostgresStore) DeleteSubject(ctx context.Context, subjectID, teacherID int64) (bool, error) {
	query := `DELETE FROM subjects WHERE id = $1 AND teacher_id = $2`
	res, err := s.pool.Exec(ctx, query, subjectID, teacherID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}
