package database

import (
	"context"
	"errors"

	"dziennik-obecnosci/internal/models"

	"github.com/jackc/pgx/v5"
)

func (s *PostgresStore) ListStudents(ctx context.Context) ([]models.Student, error) {
	query := `SELECT student_id, name, user_id FROM students ORDER BY name`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		var student models.Student
		if err := rows.Scan(&student.StudentID, &student.Name, &student.UserID); err != nil {
			return nil, err
		}
		students = append(students, student)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if students == nil {
		return []models.Student{}, nil
	}

	return students, nil
}

func (s *PostgresStore) GetStudent(ctx context.Context, studentID string) (*models.Student, error) {
	query := `SELECT student_id, name, user_id FROM students WHERE student_id = $1`

	var student models.Student
	err := s.pool.QueryRow(ctx, query, studentID).Scan(&student.StudentID, &student.Name, &student.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &student, nil
}

// GetStudentByUserID maps an authenticated user to their roster entry.
func (s *PostgresStore) GetStudentByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	query := `SELECT student_id, name, user_id FROM students WHERE user_id = $1`

	var student models.Student
	err := s.pool.QueryRow(ctx, query, userID).Scan(&student.StudentID, &student.Name, &student.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &student, nil
}
