package database

import (
	"context"
	"errors"
	"time"

	"dziennik-obecnosci/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, role, display_name, created_at
		FROM users
		WHERE username = $1
	`
	var user models.User

	err := s.pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.DisplayName,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

type CreateUserSessionParams struct {
	ID           uuid.UUID
	UserID       int64
	RefreshToken string
	UserAgent    string
	ClientIP     string
	ExpiresAt    time.Time
}

func (s *PostgresStore) CreateUserSession(ctx context.Context, arg CreateUserSessionParams) error {
	query := `
		INSERT INTO user_sessions (id, user_id, refresh_token, user_agent, client_ip, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.pool.Exec(ctx, query,
		arg.ID,
		arg.UserID,
		arg.RefreshToken,
		arg.UserAgent,
		arg.ClientIP,
		arg.ExpiresAt,
	)
	return err
}

func (s *PostgresStore) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	query := `
		SELECT u.id, u.username, u.password_hash, u.role, u.display_name, u.created_at
		FROM users u
		JOIN user_sessions us ON u.id = us.user_id
		WHERE us.refresh_token = $1 AND us.expires_at > now()
	`
	var user models.User

	err := s.pool.QueryRow(ctx, query, refreshToken).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.DisplayName,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// RotateUserSession deletes the old refresh token and installs the new one in
// a single transaction, so a stolen-then-replayed token can never coexist
// with its successor.
func (s *PostgresStore) RotateUserSession(ctx context.Context, oldRefreshToken string, arg CreateUserSessionParams) error {
	return s.execTx(ctx, func(tx pgx.Tx) error {
		res, err := tx.Exec(ctx, `DELETE FROM user_sessions WHERE refresh_token = $1`, oldRefreshToken)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return errors.New("invalid or expired refresh token")
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO user_sessions (id, user_id, refresh_token, user_agent, client_ip, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, arg.ID, arg.UserID, arg.RefreshToken, arg.UserAgent, arg.ClientIP, arg.ExpiresAt)
		return err
	})
}
