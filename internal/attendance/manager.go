package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dziennik-obecnosci/internal/models"

	"github.com/google/uuid"
)

// Manager owns the session lifecycle: creation, token resolution and the
// validity decision. It is the only writer of sessions in the store.
type Manager struct {
	store            Store
	tokenSecret      string
	allowedDurations []int
	now              func() time.Time
}

func NewManager(store Store, tokenSecret string, allowedDurations []int) *Manager {
	if len(allowedDurations) == 0 {
		allowedDurations = []int{5, 10, 15, 20}
	}
	return &Manager{
		store:            store,
		tokenSecret:      tokenSecret,
		allowedDurations: allowedDurations,
		now:              time.Now,
	}
}

// WithClock overrides the time source. Tests use it to pin the validity window.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

type CreateSessionParams struct {
	Subject         string
	LectureTime     string
	Location        string
	DurationMinutes int
}

func (p CreateSessionParams) validate(allowed []int) error {
	if strings.TrimSpace(p.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if strings.TrimSpace(p.LectureTime) == "" {
		return fmt.Errorf("%w: lecture time is required", ErrValidation)
	}
	if strings.TrimSpace(p.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrValidation)
	}
	for _, d := range allowed {
		if p.DurationMinutes == d {
			return nil
		}
	}
	return fmt.Errorf("%w: duration %d minutes is not allowed", ErrValidation, p.DurationMinutes)
}

// CreateSession validates the input, persists a new session and returns it
// including the signed token. Creation is all-or-nothing: a validation failure
// leaves no trace in the store.
func (m *Manager) CreateSession(ctx context.Context, arg CreateSessionParams) (*models.AttendanceSession, error) {
	if err := arg.validate(m.allowedDurations); err != nil {
		return nil, err
	}

	id := uuid.New()
	token, err := SignToken(id, m.tokenSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	createdAt := m.now()
	session := &models.AttendanceSession{
		ID:          id,
		Subject:     arg.Subject,
		LectureTime: arg.LectureTime,
		Location:    arg.Location,
		Token:       token,
		CreatedAt:   createdAt,
		ExpiresAt:   createdAt.Add(time.Duration(arg.DurationMinutes) * time.Minute),
	}

	if err := m.store.PutSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// GetSessionByToken resolves a scanned token to its session. Expiry is not
// checked here; an expired session still resolves so the caller can report
// "expired" rather than "unknown".
func (m *Manager) GetSessionByToken(ctx context.Context, token string) (*models.AttendanceSession, error) {
	if _, err := ParseToken(token, m.tokenSecret); err != nil {
		return nil, err
	}

	session, err := m.store.GetSessionByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

func (m *Manager) GetSession(ctx context.Context, id uuid.UUID) (*models.AttendanceSession, error) {
	session, err := m.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (m *Manager) Now() time.Time {
	return m.now()
}

// IsActive is the single source of truth for session validity. The window is
// half-open: a scan arriving at exactly ExpiresAt is already expired.
func IsActive(session *models.AttendanceSession, now time.Time) bool {
	return now.Before(session.ExpiresAt)
}
