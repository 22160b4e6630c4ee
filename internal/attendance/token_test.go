package attendance_test

import (
	"strings"
	"testing"

	"dziennik-obecnosci/internal/attendance"

	"github.com/stretchr/testify/require"
)

func TestSignAndParseToken(t *testing.T) {
	sessionID := newUUID(t)

	token, err := attendance.SignToken(sessionID, testTokenSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsedID, err := attendance.ParseToken(token, testTokenSecret)
	require.NoError(t, err)
	require.Equal(t, sessionID, parsedID)
}

func TestSignToken_Deterministic(t *testing.T) {
	sessionID := newUUID(t)

	first, err := attendance.SignToken(sessionID, testTokenSecret)
	require.NoError(t, err)
	second, err := attendance.SignToken(sessionID, testTokenSecret)
	require.NoError(t, err)
	require.Equal(t, first, second, "token derivation must be deterministic for a given id and secret")
}

func TestParseToken_Rejections(t *testing.T) {
	sessionID := newUUID(t)
	token, err := attendance.SignToken(sessionID, testTokenSecret)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := attendance.ParseToken(token, "inny_sekret")
		require.ErrorIs(t, err, attendance.ErrSessionNotFound)
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1] + "x." + parts[2]
		_, err := attendance.ParseToken(tampered, testTokenSecret)
		require.ErrorIs(t, err, attendance.ErrSessionNotFound)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := attendance.ParseToken("to nie jest token", testTokenSecret)
		require.ErrorIs(t, err, attendance.ErrSessionNotFound)
	})
}
