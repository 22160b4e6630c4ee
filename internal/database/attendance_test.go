package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"dziennik-obecnosci/internal/attendance"
	"dziennik-obecnosci/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAppendRecord_UniqueViolationMapsToDuplicate(t *testing.T) {
	sessionID := uuid.New()
	record := &models.AttendanceRecord{
		SessionID:   sessionID,
		StudentID:   "DUP1",
		StudentName: "Anna Kowalska",
		MarkedAt:    time.Now().UTC(),
	}

	require.NoError(t, testStore.AppendRecord(context.Background(), record))

	err := testStore.AppendRecord(context.Background(), record)
	require.ErrorIs(t, err, attendance.ErrDuplicateAttendance)

	has, err := testStore.HasRecord(context.Background(), sessionID, "DUP1")
	require.NoError(t, err)
	require.True(t, has)

	records, err := testStore.RecordsFor(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestAppendRecord_ConcurrentScans(t *testing.T) {
	sessionID := uuid.New()

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = testStore.AppendRecord(context.Background(), &models.AttendanceRecord{
				SessionID:   sessionID,
				StudentID:   "RACE1",
				StudentName: "Piotr Wyścigowy",
				MarkedAt:    time.Now().UTC(),
			})
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			require.ErrorIs(t, err, attendance.ErrDuplicateAttendance)
			dup++
		}
	}
	require.Equal(t, 1, ok, "unique index must admit exactly one insert")
	require.Equal(t, n-1, dup)
}

func TestListRecords_OrderAndFilters(t *testing.T) {
	sessionA := uuid.New()
	sessionB := uuid.New()
	day := time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC)

	appendRecord := func(sessionID uuid.UUID, studentID string, markedAt time.Time) {
		t.Helper()
		require.NoError(t, testStore.AppendRecord(context.Background(), &models.AttendanceRecord{
			SessionID:   sessionID,
			StudentID:   studentID,
			StudentName: "Student " + studentID,
			MarkedAt:    markedAt,
		}))
	}

	appendRecord(sessionA, "ORD3", day.Add(3*time.Minute))
	appendRecord(sessionA, "ORD1", day.Add(1*time.Minute))
	appendRecord(sessionB, "ORD2", day.Add(2*time.Minute))
	appendRecord(sessionA, "ORD4", day.AddDate(0, 0, 1))

	t.Run("session filter, ascending order", func(t *testing.T) {
		records, err := testStore.ListRecords(context.Background(), attendance.ListRecordsParams{SessionID: &sessionA})
		require.NoError(t, err)
		require.Len(t, records, 3)
		require.Equal(t, "ORD1", records[0].StudentID)
		require.Equal(t, "ORD3", records[1].StudentID)
		require.Equal(t, "ORD4", records[2].StudentID)
		for _, record := range records {
			require.Equal(t, sessionA, record.SessionID)
		}
	})

	t.Run("date filter", func(t *testing.T) {
		filterDay := day
		records, err := testStore.ListRecords(context.Background(), attendance.ListRecordsParams{SessionID: &sessionA, Date: &filterDay})
		require.NoError(t, err)
		require.Len(t, records, 2)
		for _, record := range records {
			require.Equal(t, day.Year(), record.MarkedAt.UTC().Year())
			require.Equal(t, day.Day(), record.MarkedAt.UTC().Day())
		}
	})
}

func TestListRecordsForSubject(t *testing.T) {
	base := time.Date(2025, 5, 7, 11, 0, 0, 0, time.UTC)
	session := createTestSession(t, "Biologia_Raport", base, 15*time.Minute)

	require.NoError(t, testStore.AppendRecord(context.Background(), &models.AttendanceRecord{
		SessionID:   session.ID,
		StudentID:   "SUBJ1",
		StudentName: "Maria Raportowa",
		MarkedAt:    base.Add(2 * time.Minute),
	}))

	records, err := testStore.ListRecordsForSubject(context.Background(), "Biologia_Raport", nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "SUBJ1", records[0].StudentID)

	records, err = testStore.ListRecordsForSubject(context.Background(), "Nieistniejacy_Przedmiot", nil)
	require.NoError(t, err)
	require.Empty(t, records)
}
