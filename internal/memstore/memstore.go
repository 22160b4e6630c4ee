// Package memstore is an in-memory implementation of attendance.Store.
// A single mutex over the maps makes the duplicate-check-then-insert in
// AppendRecord atomic, which is what the one-record-per-student-per-session
// invariant requires under concurrent scans.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"dziennik-obecnosci/internal/attendance"
	"dziennik-obecnosci/internal/models"

	"github.com/google/uuid"
)

type recordKey struct {
	sessionID uuid.UUID
	studentID string
}

type MemStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]models.AttendanceSession
	byToken  map[string]uuid.UUID
	records  []models.AttendanceRecord
	seen     map[recordKey]bool
}

func New() *MemStore {
	return &MemStore{
		sessions: make(map[uuid.UUID]models.AttendanceSession),
		byToken:  make(map[string]uuid.UUID),
		seen:     make(map[recordKey]bool),
	}
}

func (s *MemStore) PutSession(_ context.Context, session *models.AttendanceSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	s.byToken[session.Token] = session.ID
	return nil
}

func (s *MemStore) GetSession(_ context.Context, id uuid.UUID) (*models.AttendanceSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (s *MemStore) GetSessionByToken(_ context.Context, token string) (*models.AttendanceSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byToken[token]
	if !ok {
		return nil, nil
	}
	session := s.sessions[id]
	return &session, nil
}

func (s *MemStore) AppendRecord(_ context.Context, record *models.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey{sessionID: record.SessionID, studentID: record.StudentID}
	if s.seen[key] {
		return attendance.ErrDuplicateAttendance
	}

	s.seen[key] = true
	s.records = append(s.records, *record)
	return nil
}

func (s *MemStore) RecordsFor(_ context.Context, sessionID uuid.UUID) ([]models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := []models.AttendanceRecord{}
	for _, record := range s.records {
		if record.SessionID == sessionID {
			records = append(records, record)
		}
	}
	sortByMarkedAt(records)
	return records, nil
}

func (s *MemStore) HasRecord(_ context.Context, sessionID uuid.UUID, studentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[recordKey{sessionID: sessionID, studentID: studentID}], nil
}

func (s *MemStore) ListRecords(_ context.Context, arg attendance.ListRecordsParams) ([]models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := []models.AttendanceRecord{}
	for _, record := range s.records {
		if arg.SessionID != nil && record.SessionID != *arg.SessionID {
			continue
		}
		if arg.Date != nil {
			y1, m1, d1 := record.MarkedAt.UTC().Date()
			y2, m2, d2 := arg.Date.UTC().Date()
			if y1 != y2 || m1 != m2 || d1 != d2 {
				continue
			}
		}
		records = append(records, record)
	}
	sortByMarkedAt(records)
	return records, nil
}

func (s *MemStore) DeleteSessionsExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, session := range s.sessions {
		if session.ExpiresAt.Before(cutoff) {
			delete(s.sessions, id)
			delete(s.byToken, session.Token)
			deleted++
		}
	}
	return deleted, nil
}

func sortByMarkedAt(records []models.AttendanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].MarkedAt.Before(records[j].MarkedAt)
	})
}
