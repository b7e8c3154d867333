package store

import (
	"context"
	"sync"
	"time"

	"github.com/augustine-bot/augustine/backend/internal/model/chat"
)

// MemoryStore keeps history in process memory. Used when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   uint
	sessions map[string]chat.Session
	messages map[string][]chat.Message
	now      func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.Message),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) InsertMessage(_ context.Context, msg *chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	msg.ID = s.nextID
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}

	// keep per-session timestamps strictly increasing
	existing := s.messages[msg.SessionID]
	if n := len(existing); n > 0 && !msg.Timestamp.After(existing[n-1].Timestamp) {
		msg.Timestamp = existing[n-1].Timestamp.Add(time.Microsecond)
	}

	s.messages[msg.SessionID] = append(existing, *msg)
	return nil
}

func (s *MemoryStore) MessagesBySession(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.messages[sessionID]
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

func (s *MemoryStore) UpsertSession(_ context.Context, session chat.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.sessions[session.SessionID]; ok {
		existing.LastActive = now
		existing.Active = true
		s.sessions[session.SessionID] = existing
		return nil
	}

	if session.StartTime.IsZero() {
		session.StartTime = now
	}
	session.LastActive = now
	session.Active = true
	s.sessions[session.SessionID] = session
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
