package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/augustine-bot/augustine/backend/internal/model/chat"
)

func openSQLite(t *testing.T) *GormStore {
	t.Helper()
	ctx := context.Background()

	s, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate err: %v", err)
	}
	return s
}

func TestGormStoreRoundTripsHistory(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	turns := []chat.Message{
		{UserID: "u", SessionID: "s1", Role: chat.RoleUser, Message: "What is grace?", Timestamp: base},
		{UserID: "u", SessionID: "s1", Role: chat.RoleAssistant, Message: "Grace is a gift.", Timestamp: base.Add(time.Second)},
		{UserID: "u", SessionID: "other", Role: chat.RoleUser, Message: "unrelated", Timestamp: base},
	}
	for i := range turns {
		if err := s.InsertMessage(ctx, &turns[i]); err != nil {
			t.Fatalf("InsertMessage err: %v", err)
		}
		if turns[i].ID == 0 {
			t.Fatal("expected id to be assigned")
		}
	}

	got, err := s.MessagesBySession(ctx, "s1")
	if err != nil {
		t.Fatalf("MessagesBySession err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].Role != chat.RoleUser || got[1].Role != chat.RoleAssistant {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestGormStoreEmptyHistory(t *testing.T) {
	s := openSQLite(t)

	got, err := s.MessagesBySession(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("MessagesBySession err: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty history, got %d", len(got))
	}
}

func TestGormStoreUpsertSession(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	session := chat.Session{SessionID: "s1", UserID: "u", Persona: "Augustine", Mode: chat.ModeConversation}
	if err := s.UpsertSession(ctx, session); err != nil {
		t.Fatalf("first UpsertSession err: %v", err)
	}
	first, err := s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}

	if err := s.UpsertSession(ctx, session); err != nil {
		t.Fatalf("second UpsertSession err: %v", err)
	}
	second, err := s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}

	if second.LastActive.Before(first.LastActive) {
		t.Fatalf("last_active went backwards: %v -> %v", first.LastActive, second.LastActive)
	}
	if !second.Active || second.Persona != "Augustine" {
		t.Fatalf("unexpected session %+v", second)
	}
}

func TestGormStoreGetSessionNotFound(t *testing.T) {
	s := openSQLite(t)
	if _, err := s.GetSession(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", "dsn"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
