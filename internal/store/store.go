// Package store persists chat turns and session bookkeeping.
package store

import (
	"context"
	"errors"

	"github.com/augustine-bot/augustine/backend/internal/model/chat"
)

var ErrSessionNotFound = errors.New("session not found")

// Store is the persistence contract used by the chat service.
type Store interface {
	// InsertMessage appends one turn. ID and a zero Timestamp are filled in.
	InsertMessage(ctx context.Context, msg *chat.Message) error
	// MessagesBySession returns the turns of a session oldest first.
	MessagesBySession(ctx context.Context, sessionID string) ([]chat.Message, error)
	// UpsertSession creates the session row or refreshes its last_active.
	UpsertSession(ctx context.Context, session chat.Session) error
	GetSession(ctx context.Context, sessionID string) (chat.Session, error)
	Migrate(ctx context.Context) error
	Close() error
}
