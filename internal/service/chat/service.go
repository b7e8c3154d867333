package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/augustine-bot/augustine/backend/internal/model/chat"
	"github.com/augustine-bot/augustine/backend/internal/model/persona"
	"github.com/augustine-bot/augustine/backend/internal/service/ai"
	"github.com/augustine-bot/augustine/backend/internal/store"
)

// DefaultUserID owns every turn; the service has no user accounts.
const DefaultUserID = "default_user"

// TimeoutReply is returned in place of an answer when the model times out.
const TimeoutReply = "Request timed out. Please try again later."

var (
	ErrQuestionRequired = errors.New("question is required")
	ErrInvalidMode      = errors.New("mode must be reference or conversation")
	ErrInvalidRole      = errors.New("role must be user or assistant")
	ErrSessionIDTooLong = fmt.Errorf("session_id must be at most %d characters", chat.MaxSessionIDLength)
	ErrPersonaTooLong   = fmt.Errorf("persona must be at most %d characters", chat.MaxPersonaLength)
)

// Request is one chat turn as received from a client.
type Request struct {
	Question  string
	Mode      string
	Persona   string
	SessionID string
}

// Reply is the outcome of a chat turn.
type Reply struct {
	Response  string
	SessionID string
	History   []chat.Message
	// TimedOut is set when Response is TimeoutReply and nothing was stored.
	TimedOut bool
}

// Service manages sessions and turns around one completion per question.
type Service struct {
	store     store.Store
	personas  persona.Store
	prompts   *ai.PersonaPromptManager
	assembler *Assembler
	completer ai.Provider
	now       func() time.Time
}

// NewService wires the chat pipeline.
func NewService(st store.Store, personas persona.Store, prompts *ai.PersonaPromptManager, assembler *Assembler, completer ai.Provider) *Service {
	if prompts == nil {
		prompts = ai.NewPersonaPromptManager()
	}
	if assembler == nil {
		assembler = NewAssembler(nil)
	}
	return &Service{
		store:     st,
		personas:  personas,
		prompts:   prompts,
		assembler: assembler,
		completer: completer,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ResolveSession returns id unchanged, or a fresh identifier when id is empty.
func ResolveSession(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// LoadHistory returns the turns of sessionID oldest first. Read failures
// degrade to an empty history.
func (s *Service) LoadHistory(ctx context.Context, sessionID string) []chat.Message {
	messages, err := s.store.MessagesBySession(ctx, sessionID)
	if err != nil {
		log.Printf("[chat] load history for session=%s failed: %v", sessionID, err)
		return nil
	}
	return messages
}

// RecordTurn appends one message to sessionID.
func (s *Service) RecordTurn(ctx context.Context, userID, sessionID string, role chat.Role, message string) (chat.Message, error) {
	if !role.Valid() {
		return chat.Message{}, ErrInvalidRole
	}

	msg := chat.Message{
		UserID:    userID,
		SessionID: sessionID,
		Role:      role,
		Message:   message,
		Timestamp: s.now(),
	}
	if err := s.store.InsertMessage(ctx, &msg); err != nil {
		return chat.Message{}, fmt.Errorf("record %s turn: %w", role, err)
	}
	return msg, nil
}

// ValidateSessionID rejects ids that do not fit the session_id column.
func ValidateSessionID(id string) error {
	if utf8.RuneCountInString(id) > chat.MaxSessionIDLength {
		return ErrSessionIDTooLong
	}
	return nil
}

// Validate checks a request before anything is read or generated.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return ErrQuestionRequired
	}
	if _, ok := chat.ParseMode(r.Mode); !ok {
		return ErrInvalidMode
	}
	if err := ValidateSessionID(r.SessionID); err != nil {
		return err
	}
	if utf8.RuneCountInString(r.Persona) > chat.MaxPersonaLength {
		return ErrPersonaTooLong
	}
	return nil
}

// resume fills an omitted persona and mode from the stored session row.
func (s *Service) resume(ctx context.Context, req *Request) {
	if req.SessionID == "" || (req.Persona != "" && req.Mode != "") {
		return
	}
	session, err := s.store.GetSession(ctx, req.SessionID)
	if err != nil {
		if !errors.Is(err, store.ErrSessionNotFound) {
			log.Printf("[chat] load session=%s failed: %v", req.SessionID, err)
		}
		return
	}
	if req.Persona == "" {
		req.Persona = session.Persona
	}
	if req.Mode == "" {
		req.Mode = string(session.Mode)
	}
}

// Chat runs one full turn: resolve session, assemble context, complete, persist.
// The question is forwarded and stored as sent.
func (s *Service) Chat(ctx context.Context, req Request) (Reply, error) {
	if err := req.Validate(); err != nil {
		return Reply{}, err
	}

	if s.completer == nil {
		return Reply{}, fmt.Errorf("chat: %w", ai.ErrProviderUnavailable)
	}

	s.resume(ctx, &req)
	mode, ok := chat.ParseMode(req.Mode)
	if !ok {
		mode = chat.ModeConversation
	}
	question := req.Question

	sessionID := ResolveSession(req.SessionID)
	prior := s.LoadHistory(ctx, sessionID)

	p, known := persona.Resolve(s.personas, req.Persona)
	if !known {
		log.Printf("[chat] unknown persona %q, using fallback prompt", p.ID)
	}

	assembled := s.assembler.Assemble(ctx, question, prior, p.Name)
	messages := s.prompts.BuildMessages(p.ID, assembled, question)

	log.Printf("[chat] session=%s persona=%s mode=%s history=%d", sessionID, p.ID, mode, len(prior))

	answer, err := s.completer.Complete(ctx, messages)
	if err != nil {
		if ai.IsTimeout(err) {
			log.Printf("[chat] completion timed out for session=%s: %v", sessionID, err)
			return Reply{Response: TimeoutReply, SessionID: sessionID, History: prior, TimedOut: true}, nil
		}
		return Reply{}, err
	}

	fallback := append([]chat.Message(nil), prior...)
	if msg, err := s.RecordTurn(ctx, DefaultUserID, sessionID, chat.RoleUser, question); err != nil {
		log.Printf("[chat] session=%s: %v", sessionID, err)
	} else {
		fallback = append(fallback, msg)
	}
	if msg, err := s.RecordTurn(ctx, DefaultUserID, sessionID, chat.RoleAssistant, answer); err != nil {
		log.Printf("[chat] session=%s: %v", sessionID, err)
	} else {
		fallback = append(fallback, msg)
	}

	now := s.now()
	if err := s.store.UpsertSession(ctx, chat.Session{
		SessionID:  sessionID,
		UserID:     DefaultUserID,
		Persona:    p.ID,
		Mode:       mode,
		StartTime:  now,
		LastActive: now,
		Active:     true,
	}); err != nil {
		log.Printf("[chat] upsert session=%s failed: %v", sessionID, err)
	}

	history, err := s.store.MessagesBySession(ctx, sessionID)
	if err != nil {
		log.Printf("[chat] reload history for session=%s failed: %v", sessionID, err)
		history = fallback
	}

	return Reply{Response: answer, SessionID: sessionID, History: history}, nil
}
