package chat_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	chatmodel "github.com/augustine-bot/augustine/backend/internal/model/chat"
	"github.com/augustine-bot/augustine/backend/internal/model/persona"
	"github.com/augustine-bot/augustine/backend/internal/service/ai"
	chat "github.com/augustine-bot/augustine/backend/internal/service/chat"
	"github.com/augustine-bot/augustine/backend/internal/store"
)

type recordingStore struct {
	*store.MemoryStore

	writes   []chatmodel.Message
	readErr  error
	writeErr error
	upserts  []chatmodel.Session
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: store.NewMemoryStore()}
}

func (s *recordingStore) InsertMessage(ctx context.Context, msg *chatmodel.Message) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	if err := s.MemoryStore.InsertMessage(ctx, msg); err != nil {
		return err
	}
	s.writes = append(s.writes, *msg)
	return nil
}

func (s *recordingStore) MessagesBySession(ctx context.Context, id string) ([]chatmodel.Message, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.MemoryStore.MessagesBySession(ctx, id)
}

func (s *recordingStore) UpsertSession(ctx context.Context, session chatmodel.Session) error {
	s.upserts = append(s.upserts, session)
	return s.MemoryStore.UpsertSession(ctx, session)
}

type fakeRetriever struct {
	queries []string
	result  string
	err     error
}

func (f *fakeRetriever) Query(_ context.Context, text string) (string, error) {
	f.queries = append(f.queries, text)
	return f.result, f.err
}

type fakeCompleter struct {
	calls [][]ai.Message
	reply string
	err   error
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Complete(_ context.Context, messages []ai.Message) (string, error) {
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fixture struct {
	store     *recordingStore
	retriever *fakeRetriever
	completer *fakeCompleter
	svc       *chat.Service
}

func newFixture() *fixture {
	f := &fixture{
		store:     newRecordingStore(),
		retriever: &fakeRetriever{result: "# SOURCE: confessions.txt\n\nLate have I loved thee."},
		completer: &fakeCompleter{reply: "Grace is the gift of God."},
	}
	f.svc = chat.NewService(
		f.store,
		persona.NewMemoryStore(persona.Seed()),
		ai.NewPersonaPromptManager(),
		chat.NewAssembler(f.retriever),
		f.completer,
	)
	return f
}

func seedTurns(t *testing.T, st store.Store, sessionID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		role := chatmodel.RoleUser
		if i%2 == 1 {
			role = chatmodel.RoleAssistant
		}
		msg := &chatmodel.Message{SessionID: sessionID, UserID: chat.DefaultUserID, Role: role, Message: fmt.Sprintf("turn %d", i)}
		if err := st.InsertMessage(context.Background(), msg); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestResolveSession(t *testing.T) {
	if got := chat.ResolveSession("abc"); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := chat.ResolveSession("")
		if id == "" {
			t.Fatal("empty session id")
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate session id %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestChatNewSession(t *testing.T) {
	f := newFixture()

	reply, err := f.svc.Chat(context.Background(), chat.Request{Question: "What does grace mean?"})
	if err != nil {
		t.Fatalf("Chat err: %v", err)
	}
	if reply.SessionID == "" {
		t.Fatal("expected a generated session id")
	}
	if reply.Response != "Grace is the gift of God." {
		t.Fatalf("unexpected response: %q", reply.Response)
	}

	if len(f.retriever.queries) != 1 || f.retriever.queries[0] != "What does grace mean?" {
		t.Fatalf("expected one retrieval for the question, got %v", f.retriever.queries)
	}

	if len(f.completer.calls) != 1 {
		t.Fatalf("expected one completion, got %d", len(f.completer.calls))
	}
	msgs := f.completer.calls[0]
	system, _ := ai.NewPersonaPromptManager().SystemPrompt("Augustine")
	if msgs[0].Role != ai.RoleSystem || msgs[0].Content != system {
		t.Fatalf("unexpected system message: %+v", msgs[0])
	}
	if !strings.HasSuffix(msgs[1].Content, "\n\nWhat does grace mean?") {
		t.Fatalf("user message should end with the question: %q", msgs[1].Content)
	}
	if !strings.Contains(msgs[1].Content, f.retriever.result) {
		t.Fatalf("context should contain retrieval verbatim: %q", msgs[1].Content)
	}

	if len(f.store.writes) != 2 {
		t.Fatalf("expected two writes, got %d", len(f.store.writes))
	}
	if f.store.writes[0].Role != chatmodel.RoleUser || f.store.writes[1].Role != chatmodel.RoleAssistant {
		t.Fatalf("unexpected write order: %s, %s", f.store.writes[0].Role, f.store.writes[1].Role)
	}
	for _, w := range f.store.writes {
		if w.SessionID != reply.SessionID {
			t.Fatalf("write for wrong session: %s", w.SessionID)
		}
	}
	if len(reply.History) != 2 {
		t.Fatalf("expected history of 2, got %d", len(reply.History))
	}

	if len(f.store.upserts) != 1 || f.store.upserts[0].Mode != chatmodel.ModeConversation || f.store.upserts[0].Persona != "Augustine" {
		t.Fatalf("unexpected session upserts: %+v", f.store.upserts)
	}
}

func TestChatMetaQuestionSkipsRetrieval(t *testing.T) {
	f := newFixture()
	seedTurns(t, f.store.MemoryStore, "s1", 2)

	_, err := f.svc.Chat(context.Background(), chat.Request{Question: "  What did we DISCUSS? ", SessionID: "s1"})
	if err != nil {
		t.Fatalf("Chat err: %v", err)
	}

	if len(f.retriever.queries) != 0 {
		t.Fatalf("meta question must not call retrieval: %v", f.retriever.queries)
	}
	if len(f.completer.calls) != 1 {
		t.Fatalf("expected completion, got %d calls", len(f.completer.calls))
	}

	want := "Here's our conversation history:\n\nHuman: turn 0\nAugustine: turn 1\n\n  What did we DISCUSS? "
	if got := f.completer.calls[0][1].Content; got != want {
		t.Fatalf("unexpected user content:\n%q\nwant\n%q", got, want)
	}
}

func TestChatExistingSessionUsesWindowAndRetrieval(t *testing.T) {
	f := newFixture()
	seedTurns(t, f.store.MemoryStore, "s1", 6)

	reply, err := f.svc.Chat(context.Background(), chat.Request{Question: "And what of memory?", SessionID: "s1", Mode: "reference"})
	if err != nil {
		t.Fatalf("Chat err: %v", err)
	}
	if reply.SessionID != "s1" {
		t.Fatalf("session id changed: %s", reply.SessionID)
	}
	if len(f.retriever.queries) != 1 {
		t.Fatalf("expected one retrieval, got %d", len(f.retriever.queries))
	}

	content := f.completer.calls[0][1].Content
	if strings.Contains(content, "turn 1\n") || strings.Contains(content, "turn 0") {
		t.Fatalf("window should only hold the last 4 turns: %q", content)
	}
	if !strings.Contains(content, "Human: turn 2\nAugustine: turn 3\nHuman: turn 4\nAugustine: turn 5") {
		t.Fatalf("window out of order: %q", content)
	}
	if !strings.Contains(content, "Relevant passages from my works:") {
		t.Fatalf("missing passages header: %q", content)
	}
	if len(reply.History) != 8 {
		t.Fatalf("expected 8 messages, got %d", len(reply.History))
	}
	if f.store.upserts[0].Mode != chatmodel.ModeReference {
		t.Fatalf("mode not stored: %s", f.store.upserts[0].Mode)
	}
}

func TestChatTimeoutReturnsApologyWithoutWrites(t *testing.T) {
	f := newFixture()
	f.completer.err = fmt.Errorf("openai: %w", ai.ErrCompletionTimeout)

	reply, err := f.svc.Chat(context.Background(), chat.Request{Question: "What is time?"})
	if err != nil {
		t.Fatalf("timeout should be recovered, got %v", err)
	}
	if !reply.TimedOut || reply.Response != chat.TimeoutReply {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if len(f.store.writes) != 0 {
		t.Fatalf("no turns should be stored on timeout, got %d", len(f.store.writes))
	}
}

func TestChatProviderErrorPropagates(t *testing.T) {
	f := newFixture()
	apiErr := &ai.APIError{Provider: "openai", StatusCode: 500, Message: "overloaded"}
	f.completer.err = apiErr

	_, err := f.svc.Chat(context.Background(), chat.Request{Question: "Why?"})
	if !errors.Is(err, apiErr) {
		t.Fatalf("expected api error, got %v", err)
	}
	if len(f.store.writes) != 0 {
		t.Fatalf("no turns should be stored on failure, got %d", len(f.store.writes))
	}
}

func TestChatHistoryReadFailureDegrades(t *testing.T) {
	f := newFixture()
	f.store.readErr = errors.New("connection refused")

	reply, err := f.svc.Chat(context.Background(), chat.Request{Question: "What is evil?", SessionID: "s1"})
	if err != nil {
		t.Fatalf("read failure should not fail the request: %v", err)
	}
	if len(f.retriever.queries) != 1 {
		t.Fatalf("empty history should trigger retrieval, got %d", len(f.retriever.queries))
	}
	if !strings.HasPrefix(f.completer.calls[0][1].Content, "Relevant background with original text:") {
		t.Fatalf("expected no-history context: %q", f.completer.calls[0][1].Content)
	}
	if len(reply.History) != 2 {
		t.Fatalf("fallback history should hold the new turns, got %d", len(reply.History))
	}
}

func TestChatWriteFailureStillAnswers(t *testing.T) {
	f := newFixture()
	f.store.writeErr = errors.New("disk full")

	reply, err := f.svc.Chat(context.Background(), chat.Request{Question: "What is truth?"})
	if err != nil {
		t.Fatalf("write failure should not fail the request: %v", err)
	}
	if reply.Response != "Grace is the gift of God." {
		t.Fatalf("answer lost: %q", reply.Response)
	}
}

func TestChatValidation(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Chat(context.Background(), chat.Request{Question: "   "}); !errors.Is(err, chat.ErrQuestionRequired) {
		t.Fatalf("expected ErrQuestionRequired, got %v", err)
	}
	if _, err := f.svc.Chat(context.Background(), chat.Request{Question: "q", Mode: "debate"}); !errors.Is(err, chat.ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
	if _, err := f.svc.Chat(context.Background(), chat.Request{Question: "q", SessionID: strings.Repeat("s", 65)}); !errors.Is(err, chat.ErrSessionIDTooLong) {
		t.Fatalf("expected ErrSessionIDTooLong, got %v", err)
	}
	if _, err := f.svc.Chat(context.Background(), chat.Request{Question: "q", Persona: strings.Repeat("p", 33)}); !errors.Is(err, chat.ErrPersonaTooLong) {
		t.Fatalf("expected ErrPersonaTooLong, got %v", err)
	}
	if len(f.completer.calls) != 0 {
		t.Fatal("invalid requests must not reach the model")
	}
	if len(f.store.writes) != 0 {
		t.Fatal("invalid requests must not be stored")
	}
}

func TestValidateSessionIDCountsCharacters(t *testing.T) {
	if err := chat.ValidateSessionID(strings.Repeat("é", 64)); err != nil {
		t.Fatalf("64 characters should fit: %v", err)
	}
	if err := chat.ValidateSessionID(strings.Repeat("é", 65)); !errors.Is(err, chat.ErrSessionIDTooLong) {
		t.Fatalf("expected ErrSessionIDTooLong, got %v", err)
	}
}

func TestChatForwardsQuestionAsSent(t *testing.T) {
	f := newFixture()
	question := "  What is grace?\n"

	if _, err := f.svc.Chat(context.Background(), chat.Request{Question: question}); err != nil {
		t.Fatalf("Chat err: %v", err)
	}
	if got := f.completer.calls[0][1].Content; !strings.HasSuffix(got, "\n\n"+question) {
		t.Fatalf("user message should end with the untouched question: %q", got)
	}
	if f.store.writes[0].Message != question {
		t.Fatalf("stored question altered: %q", f.store.writes[0].Message)
	}
}

func TestChatResumeKeepsSessionPersonaAndMode(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Chat(ctx, chat.Request{Question: "Who are you?", Persona: "Plotinus", Mode: "reference", SessionID: "s1"}); err != nil {
		t.Fatalf("Chat err: %v", err)
	}
	if _, err := f.svc.Chat(ctx, chat.Request{Question: "And then?", SessionID: "s1"}); err != nil {
		t.Fatalf("Chat err: %v", err)
	}

	if got := f.completer.calls[1][0].Content; got != ai.FallbackSystemPrompt {
		t.Fatalf("resumed turn should keep the stored persona, got system %q", got)
	}
	if !strings.Contains(f.completer.calls[1][1].Content, "Plotinus: Grace is the gift of God.") {
		t.Fatalf("window should use the stored persona name: %q", f.completer.calls[1][1].Content)
	}
	last := f.store.upserts[len(f.store.upserts)-1]
	if last.Persona != "Plotinus" || last.Mode != chatmodel.ModeReference {
		t.Fatalf("unexpected session upsert: %+v", last)
	}

	if _, err := f.svc.Chat(ctx, chat.Request{Question: "Now as the bishop.", Persona: "Augustine", SessionID: "s1"}); err != nil {
		t.Fatalf("Chat err: %v", err)
	}
	system, _ := ai.NewPersonaPromptManager().SystemPrompt("Augustine")
	if got := f.completer.calls[2][0].Content; got != system {
		t.Fatalf("explicit persona should win over the stored one, got %q", got)
	}
}

func TestChatUnknownPersonaFallsBack(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Chat(context.Background(), chat.Request{Question: "Who are you?", Persona: "Plotinus"}); err != nil {
		t.Fatalf("Chat err: %v", err)
	}
	if got := f.completer.calls[0][0].Content; got != ai.FallbackSystemPrompt {
		t.Fatalf("expected fallback prompt, got %q", got)
	}
}

func TestRecordTurnRejectsUnknownRole(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.RecordTurn(context.Background(), "u", "s", chatmodel.Role("system"), "x"); !errors.Is(err, chat.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}
