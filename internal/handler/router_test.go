package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	personaModel "github.com/augustine-bot/augustine/backend/internal/model/persona"
	aiService "github.com/augustine-bot/augustine/backend/internal/service/ai"
	chatService "github.com/augustine-bot/augustine/backend/internal/service/chat"
	tweetService "github.com/augustine-bot/augustine/backend/internal/service/tweet"
	"github.com/augustine-bot/augustine/backend/internal/store"
)

type echoProvider struct{}

func (echoProvider) Name() string { return "echo" }

func (echoProvider) Complete(_ context.Context, messages []aiService.Message) (string, error) {
	return "echo", nil
}

func newTestRouter() http.Handler {
	personas := personaModel.NewMemoryStore(personaModel.Seed())
	return NewRouter(Services{
		Personas: personas,
		Chat:     chatService.NewService(store.NewMemoryStore(), personas, nil, nil, echoProvider{}),
		Ask:      echoProvider{},
		Tweets:   tweetService.NewService(echoProvider{}, ""),
	})
}

func TestHealthRoutes(t *testing.T) {
	r := newTestRouter()

	for path, want := range map[string]string{
		"/health":        `{"status":"healthy"}`,
		"/api/v1/health": `{"status":"ok"}`,
	} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
		if strings.TrimSpace(resp.Body.String()) != want {
			t.Fatalf("%s: unexpected body %s", path, resp.Body.String())
		}
	}
}

func TestRoutesMounted(t *testing.T) {
	r := newTestRouter()

	cases := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/chat", `{"question":"hi"}`},
		{http.MethodPost, "/api/v1/chat", `{"question":"hi"}`},
		{http.MethodPost, "/ask", `{"question":"hi"}`},
		{http.MethodGet, "/wise_tweet", ""},
		{http.MethodPost, "/tweet_response", `{"question":"hi"}`},
		{http.MethodGet, "/api/v1/personas", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, bytes.NewReader([]byte(tc.body)))
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s %s: expected 200, got %d: %s", tc.method, tc.path, resp.Code, resp.Body.String())
		}
		if resp.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Fatalf("%s %s: missing CORS header", tc.method, tc.path)
		}
	}
}
