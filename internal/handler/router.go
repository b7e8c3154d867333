package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/augustine-bot/augustine/backend/internal/analysis/voice"
	"github.com/augustine-bot/augustine/backend/internal/handler/chat"
	"github.com/augustine-bot/augustine/backend/internal/handler/persona"
	"github.com/augustine-bot/augustine/backend/internal/handler/tweet"
	middlewarePkg "github.com/augustine-bot/augustine/backend/internal/middleware"
	personaModel "github.com/augustine-bot/augustine/backend/internal/model/persona"
	aiService "github.com/augustine-bot/augustine/backend/internal/service/ai"
	chatService "github.com/augustine-bot/augustine/backend/internal/service/chat"
	tweetService "github.com/augustine-bot/augustine/backend/internal/service/tweet"
	"github.com/augustine-bot/augustine/backend/pkg/utils"
)

// Services groups what the HTTP surface delegates to.
type Services struct {
	Personas personaModel.Store
	Chat     *chatService.Service
	Ask      aiService.Provider
	Tweets   *tweetService.Service
	Voice    voice.Options
}

// NewRouter wires HTTP routes to core services.
func NewRouter(svc Services) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	personaHandler := persona.New(svc.Personas)
	chatHandler := chat.New(svc.Chat, svc.Ask, svc.Voice)
	tweetHandler := tweet.New(svc.Tweets)

	chatHandler.RegisterRoutes(r)
	tweetHandler.RegisterRoutes(r)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		personaHandler.RegisterRoutes(api)
		chatHandler.RegisterAPIRoutes(api)
	})

	return r
}
