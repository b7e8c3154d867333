package tweet

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	tweetService "github.com/augustine-bot/augustine/backend/internal/service/tweet"
	"github.com/augustine-bot/augustine/backend/pkg/utils"
)

// Generator 推文生成能力
type Generator interface {
	Tweet(ctx context.Context) (tweetService.Generated, error)
	WiseTweet(ctx context.Context) (string, error)
	Respond(ctx context.Context, message string) (string, error)
}

// Handler 推文生成的HTTP处理器
type Handler struct {
	tweets Generator
}

// New 创建推文处理器
func New(tweets Generator) *Handler {
	return &Handler{tweets: tweets}
}

// RegisterRoutes 注册推文相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/tweet", h.handleTweet)
	r.Get("/wise_tweet", h.handleWiseTweet)
	r.Post("/tweet_response", h.handleTweetResponse)
}

// handleTweet 根据随机提示生成推文
func (h *Handler) handleTweet(w http.ResponseWriter, r *http.Request) {
	generated, err := h.tweets.Tweet(r.Context())
	if err != nil {
		respondFailure(w, "tweet", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, generated)
}

// handleWiseTweet 生成一条灵修短句
func (h *Handler) handleWiseTweet(w http.ResponseWriter, r *http.Request) {
	tweet, err := h.tweets.WiseTweet(r.Context())
	if err != nil {
		respondFailure(w, "wise_tweet", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"tweet": tweet})
}

// handleTweetResponse 为收到的消息生成推文长度的回复
func (h *Handler) handleTweetResponse(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Question string `json:"question"`
	}
	if !utils.DecodeJSON(w, r, &payload) {
		return
	}

	tweet, err := h.tweets.Respond(r.Context(), payload.Question)
	if err != nil {
		if errors.Is(err, tweetService.ErrMessageRequired) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondFailure(w, "tweet_response", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"tweet": tweet})
}

func respondFailure(w http.ResponseWriter, endpoint string, err error) {
	log.Printf("[tweet] %s failed: %v", endpoint, err)
	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
