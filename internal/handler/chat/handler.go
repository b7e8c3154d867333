package chat

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/augustine-bot/augustine/backend/internal/analysis/voice"
	"github.com/augustine-bot/augustine/backend/internal/model/chat"
	"github.com/augustine-bot/augustine/backend/internal/service/ai"
	chatService "github.com/augustine-bot/augustine/backend/internal/service/chat"
	"github.com/augustine-bot/augustine/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc  *chatService.Service
	ask      ai.Provider
	polish   voice.Options
	upgrader websocket.Upgrader

	// websocket 读超时与心跳间隔
	readTimeout  time.Duration
	pingInterval time.Duration
}

// New 创建聊天处理器；ask 为 /ask 使用的本地模型，可为空；/ask 的回答仅在 polish 开启时润色
func New(chatSvc *chatService.Service, ask ai.Provider, polish voice.Options) *Handler {
	return &Handler{
		chatSvc:      chatSvc,
		ask:          ask,
		polish:       polish,
		readTimeout:  wsReadTimeout,
		pingInterval: wsPingInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册根路径下的聊天路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/ask", h.handleAsk)
}

// RegisterAPIRoutes 注册 /api/v1 下的聊天路由
func (h *Handler) RegisterAPIRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/chat/ws", h.handleWebSocket)
}

type chatRequest struct {
	Question  string  `json:"question"`
	Mode      string  `json:"mode"`
	Persona   string  `json:"persona"`
	SessionID *string `json:"session_id"`
}

func (p chatRequest) toServiceRequest() chatService.Request {
	req := chatService.Request{
		Question: p.Question,
		Mode:     p.Mode,
		Persona:  p.Persona,
	}
	if p.SessionID != nil {
		req.SessionID = strings.TrimSpace(*p.SessionID)
	}
	return req
}

type chatResponse struct {
	Response    string         `json:"response"`
	SessionID   string         `json:"session_id"`
	ChatHistory []chat.Message `json:"chat_history"`
}

// handleChat 处理一次会话聊天
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if !utils.DecodeJSON(w, r, &payload) {
		return
	}

	reply, err := h.chatSvc.Chat(r.Context(), payload.toServiceRequest())
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Printf("[chat] error in chat endpoint: %v", err)
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	history := reply.History
	if history == nil {
		history = []chat.Message{}
	}
	utils.RespondJSON(w, http.StatusOK, chatResponse{
		Response:    reply.Response,
		SessionID:   reply.SessionID,
		ChatHistory: history,
	})
}

// handleAsk 无状态问答，直接调用本地模型
func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Question string `json:"question"`
	}
	if !utils.DecodeJSON(w, r, &payload) {
		return
	}

	question := strings.TrimSpace(payload.Question)
	if question == "" {
		utils.RespondError(w, http.StatusBadRequest, chatService.ErrQuestionRequired.Error())
		return
	}
	if h.ask == nil {
		utils.RespondError(w, http.StatusInternalServerError, ai.ErrProviderUnavailable.Error())
		return
	}

	answer, err := h.ask.Complete(r.Context(), []ai.Message{{Role: ai.RoleUser, Content: question}})
	if err != nil {
		log.Printf("[chat] ask failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"response": h.polish.Apply(answer)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, chatService.ErrQuestionRequired),
		errors.Is(err, chatService.ErrInvalidMode),
		errors.Is(err, chatService.ErrSessionIDTooLong),
		errors.Is(err, chatService.ErrPersonaTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
