package chat

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	chatService "github.com/augustine-bot/augustine/backend/internal/service/chat"
	"github.com/augustine-bot/augustine/backend/pkg/utils"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 54 * time.Second
)

type inboundMessage struct {
	Type     string `json:"type"`
	Question string `json:"question"`
	Persona  string `json:"persona"`
	Mode     string `json:"mode"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// wsConn 串行化写操作
type wsConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *wsConn) send(msg outgoingMessage) {
	msg.Timestamp = time.Now().Unix()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write %s failed: %v", msg.Type, err)
	}
}

// handleWebSocket 每条 question 消息执行一次完整的聊天轮次
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	requested := r.URL.Query().Get("session_id")
	if err := chatService.ValidateSessionID(requested); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sessionID := chatService.ResolveSession(requested)

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	conn := &wsConn{Conn: raw}
	defer conn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	extend := func() {
		conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	}
	extend()
	conn.SetPongHandler(func(string) error {
		extend()
		return nil
	})

	go pingLoop(ctx, conn, h.pingInterval)

	conn.send(outgoingMessage{
		Type:      "connected",
		SessionID: sessionID,
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}
		extend()

		switch msg.Type {
		case "question":
			h.answer(ctx, conn, sessionID, msg)
			// 轮次期间不会处理 pong，结束后重新计时
			extend()
		default:
			conn.send(outgoingMessage{
				Type: "error",
				Data: map[string]string{"message": "unsupported message type: " + msg.Type},
			})
		}
	}
}

func (h *Handler) answer(ctx context.Context, conn *wsConn, sessionID string, msg inboundMessage) {
	reply, err := h.chatSvc.Chat(ctx, chatService.Request{
		Question:  msg.Question,
		Mode:      msg.Mode,
		Persona:   msg.Persona,
		SessionID: sessionID,
	})
	if err != nil {
		log.Printf("[websocket] chat failed for session=%s: %v", sessionID, err)
		conn.send(outgoingMessage{
			Type:      "error",
			SessionID: sessionID,
			Data:      map[string]string{"message": err.Error()},
		})
		return
	}

	conn.send(outgoingMessage{
		Type:      "answer",
		SessionID: reply.SessionID,
		Data:      map[string]any{"response": reply.Response, "timedOut": reply.TimedOut},
	})
}

// pingLoop 定期发送ping消息
func pingLoop(ctx context.Context, conn *wsConn, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
