package chat

import "time"

// Mode selects how a session is meant to be used by the frontend.
type Mode string

const (
	ModeReference    Mode = "reference"
	ModeConversation Mode = "conversation"
)

// ParseMode normalises a request mode, defaulting to conversation.
func ParseMode(raw string) (Mode, bool) {
	switch Mode(raw) {
	case "":
		return ModeConversation, true
	case ModeReference, ModeConversation:
		return Mode(raw), true
	default:
		return "", false
	}
}

// Column widths shared by the gorm tags and request validation.
const (
	MaxSessionIDLength = 64
	MaxPersonaLength   = 32
)

// Session groups the turns of one conversation.
type Session struct {
	SessionID  string    `json:"session_id" gorm:"primaryKey;size:64"`
	UserID     string    `json:"user_id" gorm:"size:64"`
	Persona    string    `json:"persona" gorm:"size:32"`
	Mode       Mode      `json:"mode" gorm:"size:32"`
	StartTime  time.Time `json:"start_time"`
	LastActive time.Time `json:"last_active"`
	Active     bool      `json:"active" gorm:"default:true"`
}

// TableName binds Session to the chat_sessions table.
func (Session) TableName() string {
	return "chat_sessions"
}
