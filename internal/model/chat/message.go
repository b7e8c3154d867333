package chat

import "time"

// Role tags who authored a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the persisted roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one persisted turn of a session. Rows are append-only.
type Message struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"size:64"`
	SessionID string    `json:"session_id" gorm:"size:64;index"`
	Role      Role      `json:"role" gorm:"size:16"`
	Message   string    `json:"message" gorm:"type:text"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
}

// TableName binds Message to the chat_history table.
func (Message) TableName() string {
	return "chat_history"
}
