package chat

import "time"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	Role      string    `gorm:"not null;size:16"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

// MessageItem is the wire shape of a stored message.
type MessageItem struct {
	ID        uint      `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func toItem(m ChatMessage) MessageItem {
	return MessageItem{ID: m.ID, Role: m.Role, Content: m.Content, Timestamp: m.CreatedAt}
}
