package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Conversation struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"column:title;type:text;not null" json:"title"`
	AgentSlug *string   `gorm:"column:agent_slug;type:text;index" json:"agentSlug"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null" json:"createdAt"`

	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

func (Conversation) TableName() string { return "conversations" }

type Message struct {
	ID             int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ConversationID int64          `gorm:"column:conversation_id;not null;index" json:"conversationId"`
	Role           string         `gorm:"column:role;type:text;not null" json:"role"` // "user" | "assistant"
	Content        string         `gorm:"column:content;type:text;not null" json:"content"`
	Metadata       datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;type:timestamptz;not null;index" json:"createdAt"`
}

func (Message) TableName() string { return "messages" }
