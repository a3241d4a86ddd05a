package models

import "time"

type Review struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AgentID      string    `gorm:"column:agent_id;type:uuid;not null;index" json:"agentId"`
	AuthorName   string    `gorm:"column:author_name;type:text;not null" json:"authorName"`
	AuthorAvatar *string   `gorm:"column:author_avatar;type:text" json:"authorAvatar"`
	Rating       int       `gorm:"column:rating;not null" json:"rating"` // 1..5
	Comment      string    `gorm:"column:comment;type:text;not null" json:"comment"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz;not null;index" json:"createdAt"`
}

func (Review) TableName() string { return "reviews" }
