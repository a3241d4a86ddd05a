package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"column:username;type:text;not null;uniqueIndex" json:"username"`
	Password  string    `gorm:"column:password;type:text;not null" json:"-"` // bcrypt hash
	Role      UserRole  `gorm:"column:role;type:text;not null;default:'user'" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null" json:"createdAt"`
}

func (User) TableName() string { return "users" }
