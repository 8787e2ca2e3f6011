package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin UserRole = "admin"   // Quản trị nội dung bài học
	RoleUser  UserRole = "student" // Người học
)

type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username        string    `gorm:"size:150" json:"username"`
	Email           string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Password        string    `gorm:"type:text" json:"-"`
	GoogleID        *string   `gorm:"size:100;uniqueIndex" json:"-"`
	AIAPIKey        string    `gorm:"type:text" json:"-"` // đã mã hoá, dạng base64
	ProfileComplete bool      `gorm:"not null;default:false" json:"profileComplete"`
	Role            UserRole  `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) HasAPIKey() bool {
	return u.AIAPIKey != ""
}
