package entity

import "time"

// 用户角色
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User 用户
// GeneratedPassword 保存创建时生成的初始密码，供管理员通过
// /auth/verify-user/:id 找回；用户自行改密后清空。
type User struct {
	ID                string    `json:"id" gorm:"primaryKey;size:32"`
	Name              string    `json:"name" gorm:"size:128;not null"`
	Email             string    `json:"email" gorm:"size:256;uniqueIndex;not null"`
	PasswordHash      string    `json:"-" gorm:"size:128;not null"`
	GeneratedPassword string    `json:"-" gorm:"size:64"`
	Role              string    `json:"role" gorm:"size:16;not null;default:user"`
	ProjectID         string    `json:"project_id" gorm:"size:32;index"`
	FormID            string    `json:"form_id" gorm:"size:32"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
