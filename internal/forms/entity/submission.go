package entity

import (
	"strings"
	"time"
)

// 审批流状态
const (
	StatusPendingHR         = "pending_hr"
	StatusPendingSupervisor = "pending_supervisor"
	StatusApproved          = "approved"
	StatusRejected          = "rejected"

	pendingPrefix = "pending"
)

// DefaultFlow 默认审批路由：先HR后主管
func DefaultFlow() StringArray {
	return StringArray{StatusPendingHR, StatusPendingSupervisor}
}

// IsPendingStatus 是否处于待审批阶段
func IsPendingStatus(status string) bool {
	return strings.HasPrefix(status, pendingPrefix)
}

// Submission 表单提交记录
// answers 以字段key为键，值按字段类型可为字符串、字符串数组、布尔值
// 或资产引用对象 {url, filename, mimeType, size}。
type Submission struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	FormID       string    `json:"form_id" gorm:"size:32;not null;index"`
	ProjectID    string    `json:"project_id" gorm:"size:32;index"`
	UserID       string    `json:"user_id" gorm:"size:32;not null;index"`
	Answers      JSONB     `json:"answers" gorm:"type:jsonb;not null;default:'{}'"`
	IsCheck      bool      `json:"isCheck" gorm:"not null;default:false"`
	Status       string    `json:"status,omitempty" gorm:"size:32;index"`
	RejectReason string    `json:"reject_reason,omitempty" gorm:"size:500"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Submission) TableName() string {
	return "form_submissions"
}
