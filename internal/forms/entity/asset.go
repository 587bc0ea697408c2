package entity

import "time"

// MaxAssetSize 资产文件大小上限（5MB，入库前强制校验）
const MaxAssetSize = 5 * 1024 * 1024

// Asset 上传资产
// 提交答案中以URL字符串（或带预览元数据的完整对象）引用，不复制内容。
type Asset struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	UserID    string    `json:"user_id" gorm:"size:32;not null;index"`
	URL       string    `json:"url" gorm:"size:512;not null"`
	Filename  string    `json:"filename" gorm:"size:256;not null"`
	MimeType  string    `json:"mimeType" gorm:"size:128"`
	Size      int64     `json:"size" gorm:"not null"`
	IsImage   bool      `json:"is_image" gorm:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (Asset) TableName() string {
	return "assets"
}
