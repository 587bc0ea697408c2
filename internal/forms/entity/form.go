package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONB JSONB类型
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// StringArray JSONB字符串数组类型
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan StringArray: %v", value)
	}
	return json.Unmarshal(bytes, a)
}

// FieldType 字段类型（封闭枚举，所有switch必须全覆盖）
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeNumber    FieldType = "number"
	FieldTypeEmail     FieldType = "email"
	FieldTypeTextarea  FieldType = "textarea"
	FieldTypeDate      FieldType = "date"
	FieldTypeSelect    FieldType = "select"
	FieldTypeRadio     FieldType = "radio"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeChecklist FieldType = "checklist"
	FieldTypePhone     FieldType = "phone"
	FieldTypeFile      FieldType = "file"
)

// Valid 是否为已知字段类型
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeEmail, FieldTypeTextarea,
		FieldTypeDate, FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox,
		FieldTypeChecklist, FieldTypePhone, FieldTypeFile:
		return true
	}
	return false
}

// HasOptions 该类型的值是否受options约束
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldTypeSelect, FieldTypeRadio, FieldTypeChecklist:
		return true
	case FieldTypeText, FieldTypeNumber, FieldTypeEmail, FieldTypeTextarea,
		FieldTypeDate, FieldTypeCheckbox, FieldTypePhone, FieldTypeFile:
		return false
	}
	return false
}

// FormField 表单字段定义
// key 在创建时由 label 派生（小写、空白转连字符），是答案映射的稳定标识，
// 同一表单内必须唯一。order 为 1..N 的稠密序号，决定渲染和校验顺序。
type FormField struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Key         string    `json:"key"`
	Type        FieldType `json:"type"`
	Placeholder string    `json:"placeholder,omitempty"`
	Required    bool      `json:"required"`
	Options     []string  `json:"options,omitempty"`
	Order       int       `json:"order"`
	Length      int       `json:"length,omitempty"`
}

// FieldList 字段列表（整体存储为JSONB列）
type FieldList []FormField

func (l FieldList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]FormField{})
	}
	return json.Marshal(l)
}

func (l *FieldList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan FieldList: %v", value)
	}
	return json.Unmarshal(bytes, l)
}

// 表单类型
const (
	FormTypeStandard        = "standard"
	FormTypeEmployeeRequest = "employee_request"
)

// Form 表单定义
type Form struct {
	ID          string      `json:"id" gorm:"primaryKey;size:32"`
	Title       string      `json:"title" gorm:"size:200;not null"`
	Description string      `json:"description" gorm:"type:text"`
	Type        string      `json:"type" gorm:"size:32;not null;default:standard;index"`
	IsActive    bool        `json:"isActive" gorm:"not null;default:false"`
	Flow        StringArray `json:"flow" gorm:"type:jsonb"`
	Fields      FieldList   `json:"fields" gorm:"type:jsonb;not null;default:'[]'"`
	CreatedBy   string      `json:"created_by" gorm:"size:32"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (Form) TableName() string {
	return "forms"
}

// HasFieldKey 表单内是否已存在该key
func (f *Form) HasFieldKey(key string) bool {
	for i := range f.Fields {
		if f.Fields[i].Key == key {
			return true
		}
	}
	return false
}
