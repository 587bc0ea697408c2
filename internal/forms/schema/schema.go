// Package schema implements the dynamic form pipeline: building a validation
// ruleset from a field list, validating an answer map against it, and
// normalizing answers into their wire shape. All functions are pure so the
// same logic serves the HTTP handlers and the Excel bulk importer.
package schema

import (
	"regexp"
	"strings"

	"github.com/bitfantasy/formhub/internal/forms/entity"
)

// phonePattern 手机号规则：本地05或国际9665前缀 + 8位数字
var phonePattern = regexp.MustCompile(`^(9665|05)[0-9]{8}$`)

// DeriveKey 由label派生字段key：小写、空白转连字符
func DeriveKey(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	return strings.Join(strings.Fields(key), "-")
}

// Renumber 按当前切片顺序将order重排为稠密的1..N
func Renumber(fields []entity.FormField) {
	for i := range fields {
		fields[i].Order = i + 1
	}
}

// FieldOrder 重排请求中的单项
type FieldOrder struct {
	ID    string `json:"id" binding:"required"`
	Order int    `json:"order"`
}

// Reorder 依据请求的相对次序重排字段并稠密重编号。
// 请求中order值只决定相对次序，结果总是1..N无空洞；
// 请求未提及的字段保持原有相对位置排在其后。
func Reorder(fields []entity.FormField, orders []FieldOrder) []entity.FormField {
	rank := make(map[string]int, len(orders))
	for _, o := range orders {
		rank[o.ID] = o.Order
	}

	mentioned := make([]entity.FormField, 0, len(fields))
	rest := make([]entity.FormField, 0)
	for _, f := range fields {
		if _, ok := rank[f.ID]; ok {
			mentioned = append(mentioned, f)
		} else {
			rest = append(rest, f)
		}
	}

	// 稳定插入排序，保持同序号字段的原有相对次序
	for i := 1; i < len(mentioned); i++ {
		for j := i; j > 0 && rank[mentioned[j].ID] < rank[mentioned[j-1].ID]; j-- {
			mentioned[j], mentioned[j-1] = mentioned[j-1], mentioned[j]
		}
	}

	result := append(mentioned, rest...)
	Renumber(result)
	return result
}

// SortByOrder 按order升序排列（渲染与校验的遍历次序）
func SortByOrder(fields []entity.FormField) {
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && fields[j].Order < fields[j-1].Order; j-- {
			fields[j], fields[j-1] = fields[j-1], fields[j]
		}
	}
}
