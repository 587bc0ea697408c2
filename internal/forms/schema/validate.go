package schema

import (
	"fmt"
	"strings"

	"github.com/bitfantasy/formhub/internal/forms/entity"
)

// Rule 单字段校验规则
type Rule struct {
	Field entity.FormField
}

// RuleSet 按字段key索引的规则集，仅含required字段
type RuleSet map[string]Rule

// BuildRules 从字段定义构建校验规则集。
// 纯函数：同一字段列表总是产出同一规则集。key为空的畸形字段跳过，
// 不中断整个构建（字段定义来自外部，静默降级可接受）。
func BuildRules(fields []entity.FormField) RuleSet {
	rules := make(RuleSet)
	for _, f := range fields {
		if f.Key == "" || !f.Required {
			continue
		}
		rules[f.Key] = Rule{Field: f}
	}
	return rules
}

// Validate 按规则集校验答案映射，返回 key→错误消息；空映射表示通过。
// 不触碰网络与存储。
func (rs RuleSet) Validate(answers map[string]interface{}) map[string]string {
	errs := make(map[string]string)
	for key, rule := range rs {
		if msg := rule.check(answers[key]); msg != "" {
			errs[key] = msg
		}
	}
	return errs
}

func (r Rule) check(value interface{}) string {
	label := r.Field.Label
	if label == "" {
		label = r.Field.Key
	}

	switch r.Field.Type {
	case entity.FieldTypeFile:
		// 已上传引用（URL字符串）或带元数据的资产对象
		switch v := value.(type) {
		case string:
			if v != "" {
				return ""
			}
		case map[string]interface{}:
			if url, _ := v["url"].(string); url != "" {
				return ""
			}
		}
		return label + " is required"

	case entity.FieldTypeChecklist:
		items, ok := toStringSlice(value)
		if !ok || len(items) == 0 {
			return label + " is required"
		}
		return ""

	case entity.FieldTypePhone:
		s, _ := value.(string)
		if s == "" {
			return label + " is required"
		}
		if !phonePattern.MatchString(s) {
			return label + " must be a valid mobile number"
		}
		return ""

	case entity.FieldTypeText, entity.FieldTypeNumber, entity.FieldTypeEmail,
		entity.FieldTypeTextarea, entity.FieldTypeDate, entity.FieldTypeSelect,
		entity.FieldTypeRadio, entity.FieldTypeCheckbox:
		if stringify(value) == "" {
			return label + " is required"
		}
		return ""
	}

	return fmt.Sprintf("unknown field type %q", r.Field.Type)
}

// stringify 将标量值转为字符串（对齐客户端的宽松cast语义）
func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return fmt.Sprintf("%v", v)
	case int:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}

func toStringSlice(value interface{}) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
