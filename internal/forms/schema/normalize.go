package schema

import (
	"strings"
	"time"

	"github.com/bitfantasy/formhub/internal/forms/entity"
)

// 日期值接受的输入格式（date-only在前，避免时区换算）
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NormalizeDate 将日期值规整为 YYYY-MM-DD。
// 始终取解析结果自身的年/月/日字段，不做UTC换算，避免跨时区的前后一天偏移。
func NormalizeDate(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format("2006-01-02"), true
			}
		}
		return "", false
	case time.Time:
		return v.Format("2006-01-02"), true
	}
	return "", false
}

// NormalizeAnswers 组装最终答案映射：从提交的原始值出发，按字段类型做规整。
// date → YYYY-MM-DD；checklist → 字符串数组；带length的文本截断到上限；
// select/radio的非空值必须属于options。没有匹配字段key的答案原样保留。
// 返回规整结果与 key→错误消息（形状不合法时）。
func NormalizeAnswers(fields []entity.FormField, answers map[string]interface{}) (map[string]interface{}, map[string]string) {
	out := make(map[string]interface{}, len(answers))
	for k, v := range answers {
		out[k] = v
	}
	errs := make(map[string]string)

	for _, f := range fields {
		if f.Key == "" {
			continue
		}
		value, present := out[f.Key]
		if !present || value == nil {
			continue
		}

		label := f.Label
		if label == "" {
			label = f.Key
		}

		switch f.Type {
		case entity.FieldTypeDate:
			if s, ok := NormalizeDate(value); ok {
				out[f.Key] = s
			} else if stringify(value) != "" {
				errs[f.Key] = label + " is not a valid date"
			}

		case entity.FieldTypeChecklist:
			items, ok := toStringSlice(value)
			if !ok {
				errs[f.Key] = label + " must be a list of options"
				continue
			}
			for _, item := range items {
				if len(f.Options) > 0 && !containsOption(f.Options, item) {
					errs[f.Key] = label + " contains an unknown option"
					break
				}
			}
			out[f.Key] = items

		case entity.FieldTypeSelect, entity.FieldTypeRadio:
			s, _ := value.(string)
			if s != "" && len(f.Options) > 0 && !containsOption(f.Options, s) {
				errs[f.Key] = label + " must be one of the configured options"
			}

		case entity.FieldTypeText, entity.FieldTypeNumber, entity.FieldTypeEmail,
			entity.FieldTypeTextarea, entity.FieldTypePhone:
			if s, ok := value.(string); ok && f.Length > 0 && len([]rune(s)) > f.Length {
				out[f.Key] = string([]rune(s)[:f.Length])
			}

		case entity.FieldTypeCheckbox, entity.FieldTypeFile:
			// 布尔开关与资产引用按提交值保留

		default:
			errs[f.Key] = "unknown field type"
		}
	}

	return out, errs
}

func containsOption(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}

// 已知图片扩展名
var imageExts = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "webp": true,
	"gif": true, "bmp": true, "svg": true,
}

// IsImageURL URL扩展名是否为已知图片类型（忽略query与fragment）
func IsImageURL(url string) bool {
	clean := url
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	last := clean
	if i := strings.LastIndex(clean, "/"); i >= 0 {
		last = clean[i+1:]
	}
	dot := strings.LastIndex(last, ".")
	if dot < 0 {
		return false
	}
	return imageExts[strings.ToLower(last[dot+1:])]
}
