package schema

import (
	"reflect"
	"testing"

	"github.com/bitfantasy/formhub/internal/forms/entity"
)

func field(key string, ftype entity.FieldType, required bool) entity.FormField {
	return entity.FormField{ID: "fld_" + key, Label: key, Key: key, Type: ftype, Required: required}
}

func TestDeriveKey(t *testing.T) {
	cases := map[string]string{
		"Full Name":      "full-name",
		"  Email  ":      "email",
		"National   ID":  "national-id",
		"Phone":          "phone",
		"UPPER lower":    "upper-lower",
	}
	for label, want := range cases {
		if got := DeriveKey(label); got != want {
			t.Errorf("DeriveKey(%q) = %q, want %q", label, got, want)
		}
	}
}

func TestBuildRulesOnlyRequiredFields(t *testing.T) {
	fields := []entity.FormField{
		field("name", entity.FieldTypeText, true),
		field("nickname", entity.FieldTypeText, false),
		field("photo", entity.FieldTypeFile, true),
	}
	rules := BuildRules(fields)

	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if _, ok := rules["nickname"]; ok {
		t.Error("non-required field must not receive a rule")
	}
}

func TestBuildRulesSkipsMalformedField(t *testing.T) {
	fields := []entity.FormField{
		{ID: "fld_1", Label: "Broken", Type: entity.FieldTypeText, Required: true}, // no key
		field("name", entity.FieldTypeText, true),
	}
	rules := BuildRules(fields)

	if len(rules) != 1 {
		t.Fatalf("malformed field must be skipped, got %d rules", len(rules))
	}
	if _, ok := rules["name"]; !ok {
		t.Error("well-formed field must still get its rule")
	}
}

func TestValidateRequiredText(t *testing.T) {
	rules := BuildRules([]entity.FormField{field("name", entity.FieldTypeText, true)})

	if errs := rules.Validate(map[string]interface{}{"name": ""}); len(errs) == 0 {
		t.Error("empty string must fail a required text rule")
	}
	if errs := rules.Validate(map[string]interface{}{}); len(errs) == 0 {
		t.Error("missing answer must fail a required text rule")
	}
	if errs := rules.Validate(map[string]interface{}{"name": "Ali"}); len(errs) != 0 {
		t.Errorf("non-empty string must pass, got %v", errs)
	}
}

func TestValidatePhone(t *testing.T) {
	rules := BuildRules([]entity.FormField{field("phone", entity.FieldTypePhone, true)})

	if errs := rules.Validate(map[string]interface{}{"phone": "966512345678"}); len(errs) != 0 {
		t.Errorf("international prefix number must pass, got %v", errs)
	}
	if errs := rules.Validate(map[string]interface{}{"phone": "0512345678"}); len(errs) != 0 {
		t.Errorf("local prefix number must pass, got %v", errs)
	}
	if errs := rules.Validate(map[string]interface{}{"phone": "12345"}); len(errs) == 0 {
		t.Error("short number must fail")
	}
}

func TestValidateChecklist(t *testing.T) {
	rules := BuildRules([]entity.FormField{field("skills", entity.FieldTypeChecklist, true)})

	if errs := rules.Validate(map[string]interface{}{"skills": []interface{}{"go", "sql"}}); len(errs) != 0 {
		t.Errorf("string array must pass, got %v", errs)
	}
	if errs := rules.Validate(map[string]interface{}{"skills": []interface{}{}}); len(errs) == 0 {
		t.Error("empty array must fail")
	}
	if errs := rules.Validate(map[string]interface{}{"skills": "go"}); len(errs) == 0 {
		t.Error("scalar value must fail a checklist rule")
	}
}

func TestValidateFile(t *testing.T) {
	rules := BuildRules([]entity.FormField{field("photo", entity.FieldTypeFile, true)})

	if errs := rules.Validate(map[string]interface{}{"photo": "uploads/x.png"}); len(errs) != 0 {
		t.Errorf("uploaded reference string must pass, got %v", errs)
	}
	asset := map[string]interface{}{"url": "uploads/x.png", "filename": "x.png"}
	if errs := rules.Validate(map[string]interface{}{"photo": asset}); len(errs) != 0 {
		t.Errorf("asset object must pass, got %v", errs)
	}
	if errs := rules.Validate(map[string]interface{}{"photo": ""}); len(errs) == 0 {
		t.Error("empty value must fail a required file rule")
	}
}

func TestNormalizeDateKeepsCalendarFields(t *testing.T) {
	// 无论服务所在时区，2024-03-05 必须序列化为字面 "2024-03-05"
	cases := []string{
		"2024-03-05",
		"2024-03-05T00:00:00+03:00",
		"2024-03-05T23:30:00-11:00",
		"2024-03-05 10:00:00",
	}
	for _, in := range cases {
		got, ok := NormalizeDate(in)
		if !ok {
			t.Errorf("NormalizeDate(%q) failed to parse", in)
			continue
		}
		if got != "2024-03-05" {
			t.Errorf("NormalizeDate(%q) = %q, want 2024-03-05", in, got)
		}
	}
}

func TestNormalizeAnswersAssembly(t *testing.T) {
	fields := []entity.FormField{
		field("name", entity.FieldTypeText, true),
		field("photo", entity.FieldTypeFile, true),
		field("birth", entity.FieldTypeDate, false),
	}
	answers := map[string]interface{}{
		"name":  "Ali",
		"photo": "uploads/x.png",
		"birth": "2024-03-05T00:00:00+03:00",
	}

	out, errs := NormalizeAnswers(fields, answers)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := map[string]interface{}{
		"name":  "Ali",
		"photo": "uploads/x.png",
		"birth": "2024-03-05",
	}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("assembled answers = %v, want %v", out, want)
	}
}

func TestNormalizeAnswersCapsLength(t *testing.T) {
	f := field("bio", entity.FieldTypeTextarea, false)
	f.Length = 5
	out, errs := NormalizeAnswers([]entity.FormField{f}, map[string]interface{}{"bio": "abcdefghij"})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out["bio"] != "abcde" {
		t.Errorf("expected capped value 'abcde', got %v", out["bio"])
	}
}

func TestNormalizeAnswersRejectsUnknownOption(t *testing.T) {
	f := field("color", entity.FieldTypeSelect, false)
	f.Options = []string{"red", "blue"}
	_, errs := NormalizeAnswers([]entity.FormField{f}, map[string]interface{}{"color": "green"})
	if len(errs) == 0 {
		t.Error("value outside options must be rejected")
	}
}

func TestReorderDenseRenumbering(t *testing.T) {
	fields := []entity.FormField{
		{ID: "A", Key: "a", Order: 1},
		{ID: "B", Key: "b", Order: 2},
		{ID: "C", Key: "c", Order: 3},
	}
	// 把C移到最前
	result := Reorder(fields, []FieldOrder{
		{ID: "C", Order: 1},
		{ID: "A", Order: 2},
		{ID: "B", Order: 3},
	})

	got := map[string]int{}
	for _, f := range result {
		got[f.ID] = f.Order
	}
	want := map[string]int{"C": 1, "A": 2, "B": 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("reorder = %v, want %v", got, want)
	}
}

func TestReorderFillsGaps(t *testing.T) {
	fields := []entity.FormField{
		{ID: "A", Key: "a", Order: 1},
		{ID: "B", Key: "b", Order: 2},
		{ID: "C", Key: "c", Order: 3},
	}
	// 请求带空洞的序号，结果仍须稠密
	result := Reorder(fields, []FieldOrder{
		{ID: "B", Order: 10},
		{ID: "A", Order: 20},
		{ID: "C", Order: 30},
	})

	for i, f := range result {
		if f.Order != i+1 {
			t.Fatalf("order must be dense 1..N, got %v at index %d", f.Order, i)
		}
	}
	if result[0].ID != "B" || result[1].ID != "A" || result[2].ID != "C" {
		t.Errorf("relative order not honored: %v %v %v", result[0].ID, result[1].ID, result[2].ID)
	}
}

func TestIsImageURL(t *testing.T) {
	cases := map[string]bool{
		"uploads/x.png":           true,
		"uploads/x.PNG":           true,
		"uploads/x.jpg?v=2":       true,
		"uploads/x.svg#icon":      true,
		"uploads/report.pdf":      false,
		"uploads/noextension":     false,
		"https://cdn.example.com/a/b/c.webp": true,
	}
	for url, want := range cases {
		if got := IsImageURL(url); got != want {
			t.Errorf("IsImageURL(%q) = %v, want %v", url, got, want)
		}
	}
}
