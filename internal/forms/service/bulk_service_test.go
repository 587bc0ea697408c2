package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/bitfantasy/formhub/internal/forms/entity"
	"github.com/bitfantasy/formhub/internal/forms/repository"
	"github.com/bitfantasy/formhub/internal/forms/testutil"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupBulkTest(t *testing.T) (*BulkService, *gorm.DB, *entity.Form) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	form := &entity.Form{
		ID:    "form-bulk-001",
		Title: "Employee Intake",
		Type:  entity.FormTypeStandard,
		Fields: entity.FieldList{
			{ID: "f1", Label: "Full Name", Key: "full-name", Type: entity.FieldTypeText, Required: true, Order: 1},
			{ID: "f2", Label: "Phone", Key: "phone", Type: entity.FieldTypePhone, Required: true, Order: 2},
			{ID: "f3", Label: "Skills", Key: "skills", Type: entity.FieldTypeChecklist, Options: []string{"go", "sql", "excel"}, Order: 3},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(form).Error; err != nil {
		t.Fatalf("seed form: %v", err)
	}

	repos := repository.NewRepositories(db)
	submissionSvc := NewSubmissionService(repos.Submission, repos.Form)
	bulkSvc := NewBulkService(repos.Form, submissionSvc)
	return bulkSvc, db, form
}

func buildWorkbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, cell := range row {
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			f.SetCellValue(sheet, name, cell)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return &buf
}

func TestBulkImportRowLevelErrors(t *testing.T) {
	bulkSvc, db, form := setupBulkTest(t)

	// 表头按label匹配；第3行手机号非法，第4行缺必填项
	buf := buildWorkbook(t, [][]string{
		{"Full Name", "Phone", "Skills"},
		{"Ali Hassan", "966512345678", "go, sql"},
		{"Sara Ahmed", "12345", "excel"},
		{"", "0512345678", ""},
	})

	result, err := bulkSvc.Import(context.Background(), "test-user-001", form.ID, "", buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if result.Imported != 1 {
		t.Errorf("imported = %d, want 1", result.Imported)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("errors = %d, want 2: %+v", len(result.Errors), result.Errors)
	}
	if result.Errors[0].Row != 3 {
		t.Errorf("first error row = %d, want 3", result.Errors[0].Row)
	}
	if _, ok := result.Errors[0].Fields["phone"]; !ok {
		t.Errorf("expected phone error, got %v", result.Errors[0].Fields)
	}

	var count int64
	db.Model(&entity.Submission{}).Count(&count)
	if count != 1 {
		t.Errorf("stored submissions = %d, want 1", count)
	}

	var stored entity.Submission
	db.First(&stored)
	skills, ok := stored.Answers["skills"].([]interface{})
	if !ok || len(skills) != 2 {
		t.Errorf("skills = %v, want 2 entries", stored.Answers["skills"])
	}
}

func TestBulkImportRejectsUnknownHeader(t *testing.T) {
	bulkSvc, _, form := setupBulkTest(t)

	buf := buildWorkbook(t, [][]string{
		{"Salary", "Department"},
		{"5000", "HR"},
	})

	if _, err := bulkSvc.Import(context.Background(), "test-user-001", form.ID, "", buf); err == nil {
		t.Fatal("expected error for header matching no fields")
	}
}

func TestBulkTemplateHeaders(t *testing.T) {
	bulkSvc, _, form := setupBulkTest(t)

	data, err := bulkSvc.Template(context.Background(), form.ID)
	if err != nil {
		t.Fatalf("template: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open template: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("read template rows: %v", err)
	}
	if len(rows) < 2 {
		t.Fatalf("template rows = %d, want header + hints", len(rows))
	}

	want := []string{"Full Name", "Phone", "Skills"}
	for i, label := range want {
		if rows[0][i] != label {
			t.Errorf("header %d = %q, want %q", i, rows[0][i], label)
		}
	}
}
