package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bitfantasy/formhub/internal/forms/entity"
	"github.com/bitfantasy/formhub/internal/forms/repository"
	"github.com/bitfantasy/formhub/internal/forms/schema"
	"github.com/xuri/excelize/v2"
)

// BulkService 批量导入服务：Excel工作簿逐行转换为提交记录
type BulkService struct {
	formRepo      *repository.FormRepository
	submissionSvc *SubmissionService
}

// NewBulkService 创建批量导入服务
func NewBulkService(formRepo *repository.FormRepository, submissionSvc *SubmissionService) *BulkService {
	return &BulkService{
		formRepo:      formRepo,
		submissionSvc: submissionSvc,
	}
}

// BulkRowError 单行导入失败详情
type BulkRowError struct {
	Row     int               `json:"row"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// BulkImportResult 批量导入结果
type BulkImportResult struct {
	Total    int            `json:"total"`
	Imported int            `json:"imported"`
	Errors   []BulkRowError `json:"errors,omitempty"`
}

// Import 解析xlsx并逐行创建提交。表头匹配表单字段的key或label，
// 每行独立走校验管线，失败行记入报告不中断整体。
func (s *BulkService) Import(ctx context.Context, userID, formID, projectID string, r io.Reader) (*BulkImportResult, error) {
	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("find form: %w", err)
	}
	if form == nil {
		return nil, ErrNotFound
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook has no data rows")
	}

	keys, err := matchHeader(form.Fields, rows[0])
	if err != nil {
		return nil, err
	}

	result := &BulkImportResult{Total: len(rows) - 1}
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based，含表头行

		answers := make(map[string]interface{}, len(keys))
		for col, key := range keys {
			if key == "" || col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			answers[key] = cellValue(form.Fields, key, cell)
		}
		if len(answers) == 0 {
			continue
		}

		if _, err := s.submissionSvc.Create(ctx, userID, formID, projectID, answers); err != nil {
			rowErr := BulkRowError{Row: rowNum, Message: err.Error()}
			if ve, ok := AsValidationError(err); ok {
				rowErr.Message = "validation failed"
				rowErr.Fields = ve.Fields
			}
			result.Errors = append(result.Errors, rowErr)
			continue
		}
		result.Imported++
	}
	return result, nil
}

// matchHeader 按列匹配表头到字段key，优先key再label（忽略大小写）。
// 匹配不到任何列则报错，个别不认识的列留空跳过。
func matchHeader(fields entity.FieldList, header []string) ([]string, error) {
	byKey := make(map[string]string, len(fields))
	byLabel := make(map[string]string, len(fields))
	for _, field := range fields {
		byKey[strings.ToLower(field.Key)] = field.Key
		byLabel[strings.ToLower(strings.TrimSpace(field.Label))] = field.Key
	}

	keys := make([]string, len(header))
	matched := 0
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name == "" {
			continue
		}
		if key, ok := byKey[name]; ok {
			keys[i] = key
			matched++
			continue
		}
		if key, ok := byLabel[name]; ok {
			keys[i] = key
			matched++
		}
	}
	if matched == 0 {
		return nil, fmt.Errorf("header matches no form fields")
	}
	return keys, nil
}

// cellValue 单元格文本转换为字段期望的答案形态。
// checklist支持逗号分隔多值，其余类型交由校验管线处理。
func cellValue(fields entity.FieldList, key, cell string) interface{} {
	for _, field := range fields {
		if field.Key != key {
			continue
		}
		if field.Type == entity.FieldTypeChecklist {
			parts := strings.Split(cell, ",")
			values := make([]interface{}, 0, len(parts))
			for _, p := range parts {
				if v := strings.TrimSpace(p); v != "" {
					values = append(values, v)
				}
			}
			return values
		}
		break
	}
	return cell
}

// Template 生成导入模板：表头为字段label（按order排序），附一行示例占位
func (s *BulkService) Template(ctx context.Context, formID string) ([]byte, error) {
	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("find form: %w", err)
	}
	if form == nil {
		return nil, ErrNotFound
	}

	fields := make(entity.FieldList, len(form.Fields))
	copy(fields, form.Fields)
	schema.SortByOrder(fields)

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, field := range fields {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("build header cell: %w", err)
		}
		f.SetCellValue(sheet, cell, field.Label)

		hint := string(field.Type)
		if field.Required {
			hint += " (required)"
		}
		if len(field.Options) > 0 {
			hint += ": " + strings.Join(field.Options, " | ")
		}
		hintCell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, fmt.Errorf("build hint cell: %w", err)
		}
		f.SetCellValue(sheet, hintCell, hint)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
