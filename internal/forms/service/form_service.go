package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/formhub/internal/forms/entity"
	"github.com/bitfantasy/formhub/internal/forms/repository"
	"github.com/bitfantasy/formhub/internal/forms/schema"
	"github.com/google/uuid"
)

// FormService 表单服务
type FormService struct {
	formRepo *repository.FormRepository
}

// NewFormService 创建表单服务
func NewFormService(formRepo *repository.FormRepository) *FormService {
	return &FormService{formRepo: formRepo}
}

// FieldInput 新增/编辑字段的请求载荷
type FieldInput struct {
	Label       string           `json:"label" binding:"required"`
	Type        entity.FieldType `json:"type" binding:"required"`
	Placeholder string           `json:"placeholder"`
	Required    bool             `json:"required"`
	Options     []string         `json:"options"`
	Length      int              `json:"length"`
}

// List 表单列表
func (s *FormService) List(ctx context.Context, formType string) ([]entity.Form, error) {
	forms, err := s.formRepo.List(ctx, formType)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	return forms, nil
}

// Get 表单详情（fields按order升序返回）
func (s *FormService) Get(ctx context.Context, id string) (*entity.Form, error) {
	form, err := s.formRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find form: %w", err)
	}
	if form == nil {
		return nil, ErrNotFound
	}
	schema.SortByOrder(form.Fields)
	return form, nil
}

// GetActive 当前激活表单
func (s *FormService) GetActive(ctx context.Context, formType string) (*entity.Form, error) {
	form, err := s.formRepo.FindActive(ctx, formType)
	if err != nil {
		return nil, fmt.Errorf("find active form: %w", err)
	}
	if form == nil {
		return nil, ErrNotFound
	}
	schema.SortByOrder(form.Fields)
	return form, nil
}

// Create 创建表单（可带初始字段）
func (s *FormService) Create(ctx context.Context, userID, title, description, formType string, flow []string, fields []FieldInput) (*entity.Form, error) {
	if formType == "" {
		formType = entity.FormTypeStandard
	}

	form := &entity.Form{
		ID:          uuid.New().String()[:32],
		Title:       title,
		Description: description,
		Type:        formType,
		CreatedBy:   userID,
		Fields:      entity.FieldList{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if formType == entity.FormTypeEmployeeRequest {
		if len(flow) > 0 {
			form.Flow = flow
		} else {
			form.Flow = entity.DefaultFlow()
		}
	}

	for _, input := range fields {
		field, err := s.buildField(form, input)
		if err != nil {
			return nil, err
		}
		form.Fields = append(form.Fields, *field)
	}

	if err := s.formRepo.Create(ctx, form); err != nil {
		return nil, fmt.Errorf("create form: %w", err)
	}
	return form, nil
}

// Update 更新表单（标题/描述/整体字段列表）
func (s *FormService) Update(ctx context.Context, id, title, description string, fields []entity.FormField) (*entity.Form, error) {
	form, err := s.formRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find form: %w", err)
	}
	if form == nil {
		return nil, ErrNotFound
	}

	if title != "" {
		form.Title = title
	}
	if description != "" {
		form.Description = description
	}
	if fields != nil {
		seen := make(map[string]bool, len(fields))
		for i := range fields {
			if !fields[i].Type.Valid() {
				return nil, fmt.Errorf("%w: %q", ErrUnknownFieldType, fields[i].Type)
			}
			if fields[i].Key == "" {
				fields[i].Key = schema.DeriveKey(fields[i].Label)
			}
			if seen[fields[i].Key] {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateFieldKey, fields[i].Key)
			}
			seen[fields[i].Key] = true
			if fields[i].ID == "" {
				fields[i].ID = uuid.New().String()[:32]
			}
		}
		schema.SortByOrder(fields)
		schema.Renumber(fields)
		form.Fields = fields
	}
	form.UpdatedAt = time.Now()

	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("update form: %w", err)
	}
	return form, nil
}

// AddFields 向表单追加字段：key由label派生，表单内必须唯一，order顺延
func (s *FormService) AddFields(ctx context.Context, formID string, inputs []FieldInput) (*entity.Form, error) {
	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("find form: %w", err)
	}
	if form == nil {
		return nil, ErrNotFound
	}

	for _, input := range inputs {
		field, err := s.buildField(form, input)
		if err != nil {
			return nil, err
		}
		form.Fields = append(form.Fields, *field)
	}
	form.UpdatedAt = time.Now()

	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("update form: %w", err)
	}
	return form, nil
}

func (s *FormService) buildField(form *entity.Form, input FieldInput) (*entity.FormField, error) {
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFieldType, input.Type)
	}

	key := schema.DeriveKey(input.Label)
	if key == "" {
		return nil, fmt.Errorf("field label %q derives an empty key", input.Label)
	}
	if form.HasFieldKey(key) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateFieldKey, key)
	}

	options := input.Options
	if !input.Type.HasOptions() {
		options = nil
	}

	return &entity.FormField{
		ID:          uuid.New().String()[:32],
		Label:       input.Label,
		Key:         key,
		Type:        input.Type,
		Placeholder: input.Placeholder,
		Required:    input.Required,
		Options:     options,
		Order:       len(form.Fields) + 1,
		Length:      input.Length,
	}, nil
}

// DeleteField 删除字段并稠密重编号剩余字段
func (s *FormService) DeleteField(ctx context.Context, formID, fieldID string) (*entity.Form, error) {
	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("find form: %w", err)
	}
	if form == nil {
		return nil, ErrNotFound
	}

	kept := make(entity.FieldList, 0, len(form.Fields))
	found := false
	for _, f := range form.Fields {
		if f.ID == fieldID {
			found = true
			continue
		}
		kept = append(kept, f)
	}
	if !found {
		return nil, ErrNotFound
	}

	schema.SortByOrder(kept)
	schema.Renumber(kept)
	form.Fields = kept
	form.UpdatedAt = time.Now()

	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("update form: %w", err)
	}
	return form, nil
}

// Reorder 重排字段次序，结果总是1..N稠密编号
func (s *FormService) Reorder(ctx context.Context, formID string, orders []schema.FieldOrder) (*entity.Form, error) {
	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("find form: %w", err)
	}
	if form == nil {
		return nil, ErrNotFound
	}

	schema.SortByOrder(form.Fields)
	form.Fields = schema.Reorder(form.Fields, orders)
	form.UpdatedAt = time.Now()

	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("update form: %w", err)
	}
	return form, nil
}

// Activate 激活表单：同type下事务性独占，失败时旧激活状态不变
func (s *FormService) Activate(ctx context.Context, id string) (*entity.Form, error) {
	form, err := s.formRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find form: %w", err)
	}
	if form == nil {
		return nil, ErrNotFound
	}

	if err := s.formRepo.Activate(ctx, id, form.Type); err != nil {
		return nil, fmt.Errorf("activate form: %w", err)
	}
	form.IsActive = true
	return form, nil
}

// Delete 删除表单
func (s *FormService) Delete(ctx context.Context, id string) error {
	return s.formRepo.Delete(ctx, id)
}
