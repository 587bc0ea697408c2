package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/bitfantasy/formhub/internal/forms/entity"
	"github.com/bitfantasy/formhub/internal/forms/repository"
	"github.com/bitfantasy/formhub/internal/forms/service"
	"github.com/bitfantasy/formhub/internal/forms/testutil"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupSubmissionTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	testutil.SeedTestUser(t, db, "test-user-001", "Test Admin", "admin@test.com", "admin")
	testutil.SeedTestUser(t, db, "test-user-002", "Test User", "user@test.com", "user")

	repos := repository.NewRepositories(db)
	formSvc := service.NewFormService(repos.Form)
	submissionSvc := service.NewSubmissionService(repos.Submission, repos.Form)
	bulkSvc := service.NewBulkService(repos.Form, submissionSvc)
	formHandler := NewFormHandler(formSvc, bulkSvc)
	submissionHandler := NewSubmissionHandler(submissionSvc, bulkSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	api.POST("/forms", formHandler.Create)
	api.GET("/form-submissions", submissionHandler.List)
	api.GET("/form-submissions/mine", submissionHandler.ListMine)
	api.POST("/form-submissions", submissionHandler.Create)
	api.PATCH("/form-submissions/:id", submissionHandler.Update)
	api.DELETE("/form-submissions/:id", submissionHandler.Delete)
	api.PATCH("/form-submissions/:id/approve", submissionHandler.Approve)
	api.PATCH("/form-submissions/:id/reject", submissionHandler.Reject)

	return router, db
}

func createSubmissionForm(t *testing.T, router *gin.Engine, token, formType string) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/api/v1/forms", map[string]interface{}{
		"title": "Employee Form",
		"type":  formType,
		"fields": []map[string]interface{}{
			{"label": "Full Name", "type": "text", "required": true},
			{"label": "Birth Date", "type": "date"},
			{"label": "Phone", "type": "phone", "required": true},
		},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create form: status = %d, body = %s", w.Code, w.Body.String())
	}
	return testutil.ParseResponse(w)["data"].(map[string]interface{})
}

func TestSubmissionValidationBlocksCreate(t *testing.T) {
	router, db := setupSubmissionTest(t)
	token := testutil.DefaultTestToken()
	form := createSubmissionForm(t, router, token, "standard")

	// 必填项缺失与非法手机号同时报出，且不落库
	w := testutil.DoRequest(router, "POST", "/api/v1/form-submissions", map[string]interface{}{
		"form_id": form["id"],
		"answers": map[string]interface{}{
			"phone": "12345",
		},
	}, token)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid submission: status = %d, body = %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	fieldErrs := data["errors"].(map[string]interface{})
	if _, ok := fieldErrs["full-name"]; !ok {
		t.Errorf("expected error for full-name, got %v", fieldErrs)
	}
	if _, ok := fieldErrs["phone"]; !ok {
		t.Errorf("expected error for phone, got %v", fieldErrs)
	}

	var count int64
	db.Model(&entity.Submission{}).Count(&count)
	if count != 0 {
		t.Errorf("submissions stored = %d, want 0", count)
	}
}

func TestSubmissionCreateNormalizesDate(t *testing.T) {
	router, _ := setupSubmissionTest(t)
	token := testutil.DefaultTestToken()
	form := createSubmissionForm(t, router, token, "standard")

	w := testutil.DoRequest(router, "POST", "/api/v1/form-submissions", map[string]interface{}{
		"form_id": form["id"],
		"answers": map[string]interface{}{
			"full-name":  "Ali Hassan",
			"birth-date": "1990-06-15T00:00:00",
			"phone":      "966512345678",
		},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create submission: status = %d, body = %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	answers := resp["data"].(map[string]interface{})["answers"].(map[string]interface{})
	if answers["birth-date"] != "1990-06-15" {
		t.Errorf("birth-date = %v, want 1990-06-15", answers["birth-date"])
	}
}

func TestSubmissionEditResetsReviewFlag(t *testing.T) {
	router, db := setupSubmissionTest(t)
	token := testutil.DefaultTestToken()
	form := createSubmissionForm(t, router, token, "standard")

	w := testutil.DoRequest(router, "POST", "/api/v1/form-submissions", map[string]interface{}{
		"form_id": form["id"],
		"answers": map[string]interface{}{
			"full-name": "Ali Hassan",
			"phone":     "0512345678",
		},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create submission: status = %d, body = %s", w.Code, w.Body.String())
	}
	id := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	// 管理员标记已复核
	w = testutil.DoRequest(router, "PATCH", "/api/v1/form-submissions/"+id, map[string]interface{}{
		"isCheck": true,
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("set reviewed: status = %d, body = %s", w.Code, w.Body.String())
	}

	var stored entity.Submission
	db.First(&stored, "id = ?", id)
	if !stored.IsCheck {
		t.Fatal("expected isCheck = true after review")
	}

	// 任何编辑都使复核失效
	w = testutil.DoRequest(router, "PATCH", "/api/v1/form-submissions/"+id, map[string]interface{}{
		"answers": map[string]interface{}{
			"full-name": "Ali H. Hassan",
			"phone":     "0512345678",
		},
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("edit submission: status = %d, body = %s", w.Code, w.Body.String())
	}

	db.First(&stored, "id = ?", id)
	if stored.IsCheck {
		t.Error("expected isCheck = false after edit")
	}
}

func TestSubmissionApprovalFlow(t *testing.T) {
	router, _ := setupSubmissionTest(t)
	token := testutil.DefaultTestToken()
	form := createSubmissionForm(t, router, token, "employee_request")

	w := testutil.DoRequest(router, "POST", "/api/v1/form-submissions", map[string]interface{}{
		"form_id": form["id"],
		"answers": map[string]interface{}{
			"full-name": "Ali Hassan",
			"phone":     "966512345678",
		},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create submission: status = %d, body = %s", w.Code, w.Body.String())
	}
	created := testutil.ParseResponse(w)["data"].(map[string]interface{})
	id := created["id"].(string)
	if created["status"] != "pending_hr" {
		t.Fatalf("initial status = %v, want pending_hr", created["status"])
	}

	// 沿flow逐级推进
	wantStatuses := []string{"pending_supervisor", "approved"}
	for _, want := range wantStatuses {
		w = testutil.DoRequest(router, "PATCH", fmt.Sprintf("/api/v1/form-submissions/%s/approve", id), nil, token)
		if w.Code != http.StatusOK {
			t.Fatalf("approve: status = %d, body = %s", w.Code, w.Body.String())
		}
		got := testutil.ParseResponse(w)["data"].(map[string]interface{})["status"]
		if got != want {
			t.Errorf("status = %v, want %s", got, want)
		}
	}

	// 已终态不可再审批
	w = testutil.DoRequest(router, "PATCH", fmt.Sprintf("/api/v1/form-submissions/%s/approve", id), nil, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("approve terminal: status = %d, want 400", w.Code)
	}
}

func TestSubmissionReject(t *testing.T) {
	router, _ := setupSubmissionTest(t)
	token := testutil.DefaultTestToken()
	form := createSubmissionForm(t, router, token, "employee_request")

	w := testutil.DoRequest(router, "POST", "/api/v1/form-submissions", map[string]interface{}{
		"form_id": form["id"],
		"answers": map[string]interface{}{
			"full-name": "Ali Hassan",
			"phone":     "966512345678",
		},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create submission: status = %d, body = %s", w.Code, w.Body.String())
	}
	id := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(router, "PATCH", fmt.Sprintf("/api/v1/form-submissions/%s/reject", id), map[string]interface{}{
		"reason": "incomplete documents",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("reject: status = %d, body = %s", w.Code, w.Body.String())
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["status"] != "rejected" {
		t.Errorf("status = %v, want rejected", data["status"])
	}
	if data["reject_reason"] != "incomplete documents" {
		t.Errorf("reject_reason = %v, want incomplete documents", data["reject_reason"])
	}
}

func TestSubmissionListTypeAndLimitQueryParams(t *testing.T) {
	router, _ := setupSubmissionTest(t)
	token := testutil.DefaultTestToken()

	standard := createSubmissionForm(t, router, token, "standard")
	request := createSubmissionForm(t, router, token, "employee_request")

	for _, formID := range []interface{}{standard["id"], request["id"], request["id"]} {
		w := testutil.DoRequest(router, "POST", "/api/v1/form-submissions", map[string]interface{}{
			"form_id": formID,
			"answers": map[string]interface{}{
				"full-name": "Ali Hassan",
				"phone":     "0512345678",
			},
		}, token)
		if w.Code != http.StatusCreated {
			t.Fatalf("create submission: status = %d, body = %s", w.Code, w.Body.String())
		}
	}

	// 客户端契约用type过滤、limit分页
	w := testutil.DoRequest(router, "GET", "/api/v1/form-submissions?type=employee_request&limit=1", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d, body = %s", w.Code, w.Body.String())
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Errorf("items = %d, want 1 (limit)", len(items))
	}
	pagination := data["pagination"].(map[string]interface{})
	if pagination["total"] != float64(2) {
		t.Errorf("total = %v, want 2 (type filter)", pagination["total"])
	}
}

func TestSubmissionForbiddenForOtherUser(t *testing.T) {
	router, _ := setupSubmissionTest(t)
	adminToken := testutil.DefaultTestToken()
	form := createSubmissionForm(t, router, adminToken, "standard")

	w := testutil.DoRequest(router, "POST", "/api/v1/form-submissions", map[string]interface{}{
		"form_id": form["id"],
		"answers": map[string]interface{}{
			"full-name": "Ali Hassan",
			"phone":     "0512345678",
		},
	}, adminToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("create submission: status = %d, body = %s", w.Code, w.Body.String())
	}
	id := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	// 非本人且非管理员不可编辑
	otherToken := testutil.UserTestToken("test-user-002")
	w = testutil.DoRequest(router, "PATCH", "/api/v1/form-submissions/"+id, map[string]interface{}{
		"answers": map[string]interface{}{
			"full-name": "Hacked",
			"phone":     "0512345678",
		},
	}, otherToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("edit by other user: status = %d, want 403", w.Code)
	}
}
