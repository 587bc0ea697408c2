package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bitfantasy/formhub/internal/forms/entity"
	"github.com/bitfantasy/formhub/internal/forms/repository"
	"github.com/bitfantasy/formhub/internal/forms/service"
	"github.com/bitfantasy/formhub/internal/forms/testutil"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupAssetTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	testutil.SeedTestUser(t, db, "test-user-001", "Test Admin", "admin@test.com", "admin")

	repos := repository.NewRepositories(db)
	// minio为空时只落库，覆盖大小与元数据逻辑足够
	assetSvc := service.NewAssetService(repos.Asset, nil, "", "")
	assetHandler := NewAssetHandler(assetSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	api.GET("/assets", assetHandler.List)
	api.POST("/assets", assetHandler.Upload)

	return router, db
}

func uploadAsset(t *testing.T, router *gin.Engine, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(content)
	writer.Close()

	req, _ := http.NewRequest("POST", "/api/v1/assets", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAssetUploadRejectsOversize(t *testing.T) {
	router, db := setupAssetTest(t)
	token := testutil.DefaultTestToken()

	oversize := bytes.Repeat([]byte("a"), entity.MaxAssetSize+1)
	w := uploadAsset(t, router, token, "big.bin", oversize)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversize upload: status = %d, want 400", w.Code)
	}

	var count int64
	db.Model(&entity.Asset{}).Count(&count)
	if count != 0 {
		t.Errorf("assets stored = %d, want 0", count)
	}
}

func TestAssetUploadAndListMarkImages(t *testing.T) {
	router, _ := setupAssetTest(t)
	token := testutil.DefaultTestToken()

	w := uploadAsset(t, router, token, "photo.png", []byte("fake-png"))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload image: status = %d, body = %s", w.Code, w.Body.String())
	}
	created := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if created["is_image"] != true {
		t.Errorf("photo.png is_image = %v, want true", created["is_image"])
	}

	w = uploadAsset(t, router, token, "report.pdf", []byte("fake-pdf"))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload pdf: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/assets", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("list assets: status = %d, body = %s", w.Code, w.Body.String())
	}
	items := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("assets = %d, want 2", len(items))
	}

	flags := map[string]bool{}
	for _, item := range items {
		asset := item.(map[string]interface{})
		flags[asset["filename"].(string)] = asset["is_image"] == true
	}
	if !flags["photo.png"] {
		t.Error("photo.png should be marked as image")
	}
	if flags["report.pdf"] {
		t.Error("report.pdf should not be marked as image")
	}
}
