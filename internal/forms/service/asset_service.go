package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/bitfantasy/formhub/internal/forms/entity"
	"github.com/bitfantasy/formhub/internal/forms/repository"
	"github.com/bitfantasy/formhub/internal/forms/schema"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// AssetService 资产服务
type AssetService struct {
	assetRepo   *repository.AssetRepository
	minioClient *minio.Client
	bucketName  string
	publicURL   string
}

// NewAssetService 创建资产服务
func NewAssetService(assetRepo *repository.AssetRepository, minioClient *minio.Client, bucketName, publicURL string) *AssetService {
	return &AssetService{
		assetRepo:   assetRepo,
		minioClient: minioClient,
		bucketName:  bucketName,
		publicURL:   publicURL,
	}
}

// List 当前用户的资产列表（按URL扩展名标记图片，供预览）
func (s *AssetService) List(ctx context.Context, userID string) ([]entity.Asset, error) {
	assets, err := s.assetRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	for i := range assets {
		assets[i].IsImage = schema.IsImageURL(assets[i].URL)
	}
	return assets, nil
}

// Upload 上传资产：上限5MB，对象写入minio后落库
func (s *AssetService) Upload(ctx context.Context, userID string, fileHeader *multipart.FileHeader) (*entity.Asset, error) {
	if fileHeader.Size > entity.MaxAssetSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrAssetTooLarge, fileHeader.Size)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	now := time.Now()
	assetID := uuid.New().String()[:32]
	objectName := fmt.Sprintf("assets/%d/%02d/%s_%s", now.Year(), now.Month(), assetID, sanitizeFilename(fileHeader.Filename))

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if s.minioClient != nil {
		_, err = s.minioClient.PutObject(ctx, s.bucketName, objectName, src, fileHeader.Size, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return nil, fmt.Errorf("store object: %w", err)
		}
	}

	asset := &entity.Asset{
		ID:        assetID,
		UserID:    userID,
		URL:       s.objectURL(objectName),
		Filename:  fileHeader.Filename,
		MimeType:  contentType,
		Size:      fileHeader.Size,
		CreatedAt: now,
	}
	asset.IsImage = schema.IsImageURL(asset.URL)

	if err := s.assetRepo.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	return asset, nil
}

// Download 下载资产内容
func (s *AssetService) Download(ctx context.Context, id string) (*entity.Asset, io.ReadCloser, error) {
	asset, err := s.assetRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("find asset: %w", err)
	}
	if asset == nil {
		return nil, nil, ErrNotFound
	}
	if s.minioClient == nil {
		return nil, nil, fmt.Errorf("object storage not configured")
	}

	object, err := s.minioClient.GetObject(ctx, s.bucketName, s.objectName(asset.URL), minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get object: %w", err)
	}
	return asset, object, nil
}

func (s *AssetService) objectURL(objectName string) string {
	if s.publicURL != "" {
		return strings.TrimSuffix(s.publicURL, "/") + "/" + objectName
	}
	return objectName
}

func (s *AssetService) objectName(url string) string {
	if s.publicURL != "" {
		return strings.TrimPrefix(url, strings.TrimSuffix(s.publicURL, "/")+"/")
	}
	return url
}

// sanitizeFilename 文件名仅保留基名，避免路径注入
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	return strings.ReplaceAll(base, " ", "_")
}
