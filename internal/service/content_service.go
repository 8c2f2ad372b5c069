package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"exam_bank_backend/internal/config"
	"exam_bank_backend/internal/model"
	"exam_bank_backend/internal/repository"
	"exam_bank_backend/internal/util"
	"exam_bank_backend/pkg/logger"

	"go.uber.org/zap"
)

// ContentService handles media uploads for questions, options and matching
// pairs. Files are sniffed for their real type before being handed to the
// storage provider; videos get probed for duration.
type ContentService struct {
	ContentRepo *repository.ContentRepository
	Storage     *StorageService
	Cfg         *config.Config
}

func NewContentService(contentRepo *repository.ContentRepository, storage *StorageService, cfg *config.Config) *ContentService {
	return &ContentService{
		ContentRepo: contentRepo,
		Storage:     storage,
		Cfg:         cfg,
	}
}

var allowedContentTypes = []string{util.MimeImage, util.MimeAudio, util.MimeVideo}

func kindFromMime(mimeType string) string {
	switch {
	case util.IsImage(mimeType):
		return "image"
	case util.IsVideo(mimeType):
		return "video"
	case strings.HasPrefix(mimeType, util.MimeAudio):
		return "audio"
	}
	return "file"
}

// Upload stores the file and records a ContentAsset whose uuid is the
// reference questions carry.
func (s *ContentService) Upload(ctx context.Context, uploaderID uint, fileHeader *multipart.FileHeader) (*model.ContentAsset, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return nil, err
	}
	mimeType, err := util.ValidateMimeType(bytes.NewReader(head[:n]), allowedContentTypes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", util.ErrValidation, err.Error())
	}

	ext := filepath.Ext(fileHeader.Filename)
	storedName := fmt.Sprintf("%d/%s%s", time.Now().Year(), util.GenerateRandomString(32), ext)

	reader := io.MultiReader(bytes.NewReader(head[:n]), file)
	url, err := s.Storage.Upload(ctx, storedName, reader, fileHeader.Size, mimeType)
	if err != nil {
		return nil, err
	}

	asset := &model.ContentAsset{
		UploaderID: uploaderID,
		Kind:       kindFromMime(mimeType),
		FileName:   fileHeader.Filename,
		MimeType:   mimeType,
		URL:        url,
		SizeBytes:  fileHeader.Size,
	}

	if util.IsVideo(mimeType) && s.Cfg.Storage.Type == "local" {
		localPath := filepath.Join(s.Cfg.Storage.LocalPath, storedName)
		if info, err := util.GetVideoInfo(localPath); err == nil {
			asset.DurationSeconds = info.Duration
		} else {
			logger.Log.Warn("video probe failed", zap.String("file", storedName), zap.Error(err))
		}
	}

	if err := s.ContentRepo.Create(asset); err != nil {
		s.Storage.Delete(ctx, storedName)
		return nil, err
	}

	logger.Log.Info("content uploaded",
		zap.String("id", asset.ID),
		zap.String("kind", asset.Kind),
		zap.Int64("sizeBytes", asset.SizeBytes))
	return asset, nil
}

func (s *ContentService) Get(id string) (*model.ContentAsset, error) {
	asset, err := s.ContentRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrContentNotFound
	}
	return asset, nil
}

// Delete removes the asset record and the stored file.
func (s *ContentService) Delete(ctx context.Context, id string) error {
	asset, err := s.ContentRepo.FindByID(id)
	if err != nil {
		return util.ErrContentNotFound
	}

	// Stored name is the path component of the URL.
	storedName := strings.TrimPrefix(asset.URL, "/uploads/")
	if s.Cfg.Storage.Type == "minio" {
		storedName = strings.TrimPrefix(asset.URL, "/"+s.Cfg.Storage.MinioBucket+"/")
	}
	if err := s.Storage.Delete(ctx, storedName); err != nil && !os.IsNotExist(err) {
		logger.Log.Warn("stored file removal failed", zap.String("id", id), zap.Error(err))
	}

	return s.ContentRepo.Delete(asset.ID)
}

func (s *ContentService) ListByUploader(uploaderID uint, page, limit int) ([]model.ContentAsset, int64, error) {
	return s.ContentRepo.ListByUploader(uploaderID, page, limit)
}
