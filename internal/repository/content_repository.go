package repository

import (
	"exam_bank_backend/internal/model"

	"gorm.io/gorm"
)

type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) Create(a *model.ContentAsset) error {
	return r.DB.Create(a).Error
}

func (r *ContentRepository) FindByID(id string) (*model.ContentAsset, error) {
	var a model.ContentAsset
	if err := r.DB.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ContentRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.ContentAsset{}).Error
}

func (r *ContentRepository) ListByUploader(uploaderID uint, page, limit int) ([]model.ContentAsset, int64, error) {
	query := r.DB.Model(&model.ContentAsset{}).Where("uploader_id = ?", uploaderID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var assets []model.ContentAsset
	err := query.Order("created_at desc").Offset((page - 1) * limit).Limit(limit).Find(&assets).Error
	return assets, total, err
}
