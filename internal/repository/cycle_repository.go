package repository

import (
	"exam_bank_backend/internal/model"

	"gorm.io/gorm"
)

type CycleRepository struct {
	DB *gorm.DB
}

func NewCycleRepository(db *gorm.DB) *CycleRepository {
	return &CycleRepository{DB: db}
}

func (r *CycleRepository) FindByID(id uint) (*model.Cycle, error) {
	var c model.Cycle
	if err := r.DB.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CycleRepository) ListActive() ([]model.Cycle, error) {
	var cycles []model.Cycle
	err := r.DB.Where("active = ?", true).Order("start_date").Find(&cycles).Error
	return cycles, err
}
