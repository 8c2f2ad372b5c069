package repository

import (
	"exam_bank_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(a *model.Attempt) error {
	return r.DB.Create(a).Error
}

func (r *AttemptRepository) Update(a *model.Attempt) error {
	return r.DB.Save(a).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) CountByExamAndStudent(examID, studentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).Where("exam_id = ? AND student_id = ?", examID, studentID).Count(&count).Error
	return count, err
}

func (r *AttemptRepository) CountByExam(examID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).Where("exam_id = ?", examID).Count(&count).Error
	return count, err
}

func (r *AttemptRepository) ListByExam(examID uint, page, limit int) ([]model.Attempt, int64, error) {
	query := r.DB.Model(&model.Attempt{}).Where("exam_id = ?", examID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var attempts []model.Attempt
	err := query.Order("id desc").Offset((page - 1) * limit).Limit(limit).Find(&attempts).Error
	return attempts, total, err
}

func (r *AttemptRepository) ListByStudent(studentID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("student_id = ?", studentID).Order("id desc").Find(&attempts).Error
	return attempts, err
}

// ListNeedingManualReview returns completed attempts still waiting on a
// human grader.
func (r *AttemptRepository) ListNeedingManualReview(examID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("exam_id = ? AND completed = ? AND needs_manual_review = ?", examID, true, true).Find(&attempts).Error
	return attempts, err
}
