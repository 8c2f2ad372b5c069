package repository

import (
	"time"

	"exam_bank_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) Create(e *model.Exam) error {
	return r.DB.Create(e).Error
}

func (r *ExamRepository) FindByID(id uint) (*model.Exam, error) {
	var e model.Exam
	if err := r.DB.First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ExamRepository) Update(e *model.Exam) error {
	return r.DB.Save(e).Error
}

func (r *ExamRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Exam{}, id).Error
}

func (r *ExamRepository) ListByCreator(creatorID uint, page, limit int) ([]model.Exam, int64, error) {
	query := r.DB.Model(&model.Exam{}).Where("creator_id = ?", creatorID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var exams []model.Exam
	err := query.Order("id desc").Offset((page - 1) * limit).Limit(limit).Find(&exams).Error
	return exams, total, err
}

// ListAvailable returns active exams whose window contains the given
// instant, filtered in SQL so the total matches the page contents.
func (r *ExamRepository) ListAvailable(now time.Time, page, limit int) ([]model.Exam, int64, error) {
	query := r.DB.Model(&model.Exam{}).Where("active = ? AND start_at <= ? AND end_at >= ?", true, now, now)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var exams []model.Exam
	err := query.Order("start_at").Offset((page - 1) * limit).Limit(limit).Find(&exams).Error
	return exams, total, err
}

// Exam questions

func (r *ExamRepository) CreateExamQuestion(eq *model.ExamQuestion) error {
	return r.DB.Create(eq).Error
}

func (r *ExamRepository) FindExamQuestionByID(id uint) (*model.ExamQuestion, error) {
	var eq model.ExamQuestion
	if err := r.DB.First(&eq, id).Error; err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *ExamRepository) FindAttachment(examID, questionID uint) (*model.ExamQuestion, error) {
	var eq model.ExamQuestion
	if err := r.DB.Where("exam_id = ? AND question_id = ?", examID, questionID).First(&eq).Error; err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *ExamRepository) GetExamQuestions(examID uint) ([]model.ExamQuestion, error) {
	var eqs []model.ExamQuestion
	err := r.DB.Where("exam_id = ?", examID).Order("display_order IS NULL, display_order").Find(&eqs).Error
	return eqs, err
}

func (r *ExamRepository) CountExamQuestions(examID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ExamQuestion{}).Where("exam_id = ?", examID).Count(&count).Error
	return count, err
}

func (r *ExamRepository) OrderTaken(examID uint, order int) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ExamQuestion{}).Where("exam_id = ? AND display_order = ?", examID, order).Count(&count).Error
	return count > 0, err
}

func (r *ExamRepository) UpdateExamQuestion(eq *model.ExamQuestion) error {
	return r.DB.Save(eq).Error
}

// DeleteExamQuestion removes the attachment for real. Attachments are
// pure join rows; a soft-deleted one would keep holding the
// (exam, question) and (exam, order) unique keys and block re-attaching.
func (r *ExamRepository) DeleteExamQuestion(id uint) error {
	return r.DB.Unscoped().Delete(&model.ExamQuestion{}, id).Error
}
