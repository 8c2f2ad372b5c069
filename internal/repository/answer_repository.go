package repository

import (
	"exam_bank_backend/internal/model"

	"gorm.io/gorm"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// Selection answers

func (r *AnswerRepository) CreateSelection(a *model.SelectionAnswer) error {
	return r.DB.Create(a).Error
}

func (r *AnswerRepository) FindSelection(attemptID, examQuestionID uint) (*model.SelectionAnswer, error) {
	var a model.SelectionAnswer
	if err := r.DB.Where("attempt_id = ? AND exam_question_id = ?", attemptID, examQuestionID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnswerRepository) GetSelections(attemptID uint) ([]model.SelectionAnswer, error) {
	var answers []model.SelectionAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Find(&answers).Error
	return answers, err
}

// Free-text answers

func (r *AnswerRepository) CreateFreeText(a *model.FreeTextAnswer) error {
	return r.DB.Create(a).Error
}

func (r *AnswerRepository) FindFreeTextByID(id uint) (*model.FreeTextAnswer, error) {
	var a model.FreeTextAnswer
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnswerRepository) FindFreeText(attemptID, examQuestionID uint) (*model.FreeTextAnswer, error) {
	var a model.FreeTextAnswer
	if err := r.DB.Where("attempt_id = ? AND exam_question_id = ?", attemptID, examQuestionID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnswerRepository) GetFreeTexts(attemptID uint) ([]model.FreeTextAnswer, error) {
	var answers []model.FreeTextAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Find(&answers).Error
	return answers, err
}

func (r *AnswerRepository) UpdateFreeText(a *model.FreeTextAnswer) error {
	return r.DB.Save(a).Error
}

// ListUngraded returns pending free-text answers across an exam, for the
// grading queue.
func (r *AnswerRepository) ListUngraded(examID uint) ([]model.FreeTextAnswer, error) {
	var answers []model.FreeTextAnswer
	err := r.DB.
		Joins("JOIN attempts ON attempts.id = free_text_answers.attempt_id").
		Where("attempts.exam_id = ? AND free_text_answers.graded = ?", examID, false).
		Find(&answers).Error
	return answers, err
}

// Matching answers

func (r *AnswerRepository) CreateMatching(answers []model.MatchingAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.DB.Create(&answers).Error
}

func (r *AnswerRepository) GetMatching(attemptID, examQuestionID uint) ([]model.MatchingAnswer, error) {
	var answers []model.MatchingAnswer
	err := r.DB.Where("attempt_id = ? AND exam_question_id = ?", attemptID, examQuestionID).Find(&answers).Error
	return answers, err
}

func (r *AnswerRepository) GetAllMatching(attemptID uint) ([]model.MatchingAnswer, error) {
	var answers []model.MatchingAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Find(&answers).Error
	return answers, err
}
