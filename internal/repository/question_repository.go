package repository

import (
	"exam_bank_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}

type QuestionFilter struct {
	State         string
	QuestionType  string
	SubcategoryID uint
	CreatorID     uint
}

func (r *QuestionRepository) List(f QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	query := r.DB.Model(&model.Question{})
	if f.State != "" {
		query = query.Where("state = ?", f.State)
	}
	if f.QuestionType != "" {
		query = query.Where("question_type = ?", f.QuestionType)
	}
	if f.SubcategoryID > 0 {
		query = query.Where("subcategory_id = ?", f.SubcategoryID)
	}
	if f.CreatorID > 0 {
		query = query.Where("creator_id = ?", f.CreatorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []model.Question
	err := query.Order("id desc").Offset((page - 1) * limit).Limit(limit).Find(&questions).Error
	return questions, total, err
}

// Options

func (r *QuestionRepository) CreateOption(o *model.Option) error {
	return r.DB.Create(o).Error
}

func (r *QuestionRepository) FindOptionByID(id uint) (*model.Option, error) {
	var o model.Option
	if err := r.DB.First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *QuestionRepository) GetOptions(questionID uint) ([]model.Option, error) {
	var options []model.Option
	err := r.DB.Where("question_id = ?", questionID).Order("display_order").Find(&options).Error
	return options, err
}

func (r *QuestionRepository) UpdateOption(o *model.Option) error {
	return r.DB.Save(o).Error
}

func (r *QuestionRepository) DeleteOption(id uint) error {
	return r.DB.Delete(&model.Option{}, id).Error
}

// Matching pairs

func (r *QuestionRepository) CreatePair(p *model.MatchingPair) error {
	return r.DB.Create(p).Error
}

func (r *QuestionRepository) FindPairByID(id uint) (*model.MatchingPair, error) {
	var p model.MatchingPair
	if err := r.DB.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *QuestionRepository) GetPairs(questionID uint) ([]model.MatchingPair, error) {
	var pairs []model.MatchingPair
	err := r.DB.Where("question_id = ?", questionID).Order("pair_order").Find(&pairs).Error
	return pairs, err
}

func (r *QuestionRepository) CountPairs(questionID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.MatchingPair{}).Where("question_id = ?", questionID).Count(&count).Error
	return count, err
}

func (r *QuestionRepository) DeletePair(id uint) error {
	return r.DB.Delete(&model.MatchingPair{}, id).Error
}

// Model answer

func (r *QuestionRepository) GetModelAnswer(questionID uint) (*model.ModelAnswer, error) {
	var ma model.ModelAnswer
	if err := r.DB.Where("question_id = ?", questionID).First(&ma).Error; err != nil {
		return nil, err
	}
	return &ma, nil
}

func (r *QuestionRepository) SaveModelAnswer(ma *model.ModelAnswer) error {
	return r.DB.Save(ma).Error
}

// CountExamReferences reports how many exams currently bind this question.
func (r *QuestionRepository) CountExamReferences(questionID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ExamQuestion{}).Where("question_id = ?", questionID).Count(&count).Error
	return count, err
}
