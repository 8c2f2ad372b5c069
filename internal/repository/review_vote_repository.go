package repository

import (
	"exam_bank_backend/internal/model"

	"gorm.io/gorm"
)

type ReviewVoteRepository struct {
	DB *gorm.DB
}

func NewReviewVoteRepository(db *gorm.DB) *ReviewVoteRepository {
	return &ReviewVoteRepository{DB: db}
}

func (r *ReviewVoteRepository) Create(v *model.ReviewVote) error {
	return r.DB.Create(v).Error
}

func (r *ReviewVoteRepository) FindByID(id uint) (*model.ReviewVote, error) {
	var v model.ReviewVote
	if err := r.DB.First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ReviewVoteRepository) FindByQuestionAndReviewer(questionID, reviewerID uint) (*model.ReviewVote, error) {
	var v model.ReviewVote
	if err := r.DB.Where("question_id = ? AND reviewer_id = ?", questionID, reviewerID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ReviewVoteRepository) ListByQuestion(questionID uint) ([]model.ReviewVote, error) {
	var votes []model.ReviewVote
	err := r.DB.Where("question_id = ?", questionID).Order("created_at").Find(&votes).Error
	return votes, err
}

func (r *ReviewVoteRepository) Update(v *model.ReviewVote) error {
	return r.DB.Save(v).Error
}

func (r *ReviewVoteRepository) Delete(id uint) error {
	return r.DB.Delete(&model.ReviewVote{}, id).Error
}
