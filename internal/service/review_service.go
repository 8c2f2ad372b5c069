package service

import (
	"errors"
	"fmt"
	"time"

	"exam_bank_backend/internal/model"
	"exam_bank_backend/internal/repository"
	"exam_bank_backend/internal/util"
	"exam_bank_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReviewService runs the peer-review voting state machine:
// draft -> under_review -> published | rejected.
type ReviewService struct {
	VoteRepo     *repository.ReviewVoteRepository
	QuestionRepo *repository.QuestionRepository
	DB           *gorm.DB
}

func NewReviewService(voteRepo *repository.ReviewVoteRepository, questionRepo *repository.QuestionRepository, db *gorm.DB) *ReviewService {
	return &ReviewService{
		VoteRepo:     voteRepo,
		QuestionRepo: questionRepo,
		DB:           db,
	}
}

// CastVote records one reviewer's verdict and, in the same transaction,
// bumps the counter and evaluates both thresholds against the fresh
// counts. The question row is locked for the duration so two concurrent
// votes cannot both observe pre-increment counts and fire the same
// transition twice. The positive threshold is evaluated first: if a single
// cast somehow qualifies the question for both outcomes, publish wins.
func (s *ReviewService) CastVote(questionID, reviewerID uint, vote, comment string) (*model.Question, error) {
	if vote != model.VotePositive && vote != model.VoteNegative {
		return nil, fmt.Errorf("%w: vote must be positive or negative", util.ErrValidation)
	}

	var updated *model.Question
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var q model.Question
		if err := lockForUpdate(tx).First(&q, questionID).Error; err != nil {
			return util.ErrQuestionNotFound
		}
		if q.State != model.QuestionStateUnderReview {
			return util.ErrInvalidState
		}
		if q.CreatorID == reviewerID {
			return util.ErrSelfReview
		}

		v := &model.ReviewVote{
			QuestionID: questionID,
			ReviewerID: reviewerID,
			Vote:       vote,
			Comment:    comment,
		}
		if err := tx.Create(v).Error; err != nil {
			// The unique index on (question, reviewer) turns a raced
			// double-cast into a constraint violation.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrDuplicateVote
			}
			return err
		}

		if vote == model.VotePositive {
			q.PositiveVotes++
		} else {
			q.NegativeVotes++
		}

		if q.PositiveVotes >= q.VotesRequired {
			now := time.Now()
			q.State = model.QuestionStatePublished
			q.PublishedAt = &now
			logger.Log.Info("question published by review",
				zap.Uint("questionId", q.ID),
				zap.Int("positiveVotes", q.PositiveVotes))
		} else if q.NegativeVotes >= model.RejectThreshold {
			q.State = model.QuestionStateRejected
			logger.Log.Info("question rejected by review",
				zap.Uint("questionId", q.ID),
				zap.Int("negativeVotes", q.NegativeVotes))
		}

		if err := tx.Save(&q).Error; err != nil {
			return err
		}
		updated = &q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteVote removes a vote and decrements the matching counter, floored
// at zero. It deliberately does not re-evaluate transitions: a question
// that already reached published or rejected stays there. Votes on
// published questions are frozen entirely.
func (s *ReviewService) DeleteVote(voteID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		v, err := s.VoteRepo.FindByID(voteID)
		if err != nil {
			return util.ErrVoteNotFound
		}

		var q model.Question
		if err := lockForUpdate(tx).First(&q, v.QuestionID).Error; err != nil {
			return util.ErrQuestionNotFound
		}
		if q.State == model.QuestionStatePublished {
			return util.ErrInvalidState
		}

		if v.Vote == model.VotePositive && q.PositiveVotes > 0 {
			q.PositiveVotes--
		} else if v.Vote == model.VoteNegative && q.NegativeVotes > 0 {
			q.NegativeVotes--
		}

		if err := tx.Save(&q).Error; err != nil {
			return err
		}
		// Hard delete so the (question, reviewer) unique key frees up and
		// the reviewer may vote again.
		return tx.Unscoped().Delete(&model.ReviewVote{}, voteID).Error
	})
}

// UpdateVoteComment edits the comment of an existing vote. The verdict
// itself is append-only.
func (s *ReviewService) UpdateVoteComment(voteID uint, comment string) (*model.ReviewVote, error) {
	v, err := s.VoteRepo.FindByID(voteID)
	if err != nil {
		return nil, util.ErrVoteNotFound
	}
	v.Comment = comment
	if err := s.VoteRepo.Update(v); err != nil {
		return nil, err
	}
	return v, nil
}

var validStates = map[string]bool{
	model.QuestionStateDraft:       true,
	model.QuestionStateUnderReview: true,
	model.QuestionStatePublished:   true,
	model.QuestionStateRejected:    true,
}

// ChangeState is the administrative override, usable at any time.
func (s *ReviewService) ChangeState(questionID uint, newState string) (*model.Question, error) {
	if !validStates[newState] {
		return nil, fmt.Errorf("%w: unknown state %q", util.ErrValidation, newState)
	}

	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}

	q.State = newState
	if newState == model.QuestionStatePublished && q.PublishedAt == nil {
		now := time.Now()
		q.PublishedAt = &now
	}

	if err := s.QuestionRepo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

// VoteTally is the current review standing of one question.
type VoteTally struct {
	QuestionID    uint               `json:"questionId"`
	State         string             `json:"state"`
	PositiveVotes int                `json:"positiveVotes"`
	NegativeVotes int                `json:"negativeVotes"`
	VotesRequired int                `json:"votesRequired"`
	Votes         []model.ReviewVote `json:"votes"`
}

func (s *ReviewService) Tally(questionID uint) (*VoteTally, error) {
	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	votes, err := s.VoteRepo.ListByQuestion(questionID)
	if err != nil {
		return nil, err
	}
	return &VoteTally{
		QuestionID:    q.ID,
		State:         q.State,
		PositiveVotes: q.PositiveVotes,
		NegativeVotes: q.NegativeVotes,
		VotesRequired: q.VotesRequired,
		Votes:         votes,
	}, nil
}
