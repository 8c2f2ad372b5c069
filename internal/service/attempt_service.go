package service

import (
	"errors"
	"fmt"
	"time"

	"exam_bank_backend/internal/model"
	"exam_bank_backend/internal/repository"
	"exam_bank_backend/internal/util"
	"exam_bank_backend/pkg/logger"
	"exam_bank_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttemptService drives the attempt lifecycle: start, finalize, delete.
// Finalization is where the aggregate score is computed and persisted.
type AttemptService struct {
	AttemptRepo *repository.AttemptRepository
	ExamRepo    *repository.ExamRepository
	DB          *gorm.DB
}

func NewAttemptService(attemptRepo *repository.AttemptRepository, examRepo *repository.ExamRepository, db *gorm.DB) *AttemptService {
	return &AttemptService{
		AttemptRepo: attemptRepo,
		ExamRepo:    examRepo,
		DB:          db,
	}
}

// StartAttempt opens a new attempt for a student. The exam row is locked
// while the existing attempts are counted, so two simultaneous starts
// cannot both slip under the max-attempts limit or claim the same attempt
// number. The unique index on (exam, student, number) backstops the lock.
func (s *AttemptService) StartAttempt(examID, studentID uint) (*model.Attempt, error) {
	var attempt *model.Attempt
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var exam model.Exam
		if err := lockForUpdate(tx).First(&exam, examID).Error; err != nil {
			return util.ErrExamNotFound
		}
		if !exam.Active {
			return util.ErrExamInactive
		}
		now := time.Now()
		if now.Before(exam.StartAt) || now.After(exam.EndAt) {
			return util.ErrExamNotAvailable
		}

		var used int64
		if err := tx.Model(&model.Attempt{}).
			Where("exam_id = ? AND student_id = ?", examID, studentID).
			Count(&used).Error; err != nil {
			return err
		}
		if used >= int64(exam.MaxAttempts) {
			return util.ErrAttemptLimit
		}

		attempt = &model.Attempt{
			ExamID:        examID,
			StudentID:     studentID,
			AttemptNumber: int(used) + 1,
			StartedAt:     now,
		}
		if err := tx.Create(attempt).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrAttemptLimit
			}
			return err
		}

		logger.Log.Info("attempt started",
			zap.Uint("examId", examID),
			zap.Uint("studentId", studentID),
			zap.Int("attemptNumber", attempt.AttemptNumber))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

// FinalizeAttempt closes an attempt and runs the scoring aggregation over
// everything recorded so far. Unanswered questions simply contribute zero.
func (s *AttemptService) FinalizeAttempt(attemptID, studentID uint) (*model.Attempt, error) {
	var finalized *model.Attempt
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var attempt model.Attempt
		if err := lockForUpdate(tx).First(&attempt, attemptID).Error; err != nil {
			return util.ErrAttemptNotFound
		}
		if attempt.StudentID != studentID {
			return util.ErrPermissionDenied
		}
		if attempt.Completed {
			return util.ErrAlreadyCompleted
		}

		var exam model.Exam
		if err := tx.First(&exam, attempt.ExamID).Error; err != nil {
			return util.ErrExamNotFound
		}

		now := time.Now()
		attempt.FinishedAt = &now
		attempt.Completed = true

		if err := rescoreAttempt(tx, &attempt, &exam); err != nil {
			return err
		}

		monitoring.AttemptsFinalized.WithLabelValues(fmt.Sprintf("%t", attempt.NeedsManualReview)).Inc()
		logger.Log.Info("attempt finalized",
			zap.Uint("attemptId", attempt.ID),
			zap.Float64("percentage", attempt.Percentage),
			zap.Bool("needsManualReview", attempt.NeedsManualReview))

		finalized = &attempt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return finalized, nil
}

// DeleteAttempt removes the attempt and every answer recorded under it in
// one transaction. The rows are deleted for real: a soft-deleted attempt
// would keep its (exam, student, number) unique key and block the student
// from starting over.
func (s *AttemptService) DeleteAttempt(attemptID uint) error {
	if _, err := s.AttemptRepo.FindByID(attemptID); err != nil {
		return util.ErrAttemptNotFound
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("attempt_id = ?", attemptID).Delete(&model.SelectionAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("attempt_id = ?", attemptID).Delete(&model.FreeTextAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("attempt_id = ?", attemptID).Delete(&model.MatchingAnswer{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.Attempt{}, attemptID).Error
	})
}

func (s *AttemptService) GetAttempt(attemptID uint) (*model.Attempt, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, util.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *AttemptService) ListByExam(examID uint, page, limit int) ([]model.Attempt, int64, error) {
	return s.AttemptRepo.ListByExam(examID, page, limit)
}

func (s *AttemptService) ListByStudent(studentID uint) ([]model.Attempt, error) {
	return s.AttemptRepo.ListByStudent(studentID)
}

func (s *AttemptService) ListNeedingManualReview(examID uint) ([]model.Attempt, error) {
	return s.AttemptRepo.ListNeedingManualReview(examID)
}

// AttemptResult is what a student sees after finishing, honoring the
// exam's show-results setting.
type AttemptResult struct {
	Attempt     model.Attempt `json:"attempt"`
	ShowResults bool          `json:"showResults"`
}

func (s *AttemptService) GetResult(attemptID, studentID uint) (*AttemptResult, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, util.ErrAttemptNotFound
	}
	if attempt.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	exam, err := s.ExamRepo.FindByID(attempt.ExamID)
	if err != nil {
		return nil, util.ErrExamNotFound
	}

	result := &AttemptResult{Attempt: *attempt, ShowResults: exam.ShowResults}
	if !exam.ShowResults {
		result.Attempt.ObtainedPoints = 0
		result.Attempt.TotalPoints = 0
		result.Attempt.Percentage = 0
		result.Attempt.Passed = false
	}
	return result, nil
}
