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

// AnswerService records student responses during an open attempt and
// handles manual grading of free-text answers afterwards. Selection and
// matching answers are scored at write time; free-text waits for a grader.
type AnswerService struct {
	AnswerRepo   *repository.AnswerRepository
	AttemptRepo  *repository.AttemptRepository
	ExamRepo     *repository.ExamRepository
	QuestionRepo *repository.QuestionRepository
	DB           *gorm.DB
}

func NewAnswerService(answerRepo *repository.AnswerRepository, attemptRepo *repository.AttemptRepository, examRepo *repository.ExamRepository, questionRepo *repository.QuestionRepository, db *gorm.DB) *AnswerService {
	return &AnswerService{
		AnswerRepo:   answerRepo,
		AttemptRepo:  attemptRepo,
		ExamRepo:     examRepo,
		QuestionRepo: questionRepo,
		DB:           db,
	}
}

// openAttempt loads the attempt and the exam-question, checking that the
// attempt is still open, belongs to the student, and that the question is
// part of the attempt's exam.
func (s *AnswerService) openAttempt(attemptID, examQuestionID, studentID uint) (*model.Attempt, *model.ExamQuestion, *model.Question, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, nil, nil, util.ErrAttemptNotFound
	}
	if attempt.StudentID != studentID {
		return nil, nil, nil, util.ErrPermissionDenied
	}
	if attempt.Completed {
		return nil, nil, nil, util.ErrAlreadyCompleted
	}

	eq, err := s.ExamRepo.FindExamQuestionByID(examQuestionID)
	if err != nil || eq.ExamID != attempt.ExamID {
		return nil, nil, nil, util.ErrAttachmentNotFound
	}

	q, err := s.QuestionRepo.FindByID(eq.QuestionID)
	if err != nil {
		return nil, nil, nil, util.ErrQuestionNotFound
	}
	return attempt, eq, q, nil
}

// RecordSelection stores a choice answer. Correctness and points are fixed
// at write time from the selected option.
func (s *AnswerService) RecordSelection(attemptID, examQuestionID, optionID, studentID uint) (*model.SelectionAnswer, error) {
	attempt, eq, q, err := s.openAttempt(attemptID, examQuestionID, studentID)
	if err != nil {
		return nil, err
	}
	if !q.IsChoice() {
		return nil, fmt.Errorf("%w: question is not a choice question", util.ErrValidation)
	}

	option, err := s.QuestionRepo.FindOptionByID(optionID)
	if err != nil || option.QuestionID != q.ID {
		return nil, util.ErrOptionNotFound
	}

	points := 0
	if option.IsCorrect {
		points = eq.ResolvePoints(q)
	}
	answer := &model.SelectionAnswer{
		AttemptID:      attempt.ID,
		ExamQuestionID: eq.ID,
		OptionID:       optionID,
		Correct:        option.IsCorrect,
		Points:         points,
	}
	if err := s.AnswerRepo.CreateSelection(answer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: question already answered in this attempt", util.ErrValidation)
		}
		return nil, err
	}
	return answer, nil
}

// RecordFreeText stores a free-response or short-answer text. It stays
// ungraded until a grader assigns points.
func (s *AnswerService) RecordFreeText(attemptID, examQuestionID, studentID uint, text string) (*model.FreeTextAnswer, error) {
	attempt, eq, q, err := s.openAttempt(attemptID, examQuestionID, studentID)
	if err != nil {
		return nil, err
	}
	if !q.IsFreeText() {
		return nil, fmt.Errorf("%w: question does not take a text answer", util.ErrValidation)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: answer text is required", util.ErrValidation)
	}

	answer := &model.FreeTextAnswer{
		AttemptID:      attempt.ID,
		ExamQuestionID: eq.ID,
		Text:           text,
	}
	if err := s.AnswerRepo.CreateFreeText(answer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: question already answered in this attempt", util.ErrValidation)
		}
		return nil, err
	}
	return answer, nil
}

// MatchSelection is one left-to-right pairing in a matching answer.
type MatchSelection struct {
	PairID        uint   `json:"pairId" binding:"required"`
	SelectedRight string `json:"selectedRight" binding:"required"`
}

// RecordMatching stores a student's pairings for a matching question, one
// row per answered pair, each marked correct by comparing against the
// pair's canonical right side. All rows are written in one transaction.
func (s *AnswerService) RecordMatching(attemptID, examQuestionID, studentID uint, selections []MatchSelection) ([]model.MatchingAnswer, error) {
	attempt, eq, q, err := s.openAttempt(attemptID, examQuestionID, studentID)
	if err != nil {
		return nil, err
	}
	if q.QuestionType != model.QuestionTypeMatching {
		return nil, fmt.Errorf("%w: question is not a matching question", util.ErrValidation)
	}
	if len(selections) == 0 {
		return nil, fmt.Errorf("%w: at least one pairing is required", util.ErrValidation)
	}

	pairs, err := s.QuestionRepo.GetPairs(q.ID)
	if err != nil {
		return nil, err
	}
	pairsByID := make(map[uint]model.MatchingPair, len(pairs))
	for _, p := range pairs {
		pairsByID[p.ID] = p
	}

	answers := make([]model.MatchingAnswer, 0, len(selections))
	seen := make(map[uint]bool, len(selections))
	for _, sel := range selections {
		pair, ok := pairsByID[sel.PairID]
		if !ok {
			return nil, util.ErrPairNotFound
		}
		if seen[sel.PairID] {
			return nil, fmt.Errorf("%w: pair %d answered twice", util.ErrValidation, sel.PairID)
		}
		seen[sel.PairID] = true

		answers = append(answers, model.MatchingAnswer{
			AttemptID:      attempt.ID,
			ExamQuestionID: eq.ID,
			PairID:         sel.PairID,
			SelectedRight:  sel.SelectedRight,
			Correct:        sel.SelectedRight == pair.RightText,
		})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&answers).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: question already answered in this attempt", util.ErrValidation)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// GradeFreeText assigns points to a pending free-text answer. If the
// attempt was already finalized, the stored aggregate is recomputed so the
// grade lands in the attempt's score immediately.
func (s *AnswerService) GradeFreeText(answerID, graderID uint, points int, comment string) (*model.FreeTextAnswer, error) {
	var graded *model.FreeTextAnswer
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		answer, err := s.AnswerRepo.FindFreeTextByID(answerID)
		if err != nil {
			return util.ErrAnswerNotFound
		}
		if answer.Graded {
			return util.ErrAlreadyGraded
		}

		var eq model.ExamQuestion
		if err := tx.First(&eq, answer.ExamQuestionID).Error; err != nil {
			return util.ErrAttachmentNotFound
		}
		var q model.Question
		if err := tx.First(&q, eq.QuestionID).Error; err != nil {
			return util.ErrQuestionNotFound
		}

		if points < 0 {
			return fmt.Errorf("%w: points must not be negative", util.ErrValidation)
		}
		max := eq.ResolvePoints(&q)
		if points > max {
			return fmt.Errorf("%w: points must be between 0 and %d", util.ErrPointsExceeded, max)
		}

		now := time.Now()
		answer.Graded = true
		answer.Points = points
		answer.GraderID = &graderID
		answer.GraderComment = comment
		answer.GradedAt = &now
		if err := tx.Save(answer).Error; err != nil {
			return err
		}

		var attempt model.Attempt
		if err := tx.First(&attempt, answer.AttemptID).Error; err != nil {
			return util.ErrAttemptNotFound
		}
		if attempt.Completed {
			var exam model.Exam
			if err := tx.First(&exam, attempt.ExamID).Error; err != nil {
				return util.ErrExamNotFound
			}
			if err := rescoreAttempt(tx, &attempt, &exam); err != nil {
				return err
			}
		}

		logger.Log.Info("free-text answer graded",
			zap.Uint("answerId", answer.ID),
			zap.Uint("graderId", graderID),
			zap.Int("points", points))

		graded = answer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return graded, nil
}

// ListUngraded returns the grading queue for one exam.
func (s *AnswerService) ListUngraded(examID uint) ([]model.FreeTextAnswer, error) {
	return s.AnswerRepo.ListUngraded(examID)
}

// AttemptAnswers bundles everything a student recorded in one attempt.
type AttemptAnswers struct {
	Selections []model.SelectionAnswer `json:"selections"`
	FreeTexts  []model.FreeTextAnswer  `json:"freeTexts"`
	Matching   []model.MatchingAnswer  `json:"matching"`
}

func (s *AnswerService) GetAttemptAnswers(attemptID uint) (*AttemptAnswers, error) {
	if _, err := s.AttemptRepo.FindByID(attemptID); err != nil {
		return nil, util.ErrAttemptNotFound
	}
	selections, err := s.AnswerRepo.GetSelections(attemptID)
	if err != nil {
		return nil, err
	}
	freeTexts, err := s.AnswerRepo.GetFreeTexts(attemptID)
	if err != nil {
		return nil, err
	}
	matching, err := s.AnswerRepo.GetAllMatching(attemptID)
	if err != nil {
		return nil, err
	}
	return &AttemptAnswers{Selections: selections, FreeTexts: freeTexts, Matching: matching}, nil
}
