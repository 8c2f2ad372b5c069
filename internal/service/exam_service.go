package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"exam_bank_backend/internal/model"
	"exam_bank_backend/internal/repository"
	"exam_bank_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const examQuestionsCacheKeyPrefix = "exam_questions:"
const examQuestionsCacheTTL = 5 * time.Minute

// ExamService owns exam records and their composition: which published
// questions an exam carries, in what order and for how many points. Every
// composition mutation is refused once the exam has attempts.
type ExamService struct {
	ExamRepo     *repository.ExamRepository
	QuestionRepo *repository.QuestionRepository
	AttemptRepo  *repository.AttemptRepository
	CycleRepo    *repository.CycleRepository
	Redis        *redis.Client
	DB           *gorm.DB
}

func NewExamService(examRepo *repository.ExamRepository, questionRepo *repository.QuestionRepository, attemptRepo *repository.AttemptRepository, cycleRepo *repository.CycleRepository, rdb *redis.Client, db *gorm.DB) *ExamService {
	return &ExamService{
		ExamRepo:     examRepo,
		QuestionRepo: questionRepo,
		AttemptRepo:  attemptRepo,
		CycleRepo:    cycleRepo,
		Redis:        rdb,
		DB:           db,
	}
}

type ExamCreateRequest struct {
	Title              string    `json:"title" binding:"required"`
	Description        string    `json:"description"`
	CycleID            uint      `json:"cycleId" binding:"required"`
	StartAt            time.Time `json:"startAt" binding:"required"`
	EndAt              time.Time `json:"endAt" binding:"required"`
	DurationMinutes    int       `json:"durationMinutes"`
	MaxAttempts        int       `json:"maxAttempts"`
	PassingScore       int       `json:"passingScore"`
	ShowResults        *bool     `json:"showResults"`
	RandomizeQuestions bool      `json:"randomizeQuestions"`
	RandomizeOptions   bool      `json:"randomizeOptions"`
}

func (s *ExamService) validateDates(cycleID uint, start, end time.Time) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: exam start must be before end", util.ErrValidation)
	}
	cycle, err := s.CycleRepo.FindByID(cycleID)
	if err != nil {
		return util.ErrCycleNotFound
	}
	if !cycle.Active {
		return fmt.Errorf("%w: cycle %q is not active", util.ErrValidation, cycle.Name)
	}
	if !cycle.Contains(start, end) {
		return fmt.Errorf("%w: exam dates must fall inside the cycle window", util.ErrValidation)
	}
	return nil
}

func (s *ExamService) CreateExam(creatorID uint, req ExamCreateRequest) (*model.Exam, error) {
	if err := s.validateDates(req.CycleID, req.StartAt, req.EndAt); err != nil {
		return nil, err
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if req.PassingScore < 0 || req.PassingScore > 100 {
		return nil, fmt.Errorf("%w: passing score must be between 0 and 100", util.ErrValidation)
	}
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = 60
	}
	showResults := true
	if req.ShowResults != nil {
		showResults = *req.ShowResults
	}

	exam := &model.Exam{
		CreatorID:          creatorID,
		CycleID:            req.CycleID,
		Title:              req.Title,
		Description:        req.Description,
		StartAt:            req.StartAt,
		EndAt:              req.EndAt,
		DurationMinutes:    duration,
		MaxAttempts:        maxAttempts,
		PassingScore:       req.PassingScore,
		ShowResults:        showResults,
		RandomizeQuestions: req.RandomizeQuestions,
		RandomizeOptions:   req.RandomizeOptions,
		Active:             true,
	}
	if err := s.ExamRepo.Create(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) GetExam(id uint) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrExamNotFound
	}
	return exam, nil
}

func (s *ExamService) UpdateExam(id uint, req ExamCreateRequest) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrExamNotFound
	}
	if err := s.validateDates(req.CycleID, req.StartAt, req.EndAt); err != nil {
		return nil, err
	}

	exam.Title = req.Title
	exam.Description = req.Description
	exam.CycleID = req.CycleID
	exam.StartAt = req.StartAt
	exam.EndAt = req.EndAt
	if req.DurationMinutes > 0 {
		exam.DurationMinutes = req.DurationMinutes
	}
	if req.MaxAttempts >= 1 {
		exam.MaxAttempts = req.MaxAttempts
	}
	if req.PassingScore >= 0 && req.PassingScore <= 100 {
		exam.PassingScore = req.PassingScore
	}
	if req.ShowResults != nil {
		exam.ShowResults = *req.ShowResults
	}
	exam.RandomizeQuestions = req.RandomizeQuestions
	exam.RandomizeOptions = req.RandomizeOptions

	if err := s.ExamRepo.Update(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// DeactivateExam hides the exam from students without deleting anything.
func (s *ExamService) DeactivateExam(id uint) error {
	exam, err := s.ExamRepo.FindByID(id)
	if err != nil {
		return util.ErrExamNotFound
	}
	exam.Active = false
	return s.ExamRepo.Update(exam)
}

// DeleteExam hard-deletes an exam, allowed only while no question is
// attached.
func (s *ExamService) DeleteExam(id uint) error {
	if _, err := s.ExamRepo.FindByID(id); err != nil {
		return util.ErrExamNotFound
	}
	count, err := s.ExamRepo.CountExamQuestions(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: exam still has %d attached question(s)", util.ErrValidation, count)
	}
	return s.ExamRepo.Delete(id)
}

// locked reports whether the exam composition is frozen by existing
// attempts.
func (s *ExamService) locked(examID uint) (bool, error) {
	count, err := s.AttemptRepo.CountByExam(examID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type AttachRequest struct {
	QuestionID     uint `json:"questionId" binding:"required"`
	DisplayOrder   *int `json:"displayOrder,omitempty"`
	PointOverride  *int `json:"pointOverride,omitempty"`
	UseRecommended bool `json:"useRecommended"`
	Mandatory      bool `json:"mandatory"`
}

// AttachQuestion binds a published question into an exam.
func (s *ExamService) AttachQuestion(examID uint, req AttachRequest, addedBy uint) (*model.ExamQuestion, error) {
	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		return nil, util.ErrExamNotFound
	}
	if !exam.Active {
		return nil, util.ErrExamInactive
	}

	q, err := s.QuestionRepo.FindByID(req.QuestionID)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	if q.State != model.QuestionStatePublished {
		return nil, util.ErrInvalidState
	}

	if locked, err := s.locked(examID); err != nil {
		return nil, err
	} else if locked {
		return nil, util.ErrExamLocked
	}

	if _, err := s.ExamRepo.FindAttachment(examID, req.QuestionID); err == nil {
		return nil, util.ErrDuplicateAttachment
	}

	if req.DisplayOrder != nil {
		taken, err := s.ExamRepo.OrderTaken(examID, *req.DisplayOrder)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, util.ErrDuplicateOrder
		}
	}

	if !req.UseRecommended && req.PointOverride == nil {
		return nil, util.ErrMissingPoints
	}

	eq := &model.ExamQuestion{
		ExamID:         examID,
		QuestionID:     req.QuestionID,
		DisplayOrder:   req.DisplayOrder,
		PointOverride:  req.PointOverride,
		UseRecommended: req.UseRecommended,
		Mandatory:      req.Mandatory,
		AddedByID:      addedBy,
	}
	if err := s.ExamRepo.CreateExamQuestion(eq); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrDuplicateAttachment
		}
		return nil, err
	}

	s.invalidateCache(examID)
	return eq, nil
}

type ReorderItem struct {
	ID    uint `json:"id" binding:"required"`
	Order int  `json:"order" binding:"required"`
}

// Reorder applies a batch of new positions atomically: either every item
// lands or none does.
func (s *ExamService) Reorder(examID uint, items []ReorderItem) error {
	if _, err := s.ExamRepo.FindByID(examID); err != nil {
		return util.ErrExamNotFound
	}
	if locked, err := s.locked(examID); err != nil {
		return err
	} else if locked {
		return util.ErrExamLocked
	}

	batch := make(map[uint]int, len(items))
	seen := make(map[int]bool, len(items))
	for _, item := range items {
		if seen[item.Order] {
			return util.ErrDuplicateOrder
		}
		seen[item.Order] = true
		batch[item.ID] = item.Order
	}

	// The batch must leave the whole exam collision-free, including
	// attachments it does not touch.
	eqs, err := s.ExamRepo.GetExamQuestions(examID)
	if err != nil {
		return err
	}
	finalOrders := make(map[int]bool, len(eqs))
	for _, eq := range eqs {
		order := eq.DisplayOrder
		if o, ok := batch[eq.ID]; ok {
			order = &o
		}
		if order == nil {
			continue
		}
		if finalOrders[*order] {
			return util.ErrDuplicateOrder
		}
		finalOrders[*order] = true
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(items))
		for _, item := range items {
			var eq model.ExamQuestion
			if err := tx.First(&eq, item.ID).Error; err != nil {
				return util.ErrAttachmentNotFound
			}
			if eq.ExamID != examID {
				return fmt.Errorf("%w: exam question %d belongs to another exam", util.ErrValidation, item.ID)
			}
			ids = append(ids, item.ID)
		}

		// Clear first so swaps inside the batch never collide on the
		// (exam, order) unique index mid-transaction.
		if err := tx.Model(&model.ExamQuestion{}).Where("id IN ?", ids).Update("display_order", nil).Error; err != nil {
			return err
		}
		for _, item := range items {
			if err := tx.Model(&model.ExamQuestion{}).Where("id = ?", item.ID).Update("display_order", item.Order).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return util.ErrDuplicateOrder
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateCache(examID)
	return nil
}

type AttachmentUpdateRequest struct {
	DisplayOrder   *int  `json:"displayOrder,omitempty"`
	PointOverride  *int  `json:"pointOverride,omitempty"`
	UseRecommended *bool `json:"useRecommended,omitempty"`
	Mandatory      *bool `json:"mandatory,omitempty"`
}

func (s *ExamService) UpdateAttachment(examID, examQuestionID uint, req AttachmentUpdateRequest) (*model.ExamQuestion, error) {
	eq, err := s.ExamRepo.FindExamQuestionByID(examQuestionID)
	if err != nil || eq.ExamID != examID {
		return nil, util.ErrAttachmentNotFound
	}
	if locked, err := s.locked(examID); err != nil {
		return nil, err
	} else if locked {
		return nil, util.ErrExamLocked
	}

	if req.DisplayOrder != nil {
		if eq.DisplayOrder == nil || *eq.DisplayOrder != *req.DisplayOrder {
			taken, err := s.ExamRepo.OrderTaken(examID, *req.DisplayOrder)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, util.ErrDuplicateOrder
			}
		}
		eq.DisplayOrder = req.DisplayOrder
	}
	if req.PointOverride != nil {
		eq.PointOverride = req.PointOverride
	}
	if req.UseRecommended != nil {
		eq.UseRecommended = *req.UseRecommended
	}
	if req.Mandatory != nil {
		eq.Mandatory = *req.Mandatory
	}

	if !eq.UseRecommended && eq.PointOverride == nil {
		return nil, util.ErrMissingPoints
	}

	if err := s.ExamRepo.UpdateExamQuestion(eq); err != nil {
		return nil, err
	}

	s.invalidateCache(examID)
	return eq, nil
}

func (s *ExamService) DetachQuestion(examID, examQuestionID uint) error {
	eq, err := s.ExamRepo.FindExamQuestionByID(examQuestionID)
	if err != nil || eq.ExamID != examID {
		return util.ErrAttachmentNotFound
	}
	if locked, err := s.locked(examID); err != nil {
		return err
	} else if locked {
		return util.ErrExamLocked
	}

	if err := s.ExamRepo.DeleteExamQuestion(examQuestionID); err != nil {
		return err
	}

	s.invalidateCache(examID)
	return nil
}

// TotalPoints sums override-or-recommended points over the attached
// questions.
func (s *ExamService) TotalPoints(examID uint) (int, error) {
	if _, err := s.ExamRepo.FindByID(examID); err != nil {
		return 0, util.ErrExamNotFound
	}
	eqs, err := s.ExamRepo.GetExamQuestions(examID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, eq := range eqs {
		q, err := s.QuestionRepo.FindByID(eq.QuestionID)
		if err != nil {
			continue
		}
		total += eq.ResolvePoints(q)
	}
	return total, nil
}

// ExamQuestionView is the composed question list served to clients.
type ExamQuestionView struct {
	ExamQuestion model.ExamQuestion `json:"examQuestion"`
	Question     model.Question     `json:"question"`
	Points       int                `json:"points"`
}

// GetExamQuestions returns the exam's composed question list, cached in
// redis for the student-facing read path.
func (s *ExamService) GetExamQuestions(ctx context.Context, examID uint) ([]ExamQuestionView, error) {
	cacheKey := fmt.Sprintf("%s%d", examQuestionsCacheKeyPrefix, examID)

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var views []ExamQuestionView
			if json.Unmarshal([]byte(cached), &views) == nil {
				return views, nil
			}
		}
	}

	if _, err := s.ExamRepo.FindByID(examID); err != nil {
		return nil, util.ErrExamNotFound
	}
	eqs, err := s.ExamRepo.GetExamQuestions(examID)
	if err != nil {
		return nil, err
	}

	views := make([]ExamQuestionView, 0, len(eqs))
	for _, eq := range eqs {
		q, err := s.QuestionRepo.FindByID(eq.QuestionID)
		if err != nil {
			continue
		}
		views = append(views, ExamQuestionView{
			ExamQuestion: eq,
			Question:     *q,
			Points:       eq.ResolvePoints(q),
		})
	}

	if s.Redis != nil {
		if data, err := json.Marshal(views); err == nil {
			s.Redis.Set(ctx, cacheKey, data, examQuestionsCacheTTL)
		}
	}
	return views, nil
}

func (s *ExamService) invalidateCache(examID uint) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(context.Background(), fmt.Sprintf("%s%d", examQuestionsCacheKeyPrefix, examID))
}

func (s *ExamService) ListExams(creatorID uint, page, limit int) ([]model.Exam, int64, error) {
	return s.ExamRepo.ListByCreator(creatorID, page, limit)
}

// ListAvailableExams returns active exams whose window contains now. The
// window filter runs in SQL so the reported total matches the pages.
func (s *ExamService) ListAvailableExams(page, limit int) ([]model.Exam, int64, error) {
	return s.ExamRepo.ListAvailable(time.Now(), page, limit)
}
