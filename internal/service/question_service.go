package service

import (
	"encoding/json"
	"fmt"

	"exam_bank_backend/internal/config"
	"exam_bank_backend/internal/model"
	"exam_bank_backend/internal/repository"
	"exam_bank_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
	Cfg          *config.Config
	DB           *gorm.DB
}

func NewQuestionService(questionRepo *repository.QuestionRepository, cfg *config.Config, db *gorm.DB) *QuestionService {
	return &QuestionService{
		QuestionRepo: questionRepo,
		Cfg:          cfg,
		DB:           db,
	}
}

type OptionRequest struct {
	Text         string  `json:"text"`
	ContentID    *string `json:"contentId,omitempty"`
	IsCorrect    bool    `json:"isCorrect"`
	DisplayOrder int     `json:"displayOrder"`
}

type PairRequest struct {
	LeftText       string  `json:"leftText"`
	LeftContentID  *string `json:"leftContentId,omitempty"`
	RightText      string  `json:"rightText"`
	RightContentID *string `json:"rightContentId,omitempty"`
	PairOrder      int     `json:"pairOrder"`
}

type QuestionCreateRequest struct {
	SubcategoryID     uint            `json:"subcategoryId" binding:"required"`
	AgeRangeID        uint            `json:"ageRangeId"`
	DifficultyLevelID uint            `json:"difficultyLevelId"`
	QuestionType      string          `json:"questionType" binding:"required"`
	Title             string          `json:"title" binding:"required"`
	ContentID         *string         `json:"contentId,omitempty"`
	RecommendedPoints int             `json:"recommendedPoints"`
	VotesRequired     int             `json:"votesRequired"`
	Options           []OptionRequest `json:"options,omitempty"`
	Pairs             []PairRequest   `json:"pairs,omitempty"`
	ModelAnswerText   string          `json:"modelAnswerText,omitempty"`
	Keywords          []string        `json:"keywords,omitempty"`
}

var validQuestionTypes = map[string]bool{
	model.QuestionTypeSingleChoice: true,
	model.QuestionTypeTrueFalse:    true,
	model.QuestionTypeFreeResponse: true,
	model.QuestionTypeShortAnswer:  true,
	model.QuestionTypeMatching:     true,
}

// validateChildren checks the per-type structural invariants: true_false
// carries exactly 2 options with exactly 1 correct, single_choice at least
// 2 with at least 1 correct, matching at least 2 pairs.
func validateChildren(questionType string, options []OptionRequest, pairs []PairRequest) error {
	switch questionType {
	case model.QuestionTypeTrueFalse:
		if len(options) != 2 {
			return fmt.Errorf("%w: true_false questions need exactly 2 options", util.ErrValidation)
		}
		correct := 0
		for _, o := range options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("%w: true_false questions need exactly 1 correct option", util.ErrValidation)
		}
	case model.QuestionTypeSingleChoice:
		if len(options) < 2 {
			return fmt.Errorf("%w: single_choice questions need at least 2 options", util.ErrValidation)
		}
		correct := 0
		for _, o := range options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct < 1 {
			return fmt.Errorf("%w: single_choice questions need at least 1 correct option", util.ErrValidation)
		}
	case model.QuestionTypeMatching:
		if len(pairs) < 2 {
			return fmt.Errorf("%w: matching questions need at least 2 pairs", util.ErrValidation)
		}
	}
	return nil
}

func (s *QuestionService) CreateQuestion(creatorID uint, req QuestionCreateRequest) (*model.Question, error) {
	if !validQuestionTypes[req.QuestionType] {
		return nil, fmt.Errorf("%w: unknown question type %q", util.ErrValidation, req.QuestionType)
	}
	if err := validateChildren(req.QuestionType, req.Options, req.Pairs); err != nil {
		return nil, err
	}

	votesRequired := req.VotesRequired
	if votesRequired <= 0 {
		votesRequired = s.Cfg.Review.DefaultVotesRequired
	}
	points := req.RecommendedPoints
	if points <= 0 {
		points = 1
	}

	var created *model.Question
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		question := &model.Question{
			CreatorID:         creatorID,
			SubcategoryID:     req.SubcategoryID,
			AgeRangeID:        req.AgeRangeID,
			DifficultyLevelID: req.DifficultyLevelID,
			QuestionType:      req.QuestionType,
			State:             model.QuestionStateDraft,
			Title:             req.Title,
			ContentID:         req.ContentID,
			RecommendedPoints: points,
			VotesRequired:     votesRequired,
			Active:            true,
		}
		if err := tx.Create(question).Error; err != nil {
			return err
		}

		if len(req.Options) > 0 {
			var options []model.Option
			for i, o := range req.Options {
				order := o.DisplayOrder
				if order == 0 {
					order = i + 1
				}
				options = append(options, model.Option{
					QuestionID:   question.ID,
					Text:         o.Text,
					ContentID:    o.ContentID,
					IsCorrect:    o.IsCorrect,
					DisplayOrder: order,
				})
			}
			if err := tx.Create(&options).Error; err != nil {
				return err
			}
		}

		if len(req.Pairs) > 0 {
			var pairs []model.MatchingPair
			for i, p := range req.Pairs {
				order := p.PairOrder
				if order == 0 {
					order = i + 1
				}
				pairs = append(pairs, model.MatchingPair{
					QuestionID:     question.ID,
					LeftText:       p.LeftText,
					LeftContentID:  p.LeftContentID,
					RightText:      p.RightText,
					RightContentID: p.RightContentID,
					PairOrder:      order,
				})
			}
			if err := tx.Create(&pairs).Error; err != nil {
				return err
			}
		}

		if req.ModelAnswerText != "" || len(req.Keywords) > 0 {
			keywords, _ := json.Marshal(req.Keywords)
			ma := &model.ModelAnswer{
				QuestionID: question.ID,
				Text:       req.ModelAnswerText,
				Keywords:   string(keywords),
			}
			if err := tx.Create(ma).Error; err != nil {
				return err
			}
		}

		created = question
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// QuestionDetail bundles a question with its type-specific children.
type QuestionDetail struct {
	Question    *model.Question      `json:"question"`
	Options     []model.Option       `json:"options,omitempty"`
	Pairs       []model.MatchingPair `json:"pairs,omitempty"`
	ModelAnswer *model.ModelAnswer   `json:"modelAnswer,omitempty"`
}

func (s *QuestionService) GetQuestion(id uint) (*QuestionDetail, error) {
	q, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}

	detail := &QuestionDetail{Question: q}
	if q.IsChoice() {
		detail.Options, err = s.QuestionRepo.GetOptions(q.ID)
		if err != nil {
			return nil, err
		}
	}
	if q.QuestionType == model.QuestionTypeMatching {
		detail.Pairs, err = s.QuestionRepo.GetPairs(q.ID)
		if err != nil {
			return nil, err
		}
	}
	if q.IsFreeText() {
		if ma, err := s.QuestionRepo.GetModelAnswer(q.ID); err == nil {
			detail.ModelAnswer = ma
		}
	}
	return detail, nil
}

func (s *QuestionService) ListQuestions(f repository.QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	return s.QuestionRepo.List(f, page, limit)
}

type QuestionUpdateRequest struct {
	Title             string  `json:"title"`
	ContentID         *string `json:"contentId,omitempty"`
	SubcategoryID     uint    `json:"subcategoryId"`
	AgeRangeID        uint    `json:"ageRangeId"`
	DifficultyLevelID uint    `json:"difficultyLevelId"`
	RecommendedPoints int     `json:"recommendedPoints"`
}

func (s *QuestionService) UpdateQuestion(id uint, req QuestionUpdateRequest) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	if !q.Editable() {
		return nil, util.ErrQuestionLocked
	}

	if req.Title != "" {
		q.Title = req.Title
	}
	if req.ContentID != nil {
		q.ContentID = req.ContentID
	}
	if req.SubcategoryID > 0 {
		q.SubcategoryID = req.SubcategoryID
	}
	if req.AgeRangeID > 0 {
		q.AgeRangeID = req.AgeRangeID
	}
	if req.DifficultyLevelID > 0 {
		q.DifficultyLevelID = req.DifficultyLevelID
	}
	if req.RecommendedPoints > 0 {
		q.RecommendedPoints = req.RecommendedPoints
	}

	if err := s.QuestionRepo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

// SubmitForReview moves a draft into the peer-review queue.
func (s *QuestionService) SubmitForReview(id uint) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	if q.State != model.QuestionStateDraft {
		return nil, util.ErrInvalidState
	}

	// A question entering review must already satisfy its structural
	// invariants; re-check them against the stored children.
	if q.IsChoice() {
		options, err := s.QuestionRepo.GetOptions(q.ID)
		if err != nil {
			return nil, err
		}
		reqs := make([]OptionRequest, len(options))
		for i, o := range options {
			reqs[i] = OptionRequest{Text: o.Text, IsCorrect: o.IsCorrect}
		}
		if err := validateChildren(q.QuestionType, reqs, nil); err != nil {
			return nil, err
		}
	}
	if q.QuestionType == model.QuestionTypeMatching {
		count, err := s.QuestionRepo.CountPairs(q.ID)
		if err != nil {
			return nil, err
		}
		if count < 2 {
			return nil, fmt.Errorf("%w: matching questions need at least 2 pairs", util.ErrValidation)
		}
	}

	q.State = model.QuestionStateUnderReview
	if err := s.QuestionRepo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) DeleteQuestion(id uint) error {
	q, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		return util.ErrQuestionNotFound
	}
	refs, err := s.QuestionRepo.CountExamReferences(q.ID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("%w: question is attached to %d exam(s)", util.ErrValidation, refs)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", q.ID).Delete(&model.Option{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", q.ID).Delete(&model.MatchingPair{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", q.ID).Delete(&model.ModelAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", q.ID).Delete(&model.ReviewVote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, q.ID).Error
	})
}

// AddOption appends an option to an editable choice question. true_false
// questions keep their fixed pair of options, so only single_choice
// accepts additions.
func (s *QuestionService) AddOption(questionID uint, req OptionRequest) (*model.Option, error) {
	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	if !q.Editable() {
		return nil, util.ErrQuestionLocked
	}
	if q.QuestionType != model.QuestionTypeSingleChoice {
		return nil, fmt.Errorf("%w: options can only be added to single_choice questions", util.ErrValidation)
	}

	o := &model.Option{
		QuestionID:   q.ID,
		Text:         req.Text,
		ContentID:    req.ContentID,
		IsCorrect:    req.IsCorrect,
		DisplayOrder: req.DisplayOrder,
	}
	if err := s.QuestionRepo.CreateOption(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *QuestionService) UpdateOption(questionID, optionID uint, req OptionRequest) (*model.Option, error) {
	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	if !q.Editable() {
		return nil, util.ErrQuestionLocked
	}
	o, err := s.QuestionRepo.FindOptionByID(optionID)
	if err != nil || o.QuestionID != questionID {
		return nil, util.ErrOptionNotFound
	}

	o.Text = req.Text
	o.ContentID = req.ContentID
	o.IsCorrect = req.IsCorrect
	if req.DisplayOrder > 0 {
		o.DisplayOrder = req.DisplayOrder
	}
	if err := s.QuestionRepo.UpdateOption(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *QuestionService) DeleteOption(questionID, optionID uint) error {
	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return util.ErrQuestionNotFound
	}
	if !q.Editable() {
		return util.ErrQuestionLocked
	}
	if q.QuestionType != model.QuestionTypeSingleChoice {
		return fmt.Errorf("%w: options can only be removed from single_choice questions", util.ErrValidation)
	}
	o, err := s.QuestionRepo.FindOptionByID(optionID)
	if err != nil || o.QuestionID != questionID {
		return util.ErrOptionNotFound
	}

	options, err := s.QuestionRepo.GetOptions(questionID)
	if err != nil {
		return err
	}
	if len(options) <= 2 {
		return fmt.Errorf("%w: single_choice questions need at least 2 options", util.ErrValidation)
	}
	correct := 0
	for _, existing := range options {
		if existing.IsCorrect && existing.ID != optionID {
			correct++
		}
	}
	if correct < 1 {
		return fmt.Errorf("%w: deleting the only correct option is not allowed", util.ErrValidation)
	}

	return s.QuestionRepo.DeleteOption(optionID)
}

func (s *QuestionService) AddPair(questionID uint, req PairRequest) (*model.MatchingPair, error) {
	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	if !q.Editable() {
		return nil, util.ErrQuestionLocked
	}
	if q.QuestionType != model.QuestionTypeMatching {
		return nil, fmt.Errorf("%w: pairs belong to matching questions only", util.ErrValidation)
	}

	p := &model.MatchingPair{
		QuestionID:     q.ID,
		LeftText:       req.LeftText,
		LeftContentID:  req.LeftContentID,
		RightText:      req.RightText,
		RightContentID: req.RightContentID,
		PairOrder:      req.PairOrder,
	}
	if err := s.QuestionRepo.CreatePair(p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePair removes one pair as long as at least one remains afterwards.
func (s *QuestionService) DeletePair(questionID, pairID uint) error {
	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return util.ErrQuestionNotFound
	}
	if !q.Editable() {
		return util.ErrQuestionLocked
	}
	p, err := s.QuestionRepo.FindPairByID(pairID)
	if err != nil || p.QuestionID != questionID {
		return util.ErrPairNotFound
	}

	count, err := s.QuestionRepo.CountPairs(questionID)
	if err != nil {
		return err
	}
	if count-1 < 1 {
		return fmt.Errorf("%w: at least 1 pair must remain", util.ErrValidation)
	}

	return s.QuestionRepo.DeletePair(pairID)
}

// SetModelAnswer creates or replaces the single model answer of a
// free-text question.
func (s *QuestionService) SetModelAnswer(questionID uint, text string, keywords []string) (*model.ModelAnswer, error) {
	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	if !q.Editable() {
		return nil, util.ErrQuestionLocked
	}
	if !q.IsFreeText() {
		return nil, fmt.Errorf("%w: model answers belong to free-text questions only", util.ErrValidation)
	}

	keywordsJSON, _ := json.Marshal(keywords)
	ma, err := s.QuestionRepo.GetModelAnswer(questionID)
	if err != nil {
		ma = &model.ModelAnswer{QuestionID: questionID}
	}
	ma.Text = text
	ma.Keywords = string(keywordsJSON)

	if err := s.QuestionRepo.SaveModelAnswer(ma); err != nil {
		return nil, err
	}
	return ma, nil
}

// Deactivate hides a question from new exam compositions without touching
// history.
func (s *QuestionService) Deactivate(id uint) error {
	q, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		return util.ErrQuestionNotFound
	}
	q.Active = false
	return s.QuestionRepo.Update(q)
}
