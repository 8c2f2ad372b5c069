package model

import "time"

const (
	QuestionStateDraft       = "draft"
	QuestionStateUnderReview = "under_review"
	QuestionStatePublished   = "published"
	QuestionStateRejected    = "rejected"
)

const (
	QuestionTypeSingleChoice = "single_choice"
	QuestionTypeTrueFalse    = "true_false"
	QuestionTypeFreeResponse = "free_response"
	QuestionTypeShortAnswer  = "short_answer"
	QuestionTypeMatching     = "matching"
)

// RejectThreshold is the number of negative votes that rejects a question
// under review.
const RejectThreshold = 2

// swagger:model Question
type Question struct {
	BaseModel

	CreatorID         uint   `gorm:"index;type:bigint unsigned" json:"creatorId"`
	SubcategoryID     uint   `gorm:"index;type:bigint unsigned" json:"subcategoryId"`
	AgeRangeID        uint   `gorm:"type:bigint unsigned" json:"ageRangeId"`
	DifficultyLevelID uint   `gorm:"type:bigint unsigned" json:"difficultyLevelId"`
	QuestionType      string `gorm:"size:50;not null" json:"questionType"` // single_choice, true_false, free_response, short_answer, matching
	State             string `gorm:"size:20;default:'draft';index" json:"state"`
	Title             string `gorm:"size:500;not null" json:"title"`
	ContentID         *string `gorm:"type:varchar(36)" json:"contentId,omitempty"` // optional media asset reference

	RecommendedPoints int        `gorm:"default:1" json:"recommendedPoints"`
	VotesRequired     int        `gorm:"default:3" json:"votesRequired"`
	PositiveVotes     int        `gorm:"default:0" json:"positiveVotes"`
	NegativeVotes     int        `gorm:"default:0" json:"negativeVotes"`
	PublishedAt       *time.Time `json:"publishedAt,omitempty"`
	Active            bool       `gorm:"default:true" json:"active"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) IsChoice() bool {
	return q.QuestionType == QuestionTypeSingleChoice || q.QuestionType == QuestionTypeTrueFalse
}

func (q *Question) IsFreeText() bool {
	return q.QuestionType == QuestionTypeFreeResponse || q.QuestionType == QuestionTypeShortAnswer
}

// Editable reports whether the question content may still be changed.
// Published questions are frozen; only the administrative state override
// bypasses this.
func (q *Question) Editable() bool {
	return q.State != QuestionStatePublished
}

// swagger:model Option
type Option struct {
	BaseModel

	QuestionID   uint    `gorm:"index;type:bigint unsigned" json:"questionId"`
	Text         string  `gorm:"type:text" json:"text"`
	ContentID    *string `gorm:"type:varchar(36)" json:"contentId,omitempty"`
	IsCorrect    bool    `gorm:"default:false" json:"isCorrect"`
	DisplayOrder int     `gorm:"default:0" json:"displayOrder"`
}

func (Option) TableName() string {
	return "options"
}

// swagger:model MatchingPair
type MatchingPair struct {
	BaseModel

	QuestionID     uint    `gorm:"index;type:bigint unsigned" json:"questionId"`
	LeftText       string  `gorm:"type:text" json:"leftText"`
	LeftContentID  *string `gorm:"type:varchar(36)" json:"leftContentId,omitempty"`
	RightText      string  `gorm:"type:text" json:"rightText"`
	RightContentID *string `gorm:"type:varchar(36)" json:"rightContentId,omitempty"`
	PairOrder      int     `gorm:"default:0" json:"pairOrder"`
}

func (MatchingPair) TableName() string {
	return "matching_pairs"
}

// ModelAnswer holds the reference answer for free_response/short_answer
// questions. At most one per question.
// swagger:model ModelAnswer
type ModelAnswer struct {
	BaseModel

	QuestionID uint   `gorm:"uniqueIndex;type:bigint unsigned" json:"questionId"`
	Text       string `gorm:"type:text" json:"text"`
	Keywords   string `gorm:"type:json" json:"keywords"` // JSON array of expected keywords
}

func (ModelAnswer) TableName() string {
	return "model_answers"
}
