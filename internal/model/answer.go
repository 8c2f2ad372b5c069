package model

import "time"

// Three answer shapes, one per question-type family. Selection and
// free-text answers are unique per (attempt, exam-question); matching
// answers are unique per (attempt, exam-question, pair).

// swagger:model SelectionAnswer
type SelectionAnswer struct {
	BaseModel

	AttemptID      uint `gorm:"uniqueIndex:idx_selection_attempt_eq;type:bigint unsigned" json:"attemptId"`
	ExamQuestionID uint `gorm:"uniqueIndex:idx_selection_attempt_eq;type:bigint unsigned" json:"examQuestionId"`
	OptionID       uint `gorm:"type:bigint unsigned" json:"optionId"`
	Correct        bool `gorm:"default:false" json:"correct"`
	Points         int  `gorm:"default:0" json:"points"` // fixed at write time, never re-scored
}

func (SelectionAnswer) TableName() string {
	return "selection_answers"
}

// swagger:model FreeTextAnswer
type FreeTextAnswer struct {
	BaseModel

	AttemptID      uint       `gorm:"uniqueIndex:idx_freetext_attempt_eq;type:bigint unsigned" json:"attemptId"`
	ExamQuestionID uint       `gorm:"uniqueIndex:idx_freetext_attempt_eq;type:bigint unsigned" json:"examQuestionId"`
	Text           string     `gorm:"type:text" json:"text"`
	Graded         bool       `gorm:"default:false" json:"graded"`
	Points         int        `gorm:"default:0" json:"points"`
	GraderID       *uint      `gorm:"type:bigint unsigned" json:"graderId,omitempty"`
	GraderComment  string     `gorm:"type:text" json:"graderComment"`
	GradedAt       *time.Time `json:"gradedAt,omitempty"`
}

func (FreeTextAnswer) TableName() string {
	return "free_text_answers"
}

// swagger:model MatchingAnswer
type MatchingAnswer struct {
	BaseModel

	AttemptID      uint   `gorm:"uniqueIndex:idx_matching_attempt_eq_pair;type:bigint unsigned" json:"attemptId"`
	ExamQuestionID uint   `gorm:"uniqueIndex:idx_matching_attempt_eq_pair;type:bigint unsigned" json:"examQuestionId"`
	PairID         uint   `gorm:"uniqueIndex:idx_matching_attempt_eq_pair;type:bigint unsigned" json:"pairId"`
	SelectedRight  string `gorm:"type:text" json:"selectedRight"`
	Correct        bool   `gorm:"default:false" json:"correct"`
}

func (MatchingAnswer) TableName() string {
	return "matching_answers"
}
