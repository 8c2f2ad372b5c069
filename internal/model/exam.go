package model

import "time"

// swagger:model Exam
type Exam struct {
	BaseModel

	CreatorID          uint      `gorm:"index;type:bigint unsigned" json:"creatorId"`
	CycleID            uint      `gorm:"index;type:bigint unsigned" json:"cycleId"`
	Title              string    `gorm:"size:255;not null" json:"title"`
	Description        string    `gorm:"type:text" json:"description"`
	StartAt            time.Time `json:"startAt"`
	EndAt              time.Time `json:"endAt"`
	DurationMinutes    int       `gorm:"default:60" json:"durationMinutes"`
	MaxAttempts        int       `gorm:"default:1" json:"maxAttempts"`
	PassingScore       int       `gorm:"default:60" json:"passingScore"` // percentage 0-100
	ShowResults        bool      `gorm:"default:true" json:"showResults"`
	RandomizeQuestions bool      `gorm:"default:false" json:"randomizeQuestions"`
	RandomizeOptions   bool      `gorm:"default:false" json:"randomizeOptions"`
	Active             bool      `gorm:"default:true" json:"active"`
}

func (Exam) TableName() string {
	return "exams"
}

// ExamQuestion binds one published question into one exam with its own
// point value and position. Unique per (exam, question), and the display
// order is unique per exam where set (NULL orders stay free).
// swagger:model ExamQuestion
type ExamQuestion struct {
	BaseModel

	ExamID         uint `gorm:"uniqueIndex:idx_exam_question;uniqueIndex:idx_exam_order;type:bigint unsigned" json:"examId"`
	QuestionID     uint `gorm:"uniqueIndex:idx_exam_question;type:bigint unsigned" json:"questionId"`
	DisplayOrder   *int `gorm:"uniqueIndex:idx_exam_order" json:"displayOrder,omitempty"`
	PointOverride  *int `json:"pointOverride,omitempty"`
	UseRecommended bool `gorm:"default:true" json:"useRecommended"`
	Mandatory      bool `gorm:"default:true" json:"mandatory"`
	AddedByID      uint `gorm:"type:bigint unsigned" json:"addedById"`
}

func (ExamQuestion) TableName() string {
	return "exam_questions"
}

// ResolvePoints returns the point value this binding is worth: the override
// when recommended points are not used, the question's recommended points
// otherwise.
func (eq *ExamQuestion) ResolvePoints(q *Question) int {
	if !eq.UseRecommended && eq.PointOverride != nil {
		return *eq.PointOverride
	}
	return q.RecommendedPoints
}
