package model

import "time"

// Attempt is one student's pass at an exam. Attempt numbers are sequential
// and unique per (exam, student).
// swagger:model Attempt
type Attempt struct {
	BaseModel

	ExamID        uint       `gorm:"uniqueIndex:idx_attempt_exam_student_number;type:bigint unsigned" json:"examId"`
	StudentID     uint       `gorm:"uniqueIndex:idx_attempt_exam_student_number;type:bigint unsigned" json:"studentId"`
	AttemptNumber int        `gorm:"uniqueIndex:idx_attempt_exam_student_number" json:"attemptNumber"`
	StartedAt     time.Time  `json:"startedAt"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty"`
	Completed     bool       `gorm:"default:false" json:"completed"`

	NeedsManualReview bool    `gorm:"default:false" json:"needsManualReview"`
	ObtainedPoints    float64 `gorm:"default:0" json:"obtainedPoints"`
	TotalPoints       float64 `gorm:"default:0" json:"totalPoints"`
	Percentage        float64 `gorm:"default:0" json:"percentage"`
	Passed            bool    `gorm:"default:false" json:"passed"`
}

func (Attempt) TableName() string {
	return "attempts"
}
