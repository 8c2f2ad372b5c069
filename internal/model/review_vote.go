package model

const (
	VotePositive = "positive"
	VoteNegative = "negative"
)

// ReviewVote is one reviewer's verdict on a question under review. The
// unique index keeps a reviewer to a single vote per question even under
// concurrent casts.
// swagger:model ReviewVote
type ReviewVote struct {
	BaseModel

	QuestionID uint   `gorm:"uniqueIndex:idx_vote_question_reviewer;type:bigint unsigned" json:"questionId"`
	ReviewerID uint   `gorm:"uniqueIndex:idx_vote_question_reviewer;type:bigint unsigned" json:"reviewerId"`
	Vote       string `gorm:"size:10;not null" json:"vote"` // positive, negative
	Comment    string `gorm:"type:text" json:"comment"`
}

func (ReviewVote) TableName() string {
	return "review_votes"
}
