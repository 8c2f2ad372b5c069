package service

import (
	"exam_bank_backend/internal/model"

	"gorm.io/gorm"
)

// AttemptScore is the result of aggregating every answer of one attempt.
type AttemptScore struct {
	Obtained          float64 `json:"obtained"`
	Total             float64 `json:"total"`
	Percentage        float64 `json:"percentage"`
	NeedsManualReview bool    `json:"needsManualReview"`
}

// ScoringSnapshot is everything the aggregator needs, loaded up front so
// the computation itself stays pure and idempotent.
type ScoringSnapshot struct {
	ExamQuestions []model.ExamQuestion
	Questions     map[uint]model.Question        // by question id
	Selections    map[uint]model.SelectionAnswer // by exam-question id
	FreeTexts     map[uint]model.FreeTextAnswer  // by exam-question id
	Matching      map[uint][]model.MatchingAnswer
}

// AggregateScore walks every exam-question of the attempt's exam and sums
// obtained/possible points. Free-text answers that exist but have not been
// graded flag the attempt for manual review and contribute nothing yet.
// Matching questions earn a fraction of the question's points proportional
// to the correct pairs among the answered ones.
func AggregateScore(snap *ScoringSnapshot) AttemptScore {
	var score AttemptScore

	for _, eq := range snap.ExamQuestions {
		q, ok := snap.Questions[eq.QuestionID]
		if !ok {
			continue
		}
		points := float64(eq.ResolvePoints(&q))
		score.Total += points

		switch {
		case q.IsChoice():
			if sel, ok := snap.Selections[eq.ID]; ok && sel.Correct {
				score.Obtained += points
			}
		case q.IsFreeText():
			if ft, ok := snap.FreeTexts[eq.ID]; ok {
				if ft.Graded {
					score.Obtained += float64(ft.Points)
				} else {
					score.NeedsManualReview = true
				}
			}
		case q.QuestionType == model.QuestionTypeMatching:
			answers := snap.Matching[eq.ID]
			if len(answers) == 0 {
				break
			}
			correct := 0
			for _, a := range answers {
				if a.Correct {
					correct++
				}
			}
			score.Obtained += float64(correct) / float64(len(answers)) * points
		}
	}

	if score.Total > 0 {
		score.Percentage = score.Obtained / score.Total * 100
	}
	return score
}

// loadScoringSnapshot pulls the exam's question set and the attempt's
// answers in one pass.
func loadScoringSnapshot(db *gorm.DB, attempt *model.Attempt) (*ScoringSnapshot, error) {
	snap := &ScoringSnapshot{
		Questions:  make(map[uint]model.Question),
		Selections: make(map[uint]model.SelectionAnswer),
		FreeTexts:  make(map[uint]model.FreeTextAnswer),
		Matching:   make(map[uint][]model.MatchingAnswer),
	}

	if err := db.Where("exam_id = ?", attempt.ExamID).Find(&snap.ExamQuestions).Error; err != nil {
		return nil, err
	}

	questionIDs := make([]uint, 0, len(snap.ExamQuestions))
	for _, eq := range snap.ExamQuestions {
		questionIDs = append(questionIDs, eq.QuestionID)
	}
	if len(questionIDs) > 0 {
		var questions []model.Question
		if err := db.Where("id IN ?", questionIDs).Find(&questions).Error; err != nil {
			return nil, err
		}
		for _, q := range questions {
			snap.Questions[q.ID] = q
		}
	}

	var selections []model.SelectionAnswer
	if err := db.Where("attempt_id = ?", attempt.ID).Find(&selections).Error; err != nil {
		return nil, err
	}
	for _, s := range selections {
		snap.Selections[s.ExamQuestionID] = s
	}

	var freeTexts []model.FreeTextAnswer
	if err := db.Where("attempt_id = ?", attempt.ID).Find(&freeTexts).Error; err != nil {
		return nil, err
	}
	for _, ft := range freeTexts {
		snap.FreeTexts[ft.ExamQuestionID] = ft
	}

	var matching []model.MatchingAnswer
	if err := db.Where("attempt_id = ?", attempt.ID).Find(&matching).Error; err != nil {
		return nil, err
	}
	for _, m := range matching {
		snap.Matching[m.ExamQuestionID] = append(snap.Matching[m.ExamQuestionID], m)
	}

	return snap, nil
}

// rescoreAttempt recomputes and stores the aggregate for an attempt using
// the given handle (plain DB or transaction). Safe to run any number of
// times; grading a pending free-text answer re-enters through here.
func rescoreAttempt(db *gorm.DB, attempt *model.Attempt, exam *model.Exam) error {
	snap, err := loadScoringSnapshot(db, attempt)
	if err != nil {
		return err
	}
	score := AggregateScore(snap)

	attempt.ObtainedPoints = score.Obtained
	attempt.TotalPoints = score.Total
	attempt.Percentage = score.Percentage
	attempt.NeedsManualReview = score.NeedsManualReview
	attempt.Passed = !score.NeedsManualReview && score.Percentage >= float64(exam.PassingScore)

	return db.Save(attempt).Error
}
