package service

import (
	"testing"

	"exam_bank_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func snapshotWith(eqs []model.ExamQuestion, questions []model.Question) *ScoringSnapshot {
	snap := &ScoringSnapshot{
		ExamQuestions: eqs,
		Questions:     make(map[uint]model.Question),
		Selections:    make(map[uint]model.SelectionAnswer),
		FreeTexts:     make(map[uint]model.FreeTextAnswer),
		Matching:      make(map[uint][]model.MatchingAnswer),
	}
	for _, q := range questions {
		snap.Questions[q.ID] = q
	}
	return snap
}

func TestAggregateScoreChoice(t *testing.T) {
	tests := []struct {
		name     string
		correct  bool
		answered bool
		points   int
		obtained float64
	}{
		{"correct selection earns full points", true, true, 4, 4},
		{"wrong selection earns nothing", false, true, 4, 0},
		{"unanswered earns nothing", false, false, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := snapshotWith(
				[]model.ExamQuestion{{BaseModel: model.BaseModel{ID: 1}, QuestionID: 10, UseRecommended: true}},
				[]model.Question{{BaseModel: model.BaseModel{ID: 10}, QuestionType: model.QuestionTypeSingleChoice, RecommendedPoints: tt.points}},
			)
			if tt.answered {
				snap.Selections[1] = model.SelectionAnswer{ExamQuestionID: 1, Correct: tt.correct}
			}

			score := AggregateScore(snap)
			assert.Equal(t, tt.obtained, score.Obtained)
			assert.Equal(t, float64(tt.points), score.Total)
			assert.False(t, score.NeedsManualReview)
		})
	}
}

func TestAggregateScorePointOverride(t *testing.T) {
	snap := snapshotWith(
		[]model.ExamQuestion{{BaseModel: model.BaseModel{ID: 1}, QuestionID: 10, UseRecommended: false, PointOverride: intPtr(7)}},
		[]model.Question{{BaseModel: model.BaseModel{ID: 10}, QuestionType: model.QuestionTypeTrueFalse, RecommendedPoints: 2}},
	)
	snap.Selections[1] = model.SelectionAnswer{ExamQuestionID: 1, Correct: true}

	score := AggregateScore(snap)
	assert.Equal(t, 7.0, score.Obtained)
	assert.Equal(t, 7.0, score.Total)
}

func TestAggregateScoreFreeText(t *testing.T) {
	t.Run("ungraded answer flags manual review and contributes nothing", func(t *testing.T) {
		snap := snapshotWith(
			[]model.ExamQuestion{{BaseModel: model.BaseModel{ID: 1}, QuestionID: 10, UseRecommended: true}},
			[]model.Question{{BaseModel: model.BaseModel{ID: 10}, QuestionType: model.QuestionTypeFreeResponse, RecommendedPoints: 5}},
		)
		snap.FreeTexts[1] = model.FreeTextAnswer{ExamQuestionID: 1, Text: "essay", Graded: false}

		score := AggregateScore(snap)
		assert.True(t, score.NeedsManualReview)
		assert.Equal(t, 0.0, score.Obtained)
		assert.Equal(t, 5.0, score.Total)
	})

	t.Run("graded five point answer worth three", func(t *testing.T) {
		snap := snapshotWith(
			[]model.ExamQuestion{{BaseModel: model.BaseModel{ID: 1}, QuestionID: 10, UseRecommended: true}},
			[]model.Question{{BaseModel: model.BaseModel{ID: 10}, QuestionType: model.QuestionTypeFreeResponse, RecommendedPoints: 5}},
		)
		snap.FreeTexts[1] = model.FreeTextAnswer{ExamQuestionID: 1, Text: "essay", Graded: true, Points: 3}

		score := AggregateScore(snap)
		assert.False(t, score.NeedsManualReview)
		assert.Equal(t, 3.0, score.Obtained)
		assert.Equal(t, 5.0, score.Total)
		assert.InDelta(t, 60.0, score.Percentage, 0.0001)
	})

	t.Run("missing free text answer does not flag review", func(t *testing.T) {
		snap := snapshotWith(
			[]model.ExamQuestion{{BaseModel: model.BaseModel{ID: 1}, QuestionID: 10, UseRecommended: true}},
			[]model.Question{{BaseModel: model.BaseModel{ID: 10}, QuestionType: model.QuestionTypeShortAnswer, RecommendedPoints: 5}},
		)

		score := AggregateScore(snap)
		assert.False(t, score.NeedsManualReview)
		assert.Equal(t, 0.0, score.Obtained)
	})
}

func TestAggregateScoreMatching(t *testing.T) {
	tests := []struct {
		name     string
		answers  []model.MatchingAnswer
		points   int
		obtained float64
	}{
		{
			"two of four pairs correct earns half",
			[]model.MatchingAnswer{
				{ExamQuestionID: 1, PairID: 1, Correct: true},
				{ExamQuestionID: 1, PairID: 2, Correct: true},
				{ExamQuestionID: 1, PairID: 3, Correct: false},
				{ExamQuestionID: 1, PairID: 4, Correct: false},
			},
			8, 4,
		},
		{
			"all correct earns everything",
			[]model.MatchingAnswer{
				{ExamQuestionID: 1, PairID: 1, Correct: true},
				{ExamQuestionID: 1, PairID: 2, Correct: true},
			},
			6, 6,
		},
		{
			"none correct earns nothing",
			[]model.MatchingAnswer{
				{ExamQuestionID: 1, PairID: 1, Correct: false},
			},
			6, 0,
		},
		{"no answers earns nothing", nil, 6, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := snapshotWith(
				[]model.ExamQuestion{{BaseModel: model.BaseModel{ID: 1}, QuestionID: 10, UseRecommended: true}},
				[]model.Question{{BaseModel: model.BaseModel{ID: 10}, QuestionType: model.QuestionTypeMatching, RecommendedPoints: tt.points}},
			)
			snap.Matching[1] = tt.answers

			score := AggregateScore(snap)
			assert.Equal(t, tt.obtained, score.Obtained)
			assert.Equal(t, float64(tt.points), score.Total)
		})
	}
}

func TestAggregateScoreSinglePointFullMark(t *testing.T) {
	snap := snapshotWith(
		[]model.ExamQuestion{{BaseModel: model.BaseModel{ID: 1}, QuestionID: 10, UseRecommended: true}},
		[]model.Question{{BaseModel: model.BaseModel{ID: 10}, QuestionType: model.QuestionTypeSingleChoice, RecommendedPoints: 1}},
	)
	snap.Selections[1] = model.SelectionAnswer{ExamQuestionID: 1, Correct: true}

	score := AggregateScore(snap)
	assert.Equal(t, 1.0, score.Obtained)
	assert.Equal(t, 100.0, score.Percentage)
}

func TestAggregateScoreEmptyExam(t *testing.T) {
	score := AggregateScore(snapshotWith(nil, nil))
	assert.Equal(t, 0.0, score.Total)
	assert.Equal(t, 0.0, score.Percentage)
}

func TestAggregateScoreIdempotent(t *testing.T) {
	snap := snapshotWith(
		[]model.ExamQuestion{
			{BaseModel: model.BaseModel{ID: 1}, QuestionID: 10, UseRecommended: true},
			{BaseModel: model.BaseModel{ID: 2}, QuestionID: 11, UseRecommended: true},
		},
		[]model.Question{
			{BaseModel: model.BaseModel{ID: 10}, QuestionType: model.QuestionTypeSingleChoice, RecommendedPoints: 3},
			{BaseModel: model.BaseModel{ID: 11}, QuestionType: model.QuestionTypeMatching, RecommendedPoints: 6},
		},
	)
	snap.Selections[1] = model.SelectionAnswer{ExamQuestionID: 1, Correct: true}
	snap.Matching[2] = []model.MatchingAnswer{
		{ExamQuestionID: 2, PairID: 1, Correct: true},
		{ExamQuestionID: 2, PairID: 2, Correct: false},
	}

	first := AggregateScore(snap)
	second := AggregateScore(snap)
	assert.Equal(t, first, second)
	assert.Equal(t, 6.0, first.Obtained)
	assert.Equal(t, 9.0, first.Total)
}
