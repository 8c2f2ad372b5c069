package service

import (
	"testing"

	"exam_bank_backend/internal/model"
	"exam_bank_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSelectionScoresAtWriteTime(t *testing.T) {
	db := setupTestDB(t)
	svc := newAnswerService(db)
	attempts := newAttemptService(db)

	editor := createTestUser(t, db, model.Editor)
	student := createTestUser(t, db, model.Student)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)
	q := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 4)
	eq := attach(t, db, exam.ID, q.ID)

	attempt, err := attempts.StartAttempt(exam.ID, student.ID)
	require.NoError(t, err)

	var correct, wrong model.Option
	require.NoError(t, db.Where("question_id = ? AND is_correct = ?", q.ID, true).First(&correct).Error)
	require.NoError(t, db.Where("question_id = ? AND is_correct = ?", q.ID, false).First(&wrong).Error)

	answer, err := svc.RecordSelection(attempt.ID, eq.ID, correct.ID, student.ID)
	require.NoError(t, err)
	assert.True(t, answer.Correct)
	assert.Equal(t, 4, answer.Points)

	t.Run("second answer for same question rejected", func(t *testing.T) {
		_, err := svc.RecordSelection(attempt.ID, eq.ID, wrong.ID, student.ID)
		assert.ErrorIs(t, err, util.ErrValidation)
	})
}

func TestRecordSelectionGuards(t *testing.T) {
	db := setupTestDB(t)
	svc := newAnswerService(db)
	attempts := newAttemptService(db)

	editor := createTestUser(t, db, model.Editor)
	student := createTestUser(t, db, model.Student)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)
	q := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 4)
	eq := attach(t, db, exam.ID, q.ID)

	attempt, err := attempts.StartAttempt(exam.ID, student.ID)
	require.NoError(t, err)

	t.Run("option must belong to the question", func(t *testing.T) {
		other := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 2)
		var foreign model.Option
		require.NoError(t, db.Where("question_id = ?", other.ID).First(&foreign).Error)
		_, err := svc.RecordSelection(attempt.ID, eq.ID, foreign.ID, student.ID)
		assert.ErrorIs(t, err, util.ErrOptionNotFound)
	})

	t.Run("someone else's attempt is off limits", func(t *testing.T) {
		var opt model.Option
		require.NoError(t, db.Where("question_id = ?", q.ID).First(&opt).Error)
		intruder := createTestUser(t, db, model.Student)
		_, err := svc.RecordSelection(attempt.ID, eq.ID, opt.ID, intruder.ID)
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
	})

	t.Run("completed attempt refuses answers", func(t *testing.T) {
		_, err := attempts.FinalizeAttempt(attempt.ID, student.ID)
		require.NoError(t, err)

		var opt model.Option
		require.NoError(t, db.Where("question_id = ?", q.ID).First(&opt).Error)
		_, err = svc.RecordSelection(attempt.ID, eq.ID, opt.ID, student.ID)
		assert.ErrorIs(t, err, util.ErrAlreadyCompleted)
	})
}

func TestRecordMatchingMarksPerPair(t *testing.T) {
	db := setupTestDB(t)
	svc := newAnswerService(db)
	attempts := newAttemptService(db)

	editor := createTestUser(t, db, model.Editor)
	student := createTestUser(t, db, model.Student)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)
	q := createQuestion(t, db, editor.ID, model.QuestionTypeMatching, model.QuestionStatePublished, 6)
	eq := attach(t, db, exam.ID, q.ID)

	attempt, err := attempts.StartAttempt(exam.ID, student.ID)
	require.NoError(t, err)

	var pairs []model.MatchingPair
	require.NoError(t, db.Where("question_id = ?", q.ID).Order("pair_order").Find(&pairs).Error)
	require.Len(t, pairs, 3)

	answers, err := svc.RecordMatching(attempt.ID, eq.ID, student.ID, []MatchSelection{
		{PairID: pairs[0].ID, SelectedRight: pairs[0].RightText},
		{PairID: pairs[1].ID, SelectedRight: "wrong"},
	})
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.True(t, answers[0].Correct)
	assert.False(t, answers[1].Correct)

	t.Run("duplicate pair in batch rejected", func(t *testing.T) {
		_, err := svc.RecordMatching(attempt.ID, eq.ID, student.ID, []MatchSelection{
			{PairID: pairs[2].ID, SelectedRight: "x"},
			{PairID: pairs[2].ID, SelectedRight: "y"},
		})
		assert.ErrorIs(t, err, util.ErrValidation)
	})

	t.Run("unknown pair rejected", func(t *testing.T) {
		_, err := svc.RecordMatching(attempt.ID, eq.ID, student.ID, []MatchSelection{
			{PairID: 99999, SelectedRight: "x"},
		})
		assert.ErrorIs(t, err, util.ErrPairNotFound)
	})
}

func TestGradeFreeText(t *testing.T) {
	db := setupTestDB(t)
	svc := newAnswerService(db)
	attempts := newAttemptService(db)

	editor := createTestUser(t, db, model.Editor)
	student := createTestUser(t, db, model.Student)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)
	q := createQuestion(t, db, editor.ID, model.QuestionTypeFreeResponse, model.QuestionStatePublished, 5)
	eq := attach(t, db, exam.ID, q.ID)

	attempt, err := attempts.StartAttempt(exam.ID, student.ID)
	require.NoError(t, err)
	answer, err := svc.RecordFreeText(attempt.ID, eq.ID, student.ID, "my essay")
	require.NoError(t, err)

	finalized, err := attempts.FinalizeAttempt(attempt.ID, student.ID)
	require.NoError(t, err)
	require.True(t, finalized.NeedsManualReview)

	t.Run("points above the question value rejected", func(t *testing.T) {
		_, err := svc.GradeFreeText(answer.ID, editor.ID, 6, "")
		assert.ErrorIs(t, err, util.ErrPointsExceeded)
	})

	t.Run("negative points rejected", func(t *testing.T) {
		_, err := svc.GradeFreeText(answer.ID, editor.ID, -1, "")
		assert.ErrorIs(t, err, util.ErrValidation)
	})

	t.Run("grading updates the finalized attempt", func(t *testing.T) {
		graded, err := svc.GradeFreeText(answer.ID, editor.ID, 3, "decent")
		require.NoError(t, err)
		assert.True(t, graded.Graded)
		assert.Equal(t, 3, graded.Points)
		assert.Equal(t, editor.ID, *graded.GraderID)
		assert.NotNil(t, graded.GradedAt)

		var fresh model.Attempt
		require.NoError(t, db.First(&fresh, attempt.ID).Error)
		assert.False(t, fresh.NeedsManualReview)
		assert.Equal(t, 3.0, fresh.ObtainedPoints)
		assert.InDelta(t, 60.0, fresh.Percentage, 0.0001)
		assert.True(t, fresh.Passed)
	})

	t.Run("second grading rejected", func(t *testing.T) {
		_, err := svc.GradeFreeText(answer.ID, editor.ID, 2, "")
		assert.ErrorIs(t, err, util.ErrAlreadyGraded)
	})
}

func TestListUngraded(t *testing.T) {
	db := setupTestDB(t)
	svc := newAnswerService(db)
	attempts := newAttemptService(db)

	editor := createTestUser(t, db, model.Editor)
	student := createTestUser(t, db, model.Student)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)
	q := createQuestion(t, db, editor.ID, model.QuestionTypeShortAnswer, model.QuestionStatePublished, 2)
	eq := attach(t, db, exam.ID, q.ID)

	attempt, err := attempts.StartAttempt(exam.ID, student.ID)
	require.NoError(t, err)
	answer, err := svc.RecordFreeText(attempt.ID, eq.ID, student.ID, "short answer")
	require.NoError(t, err)

	pending, err := svc.ListUngraded(exam.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, answer.ID, pending[0].ID)

	_, err = svc.GradeFreeText(answer.ID, editor.ID, 2, "")
	require.NoError(t, err)

	pending, err = svc.ListUngraded(exam.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
