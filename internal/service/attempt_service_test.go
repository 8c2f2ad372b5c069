package service

import (
	"testing"
	"time"

	"exam_bank_backend/internal/model"
	"exam_bank_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAttemptEnforcesLimit(t *testing.T) {
	db := setupTestDB(t)
	svc := newAttemptService(db)

	editor := createTestUser(t, db, model.Editor)
	student := createTestUser(t, db, model.Student)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)
	require.NoError(t, db.Model(exam).Update("max_attempts", 2).Error)

	a1, err := svc.StartAttempt(exam.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, a1.AttemptNumber)

	a2, err := svc.StartAttempt(exam.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, a2.AttemptNumber)

	_, err = svc.StartAttempt(exam.ID, student.ID)
	assert.ErrorIs(t, err, util.ErrAttemptLimit)

	// Another student still has their own allowance.
	other := createTestUser(t, db, model.Student)
	b1, err := svc.StartAttempt(exam.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, b1.AttemptNumber)
}

func TestStartAttemptWindowAndActivity(t *testing.T) {
	db := setupTestDB(t)
	svc := newAttemptService(db)

	editor := createTestUser(t, db, model.Editor)
	student := createTestUser(t, db, model.Student)
	cycle := createTestCycle(t, db)

	t.Run("before the window", func(t *testing.T) {
		exam := createTestExam(t, db, editor.ID, cycle.ID)
		require.NoError(t, db.Model(exam).Updates(map[string]interface{}{
			"start_at": time.Now().Add(time.Hour),
			"end_at":   time.Now().Add(2 * time.Hour),
		}).Error)
		_, err := svc.StartAttempt(exam.ID, student.ID)
		assert.ErrorIs(t, err, util.ErrExamNotAvailable)
	})

	t.Run("after the window", func(t *testing.T) {
		exam := createTestExam(t, db, editor.ID, cycle.ID)
		require.NoError(t, db.Model(exam).Updates(map[string]interface{}{
			"start_at": time.Now().Add(-2 * time.Hour),
			"end_at":   time.Now().Add(-time.Hour),
		}).Error)
		_, err := svc.StartAttempt(exam.ID, student.ID)
		assert.ErrorIs(t, err, util.ErrExamNotAvailable)
	})

	t.Run("inactive exam", func(t *testing.T) {
		exam := createTestExam(t, db, editor.ID, cycle.ID)
		require.NoError(t, db.Model(exam).Update("active", false).Error)
		_, err := svc.StartAttempt(exam.ID, student.ID)
		assert.ErrorIs(t, err, util.ErrExamInactive)
	})
}

func TestFinalizeAttemptScoresAndCloses(t *testing.T) {
	db := setupTestDB(t)
	svc := newAttemptService(db)
	answers := newAnswerService(db)

	editor := createTestUser(t, db, model.Editor)
	student := createTestUser(t, db, model.Student)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)

	q := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 1)
	eq := attach(t, db, exam.ID, q.ID)

	attempt, err := svc.StartAttempt(exam.ID, student.ID)
	require.NoError(t, err)

	var correct model.Option
	require.NoError(t, db.Where("question_id = ? AND is_correct = ?", q.ID, true).First(&correct).Error)
	_, err = answers.RecordSelection(attempt.ID, eq.ID, correct.ID, student.ID)
	require.NoError(t, err)

	finalized, err := svc.FinalizeAttempt(attempt.ID, student.ID)
	require.NoError(t, err)
	assert.True(t, finalized.Completed)
	assert.NotNil(t, finalized.FinishedAt)
	assert.Equal(t, 1.0, finalized.ObtainedPoints)
	assert.Equal(t, 100.0, finalized.Percentage)
	assert.True(t, finalized.Passed)
	assert.False(t, finalized.NeedsManualReview)

	_, err = svc.FinalizeAttempt(attempt.ID, student.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyCompleted)
}

func TestFinalizeAttemptOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := newAttemptService(db)

	editor := createTestUser(t, db, model.Editor)
	student := createTestUser(t, db, model.Student)
	intruder := createTestUser(t, db, model.Student)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)

	attempt, err := svc.StartAttempt(exam.ID, student.ID)
	require.NoError(t, err)

	_, err = svc.FinalizeAttempt(attempt.ID, intruder.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestFinalizeWithPendingFreeTextFlagsReview(t *testing.T) {
	db := setupTestDB(t)
	svc := newAttemptService(db)
	answers := newAnswerService(db)

	editor := createTestUser(t, db, model.Editor)
	student := createTestUser(t, db, model.Student)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)

	q := createQuestion(t, db, editor.ID, model.QuestionTypeFreeResponse, model.QuestionStatePublished, 5)
	eq := attach(t, db, exam.ID, q.ID)

	attempt, err := svc.StartAttempt(exam.ID, student.ID)
	require.NoError(t, err)

	_, err = answers.RecordFreeText(attempt.ID, eq.ID, student.ID, "my essay")
	require.NoError(t, err)

	finalized, err := svc.FinalizeAttempt(attempt.ID, student.ID)
	require.NoError(t, err)
	assert.True(t, finalized.NeedsManualReview)
	assert.False(t, finalized.Passed, "pending grading can never pass yet")
	assert.Equal(t, 0.0, finalized.ObtainedPoints)
}

func TestDeleteAttemptCascades(t *testing.T) {
	db := setupTestDB(t)
	svc := newAttemptService(db)
	answers := newAnswerService(db)

	editor := createTestUser(t, db, model.Editor)
	student := createTestUser(t, db, model.Student)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)
	require.NoError(t, db.Model(exam).Update("max_attempts", 5).Error)

	choice := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 2)
	free := createQuestion(t, db, editor.ID, model.QuestionTypeFreeResponse, model.QuestionStatePublished, 5)
	matching := createQuestion(t, db, editor.ID, model.QuestionTypeMatching, model.QuestionStatePublished, 6)
	eqChoice := attach(t, db, exam.ID, choice.ID)
	eqFree := attach(t, db, exam.ID, free.ID)
	eqMatching := attach(t, db, exam.ID, matching.ID)

	attempt, err := svc.StartAttempt(exam.ID, student.ID)
	require.NoError(t, err)

	var opt model.Option
	require.NoError(t, db.Where("question_id = ?", choice.ID).First(&opt).Error)
	_, err = answers.RecordSelection(attempt.ID, eqChoice.ID, opt.ID, student.ID)
	require.NoError(t, err)
	_, err = answers.RecordFreeText(attempt.ID, eqFree.ID, student.ID, "text")
	require.NoError(t, err)

	var pairs []model.MatchingPair
	require.NoError(t, db.Where("question_id = ?", matching.ID).Find(&pairs).Error)
	_, err = answers.RecordMatching(attempt.ID, eqMatching.ID, student.ID, []MatchSelection{
		{PairID: pairs[0].ID, SelectedRight: pairs[0].RightText},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAttempt(attempt.ID))

	var count int64
	db.Model(&model.SelectionAnswer{}).Where("attempt_id = ?", attempt.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&model.FreeTextAnswer{}).Where("attempt_id = ?", attempt.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&model.MatchingAnswer{}).Where("attempt_id = ?", attempt.ID).Count(&count)
	assert.Zero(t, count)

	_, err = svc.GetAttempt(attempt.ID)
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestStartAttemptAfterDelete(t *testing.T) {
	db := setupTestDB(t)
	svc := newAttemptService(db)

	editor := createTestUser(t, db, model.Editor)
	student := createTestUser(t, db, model.Student)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)

	attempt, err := svc.StartAttempt(exam.ID, student.ID)
	require.NoError(t, err)

	_, err = svc.StartAttempt(exam.ID, student.ID)
	require.ErrorIs(t, err, util.ErrAttemptLimit)

	require.NoError(t, svc.DeleteAttempt(attempt.ID))

	// The deleted attempt must release both the limit count and its
	// (exam, student, number) key.
	fresh, err := svc.StartAttempt(exam.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.AttemptNumber)
}

func TestGetResultHonorsShowResults(t *testing.T) {
	db := setupTestDB(t)
	svc := newAttemptService(db)

	editor := createTestUser(t, db, model.Editor)
	student := createTestUser(t, db, model.Student)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)
	require.NoError(t, db.Model(exam).Update("show_results", false).Error)

	attempt, err := svc.StartAttempt(exam.ID, student.ID)
	require.NoError(t, err)
	_, err = svc.FinalizeAttempt(attempt.ID, student.ID)
	require.NoError(t, err)

	result, err := svc.GetResult(attempt.ID, student.ID)
	require.NoError(t, err)
	assert.False(t, result.ShowResults)
	assert.Zero(t, result.Attempt.Percentage)
}
