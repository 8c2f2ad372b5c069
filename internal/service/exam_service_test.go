package service

import (
	"context"
	"testing"
	"time"

	"exam_bank_backend/internal/model"
	"exam_bank_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateExamValidatesDates(t *testing.T) {
	db := setupTestDB(t)
	svc := newExamService(db)

	editor := createTestUser(t, db, model.Editor)
	cycle := createTestCycle(t, db)

	t.Run("start after end rejected", func(t *testing.T) {
		_, err := svc.CreateExam(editor.ID, ExamCreateRequest{
			Title:   "bad",
			CycleID: cycle.ID,
			StartAt: time.Now().Add(2 * time.Hour),
			EndAt:   time.Now().Add(time.Hour),
		})
		assert.ErrorIs(t, err, util.ErrValidation)
	})

	t.Run("dates outside cycle rejected", func(t *testing.T) {
		_, err := svc.CreateExam(editor.ID, ExamCreateRequest{
			Title:   "bad",
			CycleID: cycle.ID,
			StartAt: cycle.EndDate.Add(time.Hour),
			EndAt:   cycle.EndDate.Add(2 * time.Hour),
		})
		assert.ErrorIs(t, err, util.ErrValidation)
	})

	t.Run("unknown cycle rejected", func(t *testing.T) {
		_, err := svc.CreateExam(editor.ID, ExamCreateRequest{
			Title:   "bad",
			CycleID: 9999,
			StartAt: time.Now(),
			EndAt:   time.Now().Add(time.Hour),
		})
		assert.ErrorIs(t, err, util.ErrCycleNotFound)
	})

	t.Run("valid exam created with defaults", func(t *testing.T) {
		exam, err := svc.CreateExam(editor.ID, ExamCreateRequest{
			Title:   "midterm",
			CycleID: cycle.ID,
			StartAt: time.Now(),
			EndAt:   time.Now().Add(time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, exam.MaxAttempts)
		assert.Equal(t, 60, exam.DurationMinutes)
		assert.True(t, exam.ShowResults)
		assert.True(t, exam.Active)
	})
}

func TestAttachQuestionRules(t *testing.T) {
	db := setupTestDB(t)
	svc := newExamService(db)

	editor := createTestUser(t, db, model.Editor)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)
	published := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 2)

	t.Run("only published questions attach", func(t *testing.T) {
		draft := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStateDraft, 2)
		_, err := svc.AttachQuestion(exam.ID, AttachRequest{QuestionID: draft.ID, UseRecommended: true}, editor.ID)
		assert.ErrorIs(t, err, util.ErrInvalidState)
	})

	t.Run("override or recommendation required", func(t *testing.T) {
		_, err := svc.AttachQuestion(exam.ID, AttachRequest{QuestionID: published.ID, UseRecommended: false}, editor.ID)
		assert.ErrorIs(t, err, util.ErrMissingPoints)
	})

	t.Run("successful attach", func(t *testing.T) {
		eq, err := svc.AttachQuestion(exam.ID, AttachRequest{QuestionID: published.ID, UseRecommended: true}, editor.ID)
		require.NoError(t, err)
		assert.Equal(t, exam.ID, eq.ExamID)
	})

	t.Run("duplicate attachment rejected", func(t *testing.T) {
		_, err := svc.AttachQuestion(exam.ID, AttachRequest{QuestionID: published.ID, UseRecommended: true}, editor.ID)
		assert.ErrorIs(t, err, util.ErrDuplicateAttachment)
	})

	t.Run("duplicate display order rejected", func(t *testing.T) {
		q2 := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 2)
		_, err := svc.AttachQuestion(exam.ID, AttachRequest{QuestionID: q2.ID, UseRecommended: true, DisplayOrder: intPtr(1)}, editor.ID)
		require.NoError(t, err)

		q3 := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 2)
		_, err = svc.AttachQuestion(exam.ID, AttachRequest{QuestionID: q3.ID, UseRecommended: true, DisplayOrder: intPtr(1)}, editor.ID)
		assert.ErrorIs(t, err, util.ErrDuplicateOrder)
	})

	t.Run("inactive exam refuses attachments", func(t *testing.T) {
		require.NoError(t, svc.DeactivateExam(exam.ID))
		q4 := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 2)
		_, err := svc.AttachQuestion(exam.ID, AttachRequest{QuestionID: q4.ID, UseRecommended: true}, editor.ID)
		assert.ErrorIs(t, err, util.ErrExamInactive)
	})
}

func TestReattachAfterDetach(t *testing.T) {
	db := setupTestDB(t)
	svc := newExamService(db)

	editor := createTestUser(t, db, model.Editor)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)
	q := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 2)

	eq, err := svc.AttachQuestion(exam.ID, AttachRequest{QuestionID: q.ID, UseRecommended: true, DisplayOrder: intPtr(1)}, editor.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DetachQuestion(exam.ID, eq.ID))

	// Detached rows must not keep holding the (exam, question) or
	// (exam, order) keys.
	again, err := svc.AttachQuestion(exam.ID, AttachRequest{QuestionID: q.ID, UseRecommended: true, DisplayOrder: intPtr(1)}, editor.ID)
	require.NoError(t, err)
	assert.NotEqual(t, eq.ID, again.ID)
}

func TestExamLockedByAttempts(t *testing.T) {
	db := setupTestDB(t)
	svc := newExamService(db)

	editor := createTestUser(t, db, model.Editor)
	student := createTestUser(t, db, model.Student)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)
	q := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 2)
	eq, err := svc.AttachQuestion(exam.ID, AttachRequest{QuestionID: q.ID, UseRecommended: true}, editor.ID)
	require.NoError(t, err)

	require.NoError(t, db.Create(&model.Attempt{ExamID: exam.ID, StudentID: student.ID, AttemptNumber: 1, StartedAt: time.Now()}).Error)

	q2 := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 2)
	_, err = svc.AttachQuestion(exam.ID, AttachRequest{QuestionID: q2.ID, UseRecommended: true}, editor.ID)
	assert.ErrorIs(t, err, util.ErrExamLocked)

	assert.ErrorIs(t, svc.DetachQuestion(exam.ID, eq.ID), util.ErrExamLocked)
	assert.ErrorIs(t, svc.Reorder(exam.ID, []ReorderItem{{ID: eq.ID, Order: 1}}), util.ErrExamLocked)

	_, err = svc.UpdateAttachment(exam.ID, eq.ID, AttachmentUpdateRequest{PointOverride: intPtr(5)})
	assert.ErrorIs(t, err, util.ErrExamLocked)
}

func TestReorderAllOrNothing(t *testing.T) {
	db := setupTestDB(t)
	svc := newExamService(db)

	editor := createTestUser(t, db, model.Editor)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)

	var eqs []*model.ExamQuestion
	for i := 0; i < 3; i++ {
		q := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 2)
		eq, err := svc.AttachQuestion(exam.ID, AttachRequest{QuestionID: q.ID, UseRecommended: true, DisplayOrder: intPtr(i + 1)}, editor.ID)
		require.NoError(t, err)
		eqs = append(eqs, eq)
	}

	t.Run("duplicate orders in batch rejected", func(t *testing.T) {
		err := svc.Reorder(exam.ID, []ReorderItem{
			{ID: eqs[0].ID, Order: 1},
			{ID: eqs[1].ID, Order: 1},
		})
		assert.ErrorIs(t, err, util.ErrDuplicateOrder)
	})

	t.Run("unknown attachment leaves everything untouched", func(t *testing.T) {
		err := svc.Reorder(exam.ID, []ReorderItem{
			{ID: eqs[0].ID, Order: 9},
			{ID: 99999, Order: 8},
		})
		assert.ErrorIs(t, err, util.ErrAttachmentNotFound)

		var fresh model.ExamQuestion
		require.NoError(t, db.First(&fresh, eqs[0].ID).Error)
		assert.Equal(t, 1, *fresh.DisplayOrder, "failed batch must not apply partially")
	})

	t.Run("collision with an attachment outside the batch rejected", func(t *testing.T) {
		err := svc.Reorder(exam.ID, []ReorderItem{
			{ID: eqs[1].ID, Order: 1},
		})
		assert.ErrorIs(t, err, util.ErrDuplicateOrder, "order 1 is already held by an unbatched attachment")

		var fresh model.ExamQuestion
		require.NoError(t, db.First(&fresh, eqs[1].ID).Error)
		assert.Equal(t, 2, *fresh.DisplayOrder)
	})

	t.Run("full batch applies", func(t *testing.T) {
		err := svc.Reorder(exam.ID, []ReorderItem{
			{ID: eqs[0].ID, Order: 3},
			{ID: eqs[1].ID, Order: 2},
			{ID: eqs[2].ID, Order: 1},
		})
		require.NoError(t, err)

		views, err := svc.GetExamQuestions(context.Background(), exam.ID)
		require.NoError(t, err)
		require.Len(t, views, 3)
		assert.Equal(t, eqs[2].ID, views[0].ExamQuestion.ID)
		assert.Equal(t, eqs[0].ID, views[2].ExamQuestion.ID)
	})
}

func TestTotalPoints(t *testing.T) {
	db := setupTestDB(t)
	svc := newExamService(db)

	editor := createTestUser(t, db, model.Editor)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)

	q1 := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 3)
	q2 := createQuestion(t, db, editor.ID, model.QuestionTypeMatching, model.QuestionStatePublished, 6)

	_, err := svc.AttachQuestion(exam.ID, AttachRequest{QuestionID: q1.ID, UseRecommended: true}, editor.ID)
	require.NoError(t, err)
	_, err = svc.AttachQuestion(exam.ID, AttachRequest{QuestionID: q2.ID, UseRecommended: false, PointOverride: intPtr(10)}, editor.ID)
	require.NoError(t, err)

	total, err := svc.TotalPoints(exam.ID)
	require.NoError(t, err)
	assert.Equal(t, 13, total)
}

func TestListAvailableExamsWindowedTotal(t *testing.T) {
	db := setupTestDB(t)
	svc := newExamService(db)

	editor := createTestUser(t, db, model.Editor)
	cycle := createTestCycle(t, db)

	open := createTestExam(t, db, editor.ID, cycle.ID)

	past := createTestExam(t, db, editor.ID, cycle.ID)
	require.NoError(t, db.Model(past).Updates(map[string]interface{}{
		"start_at": time.Now().Add(-3 * time.Hour),
		"end_at":   time.Now().Add(-2 * time.Hour),
	}).Error)

	inactive := createTestExam(t, db, editor.ID, cycle.ID)
	require.NoError(t, db.Model(inactive).Update("active", false).Error)

	exams, total, err := svc.ListAvailableExams(1, 20)
	require.NoError(t, err)
	require.Len(t, exams, 1)
	assert.Equal(t, open.ID, exams[0].ID)
	assert.EqualValues(t, 1, total, "total must count only exams inside their window")
}

func TestDeleteExamOnlyWhenEmpty(t *testing.T) {
	db := setupTestDB(t)
	svc := newExamService(db)

	editor := createTestUser(t, db, model.Editor)
	cycle := createTestCycle(t, db)
	exam := createTestExam(t, db, editor.ID, cycle.ID)
	q := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 2)

	eq, err := svc.AttachQuestion(exam.ID, AttachRequest{QuestionID: q.ID, UseRecommended: true}, editor.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteExam(exam.ID), util.ErrValidation)

	require.NoError(t, svc.DetachQuestion(exam.ID, eq.ID))
	require.NoError(t, svc.DeleteExam(exam.ID))

	_, err = svc.GetExam(exam.ID)
	assert.ErrorIs(t, err, util.ErrExamNotFound)
}
