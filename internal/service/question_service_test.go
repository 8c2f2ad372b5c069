package service

import (
	"testing"

	"exam_bank_backend/internal/model"
	"exam_bank_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateQuestionValidatesChildren(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestionService(db)
	editor := createTestUser(t, db, model.Editor)

	base := QuestionCreateRequest{
		SubcategoryID: 1,
		Title:         "q",
	}

	t.Run("unknown type", func(t *testing.T) {
		req := base
		req.QuestionType = "essay"
		_, err := svc.CreateQuestion(editor.ID, req)
		assert.ErrorIs(t, err, util.ErrValidation)
	})

	t.Run("true_false needs exactly two options", func(t *testing.T) {
		req := base
		req.QuestionType = model.QuestionTypeTrueFalse
		req.Options = []OptionRequest{{Text: "true", IsCorrect: true}}
		_, err := svc.CreateQuestion(editor.ID, req)
		assert.ErrorIs(t, err, util.ErrValidation)
	})

	t.Run("true_false needs exactly one correct", func(t *testing.T) {
		req := base
		req.QuestionType = model.QuestionTypeTrueFalse
		req.Options = []OptionRequest{
			{Text: "true", IsCorrect: true},
			{Text: "false", IsCorrect: true},
		}
		_, err := svc.CreateQuestion(editor.ID, req)
		assert.ErrorIs(t, err, util.ErrValidation)
	})

	t.Run("single_choice needs a correct option", func(t *testing.T) {
		req := base
		req.QuestionType = model.QuestionTypeSingleChoice
		req.Options = []OptionRequest{
			{Text: "a"},
			{Text: "b"},
		}
		_, err := svc.CreateQuestion(editor.ID, req)
		assert.ErrorIs(t, err, util.ErrValidation)
	})

	t.Run("matching needs at least two pairs", func(t *testing.T) {
		req := base
		req.QuestionType = model.QuestionTypeMatching
		req.Pairs = []PairRequest{{LeftText: "cat", RightText: "meow"}}
		_, err := svc.CreateQuestion(editor.ID, req)
		assert.ErrorIs(t, err, util.ErrValidation)
	})

	t.Run("valid single_choice created as draft with defaults", func(t *testing.T) {
		req := base
		req.QuestionType = model.QuestionTypeSingleChoice
		req.Options = []OptionRequest{
			{Text: "a", IsCorrect: true},
			{Text: "b"},
		}
		q, err := svc.CreateQuestion(editor.ID, req)
		require.NoError(t, err)
		assert.Equal(t, model.QuestionStateDraft, q.State)
		assert.Equal(t, 1, q.RecommendedPoints)
		assert.Equal(t, 3, q.VotesRequired)

		detail, err := svc.GetQuestion(q.ID)
		require.NoError(t, err)
		assert.Len(t, detail.Options, 2)
	})

	t.Run("free_response stores a model answer", func(t *testing.T) {
		req := base
		req.QuestionType = model.QuestionTypeFreeResponse
		req.ModelAnswerText = "reference answer"
		req.Keywords = []string{"photosynthesis"}
		q, err := svc.CreateQuestion(editor.ID, req)
		require.NoError(t, err)

		detail, err := svc.GetQuestion(q.ID)
		require.NoError(t, err)
		require.NotNil(t, detail.ModelAnswer)
		assert.Equal(t, "reference answer", detail.ModelAnswer.Text)
	})
}

func TestSubmitForReview(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestionService(db)
	editor := createTestUser(t, db, model.Editor)

	t.Run("draft moves into review", func(t *testing.T) {
		q := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStateDraft, 2)
		updated, err := svc.SubmitForReview(q.ID)
		require.NoError(t, err)
		assert.Equal(t, model.QuestionStateUnderReview, updated.State)
	})

	t.Run("only drafts may be submitted", func(t *testing.T) {
		q := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 2)
		_, err := svc.SubmitForReview(q.ID)
		assert.ErrorIs(t, err, util.ErrInvalidState)
	})

	t.Run("structure re-checked at submission", func(t *testing.T) {
		q := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStateDraft, 2)
		require.NoError(t, db.Where("question_id = ?", q.ID).Delete(&model.Option{}).Error)
		_, err := svc.SubmitForReview(q.ID)
		assert.ErrorIs(t, err, util.ErrValidation)
	})
}

func TestUpdateQuestionLockedOncePublished(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestionService(db)
	editor := createTestUser(t, db, model.Editor)

	draft := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStateDraft, 2)
	updated, err := svc.UpdateQuestion(draft.ID, QuestionUpdateRequest{Title: "new title", RecommendedPoints: 5})
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, 5, updated.RecommendedPoints)

	published := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 2)
	_, err = svc.UpdateQuestion(published.ID, QuestionUpdateRequest{Title: "nope"})
	assert.ErrorIs(t, err, util.ErrQuestionLocked)

	_, err = svc.AddOption(published.ID, OptionRequest{Text: "extra"})
	assert.ErrorIs(t, err, util.ErrQuestionLocked)
}

func TestDeleteQuestion(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestionService(db)
	editor := createTestUser(t, db, model.Editor)
	cycle := createTestCycle(t, db)

	t.Run("blocked while attached to an exam", func(t *testing.T) {
		exam := createTestExam(t, db, editor.ID, cycle.ID)
		q := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStatePublished, 2)
		attach(t, db, exam.ID, q.ID)
		assert.ErrorIs(t, svc.DeleteQuestion(q.ID), util.ErrValidation)
	})

	t.Run("cascade removes children", func(t *testing.T) {
		q := createQuestion(t, db, editor.ID, model.QuestionTypeMatching, model.QuestionStateDraft, 2)
		require.NoError(t, svc.DeleteQuestion(q.ID))

		var count int64
		db.Model(&model.MatchingPair{}).Where("question_id = ?", q.ID).Count(&count)
		assert.Zero(t, count)
		_, err := svc.GetQuestion(q.ID)
		assert.ErrorIs(t, err, util.ErrQuestionNotFound)
	})
}

func TestOptionMinimumsOnDelete(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestionService(db)
	editor := createTestUser(t, db, model.Editor)

	q := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStateDraft, 2)

	var options []model.Option
	require.NoError(t, db.Where("question_id = ?", q.ID).Order("display_order").Find(&options).Error)
	require.Len(t, options, 2)

	t.Run("cannot drop below two options", func(t *testing.T) {
		err := svc.DeleteOption(q.ID, options[1].ID)
		assert.ErrorIs(t, err, util.ErrValidation)
	})

	t.Run("cannot delete the only correct option", func(t *testing.T) {
		_, err := svc.AddOption(q.ID, OptionRequest{Text: "also wrong", DisplayOrder: 3})
		require.NoError(t, err)

		err = svc.DeleteOption(q.ID, options[0].ID)
		assert.ErrorIs(t, err, util.ErrValidation)
	})

	t.Run("removing a wrong option is fine", func(t *testing.T) {
		require.NoError(t, svc.DeleteOption(q.ID, options[1].ID))
	})
}

func TestPairMinimumOnDelete(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestionService(db)
	editor := createTestUser(t, db, model.Editor)

	q := createQuestion(t, db, editor.ID, model.QuestionTypeMatching, model.QuestionStateDraft, 2)

	var pairs []model.MatchingPair
	require.NoError(t, db.Where("question_id = ?", q.ID).Order("pair_order").Find(&pairs).Error)
	require.Len(t, pairs, 3)

	require.NoError(t, svc.DeletePair(q.ID, pairs[0].ID))
	require.NoError(t, svc.DeletePair(q.ID, pairs[1].ID))
	assert.ErrorIs(t, svc.DeletePair(q.ID, pairs[2].ID), util.ErrValidation)
}

func TestSetModelAnswer(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuestionService(db)
	editor := createTestUser(t, db, model.Editor)

	q := createQuestion(t, db, editor.ID, model.QuestionTypeShortAnswer, model.QuestionStateDraft, 2)

	ma, err := svc.SetModelAnswer(q.ID, "first", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, "first", ma.Text)

	// Second call replaces instead of duplicating.
	ma, err = svc.SetModelAnswer(q.ID, "second", []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, "second", ma.Text)

	var count int64
	db.Model(&model.ModelAnswer{}).Where("question_id = ?", q.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	t.Run("choice questions refuse model answers", func(t *testing.T) {
		choice := createQuestion(t, db, editor.ID, model.QuestionTypeSingleChoice, model.QuestionStateDraft, 2)
		_, err := svc.SetModelAnswer(choice.ID, "x", nil)
		assert.ErrorIs(t, err, util.ErrValidation)
	})
}
