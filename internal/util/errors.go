package util

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrWrongCredentials = errors.New("wrong email or password")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")

	ErrQuestionNotFound = errors.New("question not found")
	ErrOptionNotFound   = errors.New("option not found")
	ErrPairNotFound     = errors.New("matching pair not found")
	ErrVoteNotFound     = errors.New("review vote not found")
	ErrExamNotFound     = errors.New("exam not found")
	ErrAttachmentNotFound = errors.New("exam question not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrCycleNotFound    = errors.New("cycle not found")
	ErrContentNotFound  = errors.New("content asset not found")

	ErrInvalidState        = errors.New("operation not allowed in current state")
	ErrSelfReview          = errors.New("creator cannot review own question")
	ErrDuplicateVote       = errors.New("reviewer already voted on this question")
	ErrDuplicateAttachment = errors.New("question already attached to this exam")
	ErrDuplicateOrder      = errors.New("order value already used in this exam")
	ErrExamLocked          = errors.New("exam has attempts and can no longer be modified")
	ErrExamInactive        = errors.New("exam is not active")
	ErrMissingPoints       = errors.New("point override required when recommended points are not used")
	ErrPointsExceeded      = errors.New("awarded points exceed the question's point value")
	ErrAlreadyGraded       = errors.New("answer already graded")
	ErrAlreadyCompleted    = errors.New("attempt already completed")
	ErrAttemptLimit        = errors.New("attempt limit reached for this exam")
	ErrQuestionLocked      = errors.New("published question can no longer be edited")
	ErrExamNotAvailable    = errors.New("exam is outside its availability window")
)

// ErrValidation wraps field-level constraint failures so controllers can
// map every one of them to a 400 without enumerating each rule.
var ErrValidation = errors.New("validation failed")
