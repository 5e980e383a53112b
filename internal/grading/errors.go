package grading

import (
	"errors"
	"fmt"

	"github.com/eduquiz/grading-service/internal/models"
)

var (
	// ErrMissingFeedback: a manual grade was submitted without rationale
	// text.
	ErrMissingFeedback = errors.New("manual grade requires feedback text")

	// ErrGradingNotAllowed: a manual grade targeted a question that is
	// auto-gradable.
	ErrGradingNotAllowed = errors.New("manual grading not allowed for this question type")

	// ErrQuestionIndexInvalid: a grade targeted an index outside the
	// question set.
	ErrQuestionIndexInvalid = errors.New("question index outside question set")
)

// ShapeMismatchError reports a submitted answer whose structural shape does
// not match the question's declared type. It is surfaced to the caller,
// never coerced into "incorrect".
type ShapeMismatchError struct {
	QuestionIndex int
	QuestionType  models.QuestionType
	Cause         error
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("answer shape mismatch for %s question at index %d: %v",
		e.QuestionType, e.QuestionIndex, e.Cause)
}

func (e *ShapeMismatchError) Unwrap() error {
	return e.Cause
}

// OutOfRangeError reports a manual score outside [0, MaxScore].
type OutOfRangeError struct {
	QuestionIndex int
	Score         int
	MaxScore      int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("manual score %d for question at index %d outside valid range [0, %d]",
		e.Score, e.QuestionIndex, e.MaxScore)
}

// IncompleteQuestionSetError reports an aggregate call whose question list
// omits an index referenced by the submission's answers. Possible points
// cannot be computed from a partial set, so this is fatal for the call.
type IncompleteQuestionSetError struct {
	QuestionIndex int
	QuestionCount int
}

func (e *IncompleteQuestionSetError) Error() string {
	return fmt.Sprintf("submission references question index %d but only %d questions were supplied",
		e.QuestionIndex, e.QuestionCount)
}

// IsShapeMismatch reports whether err is a ShapeMismatchError.
func IsShapeMismatch(err error) bool {
	var sme *ShapeMismatchError
	return errors.As(err, &sme)
}

// IsOutOfRange reports whether err is an OutOfRangeError.
func IsOutOfRange(err error) bool {
	var oor *OutOfRangeError
	return errors.As(err, &oor)
}

// IsIncompleteQuestionSet reports whether err is an
// IncompleteQuestionSetError.
func IsIncompleteQuestionSet(err error) bool {
	var iqs *IncompleteQuestionSetError
	return errors.As(err, &iqs)
}
