package grading

import (
	"strings"

	"github.com/eduquiz/grading-service/internal/models"
)

// SaveGrade records a manual score and feedback for the long-answer
// question at questionIndex and returns an updated copy of the submission
// with its derived fields recomputed. The input submission is never
// mutated: on any validation failure the caller's value is exactly what it
// was before the call.
//
// SaveGrade is re-entrant. Grading an already-graded question overwrites
// the previous score and feedback and recomputes the result; the grading
// status stays Graded.
//
// Callers must serialize concurrent SaveGrade calls for the same
// submission; the function itself is a pure value transformation.
func SaveGrade(questions []*models.Question, passingScore int, submission *models.Submission, questionIndex int, score int, feedback string) (*models.Submission, error) {
	if questionIndex < 0 || questionIndex >= len(questions) {
		return nil, ErrQuestionIndexInvalid
	}

	question := questions[questionIndex]
	if question.Type != models.LongAnswer {
		return nil, ErrGradingNotAllowed
	}

	maxScore, err := question.MaxScore()
	if err != nil {
		return nil, err
	}
	if score < 0 || score > maxScore {
		return nil, &OutOfRangeError{QuestionIndex: questionIndex, Score: score, MaxScore: maxScore}
	}

	// A grade without rationale is rejected.
	if strings.TrimSpace(feedback) == "" {
		return nil, ErrMissingFeedback
	}

	updated := submission.Clone()
	if updated.ManualScores == nil {
		updated.ManualScores = make(map[int]int)
	}
	if updated.Feedback == nil {
		updated.Feedback = make(map[int]string)
	}
	updated.ManualScores[questionIndex] = score
	updated.Feedback[questionIndex] = feedback

	updated.GradingStatus = StatusFor(questions, updated)

	result, err := Aggregate(questions, passingScore, updated)
	if err != nil {
		return nil, err
	}
	updated.Score = result.Percentage
	updated.Passed = result.Passed

	return updated, nil
}

// AttachGeneralFeedback sets submission-level commentary on a copy of the
// submission. It deliberately leaves score, passed and grading status
// alone.
func AttachGeneralFeedback(submission *models.Submission, text string) *models.Submission {
	updated := submission.Clone()
	updated.GeneralFeedback = text
	return updated
}

// ApplyResult writes an aggregation result and the derived workflow status
// onto a copy of the submission. Used when a submission is first created
// and by the admin recompute path.
func ApplyResult(questions []*models.Question, passingScore int, submission *models.Submission) (*models.Submission, error) {
	updated := submission.Clone()

	result, err := Aggregate(questions, passingScore, updated)
	if err != nil {
		return nil, err
	}

	updated.GradingStatus = StatusFor(questions, updated)
	updated.Score = result.Percentage
	updated.Passed = result.Passed

	return updated, nil
}
