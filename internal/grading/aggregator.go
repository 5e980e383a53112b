package grading

import (
	"math"

	"github.com/eduquiz/grading-service/internal/models"
)

// Result is the submission-level outcome of aggregating per-question
// verdicts and manual scores.
type Result struct {
	EarnedPoints   int  `json:"earned_points"`
	PossiblePoints int  `json:"possible_points"`
	Percentage     int  `json:"percentage"` // 0-100, round half up
	Passed         bool `json:"passed"`
}

// Aggregate computes a submission's score from scratch. Every auto-gradable
// question contributes 1 possible point; a long-answer question contributes
// its max score, counted against the denominator even before it is manually
// graded, so an interim percentage is a lower bound rather than an "N/A".
//
// Aggregate must be re-invoked in full whenever a manual score changes;
// incremental point patching is what produced divergent scores between call
// sites in the first place.
func Aggregate(questions []*models.Question, passingScore int, submission *models.Submission) (*Result, error) {
	if err := checkQuestionSet(questions, submission); err != nil {
		return nil, err
	}

	earned := 0
	possible := 0

	for index, question := range questions {
		weight, err := question.MaxScore()
		if err != nil {
			return nil, err
		}
		possible += weight

		if question.Type == models.LongAnswer {
			if score, ok := submission.ManualScores[index]; ok {
				earned += clamp(score, 0, weight)
			}
			continue
		}

		verdict, err := Evaluate(question, index, submission.Answer(index))
		if err != nil {
			return nil, err
		}
		if verdict == VerdictCorrect {
			earned++
		}
	}

	result := &Result{
		EarnedPoints:   earned,
		PossiblePoints: possible,
	}

	// A quiz with zero questions scores 0 and cannot be passed.
	if possible > 0 {
		result.Percentage = roundHalfUp(100 * float64(earned) / float64(possible))
		result.Passed = result.Percentage >= passingScore
	}

	return result, nil
}

// StatusFor derives the grading-workflow state from the question set and
// the manual scores recorded so far.
func StatusFor(questions []*models.Question, submission *models.Submission) models.GradingStatus {
	total := 0
	graded := 0
	for index, question := range questions {
		if question.Type != models.LongAnswer {
			continue
		}
		total++
		if submission.HasManualScore(index) {
			graded++
		}
	}

	switch {
	case total == 0:
		return models.GradingNotRequired
	case graded == 0:
		return models.GradingNeeded
	case graded < total:
		return models.GradingPartial
	default:
		return models.GradingComplete
	}
}

// checkQuestionSet rejects a question list that omits an index referenced
// by the submission's answers or manual scores.
func checkQuestionSet(questions []*models.Question, submission *models.Submission) error {
	count := len(questions)
	for index := range submission.Answers {
		if index < 0 || index >= count {
			return &IncompleteQuestionSetError{QuestionIndex: index, QuestionCount: count}
		}
	}
	for index := range submission.ManualScores {
		if index < 0 || index >= count {
			return &IncompleteQuestionSetError{QuestionIndex: index, QuestionCount: count}
		}
	}
	return nil
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
