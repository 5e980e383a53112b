package grading

import (
	"encoding/json"
	"strings"

	"github.com/eduquiz/grading-service/internal/models"
)

// Verdict is the outcome of evaluating one question against one submitted
// answer.
type Verdict string

const (
	VerdictCorrect       Verdict = "correct"
	VerdictIncorrect     Verdict = "incorrect"
	VerdictPendingManual Verdict = "pending_manual"
)

// Evaluate decodes the raw submitted payload for the question at the given
// index and applies the type's correctness rule. A nil or empty payload is
// an unanswered question: incorrect for auto-gradable types, pending for
// long-answer. Evaluate is pure and never mutates its inputs.
func Evaluate(question *models.Question, index int, raw json.RawMessage) (Verdict, error) {
	// Long-answer questions are never auto-gradable, answered or not.
	if question.Type == models.LongAnswer {
		if len(raw) > 0 {
			if _, err := models.DecodeAnswer(question.Type, raw); err != nil {
				return "", &ShapeMismatchError{QuestionIndex: index, QuestionType: question.Type, Cause: err}
			}
		}
		return VerdictPendingManual, nil
	}

	if len(raw) == 0 {
		return VerdictIncorrect, nil
	}

	answer, err := models.DecodeAnswer(question.Type, raw)
	if err != nil {
		return "", &ShapeMismatchError{QuestionIndex: index, QuestionType: question.Type, Cause: err}
	}

	return EvaluateAnswer(question, index, answer)
}

// EvaluateAnswer applies the per-type correctness rule to an already
// decoded answer. The answer variant must match the question type.
func EvaluateAnswer(question *models.Question, index int, answer models.SubmittedAnswer) (Verdict, error) {
	switch question.Type {
	case models.MultipleChoice:
		choice, ok := answer.(models.ChoiceAnswer)
		if !ok {
			return "", shapeMismatch(question, index, answer)
		}
		return evaluateMultipleChoice(question, choice)

	case models.MultipleAnswer:
		multi, ok := answer.(models.MultiAnswer)
		if !ok {
			return "", shapeMismatch(question, index, answer)
		}
		return evaluateMultipleAnswer(question, multi)

	case models.FillBlank:
		text, ok := answer.(models.TextAnswer)
		if !ok {
			return "", shapeMismatch(question, index, answer)
		}
		return evaluateFillBlank(question, text)

	case models.Matching:
		match, ok := answer.(models.MatchAnswer)
		if !ok {
			return "", shapeMismatch(question, index, answer)
		}
		return evaluateMatching(question, match)

	case models.Ordering:
		order, ok := answer.(models.OrderAnswer)
		if !ok {
			return "", shapeMismatch(question, index, answer)
		}
		return evaluateOrdering(question, order)

	case models.LongAnswer:
		if _, ok := answer.(models.EssayAnswer); !ok {
			return "", shapeMismatch(question, index, answer)
		}
		return VerdictPendingManual, nil

	default:
		return "", shapeMismatch(question, index, answer)
	}
}

func evaluateMultipleChoice(question *models.Question, answer models.ChoiceAnswer) (Verdict, error) {
	content, err := question.MultipleChoiceContent()
	if err != nil {
		return "", err
	}
	if answer.Selected == content.CorrectAnswer {
		return VerdictCorrect, nil
	}
	return VerdictIncorrect, nil
}

// evaluateMultipleAnswer requires set equality: same cardinality and every
// submitted index present in the correct set. No partial credit.
func evaluateMultipleAnswer(question *models.Question, answer models.MultiAnswer) (Verdict, error) {
	content, err := question.MultipleAnswerContent()
	if err != nil {
		return "", err
	}

	correct := make(map[int]struct{}, len(content.CorrectAnswers))
	for _, idx := range content.CorrectAnswers {
		correct[idx] = struct{}{}
	}

	submitted := make(map[int]struct{}, len(answer.Selected))
	for _, idx := range answer.Selected {
		submitted[idx] = struct{}{}
	}

	if len(submitted) != len(correct) {
		return VerdictIncorrect, nil
	}
	for idx := range submitted {
		if _, ok := correct[idx]; !ok {
			return VerdictIncorrect, nil
		}
	}
	return VerdictCorrect, nil
}

func evaluateFillBlank(question *models.Question, answer models.TextAnswer) (Verdict, error) {
	content, err := question.FillBlankContent()
	if err != nil {
		return "", err
	}
	if normalizeText(answer.Text) == normalizeText(content.CorrectText) {
		return VerdictCorrect, nil
	}
	return VerdictIncorrect, nil
}

// evaluateMatching requires the submitted map to cover every pair exactly:
// a correct-but-incomplete map is incorrect, as is any extra entry.
func evaluateMatching(question *models.Question, answer models.MatchAnswer) (Verdict, error) {
	content, err := question.MatchingContent()
	if err != nil {
		return "", err
	}

	if len(answer.Pairs) != len(content.Pairs) {
		return VerdictIncorrect, nil
	}
	for _, pair := range content.Pairs {
		if answer.Pairs[pair.Left] != pair.Right {
			return VerdictIncorrect, nil
		}
	}
	return VerdictCorrect, nil
}

// evaluateOrdering requires strict positional equality, not a multiset
// check.
func evaluateOrdering(question *models.Question, answer models.OrderAnswer) (Verdict, error) {
	content, err := question.OrderingContent()
	if err != nil {
		return "", err
	}

	if len(answer.Order) != len(content.CorrectOrder) {
		return VerdictIncorrect, nil
	}
	for i, item := range content.CorrectOrder {
		if answer.Order[i] != item {
			return VerdictIncorrect, nil
		}
	}
	return VerdictCorrect, nil
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func shapeMismatch(question *models.Question, index int, answer models.SubmittedAnswer) error {
	return &ShapeMismatchError{
		QuestionIndex: index,
		QuestionType:  question.Type,
		Cause:         errAnswerVariant(answer),
	}
}

type answerVariantError struct {
	answer models.SubmittedAnswer
}

func (e answerVariantError) Error() string {
	switch e.answer.(type) {
	case models.ChoiceAnswer:
		return "got a single-choice answer"
	case models.MultiAnswer:
		return "got a multiple-selection answer"
	case models.TextAnswer:
		return "got a text answer"
	case models.MatchAnswer:
		return "got a matching answer"
	case models.OrderAnswer:
		return "got an ordering answer"
	case models.EssayAnswer:
		return "got an essay answer"
	default:
		return "got an unknown answer variant"
	}
}

func errAnswerVariant(answer models.SubmittedAnswer) error {
	return answerVariantError{answer: answer}
}
