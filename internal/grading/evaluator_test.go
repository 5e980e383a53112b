package grading

import (
	"encoding/json"
	"testing"

	"github.com/eduquiz/grading-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== TEST FIXTURES =====

func newQuestion(t *testing.T, questionType models.QuestionType, content interface{}) *models.Question {
	t.Helper()
	raw, err := models.EncodeContent(content)
	require.NoError(t, err)
	return &models.Question{
		Type:    questionType,
		Text:    "fixture question",
		Content: raw,
	}
}

func multipleChoiceQuestion(t *testing.T, options []string, correct int) *models.Question {
	return newQuestion(t, models.MultipleChoice, models.MultipleChoiceContent{
		Options:       options,
		CorrectAnswer: correct,
	})
}

func multipleAnswerQuestion(t *testing.T, options []string, correct []int) *models.Question {
	return newQuestion(t, models.MultipleAnswer, models.MultipleAnswerContent{
		Options:        options,
		CorrectAnswers: correct,
	})
}

func fillBlankQuestion(t *testing.T, correctText string) *models.Question {
	return newQuestion(t, models.FillBlank, models.FillBlankContent{CorrectText: correctText})
}

func matchingQuestion(t *testing.T, pairs []models.MatchPair) *models.Question {
	return newQuestion(t, models.Matching, models.MatchingContent{Pairs: pairs})
}

func orderingQuestion(t *testing.T, correctOrder []string) *models.Question {
	return newQuestion(t, models.Ordering, models.OrderingContent{CorrectOrder: correctOrder})
}

func longAnswerQuestion(t *testing.T, maxScore int) *models.Question {
	return newQuestion(t, models.LongAnswer, models.LongAnswerContent{
		GradingCriteria: "clarity and correctness",
		MaxScore:        maxScore,
	})
}

func rawAnswer(t *testing.T, answer models.SubmittedAnswer) json.RawMessage {
	t.Helper()
	raw, err := models.EncodeAnswer(answer)
	require.NoError(t, err)
	return raw
}

// ===== MULTIPLE CHOICE =====

func TestEvaluate_MultipleChoice(t *testing.T) {
	question := multipleChoiceQuestion(t, []string{"3", "4", "5", "6"}, 1)

	tests := []struct {
		name    string
		answer  json.RawMessage
		verdict Verdict
	}{
		{"correct index", rawAnswer(t, models.ChoiceAnswer{Selected: 1}), VerdictCorrect},
		{"wrong index", rawAnswer(t, models.ChoiceAnswer{Selected: 0}), VerdictIncorrect},
		{"unanswered", nil, VerdictIncorrect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := Evaluate(question, 0, tt.answer)
			require.NoError(t, err)
			assert.Equal(t, tt.verdict, verdict)
		})
	}
}

// ===== MULTIPLE ANSWER =====

func TestEvaluate_MultipleAnswer_SetSemantics(t *testing.T) {
	question := multipleAnswerQuestion(t, []string{"a", "b", "c", "d"}, []int{0, 2})

	tests := []struct {
		name     string
		selected []int
		verdict  Verdict
	}{
		{"exact match", []int{0, 2}, VerdictCorrect},
		{"order irrelevant", []int{2, 0}, VerdictCorrect},
		{"missing one", []int{0}, VerdictIncorrect},
		{"extra one", []int{0, 2, 3}, VerdictIncorrect},
		{"disjoint", []int{1, 3}, VerdictIncorrect},
		{"empty selection", []int{}, VerdictIncorrect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := Evaluate(question, 0, rawAnswer(t, models.MultiAnswer{Selected: tt.selected}))
			require.NoError(t, err)
			assert.Equal(t, tt.verdict, verdict)
		})
	}
}

// ===== FILL IN BLANK =====

func TestEvaluate_FillBlank_CaseAndWhitespaceInsensitive(t *testing.T) {
	question := fillBlankQuestion(t, "Paris")

	tests := []struct {
		name    string
		text    string
		verdict Verdict
	}{
		{"exact", "Paris", VerdictCorrect},
		{"lowercase padded", " paris ", VerdictCorrect},
		{"trailing space", "paris ", VerdictCorrect},
		{"wrong answer", "London", VerdictIncorrect},
		{"empty input", "", VerdictIncorrect},
		{"whitespace only", "   ", VerdictIncorrect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := Evaluate(question, 0, rawAnswer(t, models.TextAnswer{Text: tt.text}))
			require.NoError(t, err)
			assert.Equal(t, tt.verdict, verdict)
		})
	}
}

func TestEvaluate_FillBlank_EmptyCorrectText(t *testing.T) {
	question := fillBlankQuestion(t, "")

	verdict, err := Evaluate(question, 0, rawAnswer(t, models.TextAnswer{Text: "  "}))
	require.NoError(t, err)
	assert.Equal(t, VerdictCorrect, verdict)
}

// ===== MATCHING =====

func TestEvaluate_Matching(t *testing.T) {
	question := matchingQuestion(t, []models.MatchPair{
		{Left: "H2O", Right: "water"},
		{Left: "NaCl", Right: "salt"},
	})

	tests := []struct {
		name    string
		pairs   map[string]string
		verdict Verdict
	}{
		{"all pairs correct", map[string]string{"H2O": "water", "NaCl": "salt"}, VerdictCorrect},
		{"one pair wrong", map[string]string{"H2O": "salt", "NaCl": "water"}, VerdictIncorrect},
		{"incomplete even if correct", map[string]string{"H2O": "water"}, VerdictIncorrect},
		{"extra entry", map[string]string{"H2O": "water", "NaCl": "salt", "CO2": "gas"}, VerdictIncorrect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := Evaluate(question, 0, rawAnswer(t, models.MatchAnswer{Pairs: tt.pairs}))
			require.NoError(t, err)
			assert.Equal(t, tt.verdict, verdict)
		})
	}
}

// ===== ORDERING =====

func TestEvaluate_Ordering_PositionalEquality(t *testing.T) {
	question := orderingQuestion(t, []string{"A", "B", "C"})

	tests := []struct {
		name    string
		order   []string
		verdict Verdict
	}{
		{"exact order", []string{"A", "B", "C"}, VerdictCorrect},
		{"same items wrong order", []string{"B", "A", "C"}, VerdictIncorrect},
		{"reversed", []string{"C", "B", "A"}, VerdictIncorrect},
		{"too short", []string{"A", "B"}, VerdictIncorrect},
		{"too long", []string{"A", "B", "C", "D"}, VerdictIncorrect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := Evaluate(question, 0, rawAnswer(t, models.OrderAnswer{Order: tt.order}))
			require.NoError(t, err)
			assert.Equal(t, tt.verdict, verdict)
		})
	}
}

// ===== LONG ANSWER =====

func TestEvaluate_LongAnswer_AlwaysPendingManual(t *testing.T) {
	question := longAnswerQuestion(t, 5)

	verdict, err := Evaluate(question, 0, rawAnswer(t, models.EssayAnswer{Text: "my essay"}))
	require.NoError(t, err)
	assert.Equal(t, VerdictPendingManual, verdict)

	verdict, err = Evaluate(question, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, VerdictPendingManual, verdict)
}

// ===== SHAPE MISMATCH =====

func TestEvaluate_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name     string
		question *models.Question
		payload  json.RawMessage
	}{
		{
			"text submitted for matching",
			matchingQuestion(t, []models.MatchPair{{Left: "a", Right: "b"}}),
			rawAnswer(t, models.TextAnswer{Text: "not a map"}),
		},
		{
			"map submitted for multiple choice",
			multipleChoiceQuestion(t, []string{"a", "b"}, 0),
			rawAnswer(t, models.MatchAnswer{Pairs: map[string]string{"a": "b"}}),
		},
		{
			"garbage payload",
			multipleChoiceQuestion(t, []string{"a", "b"}, 0),
			json.RawMessage(`{"selected":`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.question, 3, tt.payload)
			require.Error(t, err)
			assert.True(t, IsShapeMismatch(err))

			var sme *ShapeMismatchError
			require.ErrorAs(t, err, &sme)
			assert.Equal(t, 3, sme.QuestionIndex)
		})
	}
}

func TestEvaluateAnswer_VariantMismatch(t *testing.T) {
	question := orderingQuestion(t, []string{"A", "B"})

	_, err := EvaluateAnswer(question, 0, models.ChoiceAnswer{Selected: 0})
	require.Error(t, err)
	assert.True(t, IsShapeMismatch(err))
}

// ===== DETERMINISM =====

func TestEvaluate_Deterministic(t *testing.T) {
	question := multipleAnswerQuestion(t, []string{"a", "b", "c"}, []int{1, 2})
	payload := rawAnswer(t, models.MultiAnswer{Selected: []int{2, 1}})

	first, err := Evaluate(question, 0, payload)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		verdict, err := Evaluate(question, 0, payload)
		require.NoError(t, err)
		assert.Equal(t, first, verdict)
	}
}
