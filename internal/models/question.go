package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	MultipleAnswer QuestionType = "multiple_answer"
	FillBlank      QuestionType = "fill_blank"
	Matching       QuestionType = "matching"
	Ordering       QuestionType = "ordering"
	LongAnswer     QuestionType = "long_answer"
)

// DefaultLongAnswerMaxScore is used when a long-answer question does not
// declare its own maximum manual score.
const DefaultLongAnswerMaxScore = 5

// Question is the authoritative definition of a single quiz question. The
// type-specific payload lives in Content as JSONB and is decoded into one of
// the typed content structs below.
type Question struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	QuizID    uint           `json:"quiz_id" gorm:"not null;index"`
	Position  int            `json:"position" gorm:"not null"`
	Type      QuestionType   `json:"type" gorm:"not null;size:30" validate:"required,question_type"`
	Text      string         `json:"text" gorm:"type:text;not null" validate:"required,min=1"`
	Content   datatypes.JSON `json:"content" gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// ===== TYPE-SPECIFIC CONTENT =====

type MultipleChoiceContent struct {
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"` // index into Options
}

type MultipleAnswerContent struct {
	Options        []string `json:"options"`
	CorrectAnswers []int    `json:"correct_answers"` // indices into Options
}

type FillBlankContent struct {
	CorrectText string `json:"correct_text"`
}

type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

type MatchingContent struct {
	Pairs []MatchPair `json:"pairs"` // unique by Left
}

type OrderingContent struct {
	CorrectOrder []string `json:"correct_order"` // items unique
}

type LongAnswerContent struct {
	GradingCriteria string `json:"grading_criteria"`
	MaxScore        int    `json:"max_score"`
}

// EffectiveMaxScore returns the declared maximum or the default when the
// content omits it.
func (c LongAnswerContent) EffectiveMaxScore() int {
	if c.MaxScore <= 0 {
		return DefaultLongAnswerMaxScore
	}
	return c.MaxScore
}

// MaxScore returns the number of points this question contributes to the
// quiz denominator: 1 for auto-gradable types, the declared maximum for
// long-answer questions.
func (q *Question) MaxScore() (int, error) {
	if q.Type != LongAnswer {
		return 1, nil
	}
	content, err := q.LongAnswerContent()
	if err != nil {
		return 0, err
	}
	return content.EffectiveMaxScore(), nil
}

// IsAutoGradable reports whether the question can be graded without a
// manual score.
func (q *Question) IsAutoGradable() bool {
	return q.Type != LongAnswer
}

// ===== CONTENT DECODING =====

func (q *Question) MultipleChoiceContent() (*MultipleChoiceContent, error) {
	var content MultipleChoiceContent
	if err := q.decodeContent(MultipleChoice, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

func (q *Question) MultipleAnswerContent() (*MultipleAnswerContent, error) {
	var content MultipleAnswerContent
	if err := q.decodeContent(MultipleAnswer, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

func (q *Question) FillBlankContent() (*FillBlankContent, error) {
	var content FillBlankContent
	if err := q.decodeContent(FillBlank, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

func (q *Question) MatchingContent() (*MatchingContent, error) {
	var content MatchingContent
	if err := q.decodeContent(Matching, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

func (q *Question) OrderingContent() (*OrderingContent, error) {
	var content OrderingContent
	if err := q.decodeContent(Ordering, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

func (q *Question) LongAnswerContent() (*LongAnswerContent, error) {
	var content LongAnswerContent
	if err := q.decodeContent(LongAnswer, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

func (q *Question) decodeContent(expected QuestionType, dest interface{}) error {
	if q.Type != expected {
		return fmt.Errorf("question %d is %s, not %s", q.ID, q.Type, expected)
	}
	if len(q.Content) == 0 {
		return fmt.Errorf("question %d has empty content", q.ID)
	}
	if err := json.Unmarshal(q.Content, dest); err != nil {
		return fmt.Errorf("invalid %s content for question %d: %w", expected, q.ID, err)
	}
	return nil
}

// EncodeContent marshals a typed content struct into the JSONB column value.
func EncodeContent(content interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal question content: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// ValidQuestionTypes lists every supported question type, in display order.
func ValidQuestionTypes() []QuestionType {
	return []QuestionType{
		MultipleChoice,
		MultipleAnswer,
		FillBlank,
		Matching,
		Ordering,
		LongAnswer,
	}
}
