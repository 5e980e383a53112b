package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eduquiz/grading-service/internal/models"
)

// QuestionValidator handles question content validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if strings.TrimSpace(question.Text) == "" {
		return fmt.Errorf("question text is required")
	}
	return v.ValidateContent(question.Type, json.RawMessage(question.Content))
}

// ValidateBatch validates multiple questions
func (v *QuestionValidator) ValidateBatch(questions []*models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}

	for i, question := range questions {
		if err := v.ValidateQuestion(question); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}

	return nil
}

// ValidateContent validates question content based on question type
func (v *QuestionValidator) ValidateContent(questionType models.QuestionType, content json.RawMessage) error {
	if len(content) == 0 {
		return fmt.Errorf("content cannot be empty")
	}

	switch questionType {
	case models.MultipleChoice:
		return v.validateMultipleChoiceContent(content)
	case models.MultipleAnswer:
		return v.validateMultipleAnswerContent(content)
	case models.FillBlank:
		return v.validateFillBlankContent(content)
	case models.Matching:
		return v.validateMatchingContent(content)
	case models.Ordering:
		return v.validateOrderingContent(content)
	case models.LongAnswer:
		return v.validateLongAnswerContent(content)
	default:
		return fmt.Errorf("unsupported question type: %s", questionType)
	}
}

// Private validation methods for each question type

func (v *QuestionValidator) validateMultipleChoiceContent(contentBytes []byte) error {
	var content models.MultipleChoiceContent
	if err := json.Unmarshal(contentBytes, &content); err != nil {
		return fmt.Errorf("invalid multiple choice content: %w", err)
	}

	if len(content.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	if len(content.Options) > 10 {
		return fmt.Errorf("cannot have more than 10 options")
	}
	for i, option := range content.Options {
		if strings.TrimSpace(option) == "" {
			return fmt.Errorf("option %d text cannot be empty", i)
		}
	}
	if content.CorrectAnswer < 0 || content.CorrectAnswer >= len(content.Options) {
		return fmt.Errorf("correct answer index %d is out of range", content.CorrectAnswer)
	}

	return nil
}

func (v *QuestionValidator) validateMultipleAnswerContent(contentBytes []byte) error {
	var content models.MultipleAnswerContent
	if err := json.Unmarshal(contentBytes, &content); err != nil {
		return fmt.Errorf("invalid multiple answer content: %w", err)
	}

	if len(content.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	if len(content.Options) > 10 {
		return fmt.Errorf("cannot have more than 10 options")
	}
	if len(content.CorrectAnswers) == 0 {
		return fmt.Errorf("must have at least 1 correct answer")
	}

	seen := make(map[int]bool)
	for _, idx := range content.CorrectAnswers {
		if idx < 0 || idx >= len(content.Options) {
			return fmt.Errorf("correct answer index %d is out of range", idx)
		}
		if seen[idx] {
			return fmt.Errorf("correct answer index %d is duplicated", idx)
		}
		seen[idx] = true
	}

	return nil
}

func (v *QuestionValidator) validateFillBlankContent(contentBytes []byte) error {
	var content models.FillBlankContent
	if err := json.Unmarshal(contentBytes, &content); err != nil {
		return fmt.Errorf("invalid fill-in-the-blank content: %w", err)
	}

	if strings.TrimSpace(content.CorrectText) == "" {
		return fmt.Errorf("correct text cannot be empty")
	}

	return nil
}

func (v *QuestionValidator) validateMatchingContent(contentBytes []byte) error {
	var content models.MatchingContent
	if err := json.Unmarshal(contentBytes, &content); err != nil {
		return fmt.Errorf("invalid matching content: %w", err)
	}

	if len(content.Pairs) < 2 {
		return fmt.Errorf("must have at least 2 pairs")
	}

	lefts := make(map[string]bool)
	for i, pair := range content.Pairs {
		if strings.TrimSpace(pair.Left) == "" || strings.TrimSpace(pair.Right) == "" {
			return fmt.Errorf("pair %d must have both sides", i)
		}
		if lefts[pair.Left] {
			return fmt.Errorf("pair left item %q is duplicated", pair.Left)
		}
		lefts[pair.Left] = true
	}

	return nil
}

func (v *QuestionValidator) validateOrderingContent(contentBytes []byte) error {
	var content models.OrderingContent
	if err := json.Unmarshal(contentBytes, &content); err != nil {
		return fmt.Errorf("invalid ordering content: %w", err)
	}

	if len(content.CorrectOrder) < 2 {
		return fmt.Errorf("must have at least 2 items to order")
	}

	seen := make(map[string]bool)
	for i, item := range content.CorrectOrder {
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("item %d cannot be empty", i)
		}
		if seen[item] {
			return fmt.Errorf("item %q is duplicated", item)
		}
		seen[item] = true
	}

	return nil
}

func (v *QuestionValidator) validateLongAnswerContent(contentBytes []byte) error {
	var content models.LongAnswerContent
	if err := json.Unmarshal(contentBytes, &content); err != nil {
		return fmt.Errorf("invalid long answer content: %w", err)
	}

	if content.MaxScore < 0 {
		return fmt.Errorf("max score cannot be negative")
	}

	return nil
}
