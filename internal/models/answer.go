package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SubmittedAnswer is the closed union over the six answer shapes a student
// can submit. Each variant matches exactly one QuestionType; the evaluator
// rejects any pairing of question type and answer variant that does not
// line up.
type SubmittedAnswer interface {
	isSubmittedAnswer()
}

// ChoiceAnswer is the selected option index for a multiple-choice question.
type ChoiceAnswer struct {
	Selected int `json:"selected"`
}

// MultiAnswer is the set of selected option indices for a multiple-answer
// question. Order is irrelevant.
type MultiAnswer struct {
	Selected []int `json:"selected"`
}

// TextAnswer is the free-text response for a fill-in-blank question.
type TextAnswer struct {
	Text string `json:"text"`
}

// MatchAnswer maps each left-side item to the right-side item the student
// paired it with.
type MatchAnswer struct {
	Pairs map[string]string `json:"pairs"`
}

// OrderAnswer is the student's ordering of the items.
type OrderAnswer struct {
	Order []string `json:"order"`
}

// EssayAnswer is the free text submitted for a long-answer question.
type EssayAnswer struct {
	Text string `json:"text"`
}

func (ChoiceAnswer) isSubmittedAnswer() {}
func (MultiAnswer) isSubmittedAnswer()  {}
func (TextAnswer) isSubmittedAnswer()   {}
func (MatchAnswer) isSubmittedAnswer()  {}
func (OrderAnswer) isSubmittedAnswer()  {}
func (EssayAnswer) isSubmittedAnswer()  {}

// DecodeAnswer decodes a raw submitted payload into the answer variant
// demanded by the question type. A payload whose structure does not match
// the type is reported as an error, never coerced.
func DecodeAnswer(questionType QuestionType, raw json.RawMessage) (SubmittedAnswer, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty answer payload")
	}

	switch questionType {
	case MultipleChoice:
		var answer ChoiceAnswer
		if err := strictUnmarshal(raw, &answer); err != nil {
			return nil, err
		}
		return answer, nil
	case MultipleAnswer:
		var answer MultiAnswer
		if err := strictUnmarshal(raw, &answer); err != nil {
			return nil, err
		}
		return answer, nil
	case FillBlank:
		var answer TextAnswer
		if err := strictUnmarshal(raw, &answer); err != nil {
			return nil, err
		}
		return answer, nil
	case Matching:
		var answer MatchAnswer
		if err := strictUnmarshal(raw, &answer); err != nil {
			return nil, err
		}
		return answer, nil
	case Ordering:
		var answer OrderAnswer
		if err := strictUnmarshal(raw, &answer); err != nil {
			return nil, err
		}
		return answer, nil
	case LongAnswer:
		var answer EssayAnswer
		if err := strictUnmarshal(raw, &answer); err != nil {
			return nil, err
		}
		return answer, nil
	default:
		return nil, fmt.Errorf("unsupported question type: %s", questionType)
	}
}

// EncodeAnswer marshals a typed answer into the raw payload stored on a
// submission.
func EncodeAnswer(answer SubmittedAnswer) (json.RawMessage, error) {
	raw, err := json.Marshal(answer)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answer: %w", err)
	}
	return raw, nil
}

// strictUnmarshal rejects unknown fields so that a payload of the wrong
// shape fails to decode instead of silently producing a zero value.
func strictUnmarshal(raw json.RawMessage, dest interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("answer payload does not match expected shape: %w", err)
	}
	return nil
}
