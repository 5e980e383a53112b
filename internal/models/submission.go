package models

import (
	"encoding/json"
	"time"
)

// GradingStatus describes how much manual grading remains on a submission.
type GradingStatus string

const (
	// GradingNotRequired: the quiz has no long-answer questions.
	GradingNotRequired GradingStatus = "not_required"
	// GradingNeeded: every long-answer question is still ungraded.
	GradingNeeded GradingStatus = "needs_grading"
	// GradingPartial: some but not all long-answer questions are graded.
	GradingPartial GradingStatus = "partially_graded"
	// GradingComplete: all long-answer questions are graded.
	GradingComplete GradingStatus = "graded"
)

// Submission is one student attempt at a quiz. Answers and TimeSpentSeconds
// are frozen at submit time; ManualScores, Feedback and the derived fields
// (Score, Passed, GradingStatus) are written only by the grading workflow.
type Submission struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	QuizID    uint `json:"quiz_id" gorm:"not null;index"`
	StudentID uint `json:"student_id" gorm:"not null;index"`

	// Answers maps question index -> raw submitted payload. An absent
	// entry means the question was left unanswered.
	Answers map[int]json.RawMessage `json:"answers" gorm:"serializer:json;type:jsonb"`

	// ManualScores holds teacher-assigned points for long-answer
	// questions, keyed by question index.
	ManualScores map[int]int `json:"manual_scores" gorm:"serializer:json;type:jsonb"`

	// Feedback holds per-question grading rationale, keyed by question
	// index.
	Feedback map[int]string `json:"feedback" gorm:"serializer:json;type:jsonb"`

	// GeneralFeedback is submission-level commentary. It never affects
	// the score or the grading status.
	GeneralFeedback string `json:"general_feedback" gorm:"type:text"`

	TimeSpentSeconds int `json:"time_spent_seconds" gorm:"not null;default:0"`

	// Derived fields, recomputed by the aggregator after every change.
	// Never hand-edited.
	GradingStatus GradingStatus `json:"grading_status" gorm:"not null;default:not_required;index"`
	Score         int           `json:"score" gorm:"not null;default:0"` // 0-100 percentage
	Passed        bool          `json:"passed" gorm:"not null;default:false"`

	SubmittedAt time.Time `json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Submission) TableName() string {
	return "submissions"
}

// Answer returns the raw payload for a question index, or nil when the
// question was left unanswered.
func (s *Submission) Answer(index int) json.RawMessage {
	if s.Answers == nil {
		return nil
	}
	return s.Answers[index]
}

// HasManualScore reports whether a manual score exists for the question
// index.
func (s *Submission) HasManualScore(index int) bool {
	if s.ManualScores == nil {
		return false
	}
	_, ok := s.ManualScores[index]
	return ok
}

// Clone returns a deep copy of the submission. The grading workflow
// operates on a clone so that validation failures leave the caller's value
// untouched.
func (s *Submission) Clone() *Submission {
	clone := *s

	if s.Answers != nil {
		clone.Answers = make(map[int]json.RawMessage, len(s.Answers))
		for k, v := range s.Answers {
			raw := make(json.RawMessage, len(v))
			copy(raw, v)
			clone.Answers[k] = raw
		}
	}
	if s.ManualScores != nil {
		clone.ManualScores = make(map[int]int, len(s.ManualScores))
		for k, v := range s.ManualScores {
			clone.ManualScores[k] = v
		}
	}
	if s.Feedback != nil {
		clone.Feedback = make(map[int]string, len(s.Feedback))
		for k, v := range s.Feedback {
			clone.Feedback[k] = v
		}
	}

	return &clone
}
