package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/eduquiz/grading-service/internal/models"
)

// EventType represents different types of grading events
type EventType string

const (
	// Submission events
	EventSubmissionSubmitted EventType = "submission.submitted"
	EventSubmissionGraded    EventType = "submission.graded"

	// Grading events
	EventManualGradingRequired EventType = "grading.manual_required"
)

// GradingEvent is the base event structure for all grading events
type GradingEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Submission event payloads

type SubmissionSubmittedEvent struct {
	SubmissionID    uint                 `json:"submission_id"`
	QuizID          uint                 `json:"quiz_id"`
	QuizTitle       string               `json:"quiz_title"`
	StudentID       uint                 `json:"student_id"`
	SubmittedAt     time.Time            `json:"submitted_at"`
	Score           int                  `json:"score"`
	Passed          bool                 `json:"passed"`
	GradingStatus   models.GradingStatus `json:"grading_status"`
	GradingRequired bool                 `json:"grading_required"`
}

type SubmissionGradedEvent struct {
	SubmissionID uint      `json:"submission_id"`
	QuizID       uint      `json:"quiz_id"`
	QuizTitle    string    `json:"quiz_title"`
	StudentID    uint      `json:"student_id"`
	GradedAt     time.Time `json:"graded_at"`
	Score        int       `json:"score"`
	Passed       bool      `json:"passed"`
	GraderID     uint      `json:"grader_id"`
}

type ManualGradingRequiredEvent struct {
	SubmissionID  uint      `json:"submission_id"`
	QuizID        uint      `json:"quiz_id"`
	QuizTitle     string    `json:"quiz_title"`
	StudentID     uint      `json:"student_id"`
	RequiredAt    time.Time `json:"required_at"`
	QuestionCount int       `json:"question_count"`
	CreatorID     uint      `json:"creator_id"`
}

// Event factory functions

func NewSubmissionSubmittedEvent(submission *models.Submission, quizTitle string) *GradingEvent {
	return &GradingEvent{
		ID:        generateEventID(),
		Type:      EventSubmissionSubmitted,
		Timestamp: time.Now(),
		Source:    "grading-service",
		Version:   "1.0",
		Data: SubmissionSubmittedEvent{
			SubmissionID:    submission.ID,
			QuizID:          submission.QuizID,
			QuizTitle:       quizTitle,
			StudentID:       submission.StudentID,
			SubmittedAt:     submission.SubmittedAt,
			Score:           submission.Score,
			Passed:          submission.Passed,
			GradingStatus:   submission.GradingStatus,
			GradingRequired: submission.GradingStatus != models.GradingNotRequired,
		},
	}
}

func NewSubmissionGradedEvent(submission *models.Submission, quizTitle string, graderID uint) *GradingEvent {
	return &GradingEvent{
		ID:        generateEventID(),
		Type:      EventSubmissionGraded,
		Timestamp: time.Now(),
		Source:    "grading-service",
		Version:   "1.0",
		Data: SubmissionGradedEvent{
			SubmissionID: submission.ID,
			QuizID:       submission.QuizID,
			QuizTitle:    quizTitle,
			StudentID:    submission.StudentID,
			GradedAt:     time.Now(),
			Score:        submission.Score,
			Passed:       submission.Passed,
			GraderID:     graderID,
		},
	}
}

func NewManualGradingRequiredEvent(submission *models.Submission, quizTitle string, questionCount int, creatorID uint) *GradingEvent {
	return &GradingEvent{
		ID:        generateEventID(),
		Type:      EventManualGradingRequired,
		Timestamp: time.Now(),
		Source:    "grading-service",
		Version:   "1.0",
		Data: ManualGradingRequiredEvent{
			SubmissionID:  submission.ID,
			QuizID:        submission.QuizID,
			QuizTitle:     quizTitle,
			StudentID:     submission.StudentID,
			RequiredAt:    time.Now(),
			QuestionCount: questionCount,
			CreatorID:     creatorID,
		},
	}
}

func generateEventID() string {
	return watermill.NewUUID()
}
