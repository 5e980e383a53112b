package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/eduquiz/grading-service/internal/events"
	"github.com/eduquiz/grading-service/internal/grading"
	"github.com/eduquiz/grading-service/internal/models"
	"github.com/eduquiz/grading-service/internal/repositories"
	"github.com/eduquiz/grading-service/internal/utils"
)

// ===== REQUEST/RESPONSE TYPES =====

type SubmitQuizRequest struct {
	QuizID           uint                    `json:"quiz_id" validate:"required"`
	Answers          map[int]json.RawMessage `json:"answers"`
	TimeSpentSeconds int                     `json:"time_spent_seconds" validate:"omitempty,min=0"`
}

// ===== SERVICE INTERFACE =====

type SubmissionService interface {
	Submit(ctx context.Context, req *SubmitQuizRequest, studentID uint) (*models.Submission, error)
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	List(ctx context.Context, quizID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error)
	GetByStudent(ctx context.Context, studentID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error)
}

type submissionService struct {
	repo      repositories.Repository
	quizzes   QuizService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewSubmissionService(repo repositories.Repository, quizzes QuizService, publisher events.EventPublisher, logger *slog.Logger, validator *utils.Validator) SubmissionService {
	return &submissionService{
		repo:      repo,
		quizzes:   quizzes,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE SUBMISSION OPERATIONS =====

// Submit freezes a student's answers, scores every auto-gradable question
// and queues long-answer questions for manual grading.
func (s *submissionService) Submit(ctx context.Context, req *SubmitQuizRequest, studentID uint) (*models.Submission, error) {
	s.logger.Info("Submitting quiz",
		"quiz_id", req.QuizID,
		"student_id", studentID,
		"answers_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, req.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz.Status != models.QuizActive {
		return nil, ErrQuizNotActive
	}

	count, err := s.repo.Submission().CountByQuizAndStudent(ctx, req.QuizID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing submissions: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadySubmitted
	}

	questions, err := s.quizzes.QuestionSet(ctx, req.QuizID)
	if err != nil {
		return nil, err
	}

	submission := &models.Submission{
		QuizID:           req.QuizID,
		StudentID:        studentID,
		Answers:          req.Answers,
		TimeSpentSeconds: req.TimeSpentSeconds,
		SubmittedAt:      time.Now(),
	}

	// Score the submission before it is ever persisted. Malformed answer
	// payloads surface here as shape-mismatch errors and reject the whole
	// submission.
	scored, err := grading.ApplyResult(questions, quiz.PassingScore, submission)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Submission().Create(ctx, scored); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.logger.Info("Quiz submitted",
		"submission_id", scored.ID,
		"quiz_id", req.QuizID,
		"student_id", studentID,
		"score", scored.Score,
		"grading_status", scored.GradingStatus)

	s.publishSubmitEvents(ctx, scored, quiz, questions)

	return scored, nil
}

func (s *submissionService) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	submission, err := s.repo.Submission().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return submission, nil
}

func (s *submissionService) List(ctx context.Context, quizID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	submissions, total, err := s.repo.Submission().List(ctx, quizID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, total, nil
}

func (s *submissionService) GetByStudent(ctx context.Context, studentID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	submissions, total, err := s.repo.Submission().GetByStudent(ctx, studentID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get student submissions: %w", err)
	}
	return submissions, total, nil
}

// publishSubmitEvents is best effort: a broker outage must not fail the
// submission that is already committed.
func (s *submissionService) publishSubmitEvents(ctx context.Context, submission *models.Submission, quiz *models.Quiz, questions []*models.Question) {
	event := events.NewSubmissionSubmittedEvent(submission, quiz.Title)
	if err := s.publisher.PublishGradingEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish submission event",
			"submission_id", submission.ID, "error", err)
	}

	if submission.GradingStatus != models.GradingNeeded {
		return
	}

	pending := 0
	for _, question := range questions {
		if question.Type == models.LongAnswer {
			pending++
		}
	}

	event = events.NewManualGradingRequiredEvent(submission, quiz.Title, pending, quiz.CreatedBy)
	if err := s.publisher.PublishGradingEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish manual grading event",
			"submission_id", submission.ID, "error", err)
	}
}
