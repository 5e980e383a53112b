package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eduquiz/grading-service/internal/events"
	"github.com/eduquiz/grading-service/internal/grading"
	"github.com/eduquiz/grading-service/internal/models"
	"github.com/eduquiz/grading-service/internal/repositories"
	"github.com/eduquiz/grading-service/internal/utils"
)

// ===== REQUEST/RESPONSE TYPES =====

type SaveGradeRequest struct {
	QuestionIndex int    `json:"question_index" validate:"min=0"`
	Score         int    `json:"score"`
	Feedback      string `json:"feedback"`
}

type BatchGradeRequest struct {
	Grades []SaveGradeRequest `json:"grades" validate:"required,min=1,dive"`
}

type GeneralFeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required,min=1"`
}

// GradingOverview summarizes a quiz's grading workload for its owner.
type GradingOverview struct {
	QuizID  uint                       `json:"quiz_id"`
	Stats   *repositories.GradingStats `json:"stats"`
	Pending []*models.Submission       `json:"pending"`
}

// ===== SERVICE INTERFACE =====

type GradingService interface {
	SaveGrade(ctx context.Context, submissionID uint, req *SaveGradeRequest, graderID uint) (*models.Submission, error)
	SaveGradeBatch(ctx context.Context, submissionID uint, req *BatchGradeRequest, graderID uint) (*models.Submission, error)
	Preview(ctx context.Context, submissionID uint, req *SaveGradeRequest, graderID uint) (*grading.Result, error)
	AttachGeneralFeedback(ctx context.Context, submissionID uint, req *GeneralFeedbackRequest, graderID uint) (*models.Submission, error)
	Recompute(ctx context.Context, submissionID uint, requesterID uint) (*models.Submission, error)
	Overview(ctx context.Context, quizID uint, requesterID uint) (*GradingOverview, error)
}

type gradingService struct {
	repo      repositories.Repository
	quizzes   QuizService
	publisher events.EventPublisher
	locks     *submissionLocks
	logger    *slog.Logger
	validator *utils.Validator
}

func NewGradingService(repo repositories.Repository, quizzes QuizService, publisher events.EventPublisher, logger *slog.Logger, validator *utils.Validator) GradingService {
	return &gradingService{
		repo:      repo,
		quizzes:   quizzes,
		publisher: publisher,
		locks:     newSubmissionLocks(),
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE GRADING OPERATIONS =====

// SaveGrade records one manual grade. Calls for the same submission are
// serialized so concurrent graders cannot overwrite each other's work.
func (s *gradingService) SaveGrade(ctx context.Context, submissionID uint, req *SaveGradeRequest, graderID uint) (*models.Submission, error) {
	s.logger.Info("Saving manual grade",
		"submission_id", submissionID,
		"question_index", req.QuestionIndex,
		"grader_id", graderID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	unlock := s.locks.Lock(submissionID)
	defer unlock()

	gctx, err := s.loadGradingContext(ctx, submissionID, graderID, "grade")
	if err != nil {
		return nil, err
	}

	wasComplete := gctx.submission.GradingStatus == models.GradingComplete

	updated, err := grading.SaveGrade(gctx.questions, gctx.quiz.PassingScore, gctx.submission, req.QuestionIndex, req.Score, req.Feedback)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Submission().Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}

	s.logger.Info("Manual grade saved",
		"submission_id", submissionID,
		"question_index", req.QuestionIndex,
		"score", updated.Score,
		"grading_status", updated.GradingStatus)

	if updated.GradingStatus == models.GradingComplete && !wasComplete {
		s.publishGraded(ctx, updated, gctx.quiz, graderID)
	}

	return updated, nil
}

// SaveGradeBatch applies several grades to one submission atomically: if
// any entry fails validation, nothing is persisted.
func (s *gradingService) SaveGradeBatch(ctx context.Context, submissionID uint, req *BatchGradeRequest, graderID uint) (*models.Submission, error) {
	s.logger.Info("Saving grade batch",
		"submission_id", submissionID,
		"grades_count", len(req.Grades),
		"grader_id", graderID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	unlock := s.locks.Lock(submissionID)
	defer unlock()

	gctx, err := s.loadGradingContext(ctx, submissionID, graderID, "grade")
	if err != nil {
		return nil, err
	}

	wasComplete := gctx.submission.GradingStatus == models.GradingComplete

	updated := gctx.submission
	for i, grade := range req.Grades {
		updated, err = grading.SaveGrade(gctx.questions, gctx.quiz.PassingScore, updated, grade.QuestionIndex, grade.Score, grade.Feedback)
		if err != nil {
			return nil, fmt.Errorf("grade %d: %w", i, err)
		}
	}

	if err := s.repo.Submission().Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}

	s.logger.Info("Grade batch saved",
		"submission_id", submissionID,
		"score", updated.Score,
		"grading_status", updated.GradingStatus)

	if updated.GradingStatus == models.GradingComplete && !wasComplete {
		s.publishGraded(ctx, updated, gctx.quiz, graderID)
	}

	return updated, nil
}

// Preview evaluates a hypothetical grade without persisting anything.
func (s *gradingService) Preview(ctx context.Context, submissionID uint, req *SaveGradeRequest, graderID uint) (*grading.Result, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	gctx, err := s.loadGradingContext(ctx, submissionID, graderID, "preview")
	if err != nil {
		return nil, err
	}

	updated, err := grading.SaveGrade(gctx.questions, gctx.quiz.PassingScore, gctx.submission, req.QuestionIndex, req.Score, req.Feedback)
	if err != nil {
		return nil, err
	}

	return grading.Aggregate(gctx.questions, gctx.quiz.PassingScore, updated)
}

func (s *gradingService) AttachGeneralFeedback(ctx context.Context, submissionID uint, req *GeneralFeedbackRequest, graderID uint) (*models.Submission, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	unlock := s.locks.Lock(submissionID)
	defer unlock()

	gctx, err := s.loadGradingContext(ctx, submissionID, graderID, "comment")
	if err != nil {
		return nil, err
	}

	updated := grading.AttachGeneralFeedback(gctx.submission, req.Feedback)

	if err := s.repo.Submission().Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}

	s.logger.Info("General feedback attached", "submission_id", submissionID, "grader_id", graderID)
	return updated, nil
}

// Recompute re-runs aggregation from stored answers and manual scores.
// Used after a quiz's passing score changes.
func (s *gradingService) Recompute(ctx context.Context, submissionID uint, requesterID uint) (*models.Submission, error) {
	unlock := s.locks.Lock(submissionID)
	defer unlock()

	gctx, err := s.loadGradingContext(ctx, submissionID, requesterID, "recompute")
	if err != nil {
		return nil, err
	}

	updated, err := grading.ApplyResult(gctx.questions, gctx.quiz.PassingScore, gctx.submission)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Submission().Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}

	s.logger.Info("Submission recomputed",
		"submission_id", submissionID,
		"score", updated.Score,
		"passed", updated.Passed)

	return updated, nil
}

func (s *gradingService) Overview(ctx context.Context, quizID uint, requesterID uint) (*GradingOverview, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz.CreatedBy != requesterID {
		return nil, NewPermissionError(requesterID, quizID, "quiz", "view grading", "not owned by user")
	}

	stats, err := s.repo.Submission().GetGradingStats(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get grading stats: %w", err)
	}

	needsGrading := models.GradingNeeded
	pending, _, err := s.repo.Submission().List(ctx, quizID, repositories.SubmissionFilters{
		GradingStatus: &needsGrading,
		SortBy:        "submitted_at",
		SortOrder:     "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending submissions: %w", err)
	}

	partial := models.GradingPartial
	partiallyGraded, _, err := s.repo.Submission().List(ctx, quizID, repositories.SubmissionFilters{
		GradingStatus: &partial,
		SortBy:        "submitted_at",
		SortOrder:     "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list partially graded submissions: %w", err)
	}

	return &GradingOverview{
		QuizID:  quizID,
		Stats:   stats,
		Pending: append(pending, partiallyGraded...),
	}, nil
}

// ===== HELPERS =====

// gradingContext bundles everything one grading operation needs: the
// submission, its quiz and the quiz's complete ordered question set.
type gradingContext struct {
	submission *models.Submission
	quiz       *models.Quiz
	questions  []*models.Question
}

func (s *gradingService) loadGradingContext(ctx context.Context, submissionID, userID uint, action string) (*gradingContext, error) {
	submission, err := s.repo.Submission().GetByID(ctx, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, submission.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if quiz.CreatedBy != userID {
		return nil, NewPermissionError(userID, submissionID, "submission", action, "not the quiz owner")
	}

	questions, err := s.quizzes.QuestionSet(ctx, submission.QuizID)
	if err != nil {
		return nil, err
	}

	return &gradingContext{
		submission: submission,
		quiz:       quiz,
		questions:  questions,
	}, nil
}

func (s *gradingService) publishGraded(ctx context.Context, submission *models.Submission, quiz *models.Quiz, graderID uint) {
	event := events.NewSubmissionGradedEvent(submission, quiz.Title, graderID)
	if err := s.publisher.PublishGradingEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish graded event",
			"submission_id", submission.ID, "error", err)
	}
}
