package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/eduquiz/grading-service/internal/cache"
	"github.com/eduquiz/grading-service/internal/models"
	"github.com/eduquiz/grading-service/internal/repositories"
	"github.com/eduquiz/grading-service/internal/utils"
	"gorm.io/datatypes"
)

// ===== REQUEST/RESPONSE TYPES =====

type CreateQuestionRequest struct {
	Type    models.QuestionType `json:"type" validate:"required,question_type"`
	Text    string              `json:"text" validate:"required,min=1"`
	Content json.RawMessage     `json:"content" validate:"required"`
}

type CreateQuizRequest struct {
	Title        string                  `json:"title" validate:"required,min=1,max=200"`
	Description  *string                 `json:"description" validate:"omitempty,max=1000"`
	PassingScore int                     `json:"passing_score" validate:"required,min=1,max=100"`
	TimeLimit    int                     `json:"time_limit" validate:"omitempty,min=0"`
	Questions    []CreateQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type UpdateQuizRequest struct {
	Title        *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string            `json:"description" validate:"omitempty,max=1000"`
	Status       *models.QuizStatus `json:"status" validate:"omitempty,quiz_status"`
	PassingScore *int               `json:"passing_score" validate:"omitempty,min=1,max=100"`
	TimeLimit    *int               `json:"time_limit" validate:"omitempty,min=0"`
}

// ===== SERVICE INTERFACE =====

type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, creatorID uint) (*models.Quiz, error)
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	Update(ctx context.Context, id uint, req *UpdateQuizRequest, userID uint) (*models.Quiz, error)
	Delete(ctx context.Context, id uint, userID uint) error
	List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error)

	// QuestionSet returns the quiz's complete ordered question set, served
	// from cache when possible.
	QuestionSet(ctx context.Context, quizID uint) ([]*models.Question, error)
}

type quizService struct {
	repo          repositories.Repository
	questionCache *cache.QuestionCache
	logger        *slog.Logger
	validator     *utils.Validator
}

func NewQuizService(repo repositories.Repository, questionCache *cache.QuestionCache, logger *slog.Logger, validator *utils.Validator) QuizService {
	return &quizService{
		repo:          repo,
		questionCache: questionCache,
		logger:        logger,
		validator:     validator,
	}
}

// ===== CORE QUIZ OPERATIONS =====

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, creatorID uint) (*models.Quiz, error) {
	s.logger.Info("Creating quiz",
		"title", req.Title,
		"creator_id", creatorID,
		"questions_count", len(req.Questions))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	exists, err := s.repo.Quiz().ExistsByTitle(ctx, req.Title, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check quiz title: %w", err)
	}
	if exists {
		return nil, ErrQuizDuplicateTitle
	}

	quiz := &models.Quiz{
		Title:        req.Title,
		Description:  req.Description,
		Status:       models.QuizDraft,
		PassingScore: req.PassingScore,
		TimeLimit:    req.TimeLimit,
		CreatedBy:    creatorID,
	}

	questions := make([]*models.Question, 0, len(req.Questions))
	for i, qreq := range req.Questions {
		question := &models.Question{
			Position: i,
			Type:     qreq.Type,
			Text:     qreq.Text,
			Content:  datatypes.JSON(qreq.Content),
		}
		if err := s.validator.Question().ValidateQuestion(question); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrQuestionInvalidContent, i, err)
		}
		questions = append(questions, question)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Quiz().Create(ctx, quiz); err != nil {
			return fmt.Errorf("failed to create quiz: %w", err)
		}
		for _, question := range questions {
			question.QuizID = quiz.ID
		}
		if err := txRepo.Question().CreateBatch(ctx, questions); err != nil {
			return fmt.Errorf("failed to create questions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quiz created", "quiz_id", quiz.ID, "creator_id", creatorID)

	return s.GetByID(ctx, quiz.ID)
}

func (s *quizService) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	possible := 0
	for i := range quiz.Questions {
		weight, err := quiz.Questions[i].MaxScore()
		if err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrQuestionInvalidContent, i, err)
		}
		possible += weight
	}
	quiz.PossiblePoints = possible

	return quiz, nil
}

func (s *quizService) Update(ctx context.Context, id uint, req *UpdateQuizRequest, userID uint) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if quiz.CreatedBy != userID {
		return nil, NewPermissionError(userID, id, "quiz", "update", "not owned by user")
	}

	if req.Title != nil && *req.Title != quiz.Title {
		exists, err := s.repo.Quiz().ExistsByTitle(ctx, *req.Title, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check quiz title: %w", err)
		}
		if exists {
			return nil, ErrQuizDuplicateTitle
		}
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = req.Description
	}
	if req.Status != nil {
		quiz.Status = *req.Status
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = *req.TimeLimit
	}

	if err := s.repo.Quiz().Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	s.logger.Info("Quiz updated", "quiz_id", id, "user_id", userID)

	return s.GetByID(ctx, id)
}

func (s *quizService) Delete(ctx context.Context, id uint, userID uint) error {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to get quiz: %w", err)
	}

	if quiz.CreatedBy != userID {
		return NewPermissionError(userID, id, "quiz", "delete", "not owned by user")
	}

	stats, err := s.repo.Submission().GetGradingStats(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check quiz submissions: %w", err)
	}
	if stats.TotalSubmissions > 0 {
		return ErrQuizHasSubmissions
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Question().DeleteByQuiz(ctx, id); err != nil {
			return fmt.Errorf("failed to delete questions: %w", err)
		}
		if err := txRepo.Quiz().Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete quiz: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.questionCache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate question cache", "quiz_id", id, "error", err)
	}

	s.logger.Info("Quiz deleted", "quiz_id", id, "user_id", userID)
	return nil
}

func (s *quizService) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	quizzes, total, err := s.repo.Quiz().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, total, nil
}

// QuestionSet serves the grading hot path: cache first, database on miss.
func (s *quizService) QuestionSet(ctx context.Context, quizID uint) ([]*models.Question, error) {
	questions, err := s.questionCache.Get(ctx, quizID)
	if err == nil {
		return questions, nil
	}

	questions, err = s.repo.Question().GetByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	if err := s.questionCache.Set(ctx, quizID, questions); err != nil {
		s.logger.Warn("Failed to cache question set", "quiz_id", quizID, "error", err)
	}

	return questions, nil
}
