package services

import (
	"log/slog"

	"github.com/eduquiz/grading-service/internal/cache"
	"github.com/eduquiz/grading-service/internal/events"
	"github.com/eduquiz/grading-service/internal/repositories"
	"github.com/eduquiz/grading-service/internal/utils"
)

// ServiceManager is the single construction point for the service layer.
type ServiceManager interface {
	Quiz() QuizService
	Submission() SubmissionService
	Grading() GradingService
	Export() ExportService
}

type serviceManager struct {
	quiz       QuizService
	submission SubmissionService
	grading    GradingService
	export     ExportService
}

func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) ServiceManager {
	questionCache := cache.NewQuestionCache(cacheService)

	quiz := NewQuizService(repo, questionCache, logger, validator)

	return &serviceManager{
		quiz:       quiz,
		submission: NewSubmissionService(repo, quiz, publisher, logger, validator),
		grading:    NewGradingService(repo, quiz, publisher, logger, validator),
		export:     NewExportService(repo, logger),
	}
}

func (m *serviceManager) Quiz() QuizService             { return m.quiz }
func (m *serviceManager) Submission() SubmissionService { return m.submission }
func (m *serviceManager) Grading() GradingService       { return m.grading }
func (m *serviceManager) Export() ExportService         { return m.export }
