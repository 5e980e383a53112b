package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/eduquiz/grading-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	Status    *models.QuizStatus `json:"status"`
	CreatedBy *uint              `json:"created_by"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "title"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type SubmissionFilters struct {
	GradingStatus *models.GradingStatus `json:"grading_status"`
	StudentID     *uint                 `json:"student_id"`
	Passed        *bool                 `json:"passed"`
	DateFrom      *time.Time            `json:"date_from"`
	DateTo        *time.Time            `json:"date_to"`
	Limit         int                   `json:"limit"`
	Offset        int                   `json:"offset"`
	SortBy        string                `json:"sort_by"`
	SortOrder     string                `json:"sort_order"`
}

// ===== SHARED STATISTICS STRUCTS =====

type GradingStats struct {
	TotalSubmissions    int     `json:"total_submissions"`
	FullyGraded         int     `json:"fully_graded"`
	PendingManualGrades int     `json:"pending_manual_grades"`
	PartiallyGraded     int     `json:"partially_graded"`
	AverageScore        float64 `json:"average_score"`
	PassRate            float64 `json:"pass_rate"`
}

// ===== REPOSITORY INTERFACES =====

type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, int64, error)
	ExistsByTitle(ctx context.Context, title string, creatorID uint) (bool, error)
}

type QuestionRepository interface {
	CreateBatch(ctx context.Context, questions []*models.Question) error
	GetByQuiz(ctx context.Context, quizID uint) ([]*models.Question, error)
	DeleteByQuiz(ctx context.Context, quizID uint) error
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	Update(ctx context.Context, submission *models.Submission) error
	List(ctx context.Context, quizID uint, filters SubmissionFilters) ([]*models.Submission, int64, error)
	GetByStudent(ctx context.Context, studentID uint, filters SubmissionFilters) ([]*models.Submission, int64, error)
	CountByQuizAndStudent(ctx context.Context, quizID, studentID uint) (int, error)
	GetGradingStats(ctx context.Context, quizID uint) (*GradingStats, error)
}

// Repository is the aggregate access point used by the service layer.
type Repository interface {
	Quiz() QuizRepository
	Question() QuestionRepository
	Submission() SubmissionRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// IsNotFoundError reports whether err is the driver's record-not-found.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
