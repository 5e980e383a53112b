package postgres

import (
	"context"

	"github.com/eduquiz/grading-service/internal/models"
	"github.com/eduquiz/grading-service/internal/repositories"
	"gorm.io/gorm"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (r *SubmissionPostgreSQL) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *SubmissionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionPostgreSQL) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *SubmissionPostgreSQL) List(ctx context.Context, quizID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	var submissions []*models.Submission
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Submission{}).Where("quiz_id = ?", quizID)
	query = applySubmissionFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder)
	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *SubmissionPostgreSQL) GetByStudent(ctx context.Context, studentID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	var submissions []*models.Submission
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Submission{}).Where("student_id = ?", studentID)
	query = applySubmissionFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder)
	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *SubmissionPostgreSQL) CountByQuizAndStudent(ctx context.Context, quizID, studentID uint) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Count(&count).Error
	return int(count), err
}

func (r *SubmissionPostgreSQL) GetGradingStats(ctx context.Context, quizID uint) (*repositories.GradingStats, error) {
	stats := &repositories.GradingStats{}

	type row struct {
		GradingStatus models.GradingStatus
		Count         int
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Select("grading_status, COUNT(*) as count").
		Where("quiz_id = ?", quizID).
		Group("grading_status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, rw := range rows {
		stats.TotalSubmissions += rw.Count
		switch rw.GradingStatus {
		case models.GradingNotRequired, models.GradingComplete:
			stats.FullyGraded += rw.Count
		case models.GradingNeeded:
			stats.PendingManualGrades += rw.Count
		case models.GradingPartial:
			stats.PartiallyGraded += rw.Count
		}
	}

	if stats.TotalSubmissions > 0 {
		var avgScore float64
		if err := r.db.WithContext(ctx).Model(&models.Submission{}).
			Where("quiz_id = ?", quizID).
			Select("COALESCE(AVG(score), 0)").
			Scan(&avgScore).Error; err != nil {
			return nil, err
		}
		stats.AverageScore = avgScore

		var passed int64
		if err := r.db.WithContext(ctx).Model(&models.Submission{}).
			Where("quiz_id = ? AND passed = ?", quizID, true).
			Count(&passed).Error; err != nil {
			return nil, err
		}
		stats.PassRate = float64(passed) / float64(stats.TotalSubmissions) * 100
	}

	return stats, nil
}

func applySubmissionFilters(query *gorm.DB, filters repositories.SubmissionFilters) *gorm.DB {
	if filters.GradingStatus != nil {
		query = query.Where("grading_status = ?", *filters.GradingStatus)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.Passed != nil {
		query = query.Where("passed = ?", *filters.Passed)
	}
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}
	return query
}
