package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/eduquiz/grading-service/internal/models"
	"github.com/eduquiz/grading-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ExportService produces downloadable result sheets for a quiz's owner.
type ExportService interface {
	ExportResultsToExcel(ctx context.Context, quizID uint, userID uint) ([]byte, error)
	ExportResultsToCSV(ctx context.Context, quizID uint, userID uint) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

var resultHeaders = []string{
	"Submission ID", "Student ID", "Submitted At", "Grading Status",
	"Score (%)", "Passed", "Time Spent (minutes)", "General Feedback",
}

func (s *exportService) ExportResultsToExcel(ctx context.Context, quizID uint, userID uint) ([]byte, error) {
	submissions, err := s.getResultsForExport(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, header := range resultHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, submission := range submissions {
		for colIndex, value := range resultRow(submission) {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported quiz results", "quiz_id", quizID, "rows", len(submissions), "format", "xlsx")
	return buf.Bytes(), nil
}

func (s *exportService) ExportResultsToCSV(ctx context.Context, quizID uint, userID uint) ([]byte, error) {
	submissions, err := s.getResultsForExport(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(resultHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, submission := range submissions {
		record := make([]string, 0, len(resultHeaders))
		for _, value := range resultRow(submission) {
			record = append(record, fmt.Sprintf("%v", value))
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	s.logger.Info("Exported quiz results", "quiz_id", quizID, "rows", len(submissions), "format", "csv")
	return buf.Bytes(), nil
}

func (s *exportService) getResultsForExport(ctx context.Context, quizID uint, userID uint) ([]*models.Submission, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz.CreatedBy != userID {
		return nil, NewPermissionError(userID, quizID, "quiz", "export results", "not owned by user")
	}

	submissions, _, err := s.repo.Submission().List(ctx, quizID, repositories.SubmissionFilters{
		SortBy:    "submitted_at",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return submissions, nil
}

func resultRow(submission *models.Submission) []interface{} {
	passed := "Fail"
	if submission.Passed {
		passed = "Pass"
	}

	return []interface{}{
		strconv.FormatUint(uint64(submission.ID), 10),
		strconv.FormatUint(uint64(submission.StudentID), 10),
		submission.SubmittedAt.Format("2006-01-02 15:04:05"),
		string(submission.GradingStatus),
		submission.Score,
		passed,
		submission.TimeSpentSeconds / 60,
		submission.GeneralFeedback,
	}
}
