package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/eduquiz/grading-service/internal/cache"
	"github.com/eduquiz/grading-service/internal/events"
	"github.com/eduquiz/grading-service/internal/grading"
	"github.com/eduquiz/grading-service/internal/models"
	"github.com/eduquiz/grading-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const graderID = uint(42)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type gradingTestEnv struct {
	repo      *mockRepository
	publisher *events.MockEventPublisher
	service   GradingService
}

func newGradingTestEnv(t *testing.T) *gradingTestEnv {
	t.Helper()

	logger := testLogger()
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	validator := utils.NewValidator()
	questionCache := cache.NewQuestionCache(newMemoryCache())
	quizzes := NewQuizService(repo, questionCache, logger, validator)

	return &gradingTestEnv{
		repo:      repo,
		publisher: publisher,
		service:   NewGradingService(repo, quizzes, publisher, logger, validator),
	}
}

func encodeContent(t *testing.T, content interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(content)
	require.NoError(t, err)
	return raw
}

func rawAnswer(t *testing.T, answer interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(answer)
	require.NoError(t, err)
	return raw
}

func choiceQuestion(t *testing.T, quizID uint, position int) *models.Question {
	t.Helper()
	return &models.Question{
		ID:       uint(position + 1),
		QuizID:   quizID,
		Position: position,
		Type:     models.MultipleChoice,
		Text:     "Pick one",
		Content: encodeContent(t, models.MultipleChoiceContent{
			Options:       []string{"red", "green", "blue"},
			CorrectAnswer: 1,
		}),
	}
}

func essayQuestion(t *testing.T, quizID uint, position, maxScore int) *models.Question {
	t.Helper()
	return &models.Question{
		ID:       uint(position + 1),
		QuizID:   quizID,
		Position: position,
		Type:     models.LongAnswer,
		Text:     "Explain",
		Content: encodeContent(t, models.LongAnswerContent{
			GradingCriteria: "clarity and depth",
			MaxScore:        maxScore,
		}),
	}
}

// gradedQuizFixture wires a two-question quiz (one auto, one essay worth 5)
// with a submission that answered the choice correctly.
func (env *gradingTestEnv) gradedQuizFixture(t *testing.T) (*models.Quiz, *models.Submission) {
	t.Helper()

	quiz := &models.Quiz{
		ID:           1,
		Title:        "Colors",
		Status:       models.QuizActive,
		PassingScore: 70,
		CreatedBy:    graderID,
	}
	questions := []*models.Question{
		choiceQuestion(t, quiz.ID, 0),
		essayQuestion(t, quiz.ID, 1, 5),
	}
	submission := &models.Submission{
		ID:        10,
		QuizID:    quiz.ID,
		StudentID: 7,
		Answers: map[int]json.RawMessage{
			0: rawAnswer(t, models.ChoiceAnswer{Selected: 1}),
			1: rawAnswer(t, models.EssayAnswer{Text: "because wavelengths"}),
		},
		GradingStatus: models.GradingNeeded,
		Score:         17,
	}

	env.repo.submission.On("GetByID", mock.Anything, submission.ID).Return(submission, nil)
	env.repo.quiz.On("GetByID", mock.Anything, quiz.ID).Return(quiz, nil)
	env.repo.question.On("GetByQuiz", mock.Anything, quiz.ID).Return(questions, nil)

	return quiz, submission
}

func TestGradingService_SaveGrade(t *testing.T) {
	ctx := context.Background()

	t.Run("completes grading and persists recomputed result", func(t *testing.T) {
		env := newGradingTestEnv(t)
		_, _ = env.gradedQuizFixture(t)
		env.repo.submission.On("Update", mock.Anything, mock.MatchedBy(func(s *models.Submission) bool {
			return s.GradingStatus == models.GradingComplete && s.Score == 83 && s.Passed
		})).Return(nil)

		updated, err := env.service.SaveGrade(ctx, 10, &SaveGradeRequest{
			QuestionIndex: 1,
			Score:         4,
			Feedback:      "solid reasoning",
		}, graderID)

		require.NoError(t, err)
		assert.Equal(t, models.GradingComplete, updated.GradingStatus)
		assert.Equal(t, 83, updated.Score) // 5 of 6 points, round half up
		assert.True(t, updated.Passed)
		env.repo.submission.AssertExpectations(t)
	})

	t.Run("publishes graded event once grading completes", func(t *testing.T) {
		env := newGradingTestEnv(t)
		env.gradedQuizFixture(t)
		env.repo.submission.On("Update", mock.Anything, mock.Anything).Return(nil)

		_, err := env.service.SaveGrade(ctx, 10, &SaveGradeRequest{
			QuestionIndex: 1,
			Score:         4,
			Feedback:      "solid reasoning",
		}, graderID)
		require.NoError(t, err)

		published := env.publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventSubmissionGraded, published[0].Type)

		data, ok := published[0].Data.(events.SubmissionGradedEvent)
		require.True(t, ok)
		assert.Equal(t, uint(10), data.SubmissionID)
		assert.Equal(t, graderID, data.GraderID)
	})

	t.Run("rejects scores above the question maximum", func(t *testing.T) {
		env := newGradingTestEnv(t)
		env.gradedQuizFixture(t)

		_, err := env.service.SaveGrade(ctx, 10, &SaveGradeRequest{
			QuestionIndex: 1,
			Score:         6,
			Feedback:      "too generous",
		}, graderID)

		var outOfRange *grading.OutOfRangeError
		require.ErrorAs(t, err, &outOfRange)
		assert.Equal(t, 5, outOfRange.MaxScore)
		env.repo.submission.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("rejects empty feedback without persisting", func(t *testing.T) {
		env := newGradingTestEnv(t)
		env.gradedQuizFixture(t)

		_, err := env.service.SaveGrade(ctx, 10, &SaveGradeRequest{
			QuestionIndex: 1,
			Score:         3,
			Feedback:      "   ",
		}, graderID)

		require.ErrorIs(t, err, grading.ErrMissingFeedback)
		env.repo.submission.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("rejects grading an auto-graded question", func(t *testing.T) {
		env := newGradingTestEnv(t)
		env.gradedQuizFixture(t)

		_, err := env.service.SaveGrade(ctx, 10, &SaveGradeRequest{
			QuestionIndex: 0,
			Score:         1,
			Feedback:      "n/a",
		}, graderID)

		require.ErrorIs(t, err, grading.ErrGradingNotAllowed)
	})

	t.Run("denies graders who do not own the quiz", func(t *testing.T) {
		env := newGradingTestEnv(t)
		env.gradedQuizFixture(t)

		_, err := env.service.SaveGrade(ctx, 10, &SaveGradeRequest{
			QuestionIndex: 1,
			Score:         4,
			Feedback:      "fine",
		}, uint(999))

		var permission *PermissionError
		require.ErrorAs(t, err, &permission)
		assert.Equal(t, "grade", permission.Action)
	})

	t.Run("returns not found for an unknown submission", func(t *testing.T) {
		env := newGradingTestEnv(t)
		env.repo.submission.On("GetByID", mock.Anything, uint(404)).Return(nil, errNotFoundForTest())

		_, err := env.service.SaveGrade(ctx, 404, &SaveGradeRequest{
			QuestionIndex: 1,
			Score:         4,
			Feedback:      "fine",
		}, graderID)

		require.ErrorIs(t, err, ErrSubmissionNotFound)
	})
}

func TestGradingService_SaveGradeBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("applies all grades atomically", func(t *testing.T) {
		env := newGradingTestEnv(t)

		quiz := &models.Quiz{ID: 2, Title: "Essays", Status: models.QuizActive, PassingScore: 60, CreatedBy: graderID}
		questions := []*models.Question{
			essayQuestion(t, quiz.ID, 0, 5),
			essayQuestion(t, quiz.ID, 1, 5),
		}
		submission := &models.Submission{
			ID:        20,
			QuizID:    quiz.ID,
			StudentID: 7,
			Answers: map[int]json.RawMessage{
				0: rawAnswer(t, models.EssayAnswer{Text: "first"}),
				1: rawAnswer(t, models.EssayAnswer{Text: "second"}),
			},
			GradingStatus: models.GradingNeeded,
		}

		env.repo.submission.On("GetByID", mock.Anything, submission.ID).Return(submission, nil)
		env.repo.quiz.On("GetByID", mock.Anything, quiz.ID).Return(quiz, nil)
		env.repo.question.On("GetByQuiz", mock.Anything, quiz.ID).Return(questions, nil)
		env.repo.submission.On("Update", mock.Anything, mock.Anything).Return(nil)

		updated, err := env.service.SaveGradeBatch(ctx, 20, &BatchGradeRequest{
			Grades: []SaveGradeRequest{
				{QuestionIndex: 0, Score: 5, Feedback: "excellent"},
				{QuestionIndex: 1, Score: 4, Feedback: "good"},
			},
		}, graderID)

		require.NoError(t, err)
		assert.Equal(t, models.GradingComplete, updated.GradingStatus)
		assert.Equal(t, 90, updated.Score) // 9 of 10 points
		assert.True(t, updated.Passed)
	})

	t.Run("persists nothing when one grade is invalid", func(t *testing.T) {
		env := newGradingTestEnv(t)
		env.gradedQuizFixture(t)

		_, err := env.service.SaveGradeBatch(ctx, 10, &BatchGradeRequest{
			Grades: []SaveGradeRequest{
				{QuestionIndex: 1, Score: 4, Feedback: "fine"},
				{QuestionIndex: 1, Score: 9, Feedback: "impossible"},
			},
		}, graderID)

		var outOfRange *grading.OutOfRangeError
		require.ErrorAs(t, err, &outOfRange)
		env.repo.submission.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestGradingService_Preview(t *testing.T) {
	env := newGradingTestEnv(t)
	env.gradedQuizFixture(t)

	result, err := env.service.Preview(context.Background(), 10, &SaveGradeRequest{
		QuestionIndex: 1,
		Score:         3,
		Feedback:      "middling",
	}, graderID)

	require.NoError(t, err)
	assert.Equal(t, 4, result.EarnedPoints)
	assert.Equal(t, 6, result.PossiblePoints)
	assert.Equal(t, 67, result.Percentage)
	assert.False(t, result.Passed)
	env.repo.submission.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestGradingService_Recompute(t *testing.T) {
	env := newGradingTestEnv(t)
	quiz, submission := env.gradedQuizFixture(t)
	submission.ManualScores = map[int]int{1: 5}
	quiz.PassingScore = 100

	env.repo.submission.On("Update", mock.Anything, mock.Anything).Return(nil)

	updated, err := env.service.Recompute(context.Background(), 10, graderID)

	require.NoError(t, err)
	assert.Equal(t, 100, updated.Score)
	assert.True(t, updated.Passed)
	assert.Equal(t, models.GradingComplete, updated.GradingStatus)
}

func TestGradingService_AttachGeneralFeedback(t *testing.T) {
	env := newGradingTestEnv(t)
	_, submission := env.gradedQuizFixture(t)
	env.repo.submission.On("Update", mock.Anything, mock.Anything).Return(nil)

	updated, err := env.service.AttachGeneralFeedback(context.Background(), 10, &GeneralFeedbackRequest{
		Feedback: "see office hours",
	}, graderID)

	require.NoError(t, err)
	assert.Equal(t, "see office hours", updated.GeneralFeedback)
	// Derived fields are untouched.
	assert.Equal(t, submission.Score, updated.Score)
	assert.Equal(t, submission.GradingStatus, updated.GradingStatus)
}
