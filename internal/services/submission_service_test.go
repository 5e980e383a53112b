package services

import (
	"context"
	"encoding/json"
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

const studentID = uint(7)

type submissionTestEnv struct {
	repo      *mockRepository
	publisher *events.MockEventPublisher
	service   SubmissionService
}

func newSubmissionTestEnv(t *testing.T) *submissionTestEnv {
	t.Helper()

	logger := testLogger()
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	validator := utils.NewValidator()
	questionCache := cache.NewQuestionCache(newMemoryCache())
	quizzes := NewQuizService(repo, questionCache, logger, validator)

	return &submissionTestEnv{
		repo:      repo,
		publisher: publisher,
		service:   NewSubmissionService(repo, quizzes, publisher, logger, validator),
	}
}

// autoQuizFixture sets up an active quiz with two auto-gradable questions.
func (env *submissionTestEnv) autoQuizFixture(t *testing.T) *models.Quiz {
	t.Helper()

	quiz := &models.Quiz{
		ID:           1,
		Title:        "Basics",
		Status:       models.QuizActive,
		PassingScore: 50,
		CreatedBy:    graderID,
	}
	questions := []*models.Question{
		choiceQuestion(t, quiz.ID, 0),
		{
			ID:       2,
			QuizID:   quiz.ID,
			Position: 1,
			Type:     models.FillBlank,
			Text:     "Capital of France",
			Content:  encodeContent(t, models.FillBlankContent{CorrectText: "Paris"}),
		},
	}

	env.repo.quiz.On("GetByID", mock.Anything, quiz.ID).Return(quiz, nil)
	env.repo.question.On("GetByQuiz", mock.Anything, quiz.ID).Return(questions, nil)
	env.repo.submission.On("CountByQuizAndStudent", mock.Anything, quiz.ID, studentID).Return(0, nil)

	return quiz
}

func TestSubmissionService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("grades an all-auto quiz immediately", func(t *testing.T) {
		env := newSubmissionTestEnv(t)
		env.autoQuizFixture(t)
		env.repo.submission.On("Create", mock.Anything, mock.Anything).Return(nil)

		submission, err := env.service.Submit(ctx, &SubmitQuizRequest{
			QuizID: 1,
			Answers: map[int]json.RawMessage{
				0: rawAnswer(t, models.ChoiceAnswer{Selected: 1}),
				1: rawAnswer(t, models.TextAnswer{Text: "  PARIS "}),
			},
			TimeSpentSeconds: 300,
		}, studentID)

		require.NoError(t, err)
		assert.Equal(t, models.GradingNotRequired, submission.GradingStatus)
		assert.Equal(t, 100, submission.Score)
		assert.True(t, submission.Passed)
		assert.False(t, submission.SubmittedAt.IsZero())
	})

	t.Run("treats unanswered questions as incorrect", func(t *testing.T) {
		env := newSubmissionTestEnv(t)
		env.autoQuizFixture(t)
		env.repo.submission.On("Create", mock.Anything, mock.Anything).Return(nil)

		submission, err := env.service.Submit(ctx, &SubmitQuizRequest{
			QuizID: 1,
			Answers: map[int]json.RawMessage{
				0: rawAnswer(t, models.ChoiceAnswer{Selected: 1}),
			},
		}, studentID)

		require.NoError(t, err)
		assert.Equal(t, 50, submission.Score)
		assert.True(t, submission.Passed)
	})

	t.Run("queues manual grading when the quiz has a long answer", func(t *testing.T) {
		env := newSubmissionTestEnv(t)

		quiz := &models.Quiz{ID: 3, Title: "Mixed", Status: models.QuizActive, PassingScore: 70, CreatedBy: graderID}
		questions := []*models.Question{
			choiceQuestion(t, quiz.ID, 0),
			essayQuestion(t, quiz.ID, 1, 5),
		}
		env.repo.quiz.On("GetByID", mock.Anything, quiz.ID).Return(quiz, nil)
		env.repo.question.On("GetByQuiz", mock.Anything, quiz.ID).Return(questions, nil)
		env.repo.submission.On("CountByQuizAndStudent", mock.Anything, quiz.ID, studentID).Return(0, nil)
		env.repo.submission.On("Create", mock.Anything, mock.Anything).Return(nil)

		submission, err := env.service.Submit(ctx, &SubmitQuizRequest{
			QuizID: quiz.ID,
			Answers: map[int]json.RawMessage{
				0: rawAnswer(t, models.ChoiceAnswer{Selected: 1}),
				1: rawAnswer(t, models.EssayAnswer{Text: "an essay"}),
			},
		}, studentID)

		require.NoError(t, err)
		assert.Equal(t, models.GradingNeeded, submission.GradingStatus)
		// Denominator includes the ungraded essay: 1 of 6 points.
		assert.Equal(t, 17, submission.Score)
		assert.False(t, submission.Passed)

		published := env.publisher.GetPublishedEvents()
		require.Len(t, published, 2)
		assert.Equal(t, events.EventSubmissionSubmitted, published[0].Type)
		assert.Equal(t, events.EventManualGradingRequired, published[1].Type)
	})

	t.Run("publishes a submitted event", func(t *testing.T) {
		env := newSubmissionTestEnv(t)
		env.autoQuizFixture(t)
		env.repo.submission.On("Create", mock.Anything, mock.Anything).Return(nil)

		_, err := env.service.Submit(ctx, &SubmitQuizRequest{
			QuizID: 1,
			Answers: map[int]json.RawMessage{
				0: rawAnswer(t, models.ChoiceAnswer{Selected: 0}),
			},
		}, studentID)
		require.NoError(t, err)

		published := env.publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventSubmissionSubmitted, published[0].Type)

		data, ok := published[0].Data.(events.SubmissionSubmittedEvent)
		require.True(t, ok)
		assert.Equal(t, studentID, data.StudentID)
		assert.False(t, data.GradingRequired)
	})

	t.Run("rejects a malformed answer payload", func(t *testing.T) {
		env := newSubmissionTestEnv(t)
		env.autoQuizFixture(t)

		_, err := env.service.Submit(ctx, &SubmitQuizRequest{
			QuizID: 1,
			Answers: map[int]json.RawMessage{
				0: rawAnswer(t, models.TextAnswer{Text: "not a choice"}),
			},
		}, studentID)

		var shapeMismatch *grading.ShapeMismatchError
		require.ErrorAs(t, err, &shapeMismatch)
		assert.Equal(t, 0, shapeMismatch.QuestionIndex)
		env.repo.submission.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects a second submission for the same quiz", func(t *testing.T) {
		env := newSubmissionTestEnv(t)
		quiz := &models.Quiz{ID: 1, Title: "Basics", Status: models.QuizActive, PassingScore: 50, CreatedBy: graderID}
		env.repo.quiz.On("GetByID", mock.Anything, quiz.ID).Return(quiz, nil)
		env.repo.submission.On("CountByQuizAndStudent", mock.Anything, quiz.ID, studentID).Return(1, nil)

		_, err := env.service.Submit(ctx, &SubmitQuizRequest{QuizID: 1}, studentID)

		require.ErrorIs(t, err, ErrAlreadySubmitted)
	})

	t.Run("rejects submissions to an inactive quiz", func(t *testing.T) {
		env := newSubmissionTestEnv(t)
		quiz := &models.Quiz{ID: 5, Title: "Draft quiz", Status: models.QuizDraft, PassingScore: 50, CreatedBy: graderID}
		env.repo.quiz.On("GetByID", mock.Anything, quiz.ID).Return(quiz, nil)

		_, err := env.service.Submit(ctx, &SubmitQuizRequest{QuizID: 5}, studentID)

		require.ErrorIs(t, err, ErrQuizNotActive)
	})

	t.Run("rejects an unknown quiz", func(t *testing.T) {
		env := newSubmissionTestEnv(t)
		env.repo.quiz.On("GetByID", mock.Anything, uint(404)).Return(nil, errNotFoundForTest())

		_, err := env.service.Submit(ctx, &SubmitQuizRequest{QuizID: 404}, studentID)

		require.ErrorIs(t, err, ErrQuizNotFound)
	})
}

func TestSubmissionService_GetByID(t *testing.T) {
	env := newSubmissionTestEnv(t)
	stored := &models.Submission{ID: 10, QuizID: 1, StudentID: studentID}
	env.repo.submission.On("GetByID", mock.Anything, uint(10)).Return(stored, nil)

	submission, err := env.service.GetByID(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, stored, submission)
}
