package handlers

import (
	"net/http"

	"github.com/eduquiz/grading-service/internal/services"
	"github.com/eduquiz/grading-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	quizHandler       *QuizHandler
	submissionHandler *SubmissionHandler
	gradingHandler    *GradingHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quizHandler:       NewQuizHandler(serviceManager.Quiz(), validator, logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), validator, logger),
		gradingHandler:    NewGradingHandler(serviceManager.Grading(), serviceManager.Export(), validator, logger),
	}
}

// SetupRoutes sets up all API routes. The auth middleware guards the API
// group; the health endpoint stays open for probes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "grading-service",
		})
	})

	v1 := router.Group("/api/v1")
	if auth != nil {
		v1.Use(auth)
	}
	{
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.PUT("/:id", hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)

			quizzes.GET("/:id/submissions", hm.submissionHandler.ListSubmissions)
		}

		submissions := v1.Group("/submissions")
		{
			submissions.POST("", hm.submissionHandler.SubmitQuiz)
			submissions.GET("/mine", hm.submissionHandler.GetStudentSubmissions)
			submissions.GET("/:id", hm.submissionHandler.GetSubmission)
		}

		grading := v1.Group("/grading")
		{
			grading.POST("/submissions/:submission_id", hm.gradingHandler.SaveGrade)
			grading.POST("/submissions/:submission_id/batch", hm.gradingHandler.SaveGradeBatch)
			grading.POST("/submissions/:submission_id/preview", hm.gradingHandler.PreviewGrade)
			grading.POST("/submissions/:submission_id/feedback", hm.gradingHandler.AttachGeneralFeedback)
			grading.POST("/submissions/:submission_id/recompute", hm.gradingHandler.RecomputeSubmission)

			grading.GET("/quizzes/:quiz_id/overview", hm.gradingHandler.GetGradingOverview)
			grading.GET("/quizzes/:quiz_id/export", hm.gradingHandler.ExportResults)
		}
	}
}
