package handlers

import (
	"net/http"

	"github.com/eduquiz/grading-service/internal/models"
	"github.com/eduquiz/grading-service/internal/repositories"
	"github.com/eduquiz/grading-service/internal/services"
	"github.com/eduquiz/grading-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
	validator         *utils.Validator
}

func NewSubmissionHandler(
	submissionService services.SubmissionService,
	validator *utils.Validator,
	logger utils.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
		validator:         validator,
	}
}

// SubmitQuiz submits a student's answers for grading
// @Summary Submit quiz
// @Description Freezes the student's answers and grades every auto-gradable question
// @Tags submissions
// @Accept json
// @Produce json
// @Param submission body services.SubmitQuizRequest true "Submission data"
// @Success 201 {object} models.Submission
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /submissions [post]
func (h *SubmissionHandler) SubmitQuiz(c *gin.Context) {
	h.LogRequest(c, "Submitting quiz")

	var req services.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// GetSubmission returns one submission
// @Summary Get submission
// @Tags submissions
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} models.Submission
// @Failure 404 {object} ErrorResponse
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	submission, err := h.submissionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// ListSubmissions returns a quiz's submissions
// @Summary List submissions for a quiz
// @Tags submissions
// @Produce json
// @Param id path uint true "Quiz ID"
// @Param grading_status query string false "Grading status filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ListResponse
// @Router /quizzes/{id}/submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	limit, offset := parsePagination(c)
	filters := repositories.SubmissionFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if status := c.Query("grading_status"); status != "" {
		gradingStatus := models.GradingStatus(status)
		filters.GradingStatus = &gradingStatus
	}

	submissions, total, err := h.submissionService.List(c.Request.Context(), quizID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: submissions, Total: total})
}

// GetStudentSubmissions returns the authenticated student's submissions
// @Summary List own submissions
// @Tags submissions
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ListResponse
// @Router /submissions/mine [get]
func (h *SubmissionHandler) GetStudentSubmissions(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	limit, offset := parsePagination(c)
	filters := repositories.SubmissionFilters{
		Limit:  limit,
		Offset: offset,
	}

	submissions, total, err := h.submissionService.GetByStudent(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: submissions, Total: total})
}
