package handlers

import (
	"net/http"

	"github.com/eduquiz/grading-service/internal/services"
	"github.com/eduquiz/grading-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type GradingHandler struct {
	BaseHandler
	gradingService services.GradingService
	exportService  services.ExportService
	validator      *utils.Validator
}

func NewGradingHandler(
	gradingService services.GradingService,
	exportService services.ExportService,
	validator *utils.Validator,
	logger utils.Logger,
) *GradingHandler {
	return &GradingHandler{
		BaseHandler:    NewBaseHandler(logger),
		gradingService: gradingService,
		exportService:  exportService,
		validator:      validator,
	}
}

// SaveGrade records a manual grade for one long-answer question
// @Summary Save grade
// @Description Records score and feedback for a long-answer question and recomputes the submission result
// @Tags grading
// @Accept json
// @Produce json
// @Param submission_id path uint true "Submission ID"
// @Param grade body services.SaveGradeRequest true "Grading data"
// @Success 200 {object} models.Submission
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /grading/submissions/{submission_id} [post]
func (h *GradingHandler) SaveGrade(c *gin.Context) {
	submissionID := h.parseIDParam(c, "submission_id")
	if submissionID == 0 {
		return
	}

	h.LogRequest(c, "Saving grade", "submission_id", submissionID)

	var req services.SaveGradeRequest
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

	submission, err := h.gradingService.SaveGrade(c.Request.Context(), submissionID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// SaveGradeBatch records several grades on one submission atomically
// @Summary Save grade batch
// @Tags grading
// @Accept json
// @Produce json
// @Param submission_id path uint true "Submission ID"
// @Param grades body services.BatchGradeRequest true "Batch grading data"
// @Success 200 {object} models.Submission
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /grading/submissions/{submission_id}/batch [post]
func (h *GradingHandler) SaveGradeBatch(c *gin.Context) {
	submissionID := h.parseIDParam(c, "submission_id")
	if submissionID == 0 {
		return
	}

	h.LogRequest(c, "Saving grade batch", "submission_id", submissionID)

	var req services.BatchGradeRequest
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

	submission, err := h.gradingService.SaveGradeBatch(c.Request.Context(), submissionID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// PreviewGrade evaluates a hypothetical grade without saving it
// @Summary Preview grade
// @Tags grading
// @Accept json
// @Produce json
// @Param submission_id path uint true "Submission ID"
// @Param grade body services.SaveGradeRequest true "Grading data"
// @Success 200 {object} grading.Result
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /grading/submissions/{submission_id}/preview [post]
func (h *GradingHandler) PreviewGrade(c *gin.Context) {
	submissionID := h.parseIDParam(c, "submission_id")
	if submissionID == 0 {
		return
	}

	var req services.SaveGradeRequest
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

	result, err := h.gradingService.Preview(c.Request.Context(), submissionID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AttachGeneralFeedback sets submission-level commentary
// @Summary Attach general feedback
// @Tags grading
// @Accept json
// @Produce json
// @Param submission_id path uint true "Submission ID"
// @Param feedback body services.GeneralFeedbackRequest true "Feedback text"
// @Success 200 {object} models.Submission
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /grading/submissions/{submission_id}/feedback [post]
func (h *GradingHandler) AttachGeneralFeedback(c *gin.Context) {
	submissionID := h.parseIDParam(c, "submission_id")
	if submissionID == 0 {
		return
	}

	h.LogRequest(c, "Attaching general feedback", "submission_id", submissionID)

	var req services.GeneralFeedbackRequest
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

	submission, err := h.gradingService.AttachGeneralFeedback(c.Request.Context(), submissionID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// RecomputeSubmission re-aggregates a submission from stored data
// @Summary Recompute submission
// @Tags grading
// @Produce json
// @Param submission_id path uint true "Submission ID"
// @Success 200 {object} models.Submission
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /grading/submissions/{submission_id}/recompute [post]
func (h *GradingHandler) RecomputeSubmission(c *gin.Context) {
	submissionID := h.parseIDParam(c, "submission_id")
	if submissionID == 0 {
		return
	}

	h.LogRequest(c, "Recomputing submission", "submission_id", submissionID)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	submission, err := h.gradingService.Recompute(c.Request.Context(), submissionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// GetGradingOverview summarizes a quiz's grading workload
// @Summary Get grading overview
// @Tags grading
// @Produce json
// @Param quiz_id path uint true "Quiz ID"
// @Success 200 {object} services.GradingOverview
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /grading/quizzes/{quiz_id}/overview [get]
func (h *GradingHandler) GetGradingOverview(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	overview, err := h.gradingService.Overview(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// ExportResults downloads a quiz's results as a spreadsheet
// @Summary Export results
// @Tags grading
// @Produce application/octet-stream
// @Param quiz_id path uint true "Quiz ID"
// @Param format query string false "xlsx or csv" default(xlsx)
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /grading/quizzes/{quiz_id}/export [get]
func (h *GradingHandler) ExportResults(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	h.LogRequest(c, "Exporting quiz results", "quiz_id", quizID)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	switch format {
	case "xlsx":
		data, err := h.exportService.ExportResultsToExcel(c.Request.Context(), quizID, userID)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="results.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	case "csv":
		data, err := h.exportService.ExportResultsToCSV(c.Request.Context(), quizID, userID)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="results.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: format,
		})
	}
}
