package handlers

import (
	"errors"
	"net/http"

	"github.com/eduquiz/grading-service/internal/grading"
	"github.com/eduquiz/grading-service/internal/services"
	"github.com/gin-gonic/gin"
	validator "github.com/go-playground/validator/v10"
)

// handleServiceError maps service and grading errors onto HTTP responses.
// Every handler funnels its error path through here so the same failure
// always produces the same status code.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make(map[string]string, len(validationErrors))
		for _, fieldError := range validationErrors {
			details[fieldError.Field()] = fieldError.Tag()
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: details,
		})
		return
	}

	var shapeMismatch *grading.ShapeMismatchError
	if errors.As(err, &shapeMismatch) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Answer payload does not match the question type",
			Details: map[string]interface{}{
				"question_index": shapeMismatch.QuestionIndex,
				"question_type":  shapeMismatch.QuestionType,
			},
			Code: "shape_mismatch",
		})
		return
	}

	var outOfRange *grading.OutOfRangeError
	if errors.As(err, &outOfRange) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Score is outside the allowed range",
			Details: map[string]interface{}{
				"question_index": outOfRange.QuestionIndex,
				"score":          outOfRange.Score,
				"max_score":      outOfRange.MaxScore,
			},
			Code: "out_of_range",
		})
		return
	}

	var incomplete *grading.IncompleteQuestionSetError
	if errors.As(err, &incomplete) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Submission references a question outside the quiz's question set",
			Details: map[string]interface{}{
				"question_index": incomplete.QuestionIndex,
				"question_count": incomplete.QuestionCount,
			},
			Code: "incomplete_question_set",
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, grading.ErrMissingFeedback):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Feedback is required when grading",
			Code:    "missing_feedback",
		})
	case errors.Is(err, grading.ErrGradingNotAllowed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Only long-answer questions accept manual grades",
			Code:    "grading_not_allowed",
		})
	case errors.Is(err, grading.ErrQuestionIndexInvalid):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "No question exists at this index",
			Code:    "question_index_invalid",
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrQuizNotActive):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Quiz is not accepting submissions",
		})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Unauthorized access",
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden - insufficient permissions",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
