package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unienroll/enroll-api/internal/service"
	"github.com/unienroll/enroll-api/pkg/response"
)

// EvaluationHandler exposes course-evaluation endpoints.
type EvaluationHandler struct {
	evaluations *service.EvaluationService
}

// NewEvaluationHandler constructs EvaluationHandler.
func NewEvaluationHandler(evaluations *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// ListForStudent godoc
// @Summary List a student's course evaluation statuses
// @Tags Evaluations
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/evaluations [get]
func (h *EvaluationHandler) ListForStudent(c *gin.Context) {
	evaluations, err := h.evaluations.ListForStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluations, nil)
}

// Complete godoc
// @Summary Mark an evaluation as completed
// @Tags Evaluations
// @Produce json
// @Param id path string true "Evaluation ID"
// @Success 200 {object} response.Envelope
// @Router /evaluations/{id}/complete [post]
func (h *EvaluationHandler) Complete(c *gin.Context) {
	status, err := h.evaluations.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}
