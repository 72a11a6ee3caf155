package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unienroll/enroll-api/internal/service"
	appErrors "github.com/unienroll/enroll-api/pkg/errors"
	"github.com/unienroll/enroll-api/pkg/response"
)

// RequestHandler exposes the student-facing add/drop request endpoints.
type RequestHandler struct {
	intake *service.IntakeService
}

// NewRequestHandler constructs RequestHandler.
func NewRequestHandler(intake *service.IntakeService) *RequestHandler {
	return &RequestHandler{intake: intake}
}

// Submit godoc
// @Summary Submit an add/drop request for the authenticated student
// @Tags Enrollment Requests
// @Accept json
// @Produce json
// @Param payload body service.SubmitEnrollmentRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /enrollment-requests [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SubmitEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.intake.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// History godoc
// @Summary List a student's add/drop request history
// @Tags Enrollment Requests
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/enrollment-requests [get]
func (h *RequestHandler) History(c *gin.Context) {
	requests, err := h.intake.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}
