package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unienroll/enroll-api/internal/service"
	appErrors "github.com/unienroll/enroll-api/pkg/errors"
	"github.com/unienroll/enroll-api/pkg/response"
)

// AdjudicationHandler exposes the admin decision endpoints.
type AdjudicationHandler struct {
	adjudication *service.AdjudicationService
}

// NewAdjudicationHandler constructs AdjudicationHandler.
func NewAdjudicationHandler(adjudication *service.AdjudicationService) *AdjudicationHandler {
	return &AdjudicationHandler{adjudication: adjudication}
}

// ListPending godoc
// @Summary List pending add/drop requests
// @Tags Adjudication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /enrollment-requests/pending [get]
func (h *AdjudicationHandler) ListPending(c *gin.Context) {
	requests, err := h.adjudication.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Approve godoc
// @Summary Approve a pending request
// @Tags Adjudication
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /enrollment-requests/{id}/approve [post]
func (h *AdjudicationHandler) Approve(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.adjudication.Approve(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "Approved"}, nil)
}

// Reject godoc
// @Summary Reject a pending request
// @Tags Adjudication
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /enrollment-requests/{id}/reject [post]
func (h *AdjudicationHandler) Reject(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.adjudication.Reject(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "Rejected"}, nil)
}
