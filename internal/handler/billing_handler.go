package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unienroll/enroll-api/internal/service"
	appErrors "github.com/unienroll/enroll-api/pkg/errors"
	"github.com/unienroll/enroll-api/pkg/response"
)

// BillingHandler exposes invoice and payment endpoints.
type BillingHandler struct {
	billing *service.BillingService
}

// NewBillingHandler constructs BillingHandler.
func NewBillingHandler(billing *service.BillingService) *BillingHandler {
	return &BillingHandler{billing: billing}
}

// Invoice godoc
// @Summary Get a student's invoice for a semester (current by default)
// @Tags Billing
// @Produce json
// @Param id path string true "Student ID"
// @Param semester query string false "Semester code, e.g. JAN2026"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/invoice [get]
func (h *BillingHandler) Invoice(c *gin.Context) {
	invoice, err := h.billing.InvoiceForStudent(c.Request.Context(), c.Param("id"), c.Query("semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoice, nil)
}

// RecordPayment godoc
// @Summary Record a settled payment
// @Tags Billing
// @Accept json
// @Produce json
// @Param payload body service.RecordPaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /payments [post]
func (h *BillingHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.billing.RecordPayment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// Payments godoc
// @Summary List a student's payment history
// @Tags Billing
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/payments [get]
func (h *BillingHandler) Payments(c *gin.Context) {
	payments, err := h.billing.ListPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}
