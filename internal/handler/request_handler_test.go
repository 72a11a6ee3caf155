package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unienroll/enroll-api/internal/middleware"
	"github.com/unienroll/enroll-api/internal/models"
)

func TestRequestHandlerSubmitInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRequestHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/enrollment-requests", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "s1", Role: models.RoleStudent})

	handler.Submit(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandlerSubmitWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRequestHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/enrollment-requests", bytes.NewReader([]byte(`{"course_id":"CS101","action":"Add","reason":"x"}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Submit(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdjudicationHandlerApproveWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAdjudicationHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/enrollment-requests/req-1/approve", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	handler.Approve(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBillingHandlerRecordPaymentInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBillingHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/payments", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.RecordPayment(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
