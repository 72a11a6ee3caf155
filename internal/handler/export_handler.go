package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unienroll/enroll-api/internal/service"
	"github.com/unienroll/enroll-api/pkg/response"
)

// ExportHandler exposes the pending-queue CSV export endpoints.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ExportPending godoc
// @Summary Export the pending queue as CSV
// @Tags Adjudication
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /enrollment-requests/pending/export [post]
func (h *ExportHandler) ExportPending(c *gin.Context) {
	result, err := h.exports.ExportPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download streams a previously generated export. The signed token is the
// only credential; the route sits outside the JWT group.
func (h *ExportHandler) Download(c *gin.Context) {
	file, filename, err := h.exports.OpenExport(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
