package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unienroll/enroll-api/internal/models"
	appErrors "github.com/unienroll/enroll-api/pkg/errors"
	"github.com/unienroll/enroll-api/pkg/export"
	"github.com/unienroll/enroll-api/pkg/jobs"
	"github.com/unienroll/enroll-api/pkg/storage"
)

type exportStore interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type cleanupQueue interface {
	Enqueue(job jobs.Job) error
}

// ExportResult describes a generated export and its signed download token.
type ExportResult struct {
	File      string    `json:"file"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportService renders the admin pending queue to CSV files on disk and
// issues signed download tokens. Retention is enforced by a background
// cleanup job.
type ExportService struct {
	pending pendingLister
	store   exportStore
	signer  *storage.SignedURLSigner
	queue   cleanupQueue
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs ExportService. queue may be nil when cleanup
// is disabled.
func NewExportService(pending pendingLister, store exportStore, signer *storage.SignedURLSigner, queue cleanupQueue, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		pending: pending,
		store:   store,
		signer:  signer,
		queue:   queue,
		logger:  logger,
		now:     time.Now,
	}
}

// ExportPending writes the current pending queue to a CSV file and returns a
// signed token for downloading it.
func (s *ExportService) ExportPending(ctx context.Context) (*ExportResult, error) {
	requests, err := s.pending.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending requests")
	}

	payload, err := export.NewCSVExporter().Render(pendingDataset(requests))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("pending-requests-%s.csv", s.now().UTC().Format("20060102-150405"))
	if _, err := s.store.Save(filename, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export token")
	}

	if s.queue != nil {
		job := jobs.Job{ID: exportID, Type: "export-cleanup"}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue export cleanup", zap.Error(err))
		}
	}

	s.logger.Info("pending queue exported",
		zap.String("file", filename),
		zap.Int("rows", len(requests)),
	)
	return &ExportResult{File: filename, Token: token, ExpiresAt: expiresAt}, nil
}

// OpenExport validates the token and returns a read handle on the export
// file. The caller closes the file.
func (s *ExportService) OpenExport(token string) (*os.File, string, error) {
	_, filename, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download token")
	}
	file, err := s.store.Open(filename)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	return file, filename, nil
}

func pendingDataset(requests []models.EnrollmentRequestDetail) export.Dataset {
	headers := []string{"request_id", "student_id", "student_name", "course_id", "course_name", "action", "semester", "reason", "request_date"}
	rows := make([]map[string]string, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, map[string]string{
			"request_id":   r.ID,
			"student_id":   r.StudentID,
			"student_name": r.StudentName,
			"course_id":    r.CourseID,
			"course_name":  r.CourseName,
			"action":       string(r.Action),
			"semester":     r.Semester,
			"reason":       r.Reason,
			"request_date": r.RequestDate.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
