package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unienroll/enroll-api/internal/models"
	"github.com/unienroll/enroll-api/pkg/jobs"
	"github.com/unienroll/enroll-api/pkg/storage"
)

type fakeExportStore struct {
	dir string
}

func (f *fakeExportStore) Save(filename string, data []byte) (string, error) {
	return filename, os.WriteFile(filepath.Join(f.dir, filename), data, 0o644)
}

func (f *fakeExportStore) Open(filename string) (*os.File, error) {
	return os.Open(filepath.Join(f.dir, filename))
}

type fakeCleanupQueue struct {
	enqueued []jobs.Job
}

func (f *fakeCleanupQueue) Enqueue(job jobs.Job) error {
	f.enqueued = append(f.enqueued, job)
	return nil
}

func TestExportServiceExportPending(t *testing.T) {
	dir := t.TempDir()
	pending := &fakePendingLister{pending: []models.EnrollmentRequestDetail{
		{
			EnrollmentRequest: models.EnrollmentRequest{
				ID: "req-1", StudentID: "s1", CourseID: "CS101",
				Action: models.RequestActionAdd, Reason: "late add",
				Semester: "JAN2026", RequestDate: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
			},
			CourseName:  "Algorithms",
			StudentName: "Ana Gomez",
		},
	}}
	queue := &fakeCleanupQueue{}
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewExportService(pending, &fakeExportStore{dir: dir}, signer, queue, zap.NewNop())

	result, err := svc.ExportPending(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.True(t, strings.HasPrefix(result.File, "pending-requests-"))
	assert.Len(t, queue.enqueued, 1)

	file, filename, err := svc.OpenExport(result.Token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, result.File, filename)

	raw, err := os.ReadFile(filepath.Join(dir, result.File))
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "request_id")
	assert.Contains(t, content, "Algorithms")
	assert.Contains(t, content, "Ana Gomez")
}

func TestExportServiceOpenExportBadToken(t *testing.T) {
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewExportService(&fakePendingLister{}, &fakeExportStore{dir: t.TempDir()}, signer, nil, zap.NewNop())

	_, _, err := svc.OpenExport("not-a-token")
	require.Error(t, err)
}
