package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/SdReum/ClassMood/internal/analysis"
	"github.com/SdReum/ClassMood/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type memoryRepo struct {
	jobs map[uuid.UUID]*entity.Job
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{jobs: make(map[uuid.UUID]*entity.Job)}
}

func (r *memoryRepo) Create(_ context.Context, job *entity.Job) error {
	r.jobs[job.ID] = job
	return nil
}

func (r *memoryRepo) Update(_ context.Context, job *entity.Job) error {
	r.jobs[job.ID] = job
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return job, nil
}

type fakeStorage struct {
	downloadErr  error
	uploadErr    error
	uploadedKey  string
	uploadedBody []byte
}

func (s *fakeStorage) DownloadMedia(_ context.Context, _ string, destPath string) error {
	if s.downloadErr != nil {
		return s.downloadErr
	}
	return os.WriteFile(destPath, []byte("media"), 0644)
}

func (s *fakeStorage) UploadResult(_ context.Context, objectKey string, reader io.Reader, _ int64) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploadedKey = objectKey
	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.uploadedBody = body
	return nil
}

type fakeAnalyzer struct {
	result *analysis.Result
	err    error
	calls  int
}

func (a *fakeAnalyzer) Analyze(_ context.Context, _ string) (*analysis.Result, error) {
	a.calls++
	return a.result, a.err
}

type capturePublisher struct {
	statuses [][]byte
}

func (p *capturePublisher) PublishStatus(_ context.Context, msg []byte) error {
	p.statuses = append(p.statuses, msg)
	return nil
}

type captureDLQ struct {
	reasons []string
}

func (d *captureDLQ) PublishToDLQ(_ context.Context, _ []byte, reason string) error {
	d.reasons = append(d.reasons, reason)
	return nil
}

type captureNotifier struct {
	emails []string
}

func (n *captureNotifier) NotifyFailure(_ context.Context, userEmail, _, _, _ string) error {
	n.emails = append(n.emails, userEmail)
	return nil
}

type fixture struct {
	uc       *ProcessAnalysisUseCase
	repo     *memoryRepo
	storage  *fakeStorage
	analyzer *fakeAnalyzer
	pub      *capturePublisher
	dlq      *captureDLQ
	notifier *captureNotifier
}

func newFixture(t *testing.T, analyzer *fakeAnalyzer, storage *fakeStorage) *fixture {
	f := &fixture{
		repo:     newMemoryRepo(),
		storage:  storage,
		analyzer: analyzer,
		pub:      &capturePublisher{},
		dlq:      &captureDLQ{},
		notifier: &captureNotifier{},
	}
	f.uc = NewProcessAnalysisUseCase(
		f.repo, f.storage, f.analyzer,
		f.pub, f.dlq, f.notifier,
		zaptest.NewLogger(t),
		ProcessAnalysisConfig{TempDir: t.TempDir(), MaxRetries: 3},
	)
	return f
}

func analysisMessage(t *testing.T, jobID uuid.UUID) []byte {
	t.Helper()
	msg := entity.MediaAnalysisMessage{
		JobID:     jobID,
		UserID:    "teacher-1",
		MediaKey:  "teacher-1/lecture.mp4",
		FileSize:  1024,
		UserEmail: "teacher@classmood.local",
	}
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return body
}

func TestExecuteHappyPath(t *testing.T) {
	series := analysis.Series{{T: 0, Value: 0.4}, {T: 1, Value: 0.6}}
	f := newFixture(t,
		&fakeAnalyzer{result: &analysis.Result{Series: series}},
		&fakeStorage{},
	)

	jobID := uuid.New()
	err := f.uc.Execute(context.Background(), analysisMessage(t, jobID))
	require.NoError(t, err)

	job := f.repo.jobs[jobID]
	require.NotNil(t, job)
	assert.Equal(t, entity.JobStatusCompleted, job.Status)
	assert.Equal(t, 2, job.PointCount)
	assert.Equal(t, 1.0, job.MediaDuration)

	assert.Equal(t, fmt.Sprintf("teacher-1/series_%s.json", jobID), f.storage.uploadedKey)
	assert.JSONEq(t, `{"series":[{"t":0,"value":0.4},{"t":1,"value":0.6}]}`, string(f.storage.uploadedBody))

	require.Len(t, f.pub.statuses, 1)
	var status entity.AnalysisStatusMessage
	require.NoError(t, json.Unmarshal(f.pub.statuses[0], &status))
	assert.Equal(t, entity.JobStatusCompleted, status.Status)
	assert.Empty(t, f.dlq.reasons)
}

func TestExecuteUnreadableMediaIsPermanent(t *testing.T) {
	f := newFixture(t,
		&fakeAnalyzer{err: fmt.Errorf("%w: input.bin", analysis.ErrUnreadableMedia)},
		&fakeStorage{},
	)

	jobID := uuid.New()
	// Returning nil acks the message: retrying unreadable media cannot help.
	err := f.uc.Execute(context.Background(), analysisMessage(t, jobID))
	require.NoError(t, err)

	assert.Equal(t, 1, f.analyzer.calls)
	assert.Equal(t, entity.JobStatusFailed, f.repo.jobs[jobID].Status)
	require.Len(t, f.dlq.reasons, 1)
	assert.Contains(t, f.dlq.reasons[0], "analyze_media")
	assert.Equal(t, []string{"teacher@classmood.local"}, f.notifier.emails)
}

func TestExecuteDownloadFailureIsRetryable(t *testing.T) {
	f := newFixture(t,
		&fakeAnalyzer{result: &analysis.Result{Series: analysis.Series{{T: 0, Value: 0}}}},
		&fakeStorage{downloadErr: errors.New("connection reset")},
	)

	jobID := uuid.New()
	err := f.uc.Execute(context.Background(), analysisMessage(t, jobID))
	require.Error(t, err)

	assert.Zero(t, f.analyzer.calls)
	assert.Equal(t, entity.JobStatusFailed, f.repo.jobs[jobID].Status)
	assert.Empty(t, f.dlq.reasons, "retryable failures stay off the DLQ")
}

func TestExecuteExhaustedRetriesGoToDLQ(t *testing.T) {
	f := newFixture(t,
		&fakeAnalyzer{result: &analysis.Result{Series: analysis.Series{{T: 0, Value: 0}}}},
		&fakeStorage{},
	)

	jobID := uuid.New()
	job := entity.NewJob("teacher-1", "teacher-1/lecture.mp4", 1024, 3)
	job.ID = jobID
	job.Attempt = 3
	f.repo.jobs[jobID] = job

	err := f.uc.Execute(context.Background(), analysisMessage(t, jobID))
	require.NoError(t, err)

	assert.Equal(t, entity.JobStatusFailed, f.repo.jobs[jobID].Status)
	require.Len(t, f.dlq.reasons, 1)
	assert.Contains(t, f.dlq.reasons[0], "max retries exceeded")
}

func TestExecuteMalformedMessageGoesToDLQ(t *testing.T) {
	f := newFixture(t, &fakeAnalyzer{}, &fakeStorage{})

	err := f.uc.Execute(context.Background(), []byte("{not json"))
	require.NoError(t, err)

	require.Len(t, f.dlq.reasons, 1)
	assert.Contains(t, f.dlq.reasons[0], "unmarshal_error")
	assert.Zero(t, f.analyzer.calls)
}
