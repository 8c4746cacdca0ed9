package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/SdReum/ClassMood/internal/analysis"
	"github.com/SdReum/ClassMood/internal/domain/entity"
	"github.com/SdReum/ClassMood/internal/domain/port"
	"github.com/SdReum/ClassMood/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ProcessAnalysisUseCase struct {
	repo      port.JobRepository
	storage   port.MediaStorage
	analyzer  port.MediaAnalyzer
	publisher port.StatusPublisher
	dlq       port.DLQPublisher
	notifier  port.FailureNotifier
	logger    *zap.Logger
	tempDir   string
	maxRetry  int
}

type ProcessAnalysisConfig struct {
	TempDir    string
	MaxRetries int
}

func NewProcessAnalysisUseCase(
	repo port.JobRepository,
	storage port.MediaStorage,
	analyzer port.MediaAnalyzer,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg ProcessAnalysisConfig,
) *ProcessAnalysisUseCase {
	return &ProcessAnalysisUseCase{
		repo:      repo,
		storage:   storage,
		analyzer:  analyzer,
		publisher: publisher,
		dlq:       dlq,
		notifier:  notifier,
		logger:    logger,
		tempDir:   cfg.TempDir,
		maxRetry:  cfg.MaxRetries,
	}
}

func (uc *ProcessAnalysisUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ProcessAnalysisUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.MediaAnalysisMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.media_key", msg.MediaKey),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.String("media_key", msg.MediaKey))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewJob(msg.UserID, msg.MediaKey, msg.FileSize, uc.maxRetry)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
		return nil
	}

	job.MarkProcessing()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.analysisPipeline(ctx, job, msg, rawMsg, log); err != nil {
		return err
	}

	metrics.AnalysesProcessedTotal.WithLabelValues("completed").Inc()
	metrics.AnalysisStageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

func (uc *ProcessAnalysisUseCase) analysisPipeline(
	ctx context.Context,
	job *entity.Job,
	msg entity.MediaAnalysisMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.tempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download media from MinIO
	dlStart := time.Now()
	ctx2, spanDl := tracer.Start(ctx, "download_media")
	mediaPath := filepath.Join(workDir, "input"+filepath.Ext(msg.MediaKey))
	if err := uc.storage.DownloadMedia(ctx2, msg.MediaKey, mediaPath); err != nil {
		spanDl.End()
		log.Error("failed to download media", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "download_media: "+err.Error(), log)
	}
	spanDl.End()
	metrics.AnalysisStageDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	// Run the sampling engine
	anStart := time.Now()
	ctx3, spanAn := tracer.Start(ctx, "analyze_media")
	result, err := uc.analyzer.Analyze(ctx3, mediaPath)
	if err != nil {
		spanAn.End()
		log.Error("media analysis failed", zap.Error(err))
		// Unreadable or vanished media will not heal on retry.
		if errors.Is(err, analysis.ErrUnreadableMedia) || errors.Is(err, analysis.ErrNotFound) {
			return uc.handlePermanentFailure(ctx, job, msg, rawMsg, "analyze_media: "+err.Error())
		}
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "analyze_media: "+err.Error(), log)
	}
	spanAn.End()
	metrics.AnalysisStageDuration.WithLabelValues("analyze").Observe(time.Since(anStart).Seconds())
	metrics.PointsSampledTotal.Add(float64(len(result.Series)))

	// Upload the series JSON to MinIO
	upStart := time.Now()
	ctx4, spanUp := tracer.Start(ctx, "upload_result")
	payload, err := json.Marshal(result)
	if err != nil {
		spanUp.End()
		return fmt.Errorf("marshal result: %w", err)
	}
	seriesKey := fmt.Sprintf("%s/series_%s.json", msg.UserID, job.ID.String())
	if err := uc.storage.UploadResult(ctx4, seriesKey, bytes.NewReader(payload), int64(len(payload))); err != nil {
		spanUp.End()
		log.Error("result upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "upload_result: "+err.Error(), log)
	}
	spanUp.End()
	metrics.AnalysisStageDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())

	series := result.Series
	job.MarkCompleted(seriesKey, len(series), series[len(series)-1].T)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	uc.publishStatus(ctx, job, log)

	log.Info("job completed successfully",
		zap.Int("point_count", len(series)),
		zap.Float64("t_max", series[len(series)-1].T),
		zap.String("series_key", seriesKey),
	)

	return nil
}

func (uc *ProcessAnalysisUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.MediaAnalysisMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *ProcessAnalysisUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.MediaAnalysisMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.AnalysesProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job.ID.String(), msg.MediaKey, errMsg)
	}

	return nil
}

func (uc *ProcessAnalysisUseCase) publishStatus(ctx context.Context, job *entity.Job, log *zap.Logger) {
	statusMsg := entity.AnalysisStatusMessage{
		JobID:        job.ID,
		UserID:       job.UserID,
		Status:       job.Status,
		MediaKey:     job.MediaKey,
		SeriesKey:    job.SeriesKey,
		PointCount:   job.PointCount,
		Duration:     job.MediaDuration,
		ErrorMessage: job.ErrorMessage,
		Attempt:      job.Attempt,
		MaxAttempts:  job.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
