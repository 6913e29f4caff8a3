// Package handler exposes the résumé upload surface: one multipart file (or
// several, for a batch) becomes one process tracker and one durable job.
package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/andreypavlenko/talentpipe/internal/config"
	httpPlatform "github.com/andreypavlenko/talentpipe/internal/platform/http"
	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	jobqueuemodel "github.com/andreypavlenko/talentpipe/modules/jobqueue/model"
	jobqueueports "github.com/andreypavlenko/talentpipe/modules/jobqueue/ports"
	"github.com/andreypavlenko/talentpipe/modules/pipeline/service"
	trackermodel "github.com/andreypavlenko/talentpipe/modules/processtracker/model"
	trackerports "github.com/andreypavlenko/talentpipe/modules/processtracker/ports"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadHandler accepts résumé files and turns each into a tracker + job
// pair. When the scheduler is disabled it drives the pipeline inline so the
// upload request itself carries the work to completion.
type UploadHandler struct {
	jobs     jobqueueports.JobQueueService
	tracker  trackerports.TrackerService
	pipeline *service.Pipeline
	cfg      config.Config
	logger   *logger.Logger
}

func NewUploadHandler(
	jobs jobqueueports.JobQueueService,
	tracker trackerports.TrackerService,
	pipeline *service.Pipeline,
	cfg config.Config,
	log *logger.Logger,
) *UploadHandler {
	return &UploadHandler{jobs: jobs, tracker: tracker, pipeline: pipeline, cfg: cfg, logger: log}
}

func (h *UploadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/upload", h.UploadSingle)
	rg.POST("/resumes/upload-batch", h.UploadBatch)
}

// UploadSingle accepts one file under the "file" form field.
func (h *UploadHandler) UploadSingle(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "a file is required")
		return
	}
	tracker, err := h.ingestOne(c, fileHeader)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	httpPlatform.RespondWithData(c, http.StatusAccepted, tracker)
}

// UploadBatch accepts multiple files under the "files" form field, each
// becoming its own tracker and job; a failure on one file does not block
// the rest.
func (h *UploadHandler) UploadBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "multipart form with a \"files\" field is required")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "at least one file is required")
		return
	}

	trackers := make([]*trackermodel.Tracker, 0, len(files))
	for _, fh := range files {
		t, err := h.ingestOne(c, fh)
		if err != nil {
			h.logger.Warn("skipping batch upload entry", zap.String("filename", fh.Filename), zap.Error(err))
			continue
		}
		trackers = append(trackers, t)
	}
	httpPlatform.RespondWithData(c, http.StatusAccepted, gin.H{"trackers": trackers})
}

func (h *UploadHandler) ingestOne(c *gin.Context, fh *multipart.FileHeader) (*trackermodel.Tracker, error) {
	if fh.Size > h.cfg.Upload.MaxBytes {
		return nil, fmt.Errorf("file %q exceeds the maximum upload size", fh.Filename)
	}
	if !allowedExtension(fh.Filename, h.cfg.Upload.AllowedExtensions) {
		return nil, fmt.Errorf("file %q has an unsupported extension", fh.Filename)
	}
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", fh.Filename, err)
	}
	defer file.Close()

	content := make([]byte, fh.Size)
	if _, err := file.Read(content); err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", fh.Filename, err)
	}

	ctx := c.Request.Context()
	tracker, err := h.tracker.Create(ctx, fh.Filename, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to create process tracker: %w", err)
	}

	correlationID := uuid.NewString()
	job, err := h.jobs.Enqueue(ctx, jobqueueports.EnqueueInput{
		Kind:          h.pipeline.Kind(),
		Payload:       content,
		Metadata:      map[string]string{"filename": fh.Filename, "trackerId": tracker.ID},
		Priority:      0,
		CorrelationID: correlationID,
		MaxRetries:    h.cfg.Retry.MaxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue job for %q: %w", fh.Filename, err)
	}

	if !h.cfg.Scheduler.Enabled {
		h.processInline(ctx, job)
	}
	return h.tracker.GetByID(ctx, tracker.ID)
}

// processInline runs the pipeline synchronously for deployments that run
// without the background scheduler; failures are logged, not surfaced,
// since the tracker row is the caller's durable signal either way.
func (h *UploadHandler) processInline(ctx context.Context, job *jobqueuemodel.Job) {
	if err := h.pipeline.Process(ctx, job); err != nil {
		h.logger.Error("inline pipeline processing failed", zap.String("jobId", job.ID), zap.Error(err))
	}
}

func allowedExtension(filename string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		if strings.ToLower(a) == ext {
			return true
		}
	}
	return ext == ".zip"
}
