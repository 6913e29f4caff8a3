// Package service implements the résumé processing pipeline as a
// scheduler.Processor: it turns one claimed job's file bytes into one
// persisted candidate with embeddings, advancing the linked process
// tracker at each stage boundary and leaving the job terminal.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/andreypavlenko/talentpipe/internal/config"
	"github.com/andreypavlenko/talentpipe/internal/platform/docparse"
	"github.com/andreypavlenko/talentpipe/internal/platform/llmclient"
	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	candidatemodel "github.com/andreypavlenko/talentpipe/modules/candidates/model"
	candidateports "github.com/andreypavlenko/talentpipe/modules/candidates/ports"
	jobqueuemodel "github.com/andreypavlenko/talentpipe/modules/jobqueue/model"
	jobqueueports "github.com/andreypavlenko/talentpipe/modules/jobqueue/ports"
	"github.com/andreypavlenko/talentpipe/modules/pipeline/model"
	trackermodel "github.com/andreypavlenko/talentpipe/modules/processtracker/model"
	trackerports "github.com/andreypavlenko/talentpipe/modules/processtracker/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ZipEntryKind is the job kind a .zip upload's fanned-out member files are
// re-enqueued under; it shares every processing stage with the top-level
// kind, just without further zip fan-out (entries are never themselves
// re-expanded).
const ZipEntryKind = "resume.ingest.zip-entry"

// Pipeline processes one job kind end to end. Register one instance per
// kind (the top-level upload kind and ZipEntryKind) against the scheduler.
type Pipeline struct {
	kind       string
	jobs       jobqueueports.JobQueueService
	tracker    trackerports.TrackerService
	candidates candidateports.CandidateService
	extractor  docparse.Extractor
	chat       llmclient.ChatClient
	embedder   llmclient.EmbeddingClient
	prompts    *llmclient.PromptLibrary
	cfg        config.Config
	logger     *logger.Logger
	allowZip   bool
}

func NewPipeline(
	kind string,
	jobs jobqueueports.JobQueueService,
	tracker trackerports.TrackerService,
	candidates candidateports.CandidateService,
	extractor docparse.Extractor,
	chat llmclient.ChatClient,
	embedder llmclient.EmbeddingClient,
	prompts *llmclient.PromptLibrary,
	cfg config.Config,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		kind:       kind,
		jobs:       jobs,
		tracker:    tracker,
		candidates: candidates,
		extractor:  extractor,
		chat:       chat,
		embedder:   embedder,
		prompts:    prompts,
		cfg:        cfg,
		logger:     log,
		allowZip:   kind != ZipEntryKind,
	}
}

func (p *Pipeline) Kind() string { return p.kind }

func (p *Pipeline) Process(ctx context.Context, job *jobqueuemodel.Job) error {
	// Stage 1: read metadata.
	filename := job.Metadata["filename"]
	trackerID := job.Metadata["trackerId"]
	if filename == "" || trackerID == "" {
		return p.fail(ctx, job, "", "missing filename or trackerId metadata", false)
	}

	// Stage 2: load tracker, link job and correlation.
	if err := p.tracker.LinkJob(ctx, trackerID, job.ID, job.CorrelationID); err != nil {
		return p.fail(ctx, job, trackerID, fmt.Sprintf("failed to link tracker: %v", err), true)
	}

	// Stage 3: heartbeat, extract text.
	if err := p.jobs.Heartbeat(ctx, job.ID); err != nil {
		p.logger.Warn("heartbeat failed", zap.String("jobId", job.ID), zap.Error(err))
	}

	ext := strings.ToLower(extensionOf(filename))
	if ext == ".zip" {
		if !p.allowZip {
			return p.fail(ctx, job, trackerID, "nested zip entries are not supported", false)
		}
		return p.processZip(ctx, job, trackerID)
	}

	text, err := p.extractor.ExtractText(filename, job.Payload)
	if err != nil {
		return p.fail(ctx, job, trackerID, err.Error(), isRetryable(err))
	}

	// Stage 4: heartbeat, LLM extraction.
	if err := p.jobs.Heartbeat(ctx, job.ID); err != nil {
		p.logger.Warn("heartbeat failed", zap.String("jobId", job.ID), zap.Error(err))
	}
	extraction := p.extract(ctx, text)

	// Stage 5: tracker RESUME_ANALYZED.
	if err := p.tracker.Advance(ctx, trackerID, trackermodel.StatusResumeAnalyzed, "résumé text analyzed"); err != nil {
		p.logger.Warn("failed to advance tracker", zap.String("trackerId", trackerID), zap.Error(err))
	}

	// Stage 6: heartbeat, persist candidate.
	if err := p.jobs.Heartbeat(ctx, job.ID); err != nil {
		p.logger.Warn("heartbeat failed", zap.String("jobId", job.ID), zap.Error(err))
	}
	candidate := &candidatemodel.Candidate{
		ID:                 uuid.NewString(),
		Name:               firstNonEmpty(extraction.Name, "Unknown"),
		Email:              extraction.Email,
		Phone:              extraction.Phone,
		Skills:             extraction.Skills,
		DomainKnowledge:    extraction.DomainKnowledge,
		AcademicBackground: extraction.AcademicBackground,
		YearsOfExperience:  extraction.YearsOfExperience,
		ResumeBytes:        job.Payload,
		ResumeFilename:     filename,
		ResumeText:         text,
	}
	if err := p.candidates.Create(ctx, candidate); err != nil {
		return p.fail(ctx, job, trackerID, fmt.Sprintf("failed to persist candidate: %v", err), true)
	}

	// Stage 7: heartbeat, chunk, embed, persist embeddings.
	if err := p.jobs.Heartbeat(ctx, job.ID); err != nil {
		p.logger.Warn("heartbeat failed", zap.String("jobId", job.ID), zap.Error(err))
	}
	chunks := model.ChunkText(text)
	embeddings := p.embedAll(ctx, candidate.ID, chunks)
	if err := p.candidates.ReplaceEmbeddings(ctx, candidate.ID, embeddings); err != nil {
		return p.fail(ctx, job, trackerID, fmt.Sprintf("failed to persist embeddings: %v", err), true)
	}

	// Stage 8: tracker through COMPLETED; job COMPLETED.
	if err := p.tracker.Advance(ctx, trackerID, trackermodel.StatusEmbedGenerated, "embeddings generated"); err != nil {
		p.logger.Warn("failed to advance tracker", zap.String("trackerId", trackerID), zap.Error(err))
	}
	if err := p.tracker.Advance(ctx, trackerID, trackermodel.StatusVectorDBUpdated, "embeddings persisted"); err != nil {
		p.logger.Warn("failed to advance tracker", zap.String("trackerId", trackerID), zap.Error(err))
	}
	if err := p.tracker.Advance(ctx, trackerID, trackermodel.StatusCompleted, "candidate ingested"); err != nil {
		p.logger.Warn("failed to advance tracker", zap.String("trackerId", trackerID), zap.Error(err))
	}
	if err := p.tracker.IncrementProcessed(ctx, trackerID); err != nil {
		p.logger.Warn("failed to increment processed counter", zap.String("trackerId", trackerID), zap.Error(err))
	}

	result := map[string]string{
		"candidateId":       candidate.ID,
		"filename":          filename,
		"yearsOfExperience": strconv.FormatFloat(candidate.YearsOfExperience, 'f', 1, 64),
		"skillsPresent":     strconv.FormatBool(candidate.Skills != ""),
	}
	return p.jobs.Complete(ctx, job.ID, result)
}

func (p *Pipeline) processZip(ctx context.Context, job *jobqueuemodel.Job, trackerID string) error {
	entries, err := docparse.SplitZip(job.Payload, p.cfg.Upload.AllowedExtensions)
	if err != nil {
		return p.fail(ctx, job, trackerID, fmt.Sprintf("failed to read zip archive: %v", err), false)
	}
	if len(entries) == 0 {
		return p.fail(ctx, job, trackerID, "zip archive contained no supported résumé files", false)
	}

	if err := p.tracker.SetTotal(ctx, trackerID, len(entries)); err != nil {
		p.logger.Warn("failed to set tracker total for zip fan-out", zap.String("trackerId", trackerID), zap.Error(err))
	}

	for _, entry := range entries {
		_, err := p.jobs.Enqueue(ctx, jobqueueports.EnqueueInput{
			Kind:          ZipEntryKind,
			Payload:       entry.Content,
			Metadata:      map[string]string{"filename": entry.Filename, "trackerId": trackerID},
			Priority:      job.Priority,
			CorrelationID: job.CorrelationID,
			MaxRetries:    job.MaxRetries,
		})
		if err != nil {
			p.logger.Error("failed to enqueue zip entry", zap.String("filename", entry.Filename), zap.Error(err))
		}
	}

	return p.jobs.Complete(ctx, job.ID, map[string]string{"fannedOutEntries": strconv.Itoa(len(entries))})
}

func (p *Pipeline) extract(ctx context.Context, resumeText string) model.ExtractionResult {
	system, user, err := p.prompts.Render(llmclient.TemplateResumeAnalysis, map[string]string{"resumeText": resumeText})
	if err != nil {
		p.logger.Error("failed to render résumé analysis prompt", zap.Error(err))
		return model.FallbackExtraction()
	}

	raw, err := p.chat.Chat(ctx, system, user, 0.2, 1500)
	if err != nil {
		p.logger.Warn("résumé extraction LLM call failed, using fallback extraction", zap.Error(err))
		return model.FallbackExtraction()
	}

	var result model.ExtractionResult
	if err := json.Unmarshal([]byte(llmclient.ExtractJSON(raw)), &result); err != nil {
		p.logger.Warn("failed to parse résumé extraction response, using fallback extraction", zap.Error(err))
		return model.FallbackExtraction()
	}
	return result
}

// embedAll requests embeddings in configured batches, falling back to
// per-text requests on batch failure and a zero vector on individual
// failure, matching the documented graceful-degradation contract.
func (p *Pipeline) embedAll(ctx context.Context, candidateID string, chunks []model.Chunk) []*candidatemodel.ResumeEmbedding {
	batchSize := p.cfg.Embedding.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	embeddings := make([]*candidatemodel.ResumeEmbedding, 0, len(chunks))
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := p.embedder.Embed(ctx, texts)
		if err != nil || len(vectors) != len(batch) {
			p.logger.Warn("embedding batch failed, retrying individually", zap.Error(err))
			for _, c := range batch {
				embeddings = append(embeddings, p.embedOne(ctx, candidateID, c))
			}
			continue
		}
		for i, c := range batch {
			embeddings = append(embeddings, &candidatemodel.ResumeEmbedding{
				ID:          uuid.NewString(),
				CandidateID: candidateID,
				Chunk:       c.Text,
				Vector:      vectors[i],
				Section:     c.Section,
			})
		}
	}
	return embeddings
}

func (p *Pipeline) embedOne(ctx context.Context, candidateID string, chunk model.Chunk) *candidatemodel.ResumeEmbedding {
	vectors, err := p.embedder.Embed(ctx, []string{chunk.Text})
	vector := make([]float32, p.embedder.Dimensions())
	if err == nil && len(vectors) == 1 {
		vector = vectors[0]
	} else {
		p.logger.Warn("embedding fallback to zero vector", zap.String("candidateId", candidateID), zap.Error(err))
	}
	return &candidatemodel.ResumeEmbedding{
		ID:          uuid.NewString(),
		CandidateID: candidateID,
		Chunk:       chunk.Text,
		Vector:      vector,
		Section:     chunk.Section,
	}
}

func (p *Pipeline) fail(ctx context.Context, job *jobqueuemodel.Job, trackerID, message string, retryable bool) error {
	if trackerID != "" {
		if err := p.tracker.Fail(ctx, trackerID, message); err != nil {
			p.logger.Warn("failed to mark tracker failed", zap.String("trackerId", trackerID), zap.Error(err))
		}
	}
	return p.jobs.Fail(ctx, job.ID, message, retryable)
}

// isRetryable classifies an error per the pipeline's failure taxonomy:
// validation-shaped messages are non-retryable, everything else (timeouts,
// connection/socket/IO errors, and anything unclassified) is retried.
func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"invalid", "malformed", "unsupported"} {
		if strings.Contains(msg, marker) {
			return false
		}
	}
	return true
}

func extensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx == -1 {
		return ""
	}
	return filename[idx:]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
