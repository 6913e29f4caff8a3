package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/andreypavlenko/talentpipe/internal/config"
	"github.com/andreypavlenko/talentpipe/internal/platform/llmclient"
	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	candidatemodel "github.com/andreypavlenko/talentpipe/modules/candidates/model"
	candidateports "github.com/andreypavlenko/talentpipe/modules/candidates/ports"
	jobqueuemodel "github.com/andreypavlenko/talentpipe/modules/jobqueue/model"
	jobqueueports "github.com/andreypavlenko/talentpipe/modules/jobqueue/ports"
	"github.com/andreypavlenko/talentpipe/modules/pipeline/model"
	trackermodel "github.com/andreypavlenko/talentpipe/modules/processtracker/model"
	trackerports "github.com/andreypavlenko/talentpipe/modules/processtracker/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

// --- fakes ---

type fakeJobQueue struct {
	jobqueueports.JobQueueService
	enqueued   []jobqueueports.EnqueueInput
	completed  map[string]map[string]string
	failed     map[string]string
	retryable  map[string]bool
	heartbeats int
}

func newFakeJobQueue() *fakeJobQueue {
	return &fakeJobQueue{
		completed: map[string]map[string]string{},
		failed:    map[string]string{},
		retryable: map[string]bool{},
	}
}

func (f *fakeJobQueue) Heartbeat(ctx context.Context, jobID string) error {
	f.heartbeats++
	return nil
}

func (f *fakeJobQueue) Complete(ctx context.Context, jobID string, result map[string]string) error {
	f.completed[jobID] = result
	return nil
}

func (f *fakeJobQueue) Fail(ctx context.Context, jobID string, errMsg string, retryable bool) error {
	f.failed[jobID] = errMsg
	f.retryable[jobID] = retryable
	return nil
}

func (f *fakeJobQueue) Enqueue(ctx context.Context, in jobqueueports.EnqueueInput) (*jobqueuemodel.Job, error) {
	f.enqueued = append(f.enqueued, in)
	return &jobqueuemodel.Job{ID: "child-job", Kind: in.Kind}, nil
}

type fakeTracker struct {
	trackerports.TrackerService
	linked    map[string]string
	advanced  []trackermodel.Status
	failedMsg string
	processed int
	total     int
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{linked: map[string]string{}}
}

func (f *fakeTracker) LinkJob(ctx context.Context, trackerID, jobID, correlationID string) error {
	f.linked[trackerID] = jobID
	return nil
}

func (f *fakeTracker) Advance(ctx context.Context, trackerID string, status trackermodel.Status, message string) error {
	f.advanced = append(f.advanced, status)
	return nil
}

func (f *fakeTracker) Fail(ctx context.Context, trackerID string, message string) error {
	f.failedMsg = message
	return nil
}

func (f *fakeTracker) IncrementProcessed(ctx context.Context, trackerID string) error {
	f.processed++
	return nil
}

func (f *fakeTracker) SetTotal(ctx context.Context, trackerID string, total int) error {
	f.total = total
	return nil
}

type fakeCandidates struct {
	candidateports.CandidateService
	created    *candidatemodel.Candidate
	embeddings []*candidatemodel.ResumeEmbedding
}

func (f *fakeCandidates) Create(ctx context.Context, candidate *candidatemodel.Candidate) error {
	f.created = candidate
	return nil
}

func (f *fakeCandidates) ReplaceEmbeddings(ctx context.Context, candidateID string, embeddings []*candidatemodel.ResumeEmbedding) error {
	f.embeddings = embeddings
	return nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(filename string, content []byte) (string, error) {
	return f.text, f.err
}

type fakeChatClient struct {
	response string
	err      error
}

func (f *fakeChatClient) Chat(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	return f.response, f.err
}

type fakeEmbeddingClient struct {
	vectors [][]float32
	err     error
	dims    int
}

func (f *fakeEmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors, nil
}

func (f *fakeEmbeddingClient) Dimensions() int {
	if f.dims == 0 {
		return 3
	}
	return f.dims
}

func newTestPrompts(t *testing.T) *llmclient.PromptLibrary {
	t.Helper()
	lib, err := llmclient.LoadPromptLibrary("../../../config/prompts.yaml")
	require.NoError(t, err)
	return lib
}

func newTestConfig() config.Config {
	var cfg config.Config
	cfg.Upload.AllowedExtensions = []string{".pdf", ".docx", ".doc"}
	cfg.Embedding.BatchSize = 2
	return cfg
}

func TestPipeline_Process_HappyPath(t *testing.T) {
	jobs := newFakeJobQueue()
	tracker := newFakeTracker()
	candidates := &fakeCandidates{}
	extractor := &fakeExtractor{text: "Worked as a backend engineer for five years.\n\nProficient in Go."}
	chat := &fakeChatClient{response: `{"name":"Jane Doe","email":"jane@example.com","skills":"Go, SQL","yearsOfExperience":5,"confidence":0.9}`}
	embedder := &fakeEmbeddingClient{vectors: [][]float32{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}}
	prompts := newTestPrompts(t)

	pipeline := NewPipeline("resume.ingest", jobs, tracker, candidates, extractor, chat, embedder, prompts, newTestConfig(), newTestLogger(t))

	job := &jobqueuemodel.Job{
		ID:            "job-1",
		Kind:          "resume.ingest",
		Payload:       []byte("raw bytes"),
		Metadata:      map[string]string{"filename": "resume.pdf", "trackerId": "tracker-1"},
		CorrelationID: "corr-1",
	}

	err := pipeline.Process(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, "job-1", tracker.linked["tracker-1"])
	assert.Contains(t, tracker.advanced, trackermodel.StatusResumeAnalyzed)
	assert.Contains(t, tracker.advanced, trackermodel.StatusCompleted)
	assert.Equal(t, 1, tracker.processed)
	require.NotNil(t, candidates.created)
	assert.Equal(t, "Jane Doe", candidates.created.Name)
	assert.Len(t, candidates.embeddings, 2)
	result, ok := jobs.completed["job-1"]
	require.True(t, ok)
	assert.Equal(t, "resume.pdf", result["filename"])
}

func TestPipeline_Process_MissingMetadata_FailsNonRetryable(t *testing.T) {
	jobs := newFakeJobQueue()
	tracker := newFakeTracker()
	pipeline := NewPipeline("resume.ingest", jobs, tracker, &fakeCandidates{}, &fakeExtractor{}, &fakeChatClient{}, &fakeEmbeddingClient{}, newTestPrompts(t), newTestConfig(), newTestLogger(t))

	job := &jobqueuemodel.Job{ID: "job-2", Metadata: map[string]string{}}
	err := pipeline.Process(context.Background(), job)

	require.NoError(t, err)
	assert.Contains(t, jobs.failed["job-2"], "trackerId")
	assert.False(t, jobs.retryable["job-2"])
}

func TestPipeline_Process_ExtractionFailure_UsesClassifiedRetryability(t *testing.T) {
	jobs := newFakeJobQueue()
	tracker := newFakeTracker()
	extractor := &fakeExtractor{err: errors.New("unsupported file extension")}
	pipeline := NewPipeline("resume.ingest", jobs, tracker, &fakeCandidates{}, extractor, &fakeChatClient{}, &fakeEmbeddingClient{}, newTestPrompts(t), newTestConfig(), newTestLogger(t))

	job := &jobqueuemodel.Job{ID: "job-3", Metadata: map[string]string{"filename": "resume.xyz", "trackerId": "tracker-3"}}
	err := pipeline.Process(context.Background(), job)

	require.NoError(t, err)
	assert.False(t, jobs.retryable["job-3"])
	assert.NotEmpty(t, tracker.failedMsg)
}

func TestPipeline_Process_LLMFailure_FallsBackAndStillCompletes(t *testing.T) {
	jobs := newFakeJobQueue()
	tracker := newFakeTracker()
	candidates := &fakeCandidates{}
	extractor := &fakeExtractor{text: "Some résumé content."}
	chat := &fakeChatClient{err: errors.New("connection reset")}
	embedder := &fakeEmbeddingClient{vectors: [][]float32{{0.1, 0.1, 0.1}}}

	pipeline := NewPipeline("resume.ingest", jobs, tracker, candidates, extractor, chat, embedder, newTestPrompts(t), newTestConfig(), newTestLogger(t))

	job := &jobqueuemodel.Job{ID: "job-4", Metadata: map[string]string{"filename": "resume.pdf", "trackerId": "tracker-4"}}
	err := pipeline.Process(context.Background(), job)

	require.NoError(t, err)
	require.NotNil(t, candidates.created)
	assert.Equal(t, "Unknown", candidates.created.Name)
	_, failed := jobs.failed["job-4"]
	assert.False(t, failed)
}

func TestPipeline_ProcessZip_FansOutChildJobs(t *testing.T) {
	jobs := newFakeJobQueue()
	tracker := newFakeTracker()
	pipeline := NewPipeline("resume.ingest", jobs, tracker, &fakeCandidates{}, &fakeExtractor{}, &fakeChatClient{}, &fakeEmbeddingClient{}, newTestPrompts(t), newTestConfig(), newTestLogger(t))

	zipBytes := buildTestZip(t, map[string]string{"a.pdf": "dummy-pdf-content"})
	job := &jobqueuemodel.Job{ID: "job-5", Metadata: map[string]string{"filename": "batch.zip", "trackerId": "tracker-5"}, Priority: 3, CorrelationID: "corr-5"}
	job.Payload = zipBytes

	err := pipeline.Process(context.Background(), job)
	require.NoError(t, err)

	require.Len(t, jobs.enqueued, 1)
	assert.Equal(t, ZipEntryKind, jobs.enqueued[0].Kind)
	assert.Equal(t, "corr-5", jobs.enqueued[0].CorrelationID)
	assert.Equal(t, 1, tracker.total)
	_, completed := jobs.completed["job-5"]
	assert.True(t, completed)
}

func TestPipeline_ZipEntryKind_RejectsNestedZip(t *testing.T) {
	jobs := newFakeJobQueue()
	tracker := newFakeTracker()
	pipeline := NewPipeline(ZipEntryKind, jobs, tracker, &fakeCandidates{}, &fakeExtractor{}, &fakeChatClient{}, &fakeEmbeddingClient{}, newTestPrompts(t), newTestConfig(), newTestLogger(t))

	job := &jobqueuemodel.Job{ID: "job-6", Metadata: map[string]string{"filename": "nested.zip", "trackerId": "tracker-6"}}
	err := pipeline.Process(context.Background(), job)

	require.NoError(t, err)
	assert.Contains(t, jobs.failed["job-6"], "nested zip")
	assert.False(t, jobs.retryable["job-6"])
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, isRetryable(errors.New("invalid file format")))
	assert.False(t, isRetryable(errors.New("Malformed header")))
	assert.True(t, isRetryable(errors.New("connection reset by peer")))
	assert.True(t, isRetryable(errors.New("unexpected EOF")))
}

func buildTestZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := writer.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

var _ = model.Chunk{}
