// Command worker runs the background scheduler that drains the durable job
// queue: it claims résumé-ingest jobs (and their zip fan-out children),
// drives them through the pipeline, and performs the stale-recovery,
// cleanup, and metrics loops the API process does not run itself.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/andreypavlenko/talentpipe/internal/config"
	"github.com/andreypavlenko/talentpipe/internal/platform/docparse"
	"github.com/andreypavlenko/talentpipe/internal/platform/llmclient"
	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	"github.com/andreypavlenko/talentpipe/internal/platform/postgres"
	"github.com/andreypavlenko/talentpipe/internal/platform/storage"

	candidateRepo "github.com/andreypavlenko/talentpipe/modules/candidates/repository"
	candidateService "github.com/andreypavlenko/talentpipe/modules/candidates/service"

	jobqueueRepo "github.com/andreypavlenko/talentpipe/modules/jobqueue/repository"
	jobqueueService "github.com/andreypavlenko/talentpipe/modules/jobqueue/service"

	pipelineService "github.com/andreypavlenko/talentpipe/modules/pipeline/service"

	trackerRepo "github.com/andreypavlenko/talentpipe/modules/processtracker/repository"
	trackerService "github.com/andreypavlenko/talentpipe/modules/processtracker/service"

	"github.com/andreypavlenko/talentpipe/modules/scheduler"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgClient, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		appLogger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgClient.Close()

	llm := llmclient.New(llmclient.Config{
		BaseURL:            cfg.LLM.BaseURL,
		APIKey:             cfg.LLM.APIKey,
		ChatModel:          cfg.LLM.ChatModel,
		EmbeddingModel:     cfg.LLM.EmbeddingModel,
		Timeout:            cfg.LLM.Timeout,
		FallbackDimensions: cfg.Embedding.Dimensions,
	})
	prompts, err := llmclient.LoadPromptLibrary(cfg.LLM.PromptsPath)
	if err != nil {
		appLogger.Fatal("failed to load prompt library", zap.Error(err), zap.String("path", cfg.LLM.PromptsPath))
	}

	candidateRepository := candidateRepo.NewCandidateRepository(pgClient.Pool)
	jobQueueRepository := jobqueueRepo.NewJobQueueRepository(pgClient.Pool)
	trackerRepository := trackerRepo.NewTrackerRepository(pgClient.Pool)

	var candidateSvc *candidateService.CandidateService
	if s3Client, s3Err := storage.NewS3Client(cfg.S3); s3Err == nil {
		candidateSvc = candidateService.NewCandidateServiceWithBlobStore(candidateRepository, candidateService.NewS3BlobStore(s3Client), appLogger)
	} else {
		candidateSvc = candidateService.NewCandidateService(candidateRepository, appLogger)
	}
	jobQueueSvc := jobqueueService.NewJobQueueService(jobQueueRepository, cfg.Retry, appLogger)
	trackerSvc := trackerService.NewTrackerService(trackerRepository, appLogger)

	extractor := docparse.NewExtractor()
	resumeIngest := pipelineService.NewPipeline(
		"resume.ingest",
		jobQueueSvc,
		trackerSvc,
		candidateSvc,
		extractor,
		llm,
		llm,
		prompts,
		*cfg,
		appLogger,
	)
	zipEntryIngest := pipelineService.NewPipeline(
		pipelineService.ZipEntryKind,
		jobQueueSvc,
		trackerSvc,
		candidateSvc,
		extractor,
		llm,
		llm,
		prompts,
		*cfg,
		appLogger,
	)

	sched := scheduler.New(
		jobQueueSvc,
		[]scheduler.Processor{resumeIngest, zipEntryIngest},
		cfg.Scheduler,
		appLogger,
	)
	sched.Start(ctx)
	appLogger.Info("worker scheduler started", zap.String("workerId", cfg.Scheduler.WorkerID))

	<-ctx.Done()
	appLogger.Info("shutting down worker scheduler...")
	sched.Stop()
	appLogger.Info("worker scheduler exited")
}
