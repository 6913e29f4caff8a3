package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andreypavlenko/talentpipe/internal/config"
	"github.com/andreypavlenko/talentpipe/internal/platform/cache"
	"github.com/andreypavlenko/talentpipe/internal/platform/docparse"
	httpPlatform "github.com/andreypavlenko/talentpipe/internal/platform/http"
	"github.com/andreypavlenko/talentpipe/internal/platform/llmclient"
	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	"github.com/andreypavlenko/talentpipe/internal/platform/postgres"
	"github.com/andreypavlenko/talentpipe/internal/platform/redis"
	"github.com/andreypavlenko/talentpipe/internal/platform/storage"

	candidateRepo "github.com/andreypavlenko/talentpipe/modules/candidates/repository"
	candidateService "github.com/andreypavlenko/talentpipe/modules/candidates/service"

	"github.com/andreypavlenko/talentpipe/modules/enrichment/enrichers"
	enrichmentHandler "github.com/andreypavlenko/talentpipe/modules/enrichment/handler"
	enrichmentPorts "github.com/andreypavlenko/talentpipe/modules/enrichment/ports"
	enrichmentRepo "github.com/andreypavlenko/talentpipe/modules/enrichment/repository"
	enrichmentService "github.com/andreypavlenko/talentpipe/modules/enrichment/service"

	jobRepo "github.com/andreypavlenko/talentpipe/modules/jobs/repository"

	jobqueueRepo "github.com/andreypavlenko/talentpipe/modules/jobqueue/repository"
	jobqueueService "github.com/andreypavlenko/talentpipe/modules/jobqueue/service"

	matchingHandler "github.com/andreypavlenko/talentpipe/modules/matching/handler"
	matchingRepo "github.com/andreypavlenko/talentpipe/modules/matching/repository"
	matchingService "github.com/andreypavlenko/talentpipe/modules/matching/service"

	pipelineHandler "github.com/andreypavlenko/talentpipe/modules/pipeline/handler"
	pipelineService "github.com/andreypavlenko/talentpipe/modules/pipeline/service"

	trackerHandler "github.com/andreypavlenko/talentpipe/modules/processtracker/handler"
	trackerRepo "github.com/andreypavlenko/talentpipe/modules/processtracker/repository"
	trackerService "github.com/andreypavlenko/talentpipe/modules/processtracker/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// main wires the API process: it exposes upload, tracker, matching, and
// enrichment operations over HTTP. The worker scheduler that drains the
// job queue these handlers populate runs as a separate process (cmd/worker)
// so the API stays responsive even when the pipeline is under load.
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

	appLogger.Info("starting talentpipe API server",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	ctx := context.Background()

	pgClient, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		appLogger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgClient.Close()
	appLogger.Info("connected to PostgreSQL")

	migrationsPath := "./migrations"
	if err := postgres.RunMigrations(ctx, cfg.Database, appLogger, migrationsPath); err != nil {
		appLogger.Fatal("failed to run database migrations",
			zap.Error(err),
			zap.String("migrationsPath", migrationsPath),
		)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		appLogger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("connected to Redis")

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

	// Repositories
	candidateRepository := candidateRepo.NewCandidateRepository(pgClient.Pool)
	jobQueueRepository := jobqueueRepo.NewJobQueueRepository(pgClient.Pool)
	trackerRepository := trackerRepo.NewTrackerRepository(pgClient.Pool)
	jobRequirementRepository := jobRepo.NewJobRequirementRepository(pgClient.Pool)
	profileRepository := enrichmentRepo.NewExternalProfileRepository(pgClient.Pool)
	matchRepository := matchingRepo.NewCandidateMatchRepository(pgClient.Pool)
	auditRepository := matchingRepo.NewMatchAuditRepository(pgClient.Pool)

	// Services
	//
	// Résumé bytes are stored inline in Postgres unless S3-compatible object
	// storage is fully configured, in which case they're routed through it
	// instead and the candidate row only keeps a storage key.
	var candidateSvc *candidateService.CandidateService
	if s3Client, s3Err := storage.NewS3Client(cfg.S3); s3Err == nil {
		candidateSvc = candidateService.NewCandidateServiceWithBlobStore(candidateRepository, candidateService.NewS3BlobStore(s3Client), appLogger)
		appLogger.Info("résumé bytes will be stored in S3-compatible object storage", zap.String("bucket", cfg.S3.Bucket))
	} else {
		candidateSvc = candidateService.NewCandidateService(candidateRepository, appLogger)
	}
	jobQueueSvc := jobqueueService.NewJobQueueService(jobQueueRepository, cfg.Retry, appLogger)
	trackerSvc := trackerService.NewTrackerService(trackerRepository, appLogger)

	enricherSet := []enrichmentPorts.Enricher{
		enrichers.NewCodeHostingEnricher(profileRepository, cfg.Enrichment.GithubToken),
		enrichers.NewProfessionalNetworkEnricher(profileRepository),
		enrichers.NewMicroblogEnricher(profileRepository, cfg.Enrichment.TwitterBearerToken),
		enrichers.NewWebSearchEnricher(profileRepository, "", cfg.Enrichment.TavilyAPIKey),
	}
	recentCallGuard := cache.NewRecentCallGuard(redisClient, time.Minute)
	enrichmentSvc := enrichmentService.NewEnrichmentService(profileRepository, candidateSvc, enricherSet, cfg.Enrichment, appLogger, recentCallGuard)

	matchingEngineCfg := matchingService.EngineConfig{
		SourceSelectionEnabled: cfg.Enrichment.SourceSelectionEnabled,
		MultiPassEnabled:       cfg.Enrichment.MultiPassEnabled,
		BorderlineMin:          cfg.Enrichment.MultiPassBorderlineMin,
		BorderlineMax:          cfg.Enrichment.MultiPassBorderlineMax,
	}
	matchingSvc := matchingService.NewMatchingService(
		matchRepository,
		auditRepository,
		candidateSvc,
		jobRequirementRepository,
		enrichmentSvc,
		llm,
		prompts,
		matchingEngineCfg,
		appLogger,
	)

	extractor := docparse.NewExtractor()
	pipeline := pipelineService.NewPipeline(
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

	// Handlers
	uploadHdl := pipelineHandler.NewUploadHandler(jobQueueSvc, trackerSvc, pipeline, *cfg, appLogger)
	trackerHdl := trackerHandler.NewTrackerHandler(trackerSvc)
	matchingHdl := matchingHandler.NewMatchingHandler(matchingSvc)
	enrichmentHdl := enrichmentHandler.NewEnrichmentHandler(enrichmentSvc)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpPlatform.RequestIDMiddleware())
	router.Use(httpPlatform.LoggerMiddleware(appLogger))
	router.Use(httpPlatform.CORSMiddleware())

	router.GET("/health", healthCheckHandler(ctx, pgClient, redisClient))
	router.GET("/ping", pingHandler)

	// Every route below trusts an upstream-authenticated caller identity
	// carried in X-Caller-Identity; the core performs no authentication or
	// authorization of its own.
	v1 := router.Group("/api/v1")
	{
		uploadHdl.RegisterRoutes(v1)
		trackerHdl.RegisterRoutes(v1)
		matchingHdl.RegisterRoutes(v1)
		enrichmentHdl.RegisterRoutes(v1)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.Info("server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("server exited")
}

func healthCheckHandler(ctx context.Context, pgClient *postgres.Client, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		services := make(map[string]string)

		if err := pgClient.Health(ctx); err != nil {
			services["postgres"] = "down"
		} else {
			services["postgres"] = "up"
		}

		if err := redisClient.Health(ctx); err != nil {
			services["redis"] = "down"
		} else {
			services["redis"] = "up"
		}

		httpPlatform.RespondWithHealth(c, services)
	}
}

func pingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
