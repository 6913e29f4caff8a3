// Package scheduler runs the worker pool that claims durable job_queue rows
// and drives them to completion, alongside the housekeeping loops (stale
// recovery, terminal-row cleanup, metrics) the pipeline depends on.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreypavlenko/talentpipe/internal/config"
	"github.com/andreypavlenko/talentpipe/internal/platform/logger"
	jobqueueModel "github.com/andreypavlenko/talentpipe/modules/jobqueue/model"
	jobqueuePorts "github.com/andreypavlenko/talentpipe/modules/jobqueue/ports"
	"go.uber.org/zap"
)

// Scheduler owns the four concurrent loops spec'd for the worker scheduler:
// a main dispatcher, a stale-job detector, a terminal-row cleaner, and a
// metrics emitter, plus the bounded worker pool the dispatcher feeds.
type Scheduler struct {
	jobs       jobqueuePorts.JobQueueService
	processors map[string]Processor
	cfg        config.SchedulerConfig
	logger     *logger.Logger

	active   int32
	sem      chan struct{}
	stopChan chan struct{}
	doneChan chan struct{}
	wg       sync.WaitGroup
}

// New builds a Scheduler. processors is keyed by job kind; the dispatcher
// only claims kinds that have a registered processor.
func New(jobs jobqueuePorts.JobQueueService, processors []Processor, cfg config.SchedulerConfig, log *logger.Logger) *Scheduler {
	registry := make(map[string]Processor, len(processors))
	for _, p := range processors {
		registry[p.Kind()] = p
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}
	return &Scheduler{
		jobs:       jobs,
		processors: registry,
		cfg:        cfg,
		logger:     log,
		sem:        make(chan struct{}, batchSize),
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}
}

// Start launches all four loops. It returns immediately; call Stop (or
// cancel ctx) to shut down gracefully.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("starting worker scheduler",
		zap.String("workerId", s.cfg.WorkerID),
		zap.Int("batchSize", s.cfg.BatchSize),
		zap.Int("kinds", len(s.processors)),
	)

	go s.runDispatcher(ctx)
	go s.runStaleDetector(ctx)
	go s.runCleaner(ctx)
	go s.runMetricsEmitter(ctx)

	go func() {
		select {
		case <-ctx.Done():
		case <-s.stopChan:
		}
		s.wg.Wait()
		close(s.doneChan)
	}()
}

// Stop signals all loops to exit and waits for in-flight jobs to drain.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	<-s.doneChan
}

func (s *Scheduler) runDispatcher(ctx context.Context) {
	timer := time.NewTimer(s.cfg.InitialDelay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-timer.C:
			s.dispatchOnce(ctx)
			timer.Reset(s.cfg.PollInterval)
		}
	}
}

func (s *Scheduler) dispatchOnce(ctx context.Context) {
	capacity := cap(s.sem)
	available := capacity - int(atomic.LoadInt32(&s.active))
	if available <= 0 {
		return
	}
	for kind, processor := range s.processors {
		if available <= 0 {
			break
		}
		jobs, err := s.jobs.Claim(ctx, kind, available, s.cfg.WorkerID)
		if err != nil {
			s.logger.Error("failed to claim jobs", zap.String("kind", kind), zap.Error(err))
			continue
		}
		for _, job := range jobs {
			available--
			s.dispatch(ctx, processor, job)
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, processor Processor, job *jobqueueModel.Job) {
	s.sem <- struct{}{}
	atomic.AddInt32(&s.active, 1)
	s.wg.Add(1)
	go func() {
		defer func() {
			<-s.sem
			atomic.AddInt32(&s.active, -1)
			s.wg.Done()
		}()
		if err := processor.Process(ctx, job); err != nil {
			s.logger.Error("processor returned error",
				zap.String("jobId", job.ID), zap.String("kind", job.Kind), zap.Error(err))
		}
	}()
}

func (s *Scheduler) runStaleDetector(ctx context.Context) {
	timer := time.NewTimer(30 * time.Second)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-timer.C:
			thresholdMinutes := int(s.cfg.StaleThreshold / time.Minute)
			if thresholdMinutes <= 0 {
				thresholdMinutes = 1
			}
			if _, err := s.jobs.ResetStale(ctx, thresholdMinutes); err != nil {
				s.logger.Error("stale detector failed", zap.Error(err))
			}
			timer.Reset(s.cfg.StaleCheckInterval)
		}
	}
}

func (s *Scheduler) runCleaner(ctx context.Context) {
	timer := time.NewTimer(s.durationUntilNextCleanup())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-timer.C:
			count, err := s.jobs.DeleteCompletedOlderThan(ctx, s.cfg.RetentionDays)
			if err != nil {
				s.logger.Error("cleanup failed", zap.Error(err))
			} else if count > 0 {
				s.logger.Info("pruned terminal jobs", zap.Int("count", count))
			}
			timer.Reset(24 * time.Hour)
		}
	}
}

// durationUntilNextCleanup approximates a fixed daily cron slot
// (scheduler.cleanupCron, default "0 0 2 * * ?") without pulling a
// cron-expression parser: it computes the wait until the next occurrence of
// the configured local hour:minute.
func (s *Scheduler) durationUntilNextCleanup() time.Duration {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.cfg.CleanupHour, s.cfg.CleanupMinute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

func (s *Scheduler) runMetricsEmitter(ctx context.Context) {
	timer := time.NewTimer(s.cfg.MetricsInterval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-timer.C:
			for kind := range s.processors {
				stats, err := s.jobs.StatsByKind(ctx, kind)
				if err != nil {
					s.logger.Error("failed to collect queue metrics", zap.String("kind", kind), zap.Error(err))
					continue
				}
				s.logger.Info("queue metrics",
					zap.String("kind", kind),
					zap.Int("pending", stats.Pending),
					zap.Int("processing", stats.Processing),
					zap.Int("completed", stats.Completed),
					zap.Int("failed", stats.Failed),
					zap.Float64("avgProcessingSeconds", stats.AverageProcessingSeconds),
				)
			}
			timer.Reset(s.cfg.MetricsInterval)
		}
	}
}
