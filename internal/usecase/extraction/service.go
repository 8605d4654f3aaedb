package extraction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	apperrors "github.com/umang-projects/action-item-extractor/errors"
	"github.com/umang-projects/action-item-extractor/internal/domain/entities"
	domainrepo "github.com/umang-projects/action-item-extractor/internal/domain/repositories"
	"github.com/umang-projects/action-item-extractor/internal/infrastructure/cache"
	"github.com/umang-projects/action-item-extractor/internal/infrastructure/storage"
	"github.com/umang-projects/action-item-extractor/pkg/config"
	"github.com/umang-projects/action-item-extractor/pkg/jobcontext"
	"github.com/umang-projects/action-item-extractor/pkg/llm"
	"github.com/umang-projects/action-item-extractor/pkg/metrics"
)

// Service defines extraction orchestration methods
type Service interface {
	ExtractDialogue(ctx context.Context, dialogueID uuid.UUID) (*entities.Extraction, error)
	EnqueueExtraction(ctx context.Context, dialogueID uuid.UUID) (*entities.ExtractionJob, error)
	StartWorkerPool(ctx context.Context, workerCount int) error
	StopWorkerPool() error
}

type extractionService struct {
	dialogueRepo        domainrepo.DialogueRepository
	extractionRepo      domainrepo.ExtractionRepository
	jobRepo             domainrepo.ExtractionJobRepository
	llmClient           llm.Client
	parser              *Parser
	cache               cache.Store
	archive             *storage.MinIOClient
	cfg                 *config.Config
	logger              *zap.Logger
	workerStopChan      chan struct{}
	workerWg            sync.WaitGroup
	isWorkerPoolRunning bool
	workerMutex         sync.Mutex
}

// NewExtractionService constructs a new extraction service. Cache and archive
// are optional; passing nil disables completion caching and invalid-output
// archiving respectively.
func NewExtractionService(
	dialogueRepo domainrepo.DialogueRepository,
	extractionRepo domainrepo.ExtractionRepository,
	jobRepo domainrepo.ExtractionJobRepository,
	llmClient llm.Client,
	cacheStore cache.Store,
	archive *storage.MinIOClient,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &extractionService{
		dialogueRepo:        dialogueRepo,
		extractionRepo:      extractionRepo,
		jobRepo:             jobRepo,
		llmClient:           llmClient,
		parser:              NewParser(),
		cache:               cacheStore,
		archive:             archive,
		cfg:                 cfg,
		logger:              logger,
		workerStopChan:      make(chan struct{}),
		isWorkerPoolRunning: false,
	}
}

// ExtractDialogue runs a synchronous extraction for a stored dialogue
func (s *extractionService) ExtractDialogue(ctx context.Context, dialogueID uuid.UUID) (*entities.Extraction, error) {
	dialogue, err := s.dialogueRepo.FindByID(ctx, dialogueID)
	if err != nil {
		return nil, err
	}

	return s.runExtraction(ctx, dialogue)
}

// EnqueueExtraction creates a pending extraction job for the worker pool
func (s *extractionService) EnqueueExtraction(ctx context.Context, dialogueID uuid.UUID) (*entities.ExtractionJob, error) {
	dialogue, err := s.dialogueRepo.FindByID(ctx, dialogueID)
	if err != nil {
		return nil, err
	}

	if len(dialogue.Turns) == 0 {
		return nil, apperrors.ErrDialogueEmpty()
	}

	job := entities.NewExtractionJob(dialogue.ID, s.llmClient.Model())
	if err := s.jobRepo.CreateJob(ctx, job); err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	if s.logger != nil {
		s.logger.Info("📋 Extraction job enqueued",
			zap.String("job_id", job.ID.String()),
			zap.String("dialogue_id", dialogue.ID.String()),
		)
	}

	return job, nil
}

// runExtraction runs the full prompt-to-JSON cycle for a dialogue: build the
// prompt, call the serving backend with retries, parse the completion, and
// persist the result. A completion that fails to parse gets exactly one
// corrective re-prompt; if the second completion is still malformed the
// extraction is recorded as invalid and the raw text is archived for the
// next fine-tuning round. The model output is never silently repaired.
func (s *extractionService) runExtraction(ctx context.Context, dialogue *entities.Dialogue) (*entities.Extraction, error) {
	if len(dialogue.Turns) == 0 {
		return nil, apperrors.ErrDialogueEmpty()
	}

	transcript := dialogue.Transcript()
	if len(transcript) > s.cfg.LLM.MaxPromptChars {
		return nil, apperrors.ErrPromptTooLong(len(transcript), s.cfg.LLM.MaxPromptChars)
	}

	// Identical transcript + model resolves to the same extraction
	cacheKey := extractionCacheKey(s.llmClient.Model(), transcript)
	if cached := s.lookupCached(ctx, cacheKey); cached != nil {
		if s.logger != nil {
			s.logger.Info("⚡ Extraction cache hit",
				zap.String("dialogue_id", dialogue.ID.String()),
				zap.String("extraction_id", cached.ID.String()),
			)
		}
		return cached, nil
	}

	startTime := time.Now()

	resp, err := s.complete(ctx, llm.BuildMessages(transcript))
	if err != nil {
		metrics.RecordExtraction(s.llmClient.Model(), false, time.Since(startTime).Seconds(), 0, 0, 0)
		return nil, apperrors.ErrModelBackendFailed(s.llmClient.Name(), err)
	}

	attempts := 1
	doc, parseErr := s.parser.ParseActionItemDocument(resp.Content)
	if parseErr != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Completion failed validation, re-prompting once",
				zap.String("dialogue_id", dialogue.ID.String()),
				zap.Error(parseErr),
				zap.String("raw_completion", truncate(resp.Content, 500)),
			)
		}

		repairResp, repairErr := s.complete(ctx, llm.BuildRepairMessages(transcript, resp.Content))
		if repairErr == nil {
			attempts = 2
			resp = repairResp
			doc, parseErr = s.parser.ParseActionItemDocument(resp.Content)
		}
	}

	latency := time.Since(startTime)

	extraction := entities.NewExtraction(dialogue.ID, s.llmClient.Model())
	extraction.RawCompletion = resp.Content
	extraction.LatencyMs = latency.Milliseconds()

	meta := entities.ExtractionMetadata{
		PromptChars:      len(transcript),
		PromptTokens:     resp.TokensIn,
		CompletionTokens: resp.TokensOut,
		Attempts:         attempts,
		StopReason:       resp.StopReason,
	}

	if parseErr != nil {
		errMsg := parseErr.Error()
		extraction.Valid = false
		extraction.ParseError = &errMsg

		// Archive the raw completion so it can be inspected and folded
		// into the next training set
		if s.archive != nil {
			objectName := fmt.Sprintf("invalid-completions/%s.txt", extraction.ID)
			if archiveErr := s.archive.UploadText(ctx, objectName, resp.Content); archiveErr != nil {
				if s.logger != nil {
					s.logger.Warn("⚠️ Failed to archive invalid completion", zap.Error(archiveErr))
				}
			} else {
				meta.ArchiveObject = objectName
			}
		}

		extraction.Metadata = datatypes.NewJSONType(meta)

		if saveErr := s.extractionRepo.SaveExtraction(ctx, extraction); saveErr != nil {
			return nil, apperrors.ErrDBQueryFailed(saveErr)
		}

		metrics.RecordExtraction(s.llmClient.Model(), false, latency.Seconds(), resp.TokensIn, resp.TokensOut, 0)

		if s.logger != nil {
			s.logger.Error("❌ Extraction produced invalid output",
				zap.String("extraction_id", extraction.ID.String()),
				zap.String("dialogue_id", dialogue.ID.String()),
				zap.Int("attempts", attempts),
				zap.Error(parseErr),
			)
		}

		return extraction, apperrors.ErrModelOutputInvalid(parseErr)
	}

	extraction.Valid = true
	extraction.Metadata = datatypes.NewJSONType(meta)

	items := make([]entities.ActionItem, 0, len(doc.ActionItems))
	for i, item := range doc.ActionItems {
		items = append(items, *entities.NewActionItem(extraction.ID, i, item))
	}
	extraction.Items = items

	if err := s.extractionRepo.SaveExtraction(ctx, extraction); err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, extraction.ID.String(), s.cfg.Redis.TTL)
	}

	metrics.RecordExtraction(s.llmClient.Model(), true, latency.Seconds(), resp.TokensIn, resp.TokensOut, len(items))

	if s.logger != nil {
		s.logger.Info("✅ Extraction completed",
			zap.String("extraction_id", extraction.ID.String()),
			zap.String("dialogue_id", dialogue.ID.String()),
			zap.Int("action_items", len(items)),
			zap.Int("attempts", attempts),
			zap.Int64("latency_ms", extraction.LatencyMs),
		)
	}

	return extraction, nil
}

// complete calls the serving backend with exponential backoff. Only transient
// failures are retried; a well-formed error response comes back immediately.
func (s *extractionService) complete(ctx context.Context, messages []llm.ChatMessage) (*llm.CompletionResponse, error) {
	var resp *llm.CompletionResponse

	completeFn := func() error {
		r, err := s.llmClient.Complete(ctx, &llm.CompletionRequest{
			Messages:    messages,
			MaxTokens:   s.cfg.LLM.MaxTokens,
			Temperature: s.cfg.LLM.Temperature,
		})
		if err != nil {
			if !jobcontext.IsRetryableError(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = r
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(completeFn, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	return resp, nil
}

// lookupCached resolves a cache key to a previously stored extraction
func (s *extractionService) lookupCached(ctx context.Context, key string) *entities.Extraction {
	if s.cache == nil {
		return nil
	}

	idStr, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		s.cache.Delete(ctx, key)
		return nil
	}

	extraction, err := s.extractionRepo.FindByID(ctx, id)
	if err != nil {
		// Stale cache entry pointing at a deleted row
		s.cache.Delete(ctx, key)
		return nil
	}

	return extraction
}

// StartWorkerPool starts background workers to process extraction jobs
func (s *extractionService) StartWorkerPool(ctx context.Context, workerCount int) error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool already running")
	}

	s.isWorkerPoolRunning = true
	s.workerStopChan = make(chan struct{})

	if s.logger != nil {
		s.logger.Info("🚀 Starting extraction worker pool",
			zap.Int("worker_count", workerCount),
		)
	}

	for i := 0; i < workerCount; i++ {
		s.workerWg.Add(1)
		go s.extractionWorker(ctx, i)
	}

	// Cleanup routine for jobs stuck in running status
	s.workerWg.Add(1)
	go s.cleanupZombieJobs(ctx)

	// Requeue routine for jobs waiting on a retry
	s.workerWg.Add(1)
	go s.retryingJobWorker(ctx)

	return nil
}

// StopWorkerPool gracefully stops all worker goroutines
func (s *extractionService) StopWorkerPool() error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if !s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool not running")
	}

	if s.logger != nil {
		s.logger.Info("🛑 Stopping extraction worker pool...")
	}

	close(s.workerStopChan)
	s.workerWg.Wait()
	s.isWorkerPoolRunning = false

	if s.logger != nil {
		s.logger.Info("✅ Extraction worker pool stopped")
	}

	return nil
}

// extractionWorker polls for pending jobs and runs extractions
func (s *extractionService) extractionWorker(parentCtx context.Context, workerID int) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(s.cfg.Worker.PollInterval)
	defer ticker.Stop()

	if s.logger != nil {
		s.logger.Info("👷 Worker started",
			zap.Int("worker_id", workerID),
		)
	}

	for {
		select {
		case <-s.workerStopChan:
			if s.logger != nil {
				s.logger.Info("👷 Worker stopping",
					zap.Int("worker_id", workerID),
				)
			}
			return

		case <-ticker.C:
			jobs, err := s.jobRepo.GetJobsByStatus(parentCtx, entities.ExtractionJobStatusPending)
			if err != nil {
				if s.logger != nil {
					s.logger.Error("❌ Failed to poll jobs",
						zap.Int("worker_id", workerID),
						zap.Error(err),
					)
				}
				continue
			}

			if len(jobs) == 0 {
				continue
			}

			// Process first available job
			job := jobs[0]

			// Atomically claim the job by flipping pending to running.
			// Only one worker will succeed if several see the same job.
			claimed, err := s.jobRepo.ClaimJob(parentCtx, job.ID)
			if err != nil {
				if s.logger != nil {
					s.logger.Error("❌ Failed to claim job",
						zap.String("job_id", job.ID.String()),
						zap.Error(err),
					)
				}
				continue
			}

			// Another worker already claimed this job
			if !claimed {
				continue
			}

			if s.logger != nil {
				s.logger.Info("👷 Worker claimed job",
					zap.Int("worker_id", workerID),
					zap.String("job_id", job.ID.String()),
					zap.String("dialogue_id", job.DialogueID.String()),
				)
			}

			s.processClaimedJob(parentCtx, &job, workerID)
		}
	}
}

// processClaimedJob runs one claimed job under a job context and records the
// terminal status
func (s *extractionService) processClaimedJob(parentCtx context.Context, job *entities.ExtractionJob, workerID int) {
	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	jobCtx, cancel := jobcontext.JobBegin(parentCtx, job.ID, workerID)
	defer cancel()

	var extraction *entities.Extraction
	err := jobcontext.JobEnd(jobCtx, func(ctx context.Context) error {
		dialogue, derr := s.dialogueRepo.FindByID(ctx, job.DialogueID)
		if derr != nil {
			return derr
		}

		result, rerr := s.runExtraction(ctx, dialogue)
		if rerr != nil {
			// Invalid model output still produces a persisted extraction;
			// the job is done even though validation failed
			if result != nil && !result.Valid {
				extraction = result
				return nil
			}
			return rerr
		}

		extraction = result
		return nil
	})

	if err != nil {
		s.handleJobFailure(parentCtx, job, err)
		return
	}

	if err := s.jobRepo.MarkJobAsCompleted(parentCtx, job.ID, extraction.ID); err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to mark job as completed",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
		}
		return
	}

	if s.logger != nil {
		s.logger.Info("✅ Job completed",
			zap.String("job_id", job.ID.String()),
			zap.String("extraction_id", extraction.ID.String()),
			zap.Bool("valid", extraction.Valid),
		)
	}
}

// handleJobFailure schedules a retry for transient failures, otherwise marks
// the job permanently failed
func (s *extractionService) handleJobFailure(ctx context.Context, job *entities.ExtractionJob, jobErr error) {
	if jobcontext.IsRetryableError(jobErr) && job.IsRetryable() {
		if err := s.jobRepo.ScheduleRetry(ctx, job.ID, jobErr.Error()); err == nil {
			if s.logger != nil {
				s.logger.Warn("🔁 Job scheduled for retry",
					zap.String("job_id", job.ID.String()),
					zap.Int("retry_count", job.RetryCount+1),
					zap.Error(jobErr),
				)
			}
			return
		}
	}

	if s.logger != nil {
		s.logger.Error("❌ Job failed",
			zap.String("job_id", job.ID.String()),
			zap.Error(jobErr),
		)
	}
	if err := s.jobRepo.MarkJobAsFailed(ctx, job.ID, jobErr.Error()); err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to mark job as failed",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// retryingJobWorker requeues jobs in retrying status once their backoff
// window has elapsed
func (s *extractionService) retryingJobWorker(parentCtx context.Context) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.workerStopChan:
			return

		case <-ticker.C:
			jobs, err := s.jobRepo.GetJobsByStatus(parentCtx, entities.ExtractionJobStatusRetrying)
			if err != nil {
				continue
			}

			for _, job := range jobs {
				wait := jobcontext.CalculateBackoff(job.RetryCount, 5*time.Second)
				if job.UpdatedAt.After(time.Now().Add(-wait)) {
					continue
				}

				if s.logger != nil {
					s.logger.Info("🔁 Requeuing job after backoff",
						zap.String("job_id", job.ID.String()),
						zap.Int("retry_count", job.RetryCount),
					)
				}
				s.jobRepo.UpdateJobStatus(parentCtx, job.ID, entities.ExtractionJobStatusPending)
			}
		}
	}
}

// cleanupZombieJobs resets jobs stuck in running status for >10 minutes
func (s *extractionService) cleanupZombieJobs(parentCtx context.Context) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.workerStopChan:
			return

		case <-ticker.C:
			jobs, err := s.jobRepo.GetJobsByStatus(parentCtx, entities.ExtractionJobStatusRunning)
			if err != nil {
				continue
			}

			for _, job := range jobs {
				if job.UpdatedAt.Before(time.Now().Add(-10 * time.Minute)) {
					if s.logger != nil {
						s.logger.Warn("🧹 Cleaning up zombie job",
							zap.String("job_id", job.ID.String()),
							zap.Time("updated_at", job.UpdatedAt),
						)
					}

					s.jobRepo.UpdateJobStatus(parentCtx, job.ID, entities.ExtractionJobStatusPending)
				}
			}
		}
	}
}

// extractionCacheKey derives the cache key for a model/transcript pair
func extractionCacheKey(model, transcript string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + transcript))
	return "extraction:" + hex.EncodeToString(sum[:])
}

// truncate shortens a string for log output
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
