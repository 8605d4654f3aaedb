package extraction

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/umang-projects/action-item-extractor/errors"
	"github.com/umang-projects/action-item-extractor/internal/domain/entities"
	"github.com/umang-projects/action-item-extractor/internal/infrastructure/cache"
	"github.com/umang-projects/action-item-extractor/pkg/config"
	"github.com/umang-projects/action-item-extractor/pkg/llm"
)

// fakeDialogueRepo is an in-memory DialogueRepository
type fakeDialogueRepo struct {
	dialogues map[uuid.UUID]*entities.Dialogue
}

func newFakeDialogueRepo() *fakeDialogueRepo {
	return &fakeDialogueRepo{dialogues: make(map[uuid.UUID]*entities.Dialogue)}
}

func (r *fakeDialogueRepo) Create(_ context.Context, dialogue *entities.Dialogue) error {
	r.dialogues[dialogue.ID] = dialogue
	return nil
}

func (r *fakeDialogueRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Dialogue, error) {
	d, ok := r.dialogues[id]
	if !ok {
		return nil, entities.ErrDialogueNotFound
	}
	return d, nil
}

func (r *fakeDialogueRepo) List(_ context.Context, limit, offset int) ([]*entities.Dialogue, int64, error) {
	out := make([]*entities.Dialogue, 0, len(r.dialogues))
	for _, d := range r.dialogues {
		out = append(out, d)
	}
	return out, int64(len(out)), nil
}

func (r *fakeDialogueRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.dialogues, id)
	return nil
}

// fakeExtractionRepo is an in-memory ExtractionRepository
type fakeExtractionRepo struct {
	extractions map[uuid.UUID]*entities.Extraction
	saveCount   int
}

func newFakeExtractionRepo() *fakeExtractionRepo {
	return &fakeExtractionRepo{extractions: make(map[uuid.UUID]*entities.Extraction)}
}

func (r *fakeExtractionRepo) SaveExtraction(_ context.Context, extraction *entities.Extraction) error {
	r.extractions[extraction.ID] = extraction
	r.saveCount++
	return nil
}

func (r *fakeExtractionRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Extraction, error) {
	e, ok := r.extractions[id]
	if !ok {
		return nil, entities.ErrExtractionNotFound
	}
	return e, nil
}

func (r *fakeExtractionRepo) ListByDialogue(_ context.Context, dialogueID uuid.UUID) ([]*entities.Extraction, error) {
	out := make([]*entities.Extraction, 0)
	for _, e := range r.extractions {
		if e.DialogueID == dialogueID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExtractionRepo) ListActionItems(_ context.Context, extractionID uuid.UUID) ([]*entities.ActionItem, error) {
	e, ok := r.extractions[extractionID]
	if !ok {
		return nil, entities.ErrExtractionNotFound
	}
	out := make([]*entities.ActionItem, 0, len(e.Items))
	for i := range e.Items {
		out = append(out, &e.Items[i])
	}
	return out, nil
}

// scriptedClient returns canned completions in order
type scriptedClient struct {
	completions []string
	err         error
	calls       int
}

func (c *scriptedClient) Complete(_ context.Context, _ *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if c.err != nil {
		return nil, c.err
	}
	idx := c.calls
	c.calls++
	if idx >= len(c.completions) {
		idx = len(c.completions) - 1
	}
	return &llm.CompletionResponse{
		Content:    c.completions[idx],
		Model:      "mistral-7b-action-items",
		TokensIn:   120,
		TokensOut:  48,
		StopReason: "stop",
	}, nil
}

func (c *scriptedClient) Name() string  { return "vllm" }
func (c *scriptedClient) Model() string { return "mistral-7b-action-items" }

func testConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{
			Backend:        "vllm",
			Model:          "mistral-7b-action-items",
			Temperature:    0.1,
			MaxTokens:      512,
			MaxPromptChars: 24000,
		},
		Redis: config.RedisConfig{
			TTL: time.Hour,
		},
		Worker: config.WorkerConfig{
			Count:        1,
			PollInterval: 10 * time.Millisecond,
		},
	}
}

func testDialogue() *entities.Dialogue {
	return entities.NewDialogue("sprint planning", []entities.DialogueTurn{
		{Speaker: "Alex", Text: "I'll send the revised budget by Friday."},
		{Speaker: "Maria", Text: "I can book the conference room, end of day Thursday at the latest."},
		{Speaker: "Sam", Text: "Sounds good to me."},
		{Speaker: "Alex", Text: "Great, let's wrap up."},
	})
}

func newTestService(dialogueRepo *fakeDialogueRepo, extractionRepo *fakeExtractionRepo, client llm.Client, store cache.Store) Service {
	return NewExtractionService(dialogueRepo, extractionRepo, nil, client, store, nil, testConfig(), nil)
}

func TestExtractDialogue_Success(t *testing.T) {
	dialogueRepo := newFakeDialogueRepo()
	extractionRepo := newFakeExtractionRepo()
	client := &scriptedClient{completions: []string{canonicalCompletion}}

	dialogue := testDialogue()
	dialogueRepo.Create(context.Background(), dialogue)

	svc := newTestService(dialogueRepo, extractionRepo, client, nil)

	extraction, err := svc.ExtractDialogue(context.Background(), dialogue.ID)
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}

	if !extraction.Valid {
		t.Fatal("expected valid extraction")
	}
	if len(extraction.Items) != 2 {
		t.Fatalf("expected 2 action items, got %d", len(extraction.Items))
	}
	if extraction.Items[0].Owner != "Alex" || extraction.Items[0].Deadline != "by Friday" {
		t.Fatalf("unexpected first item: %+v", extraction.Items[0])
	}
	if extraction.Items[1].Owner != "Maria" || extraction.Items[1].Deadline != "end of day Thursday" {
		t.Fatalf("unexpected second item: %+v", extraction.Items[1])
	}
	if extraction.Items[0].Position != 0 || extraction.Items[1].Position != 1 {
		t.Fatal("item positions must follow completion order")
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 backend call, got %d", client.calls)
	}

	meta := extraction.Metadata.Data()
	if meta.Attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", meta.Attempts)
	}
	if extractionRepo.saveCount != 1 {
		t.Fatalf("expected 1 save, got %d", extractionRepo.saveCount)
	}
}

func TestExtractDialogue_FencedCompletion(t *testing.T) {
	dialogueRepo := newFakeDialogueRepo()
	extractionRepo := newFakeExtractionRepo()
	client := &scriptedClient{completions: []string{"```json\n" + canonicalCompletion + "\n```"}}

	dialogue := testDialogue()
	dialogueRepo.Create(context.Background(), dialogue)

	svc := newTestService(dialogueRepo, extractionRepo, client, nil)

	extraction, err := svc.ExtractDialogue(context.Background(), dialogue.ID)
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}
	if !extraction.Valid {
		t.Fatal("expected valid extraction")
	}
	if client.calls != 1 {
		t.Fatalf("fence stripping must not trigger a re-prompt, got %d calls", client.calls)
	}
}

func TestExtractDialogue_RepairReprompt(t *testing.T) {
	dialogueRepo := newFakeDialogueRepo()
	extractionRepo := newFakeExtractionRepo()
	client := &scriptedClient{completions: []string{
		"Sure! Here are the action items:",
		canonicalCompletion,
	}}

	dialogue := testDialogue()
	dialogueRepo.Create(context.Background(), dialogue)

	svc := newTestService(dialogueRepo, extractionRepo, client, nil)

	extraction, err := svc.ExtractDialogue(context.Background(), dialogue.ID)
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}
	if !extraction.Valid {
		t.Fatal("expected valid extraction after re-prompt")
	}
	if client.calls != 2 {
		t.Fatalf("expected 2 backend calls, got %d", client.calls)
	}

	meta := extraction.Metadata.Data()
	if meta.Attempts != 2 {
		t.Fatalf("expected 2 attempts recorded, got %d", meta.Attempts)
	}
}

func TestExtractDialogue_InvalidAfterReprompt(t *testing.T) {
	dialogueRepo := newFakeDialogueRepo()
	extractionRepo := newFakeExtractionRepo()
	client := &scriptedClient{completions: []string{
		"not json",
		"still not json",
	}}

	dialogue := testDialogue()
	dialogueRepo.Create(context.Background(), dialogue)

	svc := newTestService(dialogueRepo, extractionRepo, client, nil)

	extraction, err := svc.ExtractDialogue(context.Background(), dialogue.ID)
	if err == nil {
		t.Fatal("expected error for invalid output")
	}

	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != apperrors.ErrorCode_MODEL_OUTPUT_INVALID {
		t.Fatalf("unexpected error code %s", appErr.Code)
	}

	// The invalid run is still persisted for later inspection
	if extraction == nil {
		t.Fatal("expected extraction record for invalid output")
	}
	if extraction.Valid {
		t.Fatal("extraction must be marked invalid")
	}
	if extraction.ParseError == nil {
		t.Fatal("expected parse error to be recorded")
	}
	if extraction.RawCompletion != "still not json" {
		t.Fatalf("expected second completion to be stored, got %q", extraction.RawCompletion)
	}
	if client.calls != 2 {
		t.Fatalf("expected exactly one re-prompt, got %d calls", client.calls)
	}
	if extractionRepo.saveCount != 1 {
		t.Fatalf("expected invalid extraction to be saved, got %d saves", extractionRepo.saveCount)
	}
}

func TestExtractDialogue_EmptyDialogue(t *testing.T) {
	dialogueRepo := newFakeDialogueRepo()
	extractionRepo := newFakeExtractionRepo()
	client := &scriptedClient{completions: []string{canonicalCompletion}}

	dialogue := entities.NewDialogue("empty", nil)
	dialogueRepo.Create(context.Background(), dialogue)

	svc := newTestService(dialogueRepo, extractionRepo, client, nil)

	_, err := svc.ExtractDialogue(context.Background(), dialogue.ID)
	if err == nil {
		t.Fatal("expected error for empty dialogue")
	}

	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != apperrors.ErrorCode_DIALOGUE_EMPTY {
		t.Fatalf("unexpected error code %s", appErr.Code)
	}
	if client.calls != 0 {
		t.Fatal("backend must not be called for an empty dialogue")
	}
}

func TestExtractDialogue_PromptTooLong(t *testing.T) {
	dialogueRepo := newFakeDialogueRepo()
	extractionRepo := newFakeExtractionRepo()
	client := &scriptedClient{completions: []string{canonicalCompletion}}

	long := make([]byte, 2048)
	for i := range long {
		long[i] = 'a'
	}
	dialogue := entities.NewDialogue("long", []entities.DialogueTurn{
		{Speaker: "Alex", Text: string(long)},
	})
	dialogueRepo.Create(context.Background(), dialogue)

	cfg := testConfig()
	cfg.LLM.MaxPromptChars = 1024
	svc := NewExtractionService(dialogueRepo, extractionRepo, nil, client, nil, nil, cfg, nil)

	_, err := svc.ExtractDialogue(context.Background(), dialogue.ID)
	if err == nil {
		t.Fatal("expected error for oversized prompt")
	}

	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != apperrors.ErrorCode_PROMPT_TOO_LONG {
		t.Fatalf("unexpected error code %s", appErr.Code)
	}
	if client.calls != 0 {
		t.Fatal("backend must not be called for an oversized prompt")
	}
}

func TestExtractDialogue_NotFound(t *testing.T) {
	dialogueRepo := newFakeDialogueRepo()
	extractionRepo := newFakeExtractionRepo()
	client := &scriptedClient{completions: []string{canonicalCompletion}}

	svc := newTestService(dialogueRepo, extractionRepo, client, nil)

	_, err := svc.ExtractDialogue(context.Background(), uuid.New())
	if !errors.Is(err, entities.ErrDialogueNotFound) {
		t.Fatalf("expected ErrDialogueNotFound, got %v", err)
	}
}

func TestExtractDialogue_CacheHit(t *testing.T) {
	dialogueRepo := newFakeDialogueRepo()
	extractionRepo := newFakeExtractionRepo()
	client := &scriptedClient{completions: []string{canonicalCompletion}}
	store := cache.NewMemoryStore()

	dialogue := testDialogue()
	dialogueRepo.Create(context.Background(), dialogue)

	svc := newTestService(dialogueRepo, extractionRepo, client, store)

	first, err := svc.ExtractDialogue(context.Background(), dialogue.ID)
	if err != nil {
		t.Fatalf("first extraction failed: %v", err)
	}

	second, err := svc.ExtractDialogue(context.Background(), dialogue.ID)
	if err != nil {
		t.Fatalf("second extraction failed: %v", err)
	}

	if client.calls != 1 {
		t.Fatalf("expected cached result to skip backend, got %d calls", client.calls)
	}
	if second.ID != first.ID {
		t.Fatal("expected the cached extraction to be returned")
	}
}

func TestExtractDialogue_BackendError(t *testing.T) {
	dialogueRepo := newFakeDialogueRepo()
	extractionRepo := newFakeExtractionRepo()
	client := &scriptedClient{err: fmt.Errorf("tgi returned status 400")}

	dialogue := testDialogue()
	dialogueRepo.Create(context.Background(), dialogue)

	svc := newTestService(dialogueRepo, extractionRepo, client, nil)

	_, err := svc.ExtractDialogue(context.Background(), dialogue.ID)
	if err == nil {
		t.Fatal("expected error when backend fails")
	}

	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != apperrors.ErrorCode_MODEL_BACKEND_FAILED {
		t.Fatalf("unexpected error code %s", appErr.Code)
	}
}

func TestEnqueueExtraction_DialogueNotFound(t *testing.T) {
	dialogueRepo := newFakeDialogueRepo()
	extractionRepo := newFakeExtractionRepo()
	client := &scriptedClient{completions: []string{canonicalCompletion}}

	svc := newTestService(dialogueRepo, extractionRepo, client, nil)

	_, err := svc.EnqueueExtraction(context.Background(), uuid.New())
	if !errors.Is(err, entities.ErrDialogueNotFound) {
		t.Fatalf("expected ErrDialogueNotFound, got %v", err)
	}
}

// fakeJobRepo is an in-memory ExtractionJobRepository. The mutex matters:
// worker goroutines race on it during pool tests.
type fakeJobRepo struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]*entities.ExtractionJob
	claims  int
	retries int
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]*entities.ExtractionJob)}
}

func (r *fakeJobRepo) CreateJob(_ context.Context, job *entities.ExtractionJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *fakeJobRepo) GetJobByID(_ context.Context, jobID uuid.UUID) (*entities.ExtractionJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return nil, nil
	}
	cp := *job
	return &cp, nil
}

func (r *fakeJobRepo) GetJobsByStatus(_ context.Context, status entities.ExtractionJobStatus) ([]entities.ExtractionJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.ExtractionJob, 0)
	for _, job := range r.jobs {
		if job.Status == status {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) ClaimJob(_ context.Context, jobID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok || job.Status != entities.ExtractionJobStatusPending {
		return false, nil
	}
	now := time.Now()
	job.Status = entities.ExtractionJobStatusRunning
	job.StartedAt = &now
	job.UpdatedAt = now
	r.claims++
	return true, nil
}

func (r *fakeJobRepo) UpdateJobStatus(_ context.Context, jobID uuid.UUID, status entities.ExtractionJobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		job.Status = status
		job.UpdatedAt = time.Now()
	}
	return nil
}

func (r *fakeJobRepo) MarkJobAsCompleted(_ context.Context, jobID, extractionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		now := time.Now()
		job.Status = entities.ExtractionJobStatusCompleted
		job.ExtractionID = &extractionID
		job.CompletedAt = &now
		job.UpdatedAt = now
	}
	return nil
}

func (r *fakeJobRepo) MarkJobAsFailed(_ context.Context, jobID uuid.UUID, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		job.Status = entities.ExtractionJobStatusFailed
		job.LastError = &errMsg
		job.UpdatedAt = time.Now()
	}
	return nil
}

func (r *fakeJobRepo) ScheduleRetry(_ context.Context, jobID uuid.UUID, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		job.Status = entities.ExtractionJobStatusRetrying
		job.RetryCount++
		job.LastError = &errMsg
		job.UpdatedAt = time.Now()
	}
	r.retries++
	return nil
}

func (r *fakeJobRepo) claimCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claims
}

func waitForJobStatus(t *testing.T, repo *fakeJobRepo, jobID uuid.UUID, status entities.ExtractionJobStatus) *entities.ExtractionJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, _ := repo.GetJobByID(context.Background(), jobID)
		if job != nil && job.Status == status {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := repo.GetJobByID(context.Background(), jobID)
	t.Fatalf("job never reached status %s, last seen: %+v", status, job)
	return nil
}

func TestWorkerPool_CompletesPendingJob(t *testing.T) {
	dialogueRepo := newFakeDialogueRepo()
	extractionRepo := newFakeExtractionRepo()
	jobRepo := newFakeJobRepo()
	client := &scriptedClient{completions: []string{canonicalCompletion}}

	dialogue := testDialogue()
	dialogueRepo.Create(context.Background(), dialogue)

	svc := NewExtractionService(dialogueRepo, extractionRepo, jobRepo, client, nil, nil, testConfig(), nil)

	job, err := svc.EnqueueExtraction(context.Background(), dialogue.ID)
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if job.Status != entities.ExtractionJobStatusPending {
		t.Fatalf("expected pending job, got %s", job.Status)
	}

	if err := svc.StartWorkerPool(context.Background(), 1); err != nil {
		t.Fatalf("failed to start worker pool: %v", err)
	}
	defer svc.StopWorkerPool()

	done := waitForJobStatus(t, jobRepo, job.ID, entities.ExtractionJobStatusCompleted)
	if done.ExtractionID == nil {
		t.Fatal("completed job must link its extraction")
	}
	if done.CompletedAt == nil {
		t.Fatal("completed job must record a completion time")
	}

	extraction, err := extractionRepo.FindByID(context.Background(), *done.ExtractionID)
	if err != nil {
		t.Fatalf("extraction lookup failed: %v", err)
	}
	if !extraction.Valid || len(extraction.Items) != 2 {
		t.Fatalf("unexpected extraction: valid=%v items=%d", extraction.Valid, len(extraction.Items))
	}
}

func TestWorkerPool_SingleClaimUnderContention(t *testing.T) {
	dialogueRepo := newFakeDialogueRepo()
	extractionRepo := newFakeExtractionRepo()
	jobRepo := newFakeJobRepo()
	client := &scriptedClient{completions: []string{canonicalCompletion}}

	dialogue := testDialogue()
	dialogueRepo.Create(context.Background(), dialogue)

	svc := NewExtractionService(dialogueRepo, extractionRepo, jobRepo, client, nil, nil, testConfig(), nil)

	job, err := svc.EnqueueExtraction(context.Background(), dialogue.ID)
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	// Several workers poll the same pending job; the conditional claim must
	// let exactly one of them run it
	if err := svc.StartWorkerPool(context.Background(), 4); err != nil {
		t.Fatalf("failed to start worker pool: %v", err)
	}

	waitForJobStatus(t, jobRepo, job.ID, entities.ExtractionJobStatusCompleted)

	if err := svc.StopWorkerPool(); err != nil {
		t.Fatalf("failed to stop worker pool: %v", err)
	}

	if got := jobRepo.claimCount(); got != 1 {
		t.Fatalf("expected exactly 1 successful claim, got %d", got)
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 backend call, got %d", client.calls)
	}
	if extractionRepo.saveCount != 1 {
		t.Fatalf("expected 1 extraction save, got %d", extractionRepo.saveCount)
	}
}

func TestProcessClaimedJob_InvalidOutputCompletesJob(t *testing.T) {
	dialogueRepo := newFakeDialogueRepo()
	extractionRepo := newFakeExtractionRepo()
	jobRepo := newFakeJobRepo()
	client := &scriptedClient{completions: []string{"not json", "still not json"}}

	dialogue := testDialogue()
	dialogueRepo.Create(context.Background(), dialogue)

	svc := NewExtractionService(dialogueRepo, extractionRepo, jobRepo, client, nil, nil, testConfig(), nil).(*extractionService)

	job := entities.NewExtractionJob(dialogue.ID, client.Model())
	job.Status = entities.ExtractionJobStatusRunning
	jobRepo.CreateJob(context.Background(), job)

	svc.processClaimedJob(context.Background(), job, 0)

	stored, _ := jobRepo.GetJobByID(context.Background(), job.ID)
	// Validation failure is an extraction property, not a job failure
	if stored.Status != entities.ExtractionJobStatusCompleted {
		t.Fatalf("expected completed job for invalid output, got %s", stored.Status)
	}
	if stored.ExtractionID == nil {
		t.Fatal("job must link the invalid extraction")
	}
	if stored.RetryCount != 0 {
		t.Fatalf("invalid output must not consume retries, got %d", stored.RetryCount)
	}

	extraction, err := extractionRepo.FindByID(context.Background(), *stored.ExtractionID)
	if err != nil {
		t.Fatalf("extraction lookup failed: %v", err)
	}
	if extraction.Valid {
		t.Fatal("extraction must be marked invalid")
	}
	if extraction.ParseError == nil {
		t.Fatal("expected parse error to be recorded")
	}
}

func TestProcessClaimedJob_MissingDialogueMarksFailed(t *testing.T) {
	dialogueRepo := newFakeDialogueRepo()
	extractionRepo := newFakeExtractionRepo()
	jobRepo := newFakeJobRepo()
	client := &scriptedClient{completions: []string{canonicalCompletion}}

	svc := NewExtractionService(dialogueRepo, extractionRepo, jobRepo, client, nil, nil, testConfig(), nil).(*extractionService)

	job := entities.NewExtractionJob(uuid.New(), client.Model())
	job.Status = entities.ExtractionJobStatusRunning
	jobRepo.CreateJob(context.Background(), job)

	svc.processClaimedJob(context.Background(), job, 0)

	stored, _ := jobRepo.GetJobByID(context.Background(), job.ID)
	if stored.Status != entities.ExtractionJobStatusFailed {
		t.Fatalf("expected failed job, got %s", stored.Status)
	}
	if stored.LastError == nil {
		t.Fatal("expected last error to be recorded")
	}
	if client.calls != 0 {
		t.Fatal("backend must not be called for a missing dialogue")
	}
}

func TestHandleJobFailure_RetryableSchedulesRetry(t *testing.T) {
	jobRepo := newFakeJobRepo()
	client := &scriptedClient{}

	svc := NewExtractionService(newFakeDialogueRepo(), newFakeExtractionRepo(), jobRepo, client, nil, nil, testConfig(), nil).(*extractionService)

	job := entities.NewExtractionJob(uuid.New(), client.Model())
	job.Status = entities.ExtractionJobStatusRunning
	jobRepo.CreateJob(context.Background(), job)

	svc.handleJobFailure(context.Background(), job, fmt.Errorf("tgi returned status 503"))

	stored, _ := jobRepo.GetJobByID(context.Background(), job.ID)
	if stored.Status != entities.ExtractionJobStatusRetrying {
		t.Fatalf("expected retrying job, got %s", stored.Status)
	}
	if stored.RetryCount != 1 {
		t.Fatalf("expected retry count 1, got %d", stored.RetryCount)
	}
	if stored.LastError == nil {
		t.Fatal("expected last error to be recorded")
	}
}

func TestHandleJobFailure_NonRetryableMarksFailed(t *testing.T) {
	jobRepo := newFakeJobRepo()
	client := &scriptedClient{}

	svc := NewExtractionService(newFakeDialogueRepo(), newFakeExtractionRepo(), jobRepo, client, nil, nil, testConfig(), nil).(*extractionService)

	job := entities.NewExtractionJob(uuid.New(), client.Model())
	job.Status = entities.ExtractionJobStatusRunning
	jobRepo.CreateJob(context.Background(), job)

	svc.handleJobFailure(context.Background(), job, fmt.Errorf("tgi returned status 400"))

	stored, _ := jobRepo.GetJobByID(context.Background(), job.ID)
	if stored.Status != entities.ExtractionJobStatusFailed {
		t.Fatalf("expected failed job, got %s", stored.Status)
	}
	if jobRepo.retries != 0 {
		t.Fatalf("non-retryable error must not schedule a retry, got %d", jobRepo.retries)
	}
}

func TestHandleJobFailure_BudgetExhaustedMarksFailed(t *testing.T) {
	jobRepo := newFakeJobRepo()
	client := &scriptedClient{}

	svc := NewExtractionService(newFakeDialogueRepo(), newFakeExtractionRepo(), jobRepo, client, nil, nil, testConfig(), nil).(*extractionService)

	job := entities.NewExtractionJob(uuid.New(), client.Model())
	job.Status = entities.ExtractionJobStatusRunning
	job.RetryCount = job.MaxRetries
	jobRepo.CreateJob(context.Background(), job)

	svc.handleJobFailure(context.Background(), job, fmt.Errorf("tgi returned status 503"))

	stored, _ := jobRepo.GetJobByID(context.Background(), job.ID)
	if stored.Status != entities.ExtractionJobStatusFailed {
		t.Fatalf("expected failed job when retry budget is exhausted, got %s", stored.Status)
	}
}
