package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/umang-projects/action-item-extractor/errors"
	extractiondto "github.com/umang-projects/action-item-extractor/internal/adapter/dto/extraction"
	"github.com/umang-projects/action-item-extractor/internal/adapter/presenter"
	"github.com/umang-projects/action-item-extractor/internal/domain/entities"
	"github.com/umang-projects/action-item-extractor/internal/domain/repositories"
	extractionUsecase "github.com/umang-projects/action-item-extractor/internal/usecase/extraction"
)

// Extraction handles extraction-related HTTP requests
type Extraction struct {
	extractionService extractionUsecase.Service
	extractionRepo    repositories.ExtractionRepository
	jobRepo           repositories.ExtractionJobRepository
	logger            *zap.Logger
}

// NewExtractionHandler creates a new extraction handler
func NewExtractionHandler(
	extractionService extractionUsecase.Service,
	extractionRepo repositories.ExtractionRepository,
	jobRepo repositories.ExtractionJobRepository,
	logger *zap.Logger,
) *Extraction {
	return &Extraction{
		extractionService: extractionService,
		extractionRepo:    extractionRepo,
		jobRepo:           jobRepo,
		logger:            logger,
	}
}

// CreateExtraction handles POST /extractions
// @Summary      Run a synchronous extraction
// @Description  Runs the model over a stored dialogue and returns the extracted action items
// @Tags         Extractions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      extraction.CreateExtractionRequest  true  "Extraction request"
// @Success      200      {object}  extraction.ExtractionResponse
// @Failure      400      {object}  map[string]interface{}  "Invalid request"
// @Failure      404      {object}  map[string]interface{}  "Dialogue not found"
// @Failure      422      {object}  map[string]interface{}  "Model output failed validation"
// @Failure      502      {object}  map[string]interface{}  "Model backend failed"
// @Router       /extractions [post]
func (h *Extraction) CreateExtraction(c echo.Context) error {
	var req extractiondto.CreateExtractionRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	dialogueID, err := uuid.Parse(req.DialogueID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid dialogue ID"))
	}

	extraction, err := h.extractionService.ExtractDialogue(c.Request().Context(), dialogueID)
	if err != nil {
		// An invalid completion still produced a stored extraction; expose
		// it in the error response so the caller can inspect the raw text
		if extraction != nil {
			return h.respondInvalidExtraction(c, extraction, err)
		}
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToExtractionResponse(extraction))
}

// respondInvalidExtraction returns the 422 body for a persisted but invalid
// extraction
func (h *Extraction) respondInvalidExtraction(c echo.Context, extraction *entities.Extraction, err error) error {
	appErr := toAppError(err)

	if h.logger != nil {
		h.logger.Error("http.response.error",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Any("app_code", appErr.Code),
			zap.String("extraction_id", extraction.ID.String()),
			zap.Error(err),
		)
	}

	return c.JSON(appErr.HTTPCode, map[string]interface{}{
		"code":       appErr.Code,
		"message":    appErr.Message,
		"extraction": presenter.ToExtractionResponse(extraction),
	})
}

// GetExtraction handles GET /extractions/:id
// @Summary      Get an extraction
// @Tags         Extractions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Extraction ID (UUID)"
// @Success      200  {object}  extraction.ExtractionResponse
// @Failure      404  {object}  map[string]interface{}  "Extraction not found"
// @Router       /extractions/{id} [get]
func (h *Extraction) GetExtraction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid extraction ID"))
	}

	extraction, err := h.extractionRepo.FindByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToExtractionResponse(extraction))
}

// ListDialogueExtractions handles GET /dialogues/:id/extractions
// @Summary      List extractions for a dialogue
// @Tags         Extractions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Dialogue ID (UUID)"
// @Success      200  {array}   extraction.ExtractionResponse
// @Router       /dialogues/{id}/extractions [get]
func (h *Extraction) ListDialogueExtractions(c echo.Context) error {
	dialogueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid dialogue ID"))
	}

	extractions, err := h.extractionRepo.ListByDialogue(c.Request().Context(), dialogueID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed(err))
	}

	resp := make([]*extractiondto.ExtractionResponse, 0, len(extractions))
	for _, e := range extractions {
		resp = append(resp, presenter.ToExtractionResponse(e))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, resp)
}

// EnqueueExtraction handles POST /dialogues/:id/extract
// @Summary      Enqueue an asynchronous extraction
// @Description  Queues an extraction job; poll the job endpoint for the result
// @Tags         Extractions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Dialogue ID (UUID)"
// @Success      202  {object}  extraction.JobResponse
// @Failure      404  {object}  map[string]interface{}  "Dialogue not found"
// @Router       /dialogues/{id}/extract [post]
func (h *Extraction) EnqueueExtraction(c echo.Context) error {
	dialogueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid dialogue ID"))
	}

	job, err := h.extractionService.EnqueueExtraction(c.Request().Context(), dialogueID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusAccepted, presenter.ToJobResponse(job))
}

// GetJob handles GET /jobs/:id
// @Summary      Get an extraction job
// @Tags         Jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID (UUID)"
// @Success      200  {object}  extraction.JobResponse
// @Failure      404  {object}  map[string]interface{}  "Job not found"
// @Router       /jobs/{id} [get]
func (h *Extraction) GetJob(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid job ID"))
	}

	job, err := h.jobRepo.GetJobByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed(err))
	}
	if job == nil {
		return HandleError(h.logger, c, entities.ErrJobNotFound)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToJobResponse(job))
}
