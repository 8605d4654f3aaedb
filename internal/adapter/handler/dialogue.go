package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/umang-projects/action-item-extractor/errors"
	dialoguedto "github.com/umang-projects/action-item-extractor/internal/adapter/dto/dialogue"
	"github.com/umang-projects/action-item-extractor/internal/adapter/presenter"
	"github.com/umang-projects/action-item-extractor/internal/domain/entities"
	"github.com/umang-projects/action-item-extractor/internal/domain/repositories"
)

// Dialogue handles dialogue-related HTTP requests
type Dialogue struct {
	dialogueRepo repositories.DialogueRepository
	logger       *zap.Logger
}

// NewDialogueHandler creates a new dialogue handler
func NewDialogueHandler(dialogueRepo repositories.DialogueRepository, logger *zap.Logger) *Dialogue {
	return &Dialogue{
		dialogueRepo: dialogueRepo,
		logger:       logger,
	}
}

// CreateDialogue handles POST /dialogues
// @Summary      Store a dialogue
// @Description  Stores a speaker-turn dialogue for later extraction
// @Tags         Dialogues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dialogue.CreateDialogueRequest  true  "Dialogue payload"
// @Success      201      {object}  dialogue.DialogueResponse
// @Failure      400      {object}  map[string]interface{}  "Invalid request"
// @Router       /dialogues [post]
func (h *Dialogue) CreateDialogue(c echo.Context) error {
	var req dialoguedto.CreateDialogueRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	turns := make([]entities.DialogueTurn, 0, len(req.Turns))
	for _, turn := range req.Turns {
		turns = append(turns, entities.DialogueTurn{
			Speaker: turn.Speaker,
			Text:    turn.Text,
		})
	}

	dialogue := entities.NewDialogue(req.Title, turns)
	if err := h.dialogueRepo.Create(c.Request().Context(), dialogue); err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed(err))
	}

	if h.logger != nil {
		h.logger.Info("dialogue stored",
			zap.String("dialogue_id", dialogue.ID.String()),
			zap.Int("turn_count", dialogue.TurnCount),
		)
	}

	return HandleSuccess(h.logger, c, http.StatusCreated, presenter.ToDialogueResponse(dialogue))
}

// GetDialogue handles GET /dialogues/:id
// @Summary      Get a dialogue
// @Tags         Dialogues
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Dialogue ID (UUID)"
// @Success      200  {object}  dialogue.DialogueResponse
// @Failure      404  {object}  map[string]interface{}  "Dialogue not found"
// @Router       /dialogues/{id} [get]
func (h *Dialogue) GetDialogue(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid dialogue ID"))
	}

	dialogue, err := h.dialogueRepo.FindByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToDialogueResponse(dialogue))
}

// ListDialogues handles GET /dialogues
// @Summary      List dialogues
// @Tags         Dialogues
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200  {object}  dialogue.ListDialoguesResponse
// @Router       /dialogues [get]
func (h *Dialogue) ListDialogues(c echo.Context) error {
	var req dialoguedto.ListDialoguesRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	dialogues, total, err := h.dialogueRepo.List(c.Request().Context(), req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed(err))
	}

	resp := dialoguedto.ListDialoguesResponse{
		Dialogues: make([]*dialoguedto.DialogueResponse, 0, len(dialogues)),
		Total:     total,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	for _, d := range dialogues {
		resp.Dialogues = append(resp.Dialogues, presenter.ToDialogueResponse(d))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, resp)
}

// DeleteDialogue handles DELETE /dialogues/:id
// @Summary      Delete a dialogue
// @Tags         Dialogues
// @Security     BearerAuth
// @Param        id   path  string  true  "Dialogue ID (UUID)"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}  "Dialogue not found"
// @Router       /dialogues/{id} [delete]
func (h *Dialogue) DeleteDialogue(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid dialogue ID"))
	}

	if _, err := h.dialogueRepo.FindByID(c.Request().Context(), id); err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.dialogueRepo.Delete(c.Request().Context(), id); err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed(err))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, map[string]interface{}{"deleted": id.String()})
}
