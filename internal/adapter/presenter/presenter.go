// Package presenter converts domain entities into API response shapes.
package presenter

import (
	dialoguedto "github.com/umang-projects/action-item-extractor/internal/adapter/dto/dialogue"
	extractiondto "github.com/umang-projects/action-item-extractor/internal/adapter/dto/extraction"
	"github.com/umang-projects/action-item-extractor/internal/domain/entities"
)

// ToDialogueResponse converts a dialogue entity to its response shape
func ToDialogueResponse(d *entities.Dialogue) *dialoguedto.DialogueResponse {
	if d == nil {
		return nil
	}

	turns := make([]dialoguedto.TurnResponse, 0, len(d.Turns))
	for _, turn := range d.Turns {
		turns = append(turns, dialoguedto.TurnResponse{
			Speaker: turn.Speaker,
			Text:    turn.Text,
		})
	}

	return &dialoguedto.DialogueResponse{
		ID:        d.ID.String(),
		Title:     d.Title,
		Turns:     turns,
		TurnCount: d.TurnCount,
		CreatedAt: d.CreatedAt,
	}
}

// ToExtractionResponse converts an extraction entity to its response shape
func ToExtractionResponse(e *entities.Extraction) *extractiondto.ExtractionResponse {
	if e == nil {
		return nil
	}

	items := make([]extractiondto.ActionItemResponse, 0, len(e.Items))
	for _, item := range e.Items {
		items = append(items, extractiondto.ActionItemResponse{
			Owner:    item.Owner,
			Task:     item.Task,
			Deadline: item.Deadline,
		})
	}

	resp := &extractiondto.ExtractionResponse{
		ID:           e.ID.String(),
		DialogueID:   e.DialogueID.String(),
		ModelVariant: e.ModelVariant,
		Valid:        e.Valid,
		ActionItems:  items,
		LatencyMs:    e.LatencyMs,
		Attempts:     e.Metadata.Data().Attempts,
		CreatedAt:    e.CreatedAt,
	}

	if e.ParseError != nil {
		resp.ParseError = *e.ParseError
	}

	return resp
}

// ToJobResponse converts an extraction job entity to its response shape
func ToJobResponse(j *entities.ExtractionJob) *extractiondto.JobResponse {
	if j == nil {
		return nil
	}

	resp := &extractiondto.JobResponse{
		ID:           j.ID.String(),
		DialogueID:   j.DialogueID.String(),
		Status:       string(j.Status),
		ModelVariant: j.ModelVariant,
		RetryCount:   j.RetryCount,
		CreatedAt:    j.CreatedAt,
		CompletedAt:  j.CompletedAt,
	}

	if j.ExtractionID != nil {
		resp.ExtractionID = j.ExtractionID.String()
	}
	if j.LastError != nil {
		resp.LastError = *j.LastError
	}

	return resp
}
