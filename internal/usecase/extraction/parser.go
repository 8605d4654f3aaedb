package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/umang-projects/action-item-extractor/internal/domain/entities"
)

// Parser handles parsing and validation of model completions
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// ParseActionItemDocument parses a raw completion into an ActionItemDocument.
// The fine-tuned adapters are trained to emit bare JSON, but base-model
// habits leak through and completions sometimes arrive wrapped in markdown
// code fences. Fences are stripped before parsing; anything else that is
// not valid JSON is a parse failure, not something to repair locally.
func (p *Parser) ParseActionItemDocument(raw string) (*entities.ActionItemDocument, error) {
	jsonString := extractJSON(raw)

	if jsonString == "" {
		return nil, fmt.Errorf("empty completion")
	}

	var doc entities.ActionItemDocument
	if err := json.Unmarshal([]byte(jsonString), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := p.ValidateDocument(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// ValidateDocument validates that the document matches the trained schema
func (p *Parser) ValidateDocument(doc *entities.ActionItemDocument) error {
	if doc == nil {
		return fmt.Errorf("document is nil")
	}

	// A document without the action_items key is malformed. An empty list
	// is fine: a dialogue with no commitments extracts to zero items.
	if doc.ActionItems == nil {
		return fmt.Errorf("missing action_items in response")
	}

	for i, item := range doc.ActionItems {
		if strings.TrimSpace(item.Task) == "" {
			return fmt.Errorf("action item %d has empty task", i)
		}
		if strings.TrimSpace(item.Owner) == "" {
			return fmt.Errorf("action item %d has empty owner", i)
		}
		// Deadline may legitimately be empty when none was mentioned
	}

	return nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
