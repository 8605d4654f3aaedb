package llm

import (
	"fmt"
	"strings"

	"github.com/umang-projects/action-item-extractor/internal/domain/entities"
)

// SystemInstruction describes the extraction task and the exact output schema.
// The adapters were fine-tuned against this instruction; changing it degrades
// output validity.
const SystemInstruction = `You are an assistant that extracts action items from meeting dialogues.
Read the dialogue and respond with a single JSON object of the form:
{"action_items": [{"owner": "<person responsible>", "task": "<what to do>", "deadline": "<deadline phrase>"}]}
Respond with the JSON object only. Do not add explanations or markdown.`

// FormatDialogue renders dialogue turns as "Speaker: text" lines, the format
// the adapters were trained on
func FormatDialogue(turns []entities.DialogueTurn) string {
	var sb strings.Builder
	for _, turn := range turns {
		sb.WriteString(turn.Speaker)
		sb.WriteString(": ")
		sb.WriteString(strings.TrimSpace(turn.Text))
		sb.WriteString("\n")
	}
	return sb.String()
}

// BuildMessages builds the chat messages for an extraction request
func BuildMessages(transcript string) []ChatMessage {
	return []ChatMessage{
		{Role: RoleSystem, Content: SystemInstruction},
		{Role: RoleUser, Content: "Dialogue:\n" + transcript},
	}
}

// BuildRepairMessages builds the single corrective re-prompt used when a
// completion did not parse as JSON
func BuildRepairMessages(transcript, rawCompletion string) []ChatMessage {
	return []ChatMessage{
		{Role: RoleSystem, Content: SystemInstruction},
		{Role: RoleUser, Content: "Dialogue:\n" + transcript},
		{Role: RoleAssistant, Content: rawCompletion},
		{Role: RoleUser, Content: `Your previous answer was not valid JSON. Respond again with only a valid JSON object of the form {"action_items": [{"owner": "...", "task": "...", "deadline": "..."}]}.`},
	}
}

// RenderInstructPrompt flattens chat messages into the [INST] instruction
// format used by the Mistral and Llama-2 bases. The TGI backend takes a raw
// prompt, so the chat template is applied client-side.
func RenderInstructPrompt(messages []ChatMessage) string {
	var system string
	var sb strings.Builder

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = msg.Content
		case RoleUser:
			content := msg.Content
			if system != "" {
				content = system + "\n\n" + content
				system = ""
			}
			sb.WriteString(fmt.Sprintf("[INST] %s [/INST]", content))
		case RoleAssistant:
			sb.WriteString(" ")
			sb.WriteString(msg.Content)
			sb.WriteString(" ")
		}
	}
	return sb.String()
}
