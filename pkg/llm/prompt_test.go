package llm

import (
	"strings"
	"testing"

	"github.com/umang-projects/action-item-extractor/internal/domain/entities"
)

func TestFormatDialogue(t *testing.T) {
	turns := []entities.DialogueTurn{
		{Speaker: "Alex", Text: "I'll send the revised budget by Friday."},
		{Speaker: "Maria", Text: "  I can book the conference room.  "},
	}

	got := FormatDialogue(turns)
	want := "Alex: I'll send the revised budget by Friday.\nMaria: I can book the conference room.\n"
	if got != want {
		t.Fatalf("unexpected transcript:\n%q\nwant:\n%q", got, want)
	}
}

func TestBuildMessages(t *testing.T) {
	messages := BuildMessages("Alex: hello\n")

	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != RoleSystem {
		t.Fatalf("expected system message first, got %s", messages[0].Role)
	}
	if !strings.Contains(messages[0].Content, `"action_items"`) {
		t.Fatal("system instruction must describe the output schema")
	}
	if messages[1].Role != RoleUser {
		t.Fatalf("expected user message, got %s", messages[1].Role)
	}
	if !strings.Contains(messages[1].Content, "Alex: hello") {
		t.Fatal("user message must contain the transcript")
	}
}

func TestBuildRepairMessages(t *testing.T) {
	messages := BuildRepairMessages("Alex: hello\n", "Sure! Here are the items:")

	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}
	if messages[2].Role != RoleAssistant {
		t.Fatalf("expected assistant message third, got %s", messages[2].Role)
	}
	if messages[2].Content != "Sure! Here are the items:" {
		t.Fatal("assistant message must carry the rejected completion")
	}
	if !strings.Contains(messages[3].Content, "valid JSON") {
		t.Fatal("final message must ask for valid JSON")
	}
}

func TestRenderInstructPrompt(t *testing.T) {
	prompt := RenderInstructPrompt(BuildMessages("Alex: hello\n"))

	if !strings.HasPrefix(prompt, "[INST] ") {
		t.Fatalf("prompt must start with [INST], got %q", prompt[:20])
	}
	if !strings.HasSuffix(prompt, " [/INST]") {
		t.Fatal("prompt must end with [/INST]")
	}
	// System instruction folds into the first user turn
	if !strings.Contains(prompt, "action_items") {
		t.Fatal("prompt must include the system instruction")
	}
	if strings.Count(prompt, "[INST]") != 1 {
		t.Fatalf("expected a single instruction block, got %d", strings.Count(prompt, "[INST]"))
	}
}

func TestRenderInstructPrompt_MultiTurn(t *testing.T) {
	prompt := RenderInstructPrompt(BuildRepairMessages("Alex: hello\n", "not json"))

	if strings.Count(prompt, "[INST]") != 2 {
		t.Fatalf("expected two instruction blocks, got %d", strings.Count(prompt, "[INST]"))
	}
	if !strings.Contains(prompt, " not json ") {
		t.Fatal("assistant turn must appear between instruction blocks")
	}
}
