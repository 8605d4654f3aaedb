package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/umang-projects/action-item-extractor/internal/domain/entities"
	extractionUsecase "github.com/umang-projects/action-item-extractor/internal/usecase/extraction"
	"github.com/umang-projects/action-item-extractor/pkg/config"
	"github.com/umang-projects/action-item-extractor/pkg/llm"
)

// extract is a one-shot CLI: it reads a dialogue as "Speaker: text" lines,
// runs a single inference against the configured serving backend, and prints
// the extracted action items as JSON on stdout.
func main() {
	file := flag.String("file", "", "Dialogue file to read (default: stdin)")
	pretty := flag.Bool("pretty", false, "Indent the JSON output")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var input io.Reader = os.Stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatalf("failed to open %s: %v", *file, err)
		}
		defer f.Close()
		input = f
	}

	turns, err := readTurns(input)
	if err != nil {
		log.Fatalf("failed to read dialogue: %v", err)
	}
	if len(turns) == 0 {
		log.Fatal("dialogue is empty")
	}

	dialogue := entities.NewDialogue("", turns)
	transcript := dialogue.Transcript()
	if len(transcript) > cfg.LLM.MaxPromptChars {
		log.Fatalf("dialogue is too long: %d chars (limit %d)", len(transcript), cfg.LLM.MaxPromptChars)
	}

	client, err := llm.NewClient(&cfg.LLM, cfg.LLMTimeout())
	if err != nil {
		log.Fatalf("failed to initialize model backend: %v", err)
	}

	ctx := context.Background()
	doc, err := extractOnce(ctx, client, cfg, transcript)
	if err != nil {
		log.Fatalf("extraction failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		log.Fatalf("failed to encode output: %v", err)
	}
}

// extractOnce runs one completion with a single corrective re-prompt on a
// malformed completion, matching the API's behavior
func extractOnce(ctx context.Context, client llm.Client, cfg *config.Config, transcript string) (*entities.ActionItemDocument, error) {
	parser := extractionUsecase.NewParser()

	resp, err := client.Complete(ctx, &llm.CompletionRequest{
		Messages:    llm.BuildMessages(transcript),
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("backend call failed: %w", err)
	}

	doc, parseErr := parser.ParseActionItemDocument(resp.Content)
	if parseErr == nil {
		return doc, nil
	}

	fmt.Fprintf(os.Stderr, "completion failed validation (%v), re-prompting once\n", parseErr)

	repairResp, err := client.Complete(ctx, &llm.CompletionRequest{
		Messages:    llm.BuildRepairMessages(transcript, resp.Content),
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("backend call failed: %w", err)
	}

	doc, parseErr = parser.ParseActionItemDocument(repairResp.Content)
	if parseErr != nil {
		fmt.Fprintf(os.Stderr, "raw completion:\n%s\n", repairResp.Content)
		return nil, fmt.Errorf("model output is invalid after re-prompt: %w", parseErr)
	}

	return doc, nil
}

// readTurns parses "Speaker: text" lines into dialogue turns. Blank lines
// are skipped; a line without a speaker prefix is an error.
func readTurns(r io.Reader) ([]entities.DialogueTurn, error) {
	var turns []entities.DialogueTurn

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		speaker, text, found := strings.Cut(line, ":")
		if !found || strings.TrimSpace(speaker) == "" || strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("line %d is not in \"Speaker: text\" form: %q", lineNo, line)
		}

		turns = append(turns, entities.DialogueTurn{
			Speaker: strings.TrimSpace(speaker),
			Text:    strings.TrimSpace(text),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return turns, nil
}
