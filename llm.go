package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

type LLMUsage struct {
	InputTokens  int64
	OutputTokens int64
}

func (u LLMUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

// SummarizeAnalysis asks the LLM for a short narrative summary of a finished
// analysis. This is presentation sugar only: classification and scoring stay
// deterministic, and callers must treat a failure here as non-fatal.
func SummarizeAnalysis(cfg Config, result AnalysisResult) (string, LLMUsage, error) {
	model := cfg.LLMModel
	if model == "" {
		model = defaultAnthropicModel
	}

	systemPrompt := "You are a project-management analyst. Given board analysis findings, " +
		"write a short executive summary (at most 4 sentences) for a team channel. " +
		"Mention the overall health, the worst bottleneck if any, and the single most impactful suggestion. " +
		"Plain text only, no markdown headings."
	userPrompt := buildSummaryPrompt(result)

	log.Printf("llm summary model=%s board=%s", model, result.BoardID)
	return callAnthropic(cfg.AnthropicAPIKey, model, systemPrompt, userPrompt)
}

func buildSummaryPrompt(result AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Board: %s\n", result.BoardName)
	fmt.Fprintf(&b, "Scores: structure=%d groups=%d completeness=%d\n",
		result.Columns.Score, result.Groups.Score, result.Workflow.Score)
	fmt.Fprintf(&b, "Items: %d total, %d incomplete\n", result.Workflow.TotalItems, result.Workflow.IncompleteItems)

	if len(result.Bottlenecks) > 0 {
		b.WriteString("Bottlenecks:\n")
		for _, bn := range result.Bottlenecks {
			fmt.Fprintf(&b, "- %s: %d avg hours over %d item(s)\n", bn.Status, int(math.Round(bn.AverageHours)), bn.ItemCount)
		}
	}
	if len(result.Suggestions) > 0 {
		b.WriteString("Suggestions:\n")
		for _, s := range result.Suggestions {
			fmt.Fprintf(&b, "- [%s/%s] %s\n", s.Category, s.Impact, s.Title)
		}
	}
	return b.String()
}

func callAnthropic(apiKey, model, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(context.Background(), anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", LLMUsage{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := LLMUsage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d", len(block.Text), usage.InputTokens, usage.OutputTokens)
			return block.Text, usage, nil
		}
	}
	return "", usage, fmt.Errorf("no text content in Anthropic response")
}
