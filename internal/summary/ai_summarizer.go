package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

// AISummarizer uses OpenAI to explain a verdict
type AISummarizer struct {
	client *openai.Client
	logger *zap.Logger
	model  string
}

// NewAISummarizer creates a new AI summarizer. baseURL may be empty.
func NewAISummarizer(apiKey, model, baseURL string, logger *zap.Logger) *AISummarizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	if model == "" {
		model = openai.GPT4oMini
	}

	return &AISummarizer{
		client: openai.NewClientWithConfig(cfg),
		logger: logger,
		model:  model,
	}
}

// Summarize implements Summarizer
func (s *AISummarizer) Summarize(ctx context.Context, verdict *types.Verdict) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a code quality assistant. Explain static analysis quality gate results to developers in at most five short sentences. Do not invent metrics.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(verdict),
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from AI")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty response from AI")
	}

	s.logger.Debug("generated verdict summary",
		zap.String("project_key", verdict.ProjectKey),
		zap.Int("length", len(text)),
	)
	return text, nil
}

func buildPrompt(verdict *types.Verdict) string {
	var sb strings.Builder

	sb.WriteString("Summarize this quality gate result for a pull request comment:\n\n")
	sb.WriteString("**Project:** " + verdict.ProjectKey + "\n")
	sb.WriteString("**Status:** " + verdict.Status.Status + "\n\n")

	if len(verdict.Status.Conditions) > 0 {
		sb.WriteString("Conditions:\n")
		for _, c := range verdict.Status.Conditions {
			fmt.Fprintf(&sb, "- %s [%s]: actual %s, %s %s\n",
				c.MetricKey, c.Status, c.ActualValue, c.Comparator, c.ErrorThreshold)
		}
	}

	if verdict.DashboardURL != "" {
		sb.WriteString("\nEnd with this link: " + verdict.DashboardURL + "\n")
	}
	return sb.String()
}
