package summary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

func failingVerdict() *types.Verdict {
	return &types.Verdict{
		ProjectKey:   "acme",
		AnalysisID:   "A1",
		DashboardURL: "https://scan.example.com/dashboard?id=acme",
		Status: &types.ProjectStatus{
			Status: types.GateError,
			Conditions: []types.Condition{
				{Status: "OK", MetricKey: "bugs", Comparator: "GT", ErrorThreshold: "0", ActualValue: "0"},
				{Status: "ERROR", MetricKey: "coverage", Comparator: "LT", ErrorThreshold: "80", ActualValue: "41.2"},
			},
		},
	}
}

func TestText(t *testing.T) {
	got := Text(failingVerdict())

	assert.Contains(t, got, "Quality gate ERROR for acme (analysis A1)")
	assert.Contains(t, got, "- coverage: 41.2 (LT 80)")
	assert.NotContains(t, got, "bugs")
	assert.Contains(t, got, "https://scan.example.com/dashboard?id=acme")
}

func TestTextPassing(t *testing.T) {
	got := Text(&types.Verdict{Status: &types.ProjectStatus{Status: types.GateOK}})
	assert.Equal(t, "Quality gate OK for project\n", got)
}

func newOpenAIServer(t *testing.T, status int, content string) (*httptest.Server, *openai.ChatCompletionRequest) {
	t.Helper()
	var seen openai.ChatCompletionRequest
	router := chi.NewRouter()
	router.Post("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&seen)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		})
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, &seen
}

func TestAISummarizer(t *testing.T) {
	server, seen := newOpenAIServer(t, http.StatusOK, "  Coverage dropped to 41.2%.  ")
	s := NewAISummarizer("sk-test", "", server.URL+"/v1", zaptest.NewLogger(t))

	got, err := s.Summarize(context.Background(), failingVerdict())
	require.NoError(t, err)
	assert.Equal(t, "Coverage dropped to 41.2%.", got)

	assert.Equal(t, openai.GPT4oMini, seen.Model)
	require.Len(t, seen.Messages, 2)
	assert.Contains(t, seen.Messages[1].Content, "coverage [ERROR]: actual 41.2, LT 80")
}

func TestAISummarizerError(t *testing.T) {
	server, _ := newOpenAIServer(t, http.StatusTooManyRequests, "")
	s := NewAISummarizer("sk-test", "gpt-4o", server.URL+"/v1", zaptest.NewLogger(t))

	_, err := s.Summarize(context.Background(), failingVerdict())
	assert.Error(t, err)
}

type stubSummarizer struct {
	text string
	err  error
}

func (s stubSummarizer) Summarize(context.Context, *types.Verdict) (string, error) {
	return s.text, s.err
}

func TestFallback(t *testing.T) {
	t.Run("primary succeeds", func(t *testing.T) {
		f := &Fallback{
			Primary:   stubSummarizer{text: "ai"},
			Secondary: TextSummarizer{},
			Logger:    zaptest.NewLogger(t),
		}
		got, err := f.Summarize(context.Background(), failingVerdict())
		require.NoError(t, err)
		assert.Equal(t, "ai", got)
	})

	t.Run("primary fails", func(t *testing.T) {
		f := &Fallback{
			Primary:   stubSummarizer{err: errors.New("down")},
			Secondary: TextSummarizer{},
			Logger:    zaptest.NewLogger(t),
		}
		got, err := f.Summarize(context.Background(), failingVerdict())
		require.NoError(t, err)
		assert.Equal(t, Text(failingVerdict()), got)
	})
}
