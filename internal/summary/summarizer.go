// Package summary turns a quality gate verdict into a short human readable message.
package summary

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

// Summarizer interface for describing verdicts
type Summarizer interface {
	Summarize(ctx context.Context, verdict *types.Verdict) (string, error)
}

// TextSummarizer renders a fixed plain text message
type TextSummarizer struct{}

// Summarize implements Summarizer
func (TextSummarizer) Summarize(_ context.Context, verdict *types.Verdict) (string, error) {
	return Text(verdict), nil
}

// Text renders verdict as plain text
func Text(verdict *types.Verdict) string {
	var sb strings.Builder

	project := verdict.ProjectKey
	if project == "" {
		project = "project"
	}
	fmt.Fprintf(&sb, "Quality gate %s for %s", verdict.Status.Status, project)
	if verdict.AnalysisID != "" {
		fmt.Fprintf(&sb, " (analysis %s)", verdict.AnalysisID)
	}
	sb.WriteString("\n")

	if failed := verdict.Status.FailedConditions(); len(failed) > 0 {
		sb.WriteString("\nFailed conditions:\n")
		for _, c := range failed {
			fmt.Fprintf(&sb, "- %s: %s (%s %s)\n", c.MetricKey, c.ActualValue, c.Comparator, c.ErrorThreshold)
		}
	}

	if verdict.DashboardURL != "" {
		sb.WriteString("\n" + verdict.DashboardURL + "\n")
	}
	return sb.String()
}

// Fallback uses Primary and falls back to Secondary when Primary fails
type Fallback struct {
	Primary   Summarizer
	Secondary Summarizer
	Logger    *zap.Logger
}

// Summarize implements Summarizer
func (f *Fallback) Summarize(ctx context.Context, verdict *types.Verdict) (string, error) {
	text, err := f.Primary.Summarize(ctx, verdict)
	if err == nil {
		return text, nil
	}

	f.Logger.Warn("summarizer failed, using fallback", zap.Error(err))
	return f.Secondary.Summarize(ctx, verdict)
}
