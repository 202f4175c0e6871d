// Package publish reports quality gate verdicts to external systems.
package publish

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/VillageChief/codescan-sfdx/internal/config"
	"github.com/VillageChief/codescan-sfdx/internal/github"
	"github.com/VillageChief/codescan-sfdx/internal/jira"
	"github.com/VillageChief/codescan-sfdx/internal/summary"
	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

// Target is a destination for verdicts
type Target interface {
	Name() string
	Publish(ctx context.Context, verdict *types.Verdict) error
}

// Publisher sends a verdict to every configured target
type Publisher struct {
	targets []Target
	logger  *zap.Logger
}

// NewPublisher creates a new publisher
func NewPublisher(targets []Target, logger *zap.Logger) *Publisher {
	return &Publisher{
		targets: targets,
		logger:  logger,
	}
}

// Publish sends verdict to all targets. A failing target does not stop the others;
// the returned error joins every failure.
func (p *Publisher) Publish(ctx context.Context, verdict *types.Verdict) error {
	var errs []error
	for _, target := range p.targets {
		if err := target.Publish(ctx, verdict); err != nil {
			p.logger.Warn("failed to publish verdict",
				zap.String("target", target.Name()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", target.Name(), err))
			continue
		}
		p.logger.Info("published verdict",
			zap.String("target", target.Name()),
			zap.String("quality_gate", verdict.Status.Status),
		)
	}
	return errors.Join(errs...)
}

// Len returns the number of configured targets
func (p *Publisher) Len() int {
	return len(p.targets)
}

// FromConfig builds the targets enabled in cfg. workingDir is used to find the commit
// when no SHA is configured.
func FromConfig(cfg *config.Config, workingDir string, logger *zap.Logger) (*Publisher, error) {
	var targets []Target

	if cfg.GitHub.Enabled() {
		owner, repo, ok := cfg.GitHub.OwnerRepo()
		if !ok {
			return nil, fmt.Errorf("invalid github repository %q", cfg.GitHub.Repository)
		}

		sha := cfg.GitHub.SHA
		if sha == "" {
			head, err := github.HeadSHA(workingDir)
			if err != nil {
				return nil, fmt.Errorf("failed to determine commit for status: %w", err)
			}
			sha = head
		}

		client, err := github.NewClient(cfg.GitHub.Token, cfg.GitHub.BaseURL, logger)
		if err != nil {
			return nil, err
		}
		targets = append(targets, &CommitStatusTarget{
			Client:  client,
			Owner:   owner,
			Repo:    repo,
			SHA:     sha,
			Context: cfg.GitHub.Context,
		})
	}

	if cfg.Jira.Enabled() {
		client, err := jira.NewClient(cfg.Jira.BaseURL, cfg.Jira.Username, cfg.Jira.Token, logger)
		if err != nil {
			return nil, err
		}
		targets = append(targets, &JiraCommentTarget{
			Client:     client,
			IssueKey:   cfg.Jira.IssueKey,
			Summarizer: NewSummarizer(cfg.OpenAI, logger),
		})
	}

	return NewPublisher(targets, logger), nil
}

// NewSummarizer returns the OpenAI summarizer with a plain text fallback when an API
// key is configured, and the plain text summarizer otherwise
func NewSummarizer(cfg config.OpenAIConfig, logger *zap.Logger) summary.Summarizer {
	if cfg.APIKey == "" {
		return summary.TextSummarizer{}
	}
	return &summary.Fallback{
		Primary:   summary.NewAISummarizer(cfg.APIKey, cfg.Model, cfg.BaseURL, logger),
		Secondary: summary.TextSummarizer{},
		Logger:    logger,
	}
}
