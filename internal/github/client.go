package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub API and local Git operations
type Client struct {
	apiClient *github.Client
	logger    *zap.Logger
}

// NewClient creates a new GitHub client. baseURL selects a GitHub Enterprise API
// endpoint and may be empty.
func NewClient(accessToken, baseURL string, logger *zap.Logger) (*Client, error) {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: accessToken},
	)
	tc := oauth2.NewClient(ctx, ts)

	apiClient := github.NewClient(tc)
	if baseURL != "" {
		u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("failed to parse github base url: %w", err)
		}
		apiClient.BaseURL = u
	}

	return &Client{
		apiClient: apiClient,
		logger:    logger,
	}, nil
}

// CommitStatus is a status to attach to a commit
type CommitStatus struct {
	State       string
	Description string
	TargetURL   string
	Context     string
}

// CreateCommitStatus sets a status on the given commit
func (c *Client) CreateCommitStatus(ctx context.Context, owner, repo, sha string, status CommitStatus) error {
	repoStatus := &github.RepoStatus{
		State:       github.String(status.State),
		Description: github.String(truncateString(status.Description, maxDescriptionLen)),
		Context:     github.String(status.Context),
	}
	if status.TargetURL != "" {
		repoStatus.TargetURL = github.String(status.TargetURL)
	}

	_, _, err := c.apiClient.Repositories.CreateStatus(ctx, owner, repo, sha, repoStatus)
	if err != nil {
		return fmt.Errorf("failed to create commit status: %w", err)
	}

	c.logger.Info("created commit status",
		zap.String("owner", owner),
		zap.String("repo", repo),
		zap.String("sha", sha),
		zap.String("state", status.State),
	)

	return nil
}

// HeadSHA returns the commit checked out in the repository containing path
func HeadSHA(path string) (string, error) {
	r, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("failed to open repository: %w", err)
	}

	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	return head.Hash().String(), nil
}
