package jira

import (
	"context"
	"fmt"

	jira "github.com/andygrunwald/go-jira"
	"go.uber.org/zap"
)

// Client wraps Jira API client functionality
type Client struct {
	client *jira.Client
	logger *zap.Logger
}

// NewClient creates a new Jira client
func NewClient(baseURL, username, apiToken string, logger *zap.Logger) (*Client, error) {
	tp := jira.BasicAuthTransport{
		Username: username,
		Password: apiToken,
	}

	client, err := jira.NewClient(tp.Client(), baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	return &Client{
		client: client,
		logger: logger,
	}, nil
}

// AddComment adds a comment to an issue
func (c *Client) AddComment(ctx context.Context, issueKey, comment string) error {
	_, _, err := c.client.Issue.AddCommentWithContext(ctx, issueKey, &jira.Comment{
		Body: comment,
	})
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}

	c.logger.Info("added jira comment", zap.String("issue", issueKey))
	return nil
}
