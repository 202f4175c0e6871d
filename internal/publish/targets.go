package publish

import (
	"context"

	"github.com/VillageChief/codescan-sfdx/internal/github"
	"github.com/VillageChief/codescan-sfdx/internal/summary"
	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

type commitStatusCreator interface {
	CreateCommitStatus(ctx context.Context, owner, repo, sha string, status github.CommitStatus) error
}

type commenter interface {
	AddComment(ctx context.Context, issueKey, comment string) error
}

// CommitStatusTarget sets a GitHub commit status
type CommitStatusTarget struct {
	Client  commitStatusCreator
	Owner   string
	Repo    string
	SHA     string
	Context string
}

func (t *CommitStatusTarget) Name() string { return "github" }

// Publish implements Target
func (t *CommitStatusTarget) Publish(ctx context.Context, verdict *types.Verdict) error {
	return t.Client.CreateCommitStatus(ctx, t.Owner, t.Repo, t.SHA, github.CommitStatus{
		State:       github.StatusState(verdict.Status.Status),
		Description: github.StatusDescription(verdict),
		TargetURL:   verdict.DashboardURL,
		Context:     t.Context,
	})
}

// JiraCommentTarget comments a verdict summary on a Jira issue
type JiraCommentTarget struct {
	Client     commenter
	IssueKey   string
	Summarizer summary.Summarizer
}

func (t *JiraCommentTarget) Name() string { return "jira" }

// Publish implements Target
func (t *JiraCommentTarget) Publish(ctx context.Context, verdict *types.Verdict) error {
	text, err := t.Summarizer.Summarize(ctx, verdict)
	if err != nil {
		return err
	}
	return t.Client.AddComment(ctx, t.IssueKey, text)
}
