package githubintegration

import (
	"context"
	"fmt"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

const (
	ActionCreateIssue   = "create_issue"
	ActionCreateComment = "create_comment"
)

type CreateIssueParams struct {
	Owner  string   `json:"owner"`
	Repo   string   `json:"repo"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

type CreateCommentParams struct {
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	IssueNumber int    `json:"issueNumber"`
	Body        string `json:"body"`
}

// Connector opens issues and comments with a personal access token.
type Connector struct {
	client *github.Client
	domain.ConnectorActions
}

func NewConnector(ctx context.Context, token string) *Connector {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)

	c := &Connector{
		client: github.NewClient(oauth2.NewClient(ctx, ts)),
	}

	c.ConnectorActions = domain.ConnectorActions{
		ActionCreateIssue:   c.CreateIssue,
		ActionCreateComment: c.CreateComment,
	}

	return c
}

func (c *Connector) CreateIssue(ctx context.Context, params map[string]any) (domain.Payload, error) {
	var p CreateIssueParams
	if err := domain.BindConfig(params, &p); err != nil {
		return nil, err
	}

	if p.Owner == "" || p.Repo == "" || p.Title == "" {
		return nil, fmt.Errorf("github issues require owner, repo and title")
	}

	request := &github.IssueRequest{
		Title: &p.Title,
	}
	if p.Body != "" {
		request.Body = &p.Body
	}
	if len(p.Labels) > 0 {
		request.Labels = &p.Labels
	}

	issue, _, err := c.client.Issues.Create(ctx, p.Owner, p.Repo, request)
	if err != nil {
		return nil, fmt.Errorf("failed to create github issue: %w", err)
	}

	return domain.Payload{
		"number": float64(issue.GetNumber()),
		"url":    issue.GetHTMLURL(),
	}, nil
}

func (c *Connector) CreateComment(ctx context.Context, params map[string]any) (domain.Payload, error) {
	var p CreateCommentParams
	if err := domain.BindConfig(params, &p); err != nil {
		return nil, err
	}

	if p.Owner == "" || p.Repo == "" || p.IssueNumber == 0 || p.Body == "" {
		return nil, fmt.Errorf("github comments require owner, repo, issueNumber and body")
	}

	comment, _, err := c.client.Issues.CreateComment(ctx, p.Owner, p.Repo, p.IssueNumber, &github.IssueComment{
		Body: &p.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create github comment: %w", err)
	}

	return domain.Payload{
		"commentId": float64(comment.GetID()),
		"url":       comment.GetHTMLURL(),
	}, nil
}
