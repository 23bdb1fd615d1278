package rest

import (
	"context"

	"github.com/google/go-github/v57/github"

	"github.com/kjc-dev/ghhier/internal/model"
)

// GetIssue reads a single issue. Reads retry on transient failure.
func (c *Client) GetIssue(ctx context.Context, owner, repo string, number int) (*model.Issue, error) {
	var out *model.Issue
	err := c.withRetry(ctx, "GetIssue", owner, repo, number, func() (*github.Response, error) {
		gi, resp, err := c.gh.Issues.Get(ctx, owner, repo, number)
		if err == nil {
			out = toModelIssue(gi)
		}
		return resp, err
	})
	return out, err
}

// CreateIssue creates an issue. This is a mutation: never retried.
func (c *Client) CreateIssue(ctx context.Context, owner, repo string, title, body string, labels, assignees []string, milestone *int) (*model.Issue, error) {
	req := &github.IssueRequest{Title: &title, Body: &body}
	if len(labels) > 0 {
		req.Labels = &labels
	}
	if len(assignees) > 0 {
		req.Assignees = &assignees
	}
	if milestone != nil {
		req.Milestone = milestone
	}
	gi, _, err := c.gh.Issues.Create(ctx, owner, repo, req)
	if err != nil {
		return nil, classify(err, owner, repo, 0)
	}
	return toModelIssue(gi), nil
}

// AddLabels adds one or more labels to an issue without touching the
// rest of its label set. Mutation: no retry.
func (c *Client) AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	_, _, err := c.gh.Issues.AddLabelsToIssue(ctx, owner, repo, number, labels)
	if err != nil {
		return classify(err, owner, repo, number)
	}
	return nil
}

// RemoveLabels removes one or more labels from an issue individually,
// ignoring a label that was already absent. Mutation: no retry.
func (c *Client) RemoveLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	for _, l := range labels {
		_, err := c.gh.Issues.RemoveLabelForIssue(ctx, owner, repo, number, l)
		if err != nil {
			if er, ok := err.(*github.ErrorResponse); ok && er.Response.StatusCode == 404 {
				continue
			}
			return classify(err, owner, repo, number)
		}
	}
	return nil
}

// ReplaceLabels swaps an issue's entire label set in one call, the
// atomic form of a status-label transition. Mutation: no retry.
func (c *Client) ReplaceLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	_, _, err := c.gh.Issues.ReplaceLabelsForIssue(ctx, owner, repo, number, labels)
	if err != nil {
		return classify(err, owner, repo, number)
	}
	return nil
}

// UpdateBody replaces an issue's body. Mutation: no retry.
func (c *Client) UpdateBody(ctx context.Context, owner, repo string, number int, body string) error {
	_, _, err := c.gh.Issues.Edit(ctx, owner, repo, number, &github.IssueRequest{Body: &body})
	if err != nil {
		return classify(err, owner, repo, number)
	}
	return nil
}

// Close sets an issue's state to closed. Mutation: no retry.
func (c *Client) Close(ctx context.Context, owner, repo string, number int) error {
	state := "closed"
	_, _, err := c.gh.Issues.Edit(ctx, owner, repo, number, &github.IssueRequest{State: &state})
	if err != nil {
		return classify(err, owner, repo, number)
	}
	return nil
}

// AddAssignees adds one or more assignees to an issue without
// replacing the existing assignee list. Mutation: no retry.
func (c *Client) AddAssignees(ctx context.Context, owner, repo string, number int, assignees []string) error {
	if len(assignees) == 0 {
		return nil
	}
	_, _, err := c.gh.Issues.AddAssignees(ctx, owner, repo, number, assignees)
	if err != nil {
		return classify(err, owner, repo, number)
	}
	return nil
}

// SetMilestone assigns a milestone to an existing issue. Mutation: no retry.
func (c *Client) SetMilestone(ctx context.Context, owner, repo string, number, milestone int) error {
	_, _, err := c.gh.Issues.Edit(ctx, owner, repo, number, &github.IssueRequest{Milestone: &milestone})
	if err != nil {
		return classify(err, owner, repo, number)
	}
	return nil
}

// CreateComment posts a comment. Mutation: no retry.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) (*model.Comment, error) {
	ic, _, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{Body: &body})
	if err != nil {
		return nil, classify(err, owner, repo, number)
	}
	return &model.Comment{ID: ic.GetID(), Body: ic.GetBody(), Author: ic.GetUser().GetLogin()}, nil
}

// ListLabels lists every label defined on the repository. A read: retries.
func (c *Client) ListLabels(ctx context.Context, owner, repo string) ([]model.Label, error) {
	var out []model.Label
	err := c.withRetry(ctx, "ListLabels", owner, repo, 0, func() (*github.Response, error) {
		labels, resp, err := c.gh.Issues.ListLabels(ctx, owner, repo, nil)
		if err == nil {
			out = nil
			for _, l := range labels {
				out = append(out, model.Label{Name: l.GetName(), Color: l.GetColor()})
			}
		}
		return resp, err
	})
	return out, err
}

// EnsureLabel creates a label if it doesn't already exist, reporting
// whether the create actually happened so the caller can distinguish a
// freshly created label from one that was already there. The create
// call is a mutation and is not retried; a 422 "already_exists" is
// treated as an existing label rather than an error.
func (c *Client) EnsureLabel(ctx context.Context, owner, repo, name, color string) (created bool, err error) {
	_, _, err = c.gh.Issues.CreateLabel(ctx, owner, repo, &github.Label{Name: &name, Color: &color})
	if err == nil {
		return true, nil
	}
	if er, ok := err.(*github.ErrorResponse); ok {
		for _, fieldErr := range er.Errors {
			if fieldErr.Code == "already_exists" {
				return false, nil
			}
		}
	}
	return false, classify(err, owner, repo, 0)
}

// ListMilestones lists open milestones for the repository. A read.
func (c *Client) ListMilestones(ctx context.Context, owner, repo string) ([]model.Milestone, error) {
	var out []model.Milestone
	err := c.withRetry(ctx, "ListMilestones", owner, repo, 0, func() (*github.Response, error) {
		ms, resp, err := c.gh.Issues.ListMilestones(ctx, owner, repo, nil)
		if err == nil {
			out = nil
			for _, m := range ms {
				out = append(out, model.Milestone{Number: m.GetNumber(), Title: m.GetTitle()})
			}
		}
		return resp, err
	})
	return out, err
}

// CreateMilestone creates a milestone. Mutation: no retry.
func (c *Client) CreateMilestone(ctx context.Context, owner, repo, title string) (*model.Milestone, error) {
	m, _, err := c.gh.Issues.CreateMilestone(ctx, owner, repo, &github.Milestone{Title: &title})
	if err != nil {
		return nil, classify(err, owner, repo, 0)
	}
	return &model.Milestone{Number: m.GetNumber(), Title: m.GetTitle()}, nil
}
