package command

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kjc-dev/ghhier/internal/body"
	"github.com/kjc-dev/ghhier/internal/config"
	"github.com/kjc-dev/ghhier/internal/hybrid"
	"github.com/kjc-dev/ghhier/internal/model"
	"github.com/kjc-dev/ghhier/internal/workflow"
)

// TransitionResult is returned by every workflow verb.
type TransitionResult struct {
	Issue *model.Issue
	From  model.WorkflowState
	To    model.WorkflowState
}

// Transition runs one workflow verb (start-plan, submit-plan, ...)
// against an issue: load, check preconditions, project the new status
// onto the configured backend, append the audit-log entry, and persist
// the body. This single function implements all six verbs in §4.6's
// table, since the only thing that varies between them is the
// transition name.
func Transition(ctx context.Context, c *Context, repo Repo, number int, name, reason string, projectField *hybrid.ProjectFieldConfig) (*TransitionResult, error) {
	issue, err := c.Hybrid.GetIssue(ctx, repo.Owner, repo.Repo, number)
	if err != nil {
		return nil, err
	}
	current, _ := issue.State()
	if ambiguous := issue.AmbiguousStatusLabels(); len(ambiguous) > 0 {
		c.Log.Warn("issue carries more than one status label, resolving to the lexicographically-first",
			zap.Int("number", number), zap.Strings("labels", ambiguous), zap.String("resolved", current.String()))
	}
	doc := body.Parse([]byte(issue.Body))

	pc := workflow.PreconditionContext{
		Owner:            repo.Owner,
		Repo:             repo.Repo,
		Issue:            issue,
		Body:             doc,
		RequiredSections: c.Config.RequiredSectionsFor(issue.Kind),
		Hybrid:           c.Hybrid,
	}

	t, err := workflow.Apply(ctx, name, current, pc)
	if err != nil {
		return nil, err
	}

	if err := c.projectStatus(ctx, repo, number, issue, t.To, projectField); err != nil {
		return nil, err
	}

	entry := workflow.BuildLogEntry(t, c.Actor, c.Now(), reason)
	doc.AppendLogEntry(entry)
	rendered, err := doc.Render()
	if err != nil {
		return nil, err
	}
	if err := c.Hybrid.UpdateBody(ctx, repo.Owner, repo.Repo, number, string(rendered)); err != nil {
		return nil, err
	}
	issue.Body = string(rendered)

	// Mirror the audit entry as a comment so watchers get notified; the
	// body's log block stays the authoritative record, so a failure here
	// doesn't fail the transition.
	if _, err := c.Hybrid.CreateComment(ctx, repo.Owner, repo.Repo, number, auditComment(entry)); err != nil {
		c.Log.Warn("audit comment append failed", zap.Int("number", number), zap.Error(err))
	}

	if t.To == model.StateClosed {
		if err := c.Hybrid.CloseIssue(ctx, repo.Owner, repo.Repo, number); err != nil {
			return nil, err
		}
		issue.Closed = true
	}

	return &TransitionResult{Issue: issue, From: t.From, To: t.To}, nil
}

func auditComment(e *body.LogEntry) string {
	text := "State changed from `" + e.FromState + "` to `" + e.ToState + "` by @" + e.Actor + " at " + e.Timestamp
	if len(e.Reason) > 0 {
		text += "\nReason: " + strings.Join(e.Reason, "\n")
	}
	return text
}

func (c *Context) projectStatus(ctx context.Context, repo Repo, number int, issue *model.Issue, to model.WorkflowState, projectField *hybrid.ProjectFieldConfig) error {
	if c.Config.StatusMethod == config.StatusField && projectField != nil {
		return c.Hybrid.SetStatusField(ctx, repo.Owner, repo.Repo, number, issue, to, *projectField)
	}
	return c.Hybrid.SetStatusLabels(ctx, repo.Owner, repo.Repo, number, issue, to)
}
