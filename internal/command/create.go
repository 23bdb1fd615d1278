package command

import (
	"context"

	"go.uber.org/zap"

	"github.com/kjc-dev/ghhier/internal/apperrors"
	"github.com/kjc-dev/ghhier/internal/body"
	"github.com/kjc-dev/ghhier/internal/hybrid"
	"github.com/kjc-dev/ghhier/internal/model"
)

// CreateInput is shared by create-epic/create-task/create-sub-task.
type CreateInput struct {
	Repo         Repo
	Title        string
	BodyOverride string // empty means use the default template
	Labels       []string
	Assignees    []string
	// MilestoneTitle, when non-empty, is resolved to a milestone number
	// by title (find-or-create) before the issue is created.
	MilestoneTitle string
	ParentNumber   int // required for Task/SubTask, ignored for Epic
}

func (c *Context) resolveMilestone(ctx context.Context, repo Repo, title string) (*int, error) {
	if title == "" {
		return nil, nil
	}
	number, err := c.Hybrid.ResolveMilestone(ctx, repo.Owner, repo.Repo, title)
	if err != nil {
		return nil, err
	}
	return &number, nil
}

// CreateResult is what every create-* command returns to the caller.
type CreateResult struct {
	Issue    *model.Issue
	Fallback string
}

// CreateEpic creates an Epic. Epics have no parent edge.
func CreateEpic(ctx context.Context, c *Context, in CreateInput) (*CreateResult, error) {
	milestone, err := c.resolveMilestone(ctx, in.Repo, in.MilestoneTitle)
	if err != nil {
		return nil, err
	}
	doc := resolveBody(in.BodyOverride, c.Config.RequiredSectionsFor(model.KindEpic))
	issue, err := c.Hybrid.CreateEpic(ctx, hybrid.CreateOptions{
		Owner: in.Repo.Owner, Repo: in.Repo.Repo,
		Title: in.Title, Body: doc, Labels: withTypeLabel(in.Labels, model.KindEpic),
		Assignees: in.Assignees, Milestone: milestone, Kind: model.KindEpic,
	})
	if err != nil {
		return nil, err
	}
	issue.Kind = model.KindEpic
	return &CreateResult{Issue: issue}, nil
}

// CreateTask creates a Task under an Epic. Requires ParentNumber.
func CreateTask(ctx context.Context, c *Context, in CreateInput) (*CreateResult, error) {
	return createChild(ctx, c, in, model.KindTask)
}

// CreateSubTask creates a Sub-task under a Task. Requires ParentNumber.
func CreateSubTask(ctx context.Context, c *Context, in CreateInput) (*CreateResult, error) {
	return createChild(ctx, c, in, model.KindSubTask)
}

func createChild(ctx context.Context, c *Context, in CreateInput, kind model.IssueKind) (*CreateResult, error) {
	if in.ParentNumber == 0 {
		return nil, &apperrors.ParentNotOfExpectedKind{Expected: mustParentKind(kind).String(), Actual: "none"}
	}
	if err := c.checkParentKind(ctx, in.Repo, in.ParentNumber, kind); err != nil {
		return nil, err
	}
	milestone, err := c.resolveMilestone(ctx, in.Repo, in.MilestoneTitle)
	if err != nil {
		return nil, err
	}
	doc := resolveBody(in.BodyOverride, c.Config.RequiredSectionsFor(kind))
	if in.BodyOverride != "" {
		doc.EnsureParentReference(in.ParentNumber)
	}
	result, err := c.Hybrid.CreateLinkedChild(ctx, hybrid.CreateOptions{
		Owner: in.Repo.Owner, Repo: in.Repo.Repo,
		Title: in.Title, Body: doc, Labels: withTypeLabel(in.Labels, kind),
		Assignees: in.Assignees, Milestone: milestone, Kind: kind,
		ParentNumber: in.ParentNumber,
	})
	if err != nil {
		return nil, err
	}
	result.Issue.Kind = kind
	return &CreateResult{Issue: result.Issue, Fallback: result.Fallback}, nil
}

// checkParentKind verifies the referenced parent is of the kind the
// hierarchy requires (Epic above a Task, Task above a Sub-task). An
// untyped parent (no native type, no type:* label) passes with a
// warning rather than blocking: the guard exists to catch wiring a
// child under the wrong level, not to reject repositories that predate
// the typed hierarchy.
func (c *Context) checkParentKind(ctx context.Context, repo Repo, parentNumber int, childKind model.IssueKind) error {
	expected := mustParentKind(childKind)
	actual, err := c.Hybrid.ResolveIssueKind(ctx, repo.Owner, repo.Repo, parentNumber)
	if err != nil {
		return err
	}
	if actual == model.KindIssue {
		c.Log.Warn("parent issue carries no type, skipping hierarchy kind check",
			zap.Int("parent", parentNumber), zap.String("expected", expected.String()))
		return nil
	}
	if actual != expected {
		return &apperrors.ParentNotOfExpectedKind{Expected: expected.String(), Actual: actual.String()}
	}
	return nil
}

func mustParentKind(kind model.IssueKind) model.IssueKind {
	k, _ := kind.Parent()
	return k
}

func resolveBody(override string, required []string) *body.Document {
	if override == "" {
		return body.DefaultTemplate(required)
	}
	return body.Parse([]byte(override))
}

func withTypeLabel(labels []string, kind model.IssueKind) []string {
	out := append([]string(nil), labels...)
	out = append(out, kind.Label(), model.StateBacklog.Label())
	return out
}
