package hybrid

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kjc-dev/ghhier/internal/apperrors"
	"github.com/kjc-dev/ghhier/internal/body"
	"github.com/kjc-dev/ghhier/internal/model"
)

// CreateOptions bundles the inputs shared by every issue-creation path.
type CreateOptions struct {
	Owner, Repo string
	Title       string
	Body        *body.Document
	Labels      []string
	Assignees   []string
	Milestone   *int
	Kind        model.IssueKind
	// ParentNumber is required for Task and SubTask kinds; zero value
	// for Epic.
	ParentNumber int
}

// CreateResult reports which hierarchy-linking path succeeded, for the
// command layer's `fallback` response field (S2).
type CreateResult struct {
	Issue    *model.Issue
	Fallback string // "" (native edge), or "body-reference"
}

// CreateLinkedChild creates a Task or Sub-task and establishes its
// parent edge. This is the one rollback-capable operation in the
// Hybrid Client. If the native edge feature is unavailable, it records
// a body-reference parent line instead; if the edge mutation fails
// for any other reason, or the fallback body cannot be written, it
// closes the newly created issue and returns RelationshipRequired
// rather than leaving a half-linked child behind.
func (c *Client) CreateLinkedChild(ctx context.Context, opts CreateOptions) (*CreateResult, error) {
	if opts.ParentNumber == 0 {
		return nil, &apperrors.InternalError{Err: errNoParent}
	}

	issue, err := c.createIssue(ctx, opts)
	if err != nil {
		return nil, err
	}

	edgeErr := c.addSubIssueEdge(ctx, opts.Owner, opts.Repo, opts.ParentNumber, issue.Number)
	if edgeErr == nil {
		issue.ParentNumber = &opts.ParentNumber
		return &CreateResult{Issue: issue}, nil
	}
	if _, unavailable := edgeErr.(*apperrors.FeatureUnavailable); !unavailable {
		// A hard failure on a *required* relationship step rolls back
		// immediately rather than trying the fallback: the body-reference
		// fallback exists for when the native edge feature is unavailable,
		// not for when the edge mutation itself errors out for an
		// unrelated reason.
		c.log.Warn("sub-issue edge mutation failed with a hard error, rolling back the orphaned child",
			zap.Int("child", issue.Number), zap.Error(edgeErr))
		c.rollback(ctx, opts.Owner, opts.Repo, issue.Number)
		return nil, &apperrors.RelationshipRequired{Step: "add_sub_issue_edge"}
	}

	// Fallback path: record the parent reference in the child's body,
	// since the native edge feature isn't available.
	opts.Body.EnsureParentReference(opts.ParentNumber)
	fallbackBody, err := opts.Body.Render()
	if err != nil {
		c.rollback(ctx, opts.Owner, opts.Repo, issue.Number)
		return nil, err
	}
	if err := c.rest.UpdateBody(ctx, opts.Owner, opts.Repo, issue.Number, string(fallbackBody)); err != nil {
		c.rollback(ctx, opts.Owner, opts.Repo, issue.Number)
		return nil, &apperrors.RelationshipRequired{Step: "body-reference fallback"}
	}
	issue.Body = string(fallbackBody)
	issue.ParentNumber = &opts.ParentNumber
	return &CreateResult{Issue: issue, Fallback: "body-reference"}, nil
}

// addSubIssueEdge resolves both endpoints' node IDs and creates the
// native parent-child edge. A failure to resolve either node ID is
// treated the same as a failed edge mutation: the caller can't
// distinguish "the edge feature is off" from "the lookup failed" any
// more precisely than by type-asserting the returned error.
func (c *Client) addSubIssueEdge(ctx context.Context, owner, repo string, parentNumber, childNumber int) error {
	if c.featureKnownUnavailable(apperrors.FeatureSubIssues) {
		return &apperrors.FeatureUnavailable{Feature: apperrors.FeatureSubIssues}
	}
	parentNodeID, err := c.resolveNodeID(ctx, owner, repo, parentNumber)
	if err != nil {
		return err
	}
	childNodeID, err := c.resolveNodeID(ctx, owner, repo, childNumber)
	if err != nil {
		return err
	}
	err = c.graph.AddSubIssue(ctx, parentNodeID, childNodeID)
	c.recordFeatureProbe(apperrors.FeatureSubIssues, err)
	return err
}

// CreateEpic creates an Epic, which has no parent edge to establish.
func (c *Client) CreateEpic(ctx context.Context, opts CreateOptions) (*model.Issue, error) {
	return c.createIssue(ctx, opts)
}

// createIssue is the routed create: Graph's native typed-issue mutation
// is preferred, falling back to a plain REST create tagged with a
// type:<kind> label when issue types aren't available for this
// organization or this kind has no matching configured type.
func (c *Client) createIssue(ctx context.Context, opts CreateOptions) (*model.Issue, error) {
	rendered, err := opts.Body.Render()
	if err != nil {
		return nil, err
	}
	issue, err := c.createWithGraphType(ctx, opts, string(rendered))
	if err == nil {
		return issue, nil
	}
	if _, unavailable := err.(*apperrors.FeatureUnavailable); !unavailable {
		return nil, err
	}
	return c.rest.CreateIssue(ctx, opts.Owner, opts.Repo, opts.Title, string(rendered), opts.Labels, opts.Assignees, opts.Milestone)
}

// createWithGraphType resolves the organization's configured issue type
// matching opts.Kind and creates the issue tagged with it in one graph
// round trip, then applies labels/assignees/milestone as REST
// follow-ups (create_issue_with_type carries none of those). Returns
// FeatureUnavailable(issue_types) both when the feature itself is
// disabled and when no configured type matches this kind's name, either
// of which sends the caller to the REST+label fallback.
func (c *Client) createWithGraphType(ctx context.Context, opts CreateOptions, rendered string) (*model.Issue, error) {
	if c.featureKnownUnavailable(apperrors.FeatureIssueTypes) {
		return nil, &apperrors.FeatureUnavailable{Feature: apperrors.FeatureIssueTypes}
	}
	types, err := c.graph.GetIssueTypes(ctx, opts.Owner)
	c.recordFeatureProbe(apperrors.FeatureIssueTypes, err)
	if err != nil {
		return nil, err
	}
	var typeID string
	for _, t := range types {
		if strings.EqualFold(t.Name, opts.Kind.String()) {
			typeID = t.ID
			break
		}
	}
	if typeID == "" {
		return nil, &apperrors.FeatureUnavailable{Feature: apperrors.FeatureIssueTypes}
	}
	repoNodeID, err := c.resolveRepositoryID(ctx, opts.Owner, opts.Repo)
	if err != nil {
		return nil, err
	}
	nodeID, number, err := c.graph.CreateIssueWithType(ctx, repoNodeID, opts.Title, rendered, typeID)
	if err != nil {
		return nil, err
	}
	issue := &model.Issue{Number: number, NodeID: nodeID, Title: opts.Title, Body: rendered, Kind: opts.Kind}
	if err := c.rest.AddLabels(ctx, opts.Owner, opts.Repo, number, opts.Labels); err != nil {
		return nil, err
	}
	issue.Labels = opts.Labels
	if len(opts.Assignees) > 0 {
		if err := c.rest.AddAssignees(ctx, opts.Owner, opts.Repo, number, opts.Assignees); err != nil {
			return nil, err
		}
		issue.Assignees = opts.Assignees
	}
	if opts.Milestone != nil {
		if err := c.rest.SetMilestone(ctx, opts.Owner, opts.Repo, number, *opts.Milestone); err != nil {
			return nil, err
		}
	}
	return issue, nil
}

// rollback closes an orphaned issue after a required relationship step
// fails irrecoverably: a child issue must never be left half-linked.
func (c *Client) rollback(ctx context.Context, owner, repo string, number int) {
	if err := c.rest.Close(ctx, owner, repo, number); err != nil {
		c.log.Error("rollback close failed, issue left orphaned and requires manual cleanup",
			zap.String("owner", owner), zap.String("repo", repo), zap.Int("number", number), zap.Error(err))
	}
}

var errNoParent = fmtError("CreateLinkedChild called without a parent number")

type fmtError string

func (e fmtError) Error() string { return string(e) }
