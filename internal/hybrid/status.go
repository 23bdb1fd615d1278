package hybrid

import (
	"context"
	"strings"

	"github.com/kjc-dev/ghhier/internal/apperrors"
	"github.com/kjc-dev/ghhier/internal/model"
)

// SetStatusLabels projects a workflow state onto the labels backend:
// every existing status:* label is dropped and the one for newState
// added, as a single atomic replace of the issue's full label set
// rather than a remove-then-add pair that could leave the issue
// status-less between the two calls.
func (c *Client) SetStatusLabels(ctx context.Context, owner, repo string, number int, issue *model.Issue, newState model.WorkflowState) error {
	var next []string
	for _, l := range issue.Labels {
		if _, ok := model.ParseStatusLabel(l); !ok {
			next = append(next, l)
		}
	}
	next = append(next, newState.Label())
	if err := c.rest.ReplaceLabels(ctx, owner, repo, number, next); err != nil {
		return err
	}
	issue.Labels = next
	return nil
}

// ProjectFieldConfig names the Projects v2 field used for the
// project-board status backend.
type ProjectFieldConfig struct {
	ProjectID string
	FieldID   string
	// OptionIDs maps each WorkflowState's display name to the
	// single-select field's option ID, per the project's configuration.
	OptionIDs map[string]string
}

// SetStatusField projects a workflow state onto the Projects v2
// single-select status field backend, resolving the issue's project
// item on demand if it hasn't been cached on the Issue yet.
func (c *Client) SetStatusField(ctx context.Context, owner, repo string, number int, issue *model.Issue, newState model.WorkflowState, cfg ProjectFieldConfig) error {
	if c.featureKnownUnavailable(apperrors.FeatureProjectsV2) {
		return &apperrors.FeatureUnavailable{Feature: apperrors.FeatureProjectsV2}
	}
	if issue.ProjectItemID == "" {
		nodeID, err := c.resolveNodeID(ctx, owner, repo, number)
		if err != nil {
			return err
		}
		items, err := c.graph.GetProjectV2Item(ctx, nodeID)
		c.recordFeatureProbe(apperrors.FeatureProjectsV2, err)
		if err != nil {
			return err
		}
		for _, item := range items {
			if item.ProjectID == cfg.ProjectID {
				issue.ProjectItemID = item.ItemID
				break
			}
		}
		if issue.ProjectItemID == "" {
			return &apperrors.InternalError{Err: errNoProjectItem}
		}
	}
	optionID, ok := cfg.OptionIDs[newState.String()]
	if !ok {
		return &apperrors.InternalError{Err: errNoFieldOption(newState.String())}
	}
	return c.graph.UpdateProjectV2ItemFieldValue(ctx, cfg.ProjectID, issue.ProjectItemID, cfg.FieldID, optionID)
}

var errNoProjectItem = fmtError("issue has no project item for the configured project")

func errNoFieldOption(state string) error {
	return fmtError("no option id configured for status " + strings.ToUpper(state))
}
