package graph

import (
	"context"

	"github.com/kjc-dev/ghhier/internal/apperrors"
)

// ResolveNodeID maps a (owner, repo, number) reference to the opaque
// node identifier every other graph mutation requires.
func (c *Client) ResolveNodeID(ctx context.Context, owner, repo string, number int) (string, error) {
	var resp struct {
		Repository struct {
			Issue struct {
				ID string `json:"id"`
			} `json:"issue"`
		} `json:"repository"`
	}
	vars := map[string]any{"owner": owner, "name": repo, "number": number}
	if err := c.query(ctx, "ResolveIssueNodeID", queryResolveIssueNodeID, vars, &resp); err != nil {
		return "", err
	}
	if resp.Repository.Issue.ID == "" {
		return "", &apperrors.IssueNotFound{Owner: owner, Repo: repo, Number: number}
	}
	return resp.Repository.Issue.ID, nil
}

// Hierarchy is the parent/child view of one issue, as seen through
// native graph edges.
type Hierarchy struct {
	ParentNumber *int
	ChildNumbers []int
}

// GetHierarchy reads the native parent and sub-issue edges for an issue.
func (c *Client) GetHierarchy(ctx context.Context, owner, repo string, number int) (*Hierarchy, error) {
	var resp struct {
		Repository struct {
			Issue struct {
				Parent *struct {
					Number int `json:"number"`
				} `json:"parent"`
				SubIssues struct {
					Nodes []struct {
						Number int `json:"number"`
					} `json:"nodes"`
				} `json:"subIssues"`
			} `json:"issue"`
		} `json:"repository"`
	}
	vars := map[string]any{"owner": owner, "name": repo, "number": number}
	if err := c.query(ctx, "IssueHierarchy", queryIssueHierarchy, vars, &resp); err != nil {
		return nil, err
	}
	h := &Hierarchy{}
	if resp.Repository.Issue.Parent != nil {
		h.ParentNumber = &resp.Repository.Issue.Parent.Number
	}
	for _, n := range resp.Repository.Issue.SubIssues.Nodes {
		h.ChildNumbers = append(h.ChildNumbers, n.Number)
	}
	return h, nil
}

// AddSubIssue creates the native parent→child edge. Returns
// FeatureUnavailable(sub_issues) when the preview feature is disabled
// for the organization, which the Hybrid Client treats as a fallback
// signal rather than a hard failure.
func (c *Client) AddSubIssue(ctx context.Context, parentNodeID, childNodeID string) error {
	vars := map[string]any{"issueId": parentNodeID, "subIssueId": childNodeID}
	return c.query(ctx, "AddSubIssue", mutationAddSubIssue, vars, nil)
}

// RemoveSubIssue deletes a native parent→child edge without affecting
// either issue otherwise. Returns FeatureUnavailable(sub_issues) when
// the preview feature is disabled for the organization.
func (c *Client) RemoveSubIssue(ctx context.Context, parentNodeID, childNodeID string) error {
	vars := map[string]any{"issueId": parentNodeID, "subIssueId": childNodeID}
	return c.query(ctx, "RemoveSubIssue", mutationRemoveSubIssue, vars, nil)
}

// ResolveRepositoryID maps (owner, repo) to the opaque node identifier
// createIssueWithType's repositoryId argument requires.
func (c *Client) ResolveRepositoryID(ctx context.Context, owner, repo string) (string, error) {
	var resp struct {
		Repository struct {
			ID string `json:"id"`
		} `json:"repository"`
	}
	vars := map[string]any{"owner": owner, "name": repo}
	if err := c.query(ctx, "ResolveRepositoryID", queryResolveRepositoryID, vars, &resp); err != nil {
		return "", err
	}
	if resp.Repository.ID == "" {
		return "", &apperrors.InternalError{Err: errRepositoryNotFound(owner, repo)}
	}
	return resp.Repository.ID, nil
}

// CreateIssueWithType creates an issue tagged with a native organization
// issue type in one round trip, the graph-preferred path for typed
// creation. Returns FeatureUnavailable(issue_types) when the
// organization has the feature disabled, which the Hybrid Client treats
// as a fallback signal rather than a hard failure.
func (c *Client) CreateIssueWithType(ctx context.Context, repositoryNodeID, title, body, issueTypeID string) (nodeID string, number int, err error) {
	var resp struct {
		CreateIssue struct {
			Issue struct {
				ID     string `json:"id"`
				Number int    `json:"number"`
			} `json:"issue"`
		} `json:"createIssue"`
	}
	vars := map[string]any{
		"repositoryId": repositoryNodeID,
		"title":        title,
		"body":         body,
		"issueTypeId":  issueTypeID,
	}
	if err := c.query(ctx, "CreateIssueWithType", mutationCreateIssueWithType, vars, &resp); err != nil {
		return "", 0, err
	}
	return resp.CreateIssue.Issue.ID, resp.CreateIssue.Issue.Number, nil
}

// IssueType is an organization-level typed-issue definition.
type IssueType struct {
	ID   string
	Name string
}

// GetIssueTypes lists the organization's configured issue types. Returns
// FeatureUnavailable(issue_types) when the organization has the feature
// disabled.
func (c *Client) GetIssueTypes(ctx context.Context, owner string) ([]IssueType, error) {
	var resp struct {
		Organization struct {
			IssueTypes struct {
				Nodes []struct {
					ID   string `json:"id"`
					Name string `json:"name"`
				} `json:"nodes"`
			} `json:"issueTypes"`
		} `json:"organization"`
	}
	vars := map[string]any{"owner": owner}
	if err := c.query(ctx, "IssueTypes", queryIssueTypes, vars, &resp); err != nil {
		return nil, err
	}
	var out []IssueType
	for _, n := range resp.Organization.IssueTypes.Nodes {
		out = append(out, IssueType{ID: n.ID, Name: n.Name})
	}
	return out, nil
}

// GetIssueKind reads an issue's native issue-type name, or "" when the
// issue has no type assigned. Returns FeatureUnavailable(issue_types)
// when the organization has the feature disabled, in which case the
// Hybrid Client falls back to label-based inference.
func (c *Client) GetIssueKind(ctx context.Context, owner, repo string, number int) (string, error) {
	var resp struct {
		Repository struct {
			Issue struct {
				IssueType *struct {
					Name string `json:"name"`
				} `json:"issueType"`
			} `json:"issue"`
		} `json:"repository"`
	}
	vars := map[string]any{"owner": owner, "name": repo, "number": number}
	if err := c.query(ctx, "IssueKind", queryIssueKind, vars, &resp); err != nil {
		return "", err
	}
	if resp.Repository.Issue.IssueType == nil {
		return "", nil
	}
	return resp.Repository.Issue.IssueType.Name, nil
}

// ResolveOrganizationID maps an organization login to the opaque node
// identifier createIssueType's ownerId argument requires.
func (c *Client) ResolveOrganizationID(ctx context.Context, login string) (string, error) {
	var resp struct {
		Organization struct {
			ID string `json:"id"`
		} `json:"organization"`
	}
	vars := map[string]any{"login": login}
	if err := c.query(ctx, "OrganizationID", queryOrganizationID, vars, &resp); err != nil {
		return "", err
	}
	if resp.Organization.ID == "" {
		return "", &apperrors.InternalError{Err: fmtError("organization " + login + " not found")}
	}
	return resp.Organization.ID, nil
}

// CreateIssueType creates a new organization issue type. Returns
// FeatureUnavailable(issue_types) when the organization has the feature
// disabled.
func (c *Client) CreateIssueType(ctx context.Context, ownerNodeID, name string) (IssueType, error) {
	var resp struct {
		CreateIssueType struct {
			IssueType struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"issueType"`
		} `json:"createIssueType"`
	}
	vars := map[string]any{"ownerId": ownerNodeID, "name": name}
	if err := c.query(ctx, "CreateIssueType", mutationCreateIssueType, vars, &resp); err != nil {
		return IssueType{}, err
	}
	return IssueType{ID: resp.CreateIssueType.IssueType.ID, Name: resp.CreateIssueType.IssueType.Name}, nil
}

// SetIssueType assigns an organization issue type to an issue.
func (c *Client) SetIssueType(ctx context.Context, issueNodeID, issueTypeID string) error {
	vars := map[string]any{"issueId": issueNodeID, "issueTypeId": issueTypeID}
	return c.query(ctx, "SetIssueType", mutationSetIssueType, vars, nil)
}

// ProjectItem is the Projects v2 item identity for an issue within one
// project.
type ProjectItem struct {
	ItemID    string
	ProjectID string
}

// GetProjectV2Item finds the project item for an issue, if the issue
// has been added to any Projects v2 board.
func (c *Client) GetProjectV2Item(ctx context.Context, issueNodeID string) ([]ProjectItem, error) {
	var resp struct {
		Node struct {
			ProjectItems struct {
				Nodes []struct {
					ID      string `json:"id"`
					Project struct {
						ID string `json:"id"`
					} `json:"project"`
				} `json:"nodes"`
			} `json:"projectItems"`
		} `json:"node"`
	}
	vars := map[string]any{"issueId": issueNodeID}
	if err := c.query(ctx, "ProjectV2Item", queryProjectV2Item, vars, &resp); err != nil {
		return nil, err
	}
	var out []ProjectItem
	for _, n := range resp.Node.ProjectItems.Nodes {
		out = append(out, ProjectItem{ItemID: n.ID, ProjectID: n.Project.ID})
	}
	return out, nil
}

// UpdateProjectV2ItemFieldValue sets a single-select field (the status
// backend when status_method is "status_field") on a project item.
// Returns FeatureUnavailable(projects_v2) if Projects v2 isn't enabled.
func (c *Client) UpdateProjectV2ItemFieldValue(ctx context.Context, projectID, itemID, fieldID, optionID string) error {
	vars := map[string]any{
		"projectId": projectID,
		"itemId":    itemID,
		"fieldId":   fieldID,
		"value":     map[string]any{"singleSelectOptionId": optionID},
	}
	return c.query(ctx, "UpdateProjectV2ItemFieldValue", mutationUpdateProjectV2ItemFieldValue, vars, nil)
}

// AddIssueToProject adds an issue to a Projects v2 board, returning the
// new item's id. Returns FeatureUnavailable(projects_v2) if Projects v2
// isn't enabled.
func (c *Client) AddIssueToProject(ctx context.Context, projectID, issueNodeID string) (string, error) {
	var resp struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID string `json:"id"`
			} `json:"item"`
		} `json:"addProjectV2ItemById"`
	}
	vars := map[string]any{"projectId": projectID, "contentId": issueNodeID}
	if err := c.query(ctx, "AddIssueToProject", mutationAddIssueToProject, vars, &resp); err != nil {
		return "", err
	}
	return resp.AddProjectV2ItemByID.Item.ID, nil
}

func errRepositoryNotFound(owner, repo string) error {
	return fmtError("repository " + owner + "/" + repo + " not found")
}

type fmtError string

func (e fmtError) Error() string { return string(e) }
