// Package hybrid is the façade that routes each operation to REST or
// Graph, resolves node IDs, caches feature-flag probes and node-ID
// lookups for the lifetime of a single command, and owns the rollback
// for multi-step creation failures.
package hybrid

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kjc-dev/ghhier/internal/apperrors"
	"github.com/kjc-dev/ghhier/internal/cache"
	"github.com/kjc-dev/ghhier/internal/graph"
	"github.com/kjc-dev/ghhier/internal/model"
	"github.com/kjc-dev/ghhier/internal/rest"
)

// featureCacheTTL is long because a feature flag (sub_issues,
// issue_types, projects_v2 availability) does not change mid-command,
// and rarely changes between command invocations either.
const featureCacheTTL = 10 * time.Minute

// nodeIDCacheTTL only needs to outlive a single command's own repeated
// lookups of the same issue.
const nodeIDCacheTTL = 5 * time.Minute

const maxCacheEntries = 500

// Client is the Hybrid Remote Client.
type Client struct {
	rest  *rest.Client
	graph *graph.Client
	log   *zap.Logger

	features *cache.Cache[bool]
	nodeIDs  *cache.Cache[string]
}

func New(restClient *rest.Client, graphClient *graph.Client, log *zap.Logger) *Client {
	return &Client{
		rest:     restClient,
		graph:    graphClient,
		log:      log,
		features: cache.New[bool](featureCacheTTL, maxCacheEntries),
		nodeIDs:  cache.New[string](nodeIDCacheTTL, maxCacheEntries),
	}
}

// Close stops the client's background cache-eviction goroutines. Must
// be called once per command invocation before the process exits.
func (c *Client) Close() {
	c.features.Stop()
	c.nodeIDs.Stop()
}

func nodeIDKey(owner, repo string, number int) string {
	return owner + "/" + repo + "#" + strconv.Itoa(number)
}

// resolveNodeID resolves and caches the node ID for an issue reference.
func (c *Client) resolveNodeID(ctx context.Context, owner, repo string, number int) (string, error) {
	key := nodeIDKey(owner, repo, number)
	if id, ok := c.nodeIDs.Get(key); ok {
		return id, nil
	}
	id, err := c.graph.ResolveNodeID(ctx, owner, repo, number)
	if err != nil {
		return "", err
	}
	c.nodeIDs.Set(key, id)
	return id, nil
}

// resolveRepositoryID resolves and caches the node ID for a repository,
// sharing the node-ID cache with resolveNodeID under a distinct key
// namespace (repositories and issues never collide on node ID alone).
func (c *Client) resolveRepositoryID(ctx context.Context, owner, repo string) (string, error) {
	key := "repo:" + owner + "/" + repo
	if id, ok := c.nodeIDs.Get(key); ok {
		return id, nil
	}
	id, err := c.graph.ResolveRepositoryID(ctx, owner, repo)
	if err != nil {
		return "", err
	}
	c.nodeIDs.Set(key, id)
	return id, nil
}

// featureKnownUnavailable reports whether a prior call already found
// feature unavailable in this client's lifetime, sparing a repeat round
// trip that can only end the same way.
func (c *Client) featureKnownUnavailable(feature apperrors.Feature) bool {
	available, ok := c.features.Get(string(feature))
	return ok && !available
}

// recordFeatureProbe caches the outcome of an operation gated behind a
// preview feature, so a later call in the same command can consult
// featureKnownUnavailable instead of repeating the round trip.
func (c *Client) recordFeatureProbe(feature apperrors.Feature, err error) {
	if err == nil {
		c.features.Set(string(feature), true)
		return
	}
	if _, unavailable := err.(*apperrors.FeatureUnavailable); unavailable {
		c.features.Set(string(feature), false)
	}
}

// GetIssue reads the full merged view of an issue: REST for the
// canonical fields, Graph for the hierarchy edges and issue type.
func (c *Client) GetIssue(ctx context.Context, owner, repo string, number int) (*model.Issue, error) {
	issue, err := c.rest.GetIssue(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}
	nodeID, err := c.resolveNodeID(ctx, owner, repo, number)
	if err != nil {
		if _, ok := err.(*apperrors.FeatureUnavailable); !ok {
			// Node-ID resolution failing is not fatal to a read: the
			// issue is still usable via its labels-based state, just
			// without the native hierarchy view this call adds.
			c.log.Debug("node id resolution failed, continuing with REST-only view", zap.Error(err))
			return issue, nil
		}
	}
	issue.NodeID = nodeID
	if h, err := c.graph.GetHierarchy(ctx, owner, repo, number); err == nil {
		issue.ParentNumber = h.ParentNumber
		issue.ChildNumbers = h.ChildNumbers
	}
	return issue, nil
}

// UpdateBody writes an issue's body back through the REST transport.
func (c *Client) UpdateBody(ctx context.Context, owner, repo string, number int, body string) error {
	return c.rest.UpdateBody(ctx, owner, repo, number, body)
}

// CloseIssue flips an issue's open/closed flag to closed, the
// additional effect approve-work has on top of its status projection.
func (c *Client) CloseIssue(ctx context.Context, owner, repo string, number int) error {
	return c.rest.Close(ctx, owner, repo, number)
}

// CreateComment posts a comment through the REST transport.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) (*model.Comment, error) {
	return c.rest.CreateComment(ctx, owner, repo, number, body)
}

// EnsureLabel creates a repository label if it doesn't already exist,
// reporting whether the create actually happened.
func (c *Client) EnsureLabel(ctx context.Context, owner, repo, name, color string) (bool, error) {
	return c.rest.EnsureLabel(ctx, owner, repo, name, color)
}

// IssueTypeNames lists the organization's configured native issue type
// names, lower-cased, for init's provisioning check. Returns
// FeatureUnavailable(issue_types) when the organization has the feature
// disabled, in which case the caller should treat every kind as needing
// the REST type:<kind> label fallback instead.
func (c *Client) IssueTypeNames(ctx context.Context, owner string) (map[string]bool, error) {
	if c.featureKnownUnavailable(apperrors.FeatureIssueTypes) {
		return nil, &apperrors.FeatureUnavailable{Feature: apperrors.FeatureIssueTypes}
	}
	types, err := c.graph.GetIssueTypes(ctx, owner)
	c.recordFeatureProbe(apperrors.FeatureIssueTypes, err)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(types))
	for _, t := range types {
		names[strings.ToLower(t.Name)] = true
	}
	return names, nil
}

// ResolveIssueKind reads an issue's hierarchy kind: the native issue
// type via the graph transport when the feature is available, else
// inferred from the issue's type:<kind> label via REST. Used as the
// hierarchy-link guard before a child is created under a parent.
func (c *Client) ResolveIssueKind(ctx context.Context, owner, repo string, number int) (model.IssueKind, error) {
	if !c.featureKnownUnavailable(apperrors.FeatureIssueTypes) {
		name, err := c.graph.GetIssueKind(ctx, owner, repo, number)
		c.recordFeatureProbe(apperrors.FeatureIssueTypes, err)
		if err == nil && name != "" {
			if kind, ok := model.ParseIssueKind(name); ok {
				return kind, nil
			}
			return model.KindIssue, nil
		}
		if err != nil {
			if _, unavailable := err.(*apperrors.FeatureUnavailable); !unavailable {
				return model.KindIssue, err
			}
		}
		// Feature off, or the issue simply has no native type assigned:
		// fall through to label inference.
	}
	issue, err := c.rest.GetIssue(ctx, owner, repo, number)
	if err != nil {
		return model.KindIssue, err
	}
	return issue.Kind, nil
}

// EnsureIssueType creates the organization issue type matching kind if
// it isn't configured yet, reporting whether a create happened. Returns
// FeatureUnavailable(issue_types) when the organization has the feature
// disabled, in which case the REST type:<kind> label covers the kind.
func (c *Client) EnsureIssueType(ctx context.Context, owner string, kind model.IssueKind) (created bool, err error) {
	names, err := c.IssueTypeNames(ctx, owner)
	if err != nil {
		return false, err
	}
	if names[strings.ToLower(kind.String())] {
		return false, nil
	}
	orgID, err := c.graph.ResolveOrganizationID(ctx, owner)
	if err != nil {
		return false, err
	}
	_, err = c.graph.CreateIssueType(ctx, orgID, kind.Display())
	c.recordFeatureProbe(apperrors.FeatureIssueTypes, err)
	if err != nil {
		return false, err
	}
	return true, nil
}

// ResolveMilestone implements find-or-create resolution of a milestone
// by title: an exact, case-insensitive title match against the
// repository's existing milestones, creating one if no match exists.
// Find-or-create keeps `--milestone <title>` idempotent across repeated
// invocations.
func (c *Client) ResolveMilestone(ctx context.Context, owner, repo, title string) (int, error) {
	existing, err := c.rest.ListMilestones(ctx, owner, repo)
	if err != nil {
		return 0, err
	}
	for _, m := range existing {
		if strings.EqualFold(m.Title, title) {
			return m.Number, nil
		}
	}
	created, err := c.rest.CreateMilestone(ctx, owner, repo, title)
	if err != nil {
		return 0, err
	}
	return created.Number, nil
}
