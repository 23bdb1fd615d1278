package command

import (
	"context"
	"sort"

	"go.uber.org/multierr"

	"github.com/kjc-dev/ghhier/internal/apperrors"
	"github.com/kjc-dev/ghhier/internal/model"
)

// standardLabels are the repository labels init ensures exist: one
// per IssueKind and one per WorkflowState, so labels-backend projects
// have every label a transition or creation might apply.
func standardLabels() map[string]string {
	labels := map[string]string{}
	for _, k := range []model.IssueKind{model.KindEpic, model.KindTask, model.KindSubTask} {
		labels[k.Label()] = "5319e7"
	}
	for s := model.StateBacklog; s <= model.StateClosed; s++ {
		labels[s.Label()] = "1d76db"
	}
	return labels
}

// ItemOutcome reports what init did with one label or issue type:
// "created" (didn't exist, now does), "existing" (already present, no
// change made), or "fallback" (the native issue-type feature isn't
// available for this organization, so the REST type:<kind> label
// covers that kind instead).
type ItemOutcome struct {
	Name    string
	Outcome string
}

// InitResult reports a per-item outcome for every label and issue type
// init checked, plus which items failed, since init never fails fast on
// a single item.
type InitResult struct {
	Items  []ItemOutcome
	Failed map[string]error
}

// provisionedKinds are the hierarchy kinds init ensures a matching
// native issue type for, in the same order standardLabels type-tags.
var provisionedKinds = []model.IssueKind{model.KindEpic, model.KindTask, model.KindSubTask}

// Init ensures the repository carries every label the workflow and
// hierarchy need, and that the organization has a native issue type
// configured for each hierarchy kind, creating the missing ones via
// the graph transport. When the issue-type feature is unavailable the
// kind reports "fallback": the REST type:<kind> label covers it.
// Failures on individual items are collected, not fatal; the aggregate
// error (if any) is returned alongside the partial result so the
// caller can report exactly what happened.
func Init(ctx context.Context, c *Context, repo Repo) (*InitResult, error) {
	result := &InitResult{Failed: map[string]error{}}
	var errs error

	labels := standardLabels()
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		created, err := c.Hybrid.EnsureLabel(ctx, repo.Owner, repo.Repo, name, labels[name])
		if err != nil {
			result.Failed[name] = err
			errs = multierr.Append(errs, err)
			continue
		}
		outcome := "existing"
		if created {
			outcome = "created"
		}
		result.Items = append(result.Items, ItemOutcome{Name: name, Outcome: outcome})
	}

	for _, kind := range provisionedKinds {
		item := "issue_type:" + kind.String()
		created, err := c.Hybrid.EnsureIssueType(ctx, repo.Owner, kind)
		switch {
		case err == nil && created:
			result.Items = append(result.Items, ItemOutcome{Name: item, Outcome: "created"})
		case err == nil:
			result.Items = append(result.Items, ItemOutcome{Name: item, Outcome: "existing"})
		default:
			if _, unavailable := err.(*apperrors.FeatureUnavailable); unavailable {
				result.Items = append(result.Items, ItemOutcome{Name: item, Outcome: "fallback"})
				continue
			}
			result.Failed[item] = err
			errs = multierr.Append(errs, err)
		}
	}

	return result, errs
}
