package workflow

import (
	"context"

	"github.com/kjc-dev/ghhier/internal/apperrors"
)

// checkRequiredSections implements submit-plan's precondition: every
// title in pc.RequiredSections must be present (case-insensitive,
// non-empty title match).
func checkRequiredSections(_ context.Context, pc PreconditionContext) error {
	missing := pc.Body.MissingRequiredSections(pc.RequiredSections)
	if len(missing) > 0 {
		return &apperrors.RequiredSectionMissing{Names: missing}
	}
	return nil
}

// checkCompletion implements approve-work's precondition: every todo in
// every section must be checked, and every resolved child issue must be
// closed.
func checkCompletion(ctx context.Context, pc PreconditionContext) error {
	var unchecked [][2]string
	for _, s := range pc.Body.Sections {
		for _, td := range s.Todos {
			if !td.Checked {
				unchecked = append(unchecked, [2]string{s.Title, td.Text})
			}
		}
	}

	var openChildren []int
	for _, childNumber := range pc.Issue.ChildNumbers {
		child, err := pc.Hybrid.GetIssue(ctx, pc.Owner, pc.Repo, childNumber)
		if err != nil {
			return err
		}
		if !child.Closed {
			openChildren = append(openChildren, childNumber)
		}
	}

	if len(unchecked) > 0 || len(openChildren) > 0 {
		return &apperrors.CompletionBlocked{OpenChildren: openChildren, UncheckedTodos: unchecked}
	}
	return nil
}
