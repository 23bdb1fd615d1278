// Package workflow implements the seven-state per-issue lifecycle:
// the static transition table, its preconditions, and the audit-log
// entry the command layer appends to the issue body on every success.
package workflow

import (
	"context"

	"github.com/kjc-dev/ghhier/internal/apperrors"
	"github.com/kjc-dev/ghhier/internal/body"
	"github.com/kjc-dev/ghhier/internal/hybrid"
	"github.com/kjc-dev/ghhier/internal/model"
)

// PreconditionContext bundles everything a transition's Check function
// might need. Not every transition uses every field.
type PreconditionContext struct {
	Owner, Repo      string
	Issue            *model.Issue
	Body             *body.Document
	RequiredSections []string
	Hybrid           *hybrid.Client
}

// Transition is one edge of the workflow DAG.
type Transition struct {
	Name  string
	From  model.WorkflowState
	To    model.WorkflowState
	Check func(ctx context.Context, pc PreconditionContext) error
}

// Transitions is the full, static table of legal workflow edges.
var Transitions = []Transition{
	{Name: "start-plan", From: model.StateBacklog, To: model.StatePlanning, Check: noop},
	{Name: "submit-plan", From: model.StatePlanning, To: model.StateAwaitingPlanApproval, Check: checkRequiredSections},
	{Name: "approve-plan", From: model.StateAwaitingPlanApproval, To: model.StatePlanApproved, Check: noop},
	{Name: "start-work", From: model.StatePlanApproved, To: model.StateInProgress, Check: noop},
	{Name: "submit-work", From: model.StateInProgress, To: model.StateAwaitingCompletionApproval, Check: noop},
	{Name: "approve-work", From: model.StateAwaitingCompletionApproval, To: model.StateClosed, Check: checkCompletion},
}

func noop(context.Context, PreconditionContext) error { return nil }

// Find looks up a transition by name.
func Find(name string) (Transition, bool) {
	for _, t := range Transitions {
		if t.Name == name {
			return t, true
		}
	}
	return Transition{}, false
}

// Apply validates the current state against the transition's From
// state, runs its precondition check, and returns the transition ready
// for the caller to project (status update + log append). It does not
// itself mutate anything: the command layer owns ordering the status
// projection and the log append as one logical unit.
func Apply(ctx context.Context, name string, current model.WorkflowState, pc PreconditionContext) (Transition, error) {
	t, ok := Find(name)
	if !ok {
		return Transition{}, &apperrors.IllegalTransition{Current: current.String(), Attempted: name}
	}
	if t.From != current {
		return Transition{}, &apperrors.IllegalTransition{Current: current.String(), Attempted: name}
	}
	if err := t.Check(ctx, pc); err != nil {
		return Transition{}, err
	}
	return t, nil
}
