package workflow

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kjc-dev/ghhier/internal/apperrors"
	"github.com/kjc-dev/ghhier/internal/body"
	"github.com/kjc-dev/ghhier/internal/graph"
	"github.com/kjc-dev/ghhier/internal/hybrid"
	"github.com/kjc-dev/ghhier/internal/model"
	"github.com/kjc-dev/ghhier/internal/rest"
	"github.com/kjc-dev/ghhier/internal/testutil"
)

func newTestHybrid(t *testing.T, restSrv *testutil.MockRESTServer, graphSrv *testutil.MockGraphServer) *hybrid.Client {
	t.Helper()
	restClient, err := rest.New("test-token", restSrv.URL(), zap.NewNop())
	if err != nil {
		t.Fatalf("rest.New: %v", err)
	}
	graphClient := graph.New("test-token", zap.NewNop())
	graphClient.SetAPIURL(graphSrv.URL())
	return hybrid.New(restClient, graphClient, zap.NewNop())
}

func TestApplyRejectsWrongFromState(t *testing.T) {
	pc := PreconditionContext{Body: &body.Document{}}
	_, err := Apply(context.Background(), "approve-plan", model.StateBacklog, pc)
	if _, ok := err.(*apperrors.IllegalTransition); !ok {
		t.Fatalf("expected IllegalTransition, got %T (%v)", err, err)
	}
}

func TestApplyUnknownTransitionName(t *testing.T) {
	pc := PreconditionContext{Body: &body.Document{}}
	_, err := Apply(context.Background(), "delete-everything", model.StateBacklog, pc)
	if _, ok := err.(*apperrors.IllegalTransition); !ok {
		t.Fatalf("expected IllegalTransition, got %T (%v)", err, err)
	}
}

func TestSubmitPlanRequiresSections(t *testing.T) {
	doc := body.Parse([]byte("## Summary\nhi\n"))
	pc := PreconditionContext{
		Body:             doc,
		RequiredSections: []string{"Summary", "Acceptance Criteria", "Milestone Plan"},
	}
	_, err := Apply(context.Background(), "submit-plan", model.StatePlanning, pc)
	rsm, ok := err.(*apperrors.RequiredSectionMissing)
	if !ok {
		t.Fatalf("expected RequiredSectionMissing, got %T (%v)", err, err)
	}
	if len(rsm.Names) != 2 {
		t.Fatalf("expected 2 missing sections, got %v", rsm.Names)
	}
}

func TestSubmitPlanSucceedsWhenSectionsPresent(t *testing.T) {
	doc := body.Parse([]byte("## Summary\nhi\n## Acceptance Criteria\n- [ ] a\n"))
	pc := PreconditionContext{
		Body:             doc,
		RequiredSections: []string{"Summary", "Acceptance Criteria"},
	}
	tr, err := Apply(context.Background(), "submit-plan", model.StatePlanning, pc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.To != model.StateAwaitingPlanApproval {
		t.Fatalf("unexpected destination state: %v", tr.To)
	}
}

func TestApproveWorkBlockedByUncheckedTodo(t *testing.T) {
	doc := body.Parse([]byte("## Acceptance Criteria\n- [ ] A\n- [x] B\n"))
	pc := PreconditionContext{
		Body:  doc,
		Issue: &model.Issue{},
	}
	_, err := Apply(context.Background(), "approve-work", model.StateAwaitingCompletionApproval, pc)
	blocked, ok := err.(*apperrors.CompletionBlocked)
	if !ok {
		t.Fatalf("expected CompletionBlocked, got %T (%v)", err, err)
	}
	if len(blocked.UncheckedTodos) != 1 || blocked.UncheckedTodos[0][1] != "A" {
		t.Fatalf("unexpected unchecked todos: %v", blocked.UncheckedTodos)
	}
}

// The unchecked-todos half of checkCompletion passing doesn't excuse
// an open child: approve-work must still block on hierarchy state,
// resolved via the Hybrid Client's hierarchy view.
func TestApproveWorkBlockedByOpenChild(t *testing.T) {
	restSrv := testutil.NewMockRESTServer()
	defer restSrv.Close()
	graphSrv := testutil.NewMockGraphServer()
	defer graphSrv.Close()

	seed, err := rest.New("test-token", restSrv.URL(), zap.NewNop())
	if err != nil {
		t.Fatalf("rest.New: %v", err)
	}
	child, err := seed.CreateIssue(context.Background(), "acme", "svc", "Child", "body", nil, nil, nil)
	if err != nil {
		t.Fatalf("seed CreateIssue: %v", err)
	}

	doc := body.Parse([]byte("## Acceptance Criteria\n- [x] A\n"))
	pc := PreconditionContext{
		Body:   doc,
		Owner:  "acme",
		Repo:   "svc",
		Issue:  &model.Issue{ChildNumbers: []int{child.Number}},
		Hybrid: newTestHybrid(t, restSrv, graphSrv),
	}
	_, err = Apply(context.Background(), "approve-work", model.StateAwaitingCompletionApproval, pc)
	blocked, ok := err.(*apperrors.CompletionBlocked)
	if !ok {
		t.Fatalf("expected CompletionBlocked, got %T (%v)", err, err)
	}
	if len(blocked.OpenChildren) != 1 || blocked.OpenChildren[0] != child.Number {
		t.Fatalf("unexpected open children: %v", blocked.OpenChildren)
	}
	if len(blocked.UncheckedTodos) != 0 {
		t.Fatalf("expected no unchecked todos, got %v", blocked.UncheckedTodos)
	}
}

func TestBuildLogEntry(t *testing.T) {
	tr, _ := Find("start-plan")
	e := BuildLogEntry(tr, "alice", "2026-01-01T00:00:00Z", "kickoff")
	if e.FromState != "backlog" || e.ToState != "planning" || e.Actor != "alice" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if len(e.Reason) != 1 || e.Reason[0] != "kickoff" {
		t.Fatalf("unexpected reason: %v", e.Reason)
	}
}
