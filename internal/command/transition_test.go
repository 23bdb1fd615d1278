package command

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kjc-dev/ghhier/internal/apperrors"
	"github.com/kjc-dev/ghhier/internal/body"
	"github.com/kjc-dev/ghhier/internal/model"
	"github.com/kjc-dev/ghhier/internal/rest"
	"github.com/kjc-dev/ghhier/internal/testutil"
)

func seedIssue(t *testing.T, restSrv *testutil.MockRESTServer, issueBody string, labels []string) *model.Issue {
	t.Helper()
	seed, err := rest.New("test-token", restSrv.URL(), zap.NewNop())
	if err != nil {
		t.Fatalf("rest.New: %v", err)
	}
	issue, err := seed.CreateIssue(context.Background(), "acme", "svc", "Endpoint", issueBody, labels, nil, nil)
	if err != nil {
		t.Fatalf("seed CreateIssue: %v", err)
	}
	return issue
}

// A full submit-plan against the labels backend: the status label set
// swaps to exactly one status:*, the body gains exactly one log entry,
// and the audit entry is mirrored as a comment.
func TestTransitionSubmitPlanLabelsBackend(t *testing.T) {
	restSrv := testutil.NewMockRESTServer()
	defer restSrv.Close()
	graphSrv := testutil.NewMockGraphServer()
	defer graphSrv.Close()

	issueBody := "## Summary\nplan\n\n## Acceptance Criteria\n- [ ] works\n\n## Implementation Plan\nsteps\n"
	seeded := seedIssue(t, restSrv, issueBody, []string{"type:task", "status:planning"})

	c := newTestContext(t, restSrv, graphSrv)
	result, err := Transition(context.Background(), c, Repo{Owner: "acme", Repo: "svc"}, seeded.Number, "submit-plan", "ready for review", nil)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if result.From != model.StatePlanning || result.To != model.StateAwaitingPlanApproval {
		t.Fatalf("unexpected transition: %v -> %v", result.From, result.To)
	}

	var statusLabels []string
	for _, l := range result.Issue.Labels {
		if _, ok := model.ParseStatusLabel(l); ok {
			statusLabels = append(statusLabels, l)
		}
	}
	if len(statusLabels) != 1 || statusLabels[0] != "status:awaiting-plan-approval" {
		t.Fatalf("unexpected status labels: %v", result.Issue.Labels)
	}

	doc := body.Parse([]byte(restSrv.Body(seeded.Number)))
	if doc.Log == nil || len(doc.Log.Entries) != 1 {
		t.Fatalf("expected exactly one log entry, got %+v", doc.Log)
	}
	entry := doc.Log.Entries[0]
	if entry.FromState != "planning" || entry.ToState != "awaiting-plan-approval" || entry.Actor != "mock-user" {
		t.Fatalf("unexpected log entry: %+v", entry)
	}

	comments := restSrv.Comments(seeded.Number)
	if len(comments) != 1 || !strings.Contains(comments[0], "awaiting-plan-approval") {
		t.Fatalf("expected one audit comment, got %v", comments)
	}
}

// submit-plan against a body missing its required sections must fail
// with RequiredSectionMissing and leave the issue untouched.
func TestTransitionSubmitPlanMissingSections(t *testing.T) {
	restSrv := testutil.NewMockRESTServer()
	defer restSrv.Close()
	graphSrv := testutil.NewMockGraphServer()
	defer graphSrv.Close()

	seeded := seedIssue(t, restSrv, "empty", []string{"type:task", "status:planning"})

	c := newTestContext(t, restSrv, graphSrv)
	_, err := Transition(context.Background(), c, Repo{Owner: "acme", Repo: "svc"}, seeded.Number, "submit-plan", "", nil)
	rsm, ok := err.(*apperrors.RequiredSectionMissing)
	if !ok {
		t.Fatalf("expected RequiredSectionMissing, got %T (%v)", err, err)
	}
	if len(rsm.Names) != 3 {
		t.Fatalf("expected all three task sections missing, got %v", rsm.Names)
	}
	if got := restSrv.Body(seeded.Number); got != "empty" {
		t.Fatalf("body must not change on a failed precondition, got %q", got)
	}
	if len(restSrv.Comments(seeded.Number)) != 0 {
		t.Fatal("no audit comment may be posted for a failed transition")
	}
}

// approve-work flips the issue closed on top of its status projection.
func TestTransitionApproveWorkClosesIssue(t *testing.T) {
	restSrv := testutil.NewMockRESTServer()
	defer restSrv.Close()
	graphSrv := testutil.NewMockGraphServer()
	defer graphSrv.Close()

	issueBody := "## Acceptance Criteria\n- [x] works\n"
	seeded := seedIssue(t, restSrv, issueBody, []string{"type:task", "status:awaiting-completion-approval"})

	c := newTestContext(t, restSrv, graphSrv)
	result, err := Transition(context.Background(), c, Repo{Owner: "acme", Repo: "svc"}, seeded.Number, "approve-work", "", nil)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if result.To != model.StateClosed || !result.Issue.Closed {
		t.Fatalf("expected a closed issue, got %+v", result.Issue)
	}
	if !restSrv.IsClosed(seeded.Number) {
		t.Fatal("expected the remote issue to be closed")
	}
}
