package command

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kjc-dev/ghhier/internal/apperrors"
	"github.com/kjc-dev/ghhier/internal/rest"
	"github.com/kjc-dev/ghhier/internal/testutil"
)

// Wiring a task under something that is itself a Task must be rejected
// before any issue is created remotely.
func TestCreateTaskRejectsWrongParentKind(t *testing.T) {
	restSrv := testutil.NewMockRESTServer()
	defer restSrv.Close()
	graphSrv := testutil.NewMockGraphServer()
	defer graphSrv.Close()

	graphSrv.SetResponse("IssueKind", map[string]any{
		"repository": map[string]any{
			"issue": map[string]any{"issueType": map[string]any{"name": "Task"}},
		},
	})

	c := newTestContext(t, restSrv, graphSrv)
	_, err := CreateTask(context.Background(), c, CreateInput{
		Repo: Repo{Owner: "acme", Repo: "svc"}, Title: "Endpoint", ParentNumber: 10,
	})
	pk, ok := err.(*apperrors.ParentNotOfExpectedKind)
	if !ok {
		t.Fatalf("expected ParentNotOfExpectedKind, got %T (%v)", err, err)
	}
	if pk.Expected != "epic" || pk.Actual != "task" {
		t.Fatalf("unexpected kinds: %+v", pk)
	}
}

// When the issue-type feature is off, the parent's kind is inferred
// from its type:<kind> label instead; a type:epic parent passes and the
// child is created and linked.
func TestCreateTaskAcceptsEpicParentViaLabelInference(t *testing.T) {
	restSrv := testutil.NewMockRESTServer()
	defer restSrv.Close()
	graphSrv := testutil.NewMockGraphServer()
	defer graphSrv.Close()

	graphSrv.SetHTTPStatus("IssueKind", 403)
	graphSrv.SetResponse("ResolveIssueNodeID", map[string]any{
		"repository": map[string]any{"issue": map[string]any{"id": "I_1"}},
	})

	seed, err := rest.New("test-token", restSrv.URL(), zap.NewNop())
	if err != nil {
		t.Fatalf("rest.New: %v", err)
	}
	parent, err := seed.CreateIssue(context.Background(), "acme", "svc", "Auth", "body", []string{"type:epic", "status:backlog"}, nil, nil)
	if err != nil {
		t.Fatalf("seed CreateIssue: %v", err)
	}

	c := newTestContext(t, restSrv, graphSrv)
	result, err := CreateTask(context.Background(), c, CreateInput{
		Repo: Repo{Owner: "acme", Repo: "svc"}, Title: "Endpoint", ParentNumber: parent.Number,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if result.Issue.ParentNumber == nil || *result.Issue.ParentNumber != parent.Number {
		t.Fatalf("expected parent %d recorded, got %v", parent.Number, result.Issue.ParentNumber)
	}
}
